package partners

import pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"

var (
	ErrInvalidIdentity    = pkgerrors.Define(pkgerrors.CodeValidation, "INVALID_IDENTITY", "member id and display name are required")
	ErrDuplicateIdentity  = pkgerrors.Define(pkgerrors.CodeConflict, "DUPLICATE_IDENTITY", "member already registered")
	ErrUnknownMember      = pkgerrors.Define(pkgerrors.CodeNotFound, "UNKNOWN_MEMBER", "there is no member corresponding to the given id")
	ErrNoConnection       = pkgerrors.Define(pkgerrors.CodeNotFound, "NO_CONNECTION", "members are not partners")
	ErrNoInvitation       = pkgerrors.Define(pkgerrors.CodeNotFound, "NO_INVITATION", "there is no pending invitation from this member")
	ErrAlreadyConnected   = pkgerrors.Define(pkgerrors.CodeConflict, "ALREADY_CONNECTED", "members are already partners")
	ErrSelfInvitation     = pkgerrors.Define(pkgerrors.CodeValidation, "SELF_INVITATION", "members can not invite themselves")
	ErrInsufficientPoints = pkgerrors.Define(pkgerrors.CodeStateConflict, "INSUFFICIENT_POINTS", "not enough points to draw a coupon")
	ErrInvalidPrice       = pkgerrors.Define(pkgerrors.CodeValidation, "INVALID_PRICE", "coupon price must be a non-negative whole number")
	ErrInvalidPoints      = pkgerrors.Define(pkgerrors.CodeValidation, "INVALID_POINTS", "points must be a non-negative whole number")
	ErrPointsOverflow     = pkgerrors.Define(pkgerrors.CodeStateConflict, "POINTS_OVERFLOW", "points balance would overflow")
)
