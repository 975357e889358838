package middleware

import "context"

type contextKey string

const (
	ctxMemberID    contextKey = "member_id"
	ctxDisplayName contextKey = "display_name"
)

// MemberIDFromContext returns the acting member set by Auth.
func MemberIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxMemberID).(string); ok {
		return v
	}
	return ""
}

// DisplayNameFromContext returns the display name claimed by the token, if any.
func DisplayNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxDisplayName).(string); ok {
		return v
	}
	return ""
}

// WithMemberID injects the acting member into the context.
func WithMemberID(ctx context.Context, memberID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxMemberID, memberID)
}
