package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	MemberID    string
	DisplayName string
	JTI         string
}

// AccessTokenClaims represents the typed JWT presented by members. The
// registered subject carries the acting member identity.
type AccessTokenClaims struct {
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

// MemberID returns the identity the token acts for.
func (c *AccessTokenClaims) MemberID() string {
	return c.Subject
}
