package tokens

import (
	"context"

	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Token use values set by the user pool.
const (
	UseAccess = "access"
	UseID     = "id"
)

// Claims is the union of the access and ID token claim sets we read.
type Claims struct {
	jwt.RegisteredClaims

	TokenUse        string   `json:"token_use"`
	ClientID        string   `json:"client_id,omitempty"`
	Username        string   `json:"username,omitempty"`
	CognitoUsername string   `json:"cognito:username,omitempty"`
	Groups          []string `json:"cognito:groups,omitempty"`
	Email           string   `json:"email,omitempty"`
	GivenName       string   `json:"given_name,omitempty"`
	FamilyName      string   `json:"family_name,omitempty"`
}

// Roles returns the known roles among the token's groups.
func (c *Claims) Roles() []models.Role {
	return models.RolesFromGroups(c.Groups)
}

type ctxKey struct{ name string }

var (
	accessClaimsKey = ctxKey{"access_claims"}
	identityKey     = ctxKey{"identity"}
)

// WithAccessClaims attaches verified access token claims to ctx.
func WithAccessClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, accessClaimsKey, c)
}

func AccessClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(accessClaimsKey).(*Claims)
	return c, ok && c != nil
}

// WithIdentity attaches verified ID token claims to ctx.
func WithIdentity(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, identityKey, c)
}

func IdentityFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(identityKey).(*Claims)
	return c, ok && c != nil
}
