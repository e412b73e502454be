package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/logging"
	"github.com/dmitrijs2005/projecthub/internal/server/cookies"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/dmitrijs2005/projecthub/internal/server/tokens"
)

// TokenVerifier checks provider-issued JWTs. tokens.Verifier implements it.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*tokens.Claims, error)
	VerifyIDToken(ctx context.Context, token string) (*tokens.Claims, error)
}

// Guard authenticates requests and enforces the roles declared in the route
// table.
type Guard struct {
	verifier TokenVerifier
	logger   logging.Logger
}

func NewGuard(v TokenVerifier, l logging.Logger) *Guard {
	return &Guard{verifier: v, logger: l.With("module", "guard")}
}

// Require admits requests whose access token carries at least one of roles.
// With no roles every request is admitted untouched.
//
// A missing or invalid token is 401. A valid token without a matching group
// is 403.
func (g *Guard) Require(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(roles) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokens.ExtractTokenFromHeader(r)
			if raw == "" {
				writeError(w, r, g.logger, common.NewStatusError(common.ErrorUnauthorized, "Missing access token"))
				return
			}

			claims, err := g.verifier.VerifyAccessToken(r.Context(), raw)
			if err != nil {
				if errors.Is(err, common.ErrorForbidden) {
					writeError(w, r, g.logger, err)
					return
				}
				g.logger.Info(r.Context(), "access token rejected", "error", err)
				writeError(w, r, g.logger, common.NewStatusError(common.ErrorUnauthorized, "Invalid access token"))
				return
			}

			ctx := tokens.WithAccessClaims(r.Context(), claims)
			if !models.IntersectRoles(claims.Roles(), roles) {
				g.logger.Info(ctx, "role check failed", "sub", claims.Subject, "groups", claims.Groups, "required", roles)
				writeError(w, r, g.logger, common.NewStatusError(common.ErrorForbidden, "Forbidden resource"))
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity verifies the id_token cookie, when present, and attaches its
// claims to the context. A bad cookie is logged and otherwise ignored;
// handlers that need an identity reject its absence themselves.
func (g *Guard) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokens.ExtractToken(r, cookies.IDToken, false)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := g.verifier.VerifyIDToken(r.Context(), raw)
		if err != nil {
			g.logger.Warn(r.Context(), "id token rejected", "path", r.URL.Path, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(tokens.WithIdentity(r.Context(), claims)))
	})
}

// identity returns the verified ID token claims, falling back to the access
// token claims, which carry the subject but no email.
func identity(ctx context.Context) *tokens.Claims {
	if c, ok := tokens.IdentityFromContext(ctx); ok {
		return c
	}
	if c, ok := tokens.AccessClaimsFromContext(ctx); ok {
		return c
	}
	return nil
}
