// Package tokens verifies and reads the JSON Web Tokens issued by the user
// pool, and pulls them out of requests.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks signature, issuer, expiry and token use. Signing keys come
// from the pool's JWKS endpoint and are cached by the key set.
type Verifier struct {
	keySet   oidc.KeySet
	issuer   string
	clientID string
	leeway   time.Duration
	now      func() time.Time
}

// NewVerifier builds a Verifier backed by the remote JWKS of issuer.
func NewVerifier(ctx context.Context, issuer, clientID string, leeway time.Duration) *Verifier {
	ks := oidc.NewRemoteKeySet(ctx, issuer+"/.well-known/jwks.json")
	return NewVerifierWithKeySet(ks, issuer, clientID, leeway)
}

func NewVerifierWithKeySet(ks oidc.KeySet, issuer, clientID string, leeway time.Duration) *Verifier {
	return &Verifier{keySet: ks, issuer: issuer, clientID: clientID, leeway: leeway, now: time.Now}
}

// VerifyAccessToken verifies an access token. The audience check is the
// client_id claim since access tokens carry no aud.
func (v *Verifier) VerifyAccessToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := v.verify(ctx, token, UseAccess)
	if err != nil {
		return nil, err
	}
	if claims.ClientID != v.clientID {
		return nil, unauthorized(errors.New("client_id mismatch"))
	}
	return claims, nil
}

// VerifyIDToken verifies an ID token, including its audience.
func (v *Verifier) VerifyIDToken(ctx context.Context, token string) (*Claims, error) {
	return v.verify(ctx, token, UseID, jwt.WithAudience(v.clientID))
}

func (v *Verifier) verify(ctx context.Context, token, use string, opts ...jwt.ParserOption) (*Claims, error) {
	if token == "" {
		return nil, unauthorized(common.ErrInvalidToken)
	}

	payload, err := v.keySet.VerifySignature(ctx, token)
	if err != nil {
		return nil, unauthorized(fmt.Errorf("%w: %v", common.ErrInvalidToken, err))
	}

	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, unauthorized(fmt.Errorf("%w: %v", common.ErrInvalidToken, err))
	}

	opts = append(opts,
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err := jwt.NewValidator(opts...).Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, unauthorized(common.ErrTokenExpired)
		}
		return nil, unauthorized(fmt.Errorf("%w: %v", common.ErrInvalidToken, err))
	}

	if claims.TokenUse != use {
		return nil, unauthorized(fmt.Errorf("%w: token_use %q", common.ErrInvalidToken, claims.TokenUse))
	}

	return claims, nil
}

func unauthorized(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
}
