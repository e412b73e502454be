package httpapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/server/cognito"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/dmitrijs2005/projecthub/internal/server/services"
	"github.com/dmitrijs2005/projecthub/internal/server/tokens"
	"github.com/golang-jwt/jwt/v5"
)

// fakeVerifier accepts the tokens it knows and rejects everything else.
type fakeVerifier struct {
	access map[string]*tokens.Claims
	id     map[string]*tokens.Claims
	err    error
}

func (f *fakeVerifier) VerifyAccessToken(_ context.Context, token string) (*tokens.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.access[token]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, token string) (*tokens.Claims, error) {
	if c, ok := f.id[token]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired)
}

func newVerifier() *fakeVerifier {
	return &fakeVerifier{
		access: map[string]*tokens.Claims{
			"user-at":  {RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-u"}, TokenUse: tokens.UseAccess, Groups: []string{"user"}},
			"admin-at": {RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-a"}, TokenUse: tokens.UseAccess, Groups: []string{"user", "admin"}},
			"none-at":  {RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-n"}, TokenUse: tokens.UseAccess},
		},
		id: map[string]*tokens.Claims{
			"admin-it": {RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-a"}, TokenUse: tokens.UseID, Email: "admin@x.com"},
		},
	}
}

type fakeAuth struct {
	calls []string

	signupRes *services.SignupResult
	user      *models.User
	tokens    *cognito.Tokens
	err       error

	gotSignup    services.SignupInput
	gotCode      string
	gotSession   string
	gotRefresh   string
	gotIDToken   string
	gotEmail     string
	gotRequester *tokens.Claims
	gotUpdate    services.UpdateUserInput
}

func (f *fakeAuth) Signup(_ context.Context, in services.SignupInput) (*services.SignupResult, error) {
	f.calls = append(f.calls, "Signup")
	f.gotSignup = in
	f.gotEmail = in.Email
	return f.signupRes, f.err
}

func (f *fakeAuth) VerifyUser(_ context.Context, email, code, session string) (*models.User, *cognito.Tokens, error) {
	f.calls = append(f.calls, "VerifyUser")
	f.gotEmail = email
	f.gotCode = code
	f.gotSession = session
	return f.user, f.tokens, f.err
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) (*models.User, *cognito.Tokens, error) {
	f.calls = append(f.calls, "SignIn")
	f.gotEmail = email
	return f.user, f.tokens, f.err
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken, idToken string) (*cognito.Tokens, error) {
	f.calls = append(f.calls, "Refresh")
	f.gotRefresh = refreshToken
	f.gotIDToken = idToken
	return f.tokens, f.err
}

func (f *fakeAuth) Logout(_ context.Context, refreshToken string) error {
	f.calls = append(f.calls, "Logout")
	f.gotRefresh = refreshToken
	return f.err
}

func (f *fakeAuth) UpdateUser(_ context.Context, email string, in services.UpdateUserInput) (*models.User, error) {
	f.calls = append(f.calls, "UpdateUser")
	f.gotEmail = email
	f.gotUpdate = in
	return f.user, f.err
}

func (f *fakeAuth) UpdateLoggedInUser(_ context.Context, identity *tokens.Claims, in services.UpdateUserInput) (*models.User, error) {
	f.calls = append(f.calls, "UpdateLoggedInUser")
	f.gotRequester = identity
	f.gotUpdate = in
	return f.user, f.err
}

func (f *fakeAuth) DeleteUser(_ context.Context, email string, requester *tokens.Claims) (*models.User, error) {
	f.calls = append(f.calls, "DeleteUser")
	f.gotEmail = email
	f.gotRequester = requester
	return f.user, f.err
}

func (f *fakeAuth) DeleteLoggedInUser(_ context.Context, identity *tokens.Claims) (*models.User, error) {
	f.calls = append(f.calls, "DeleteLoggedInUser")
	f.gotRequester = identity
	return f.user, f.err
}

func (f *fakeAuth) LoggedInUser(_ context.Context, idToken string) (*models.User, error) {
	f.calls = append(f.calls, "LoggedInUser")
	f.gotIDToken = idToken
	return f.user, f.err
}

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) Get(_ context.Context, key string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Sub == key || u.Email == key {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) List(_ context.Context) ([]*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

var errBoom = errors.New("boom")
