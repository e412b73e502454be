package services

import (
	"context"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/server/cognito"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

type fakeIDP struct {
	calls []string

	signUpOut *cognito.SignUpResult
	signUpErr error

	groups   []string
	groupErr error

	signInOut *cognito.Tokens
	signInErr error

	confirmSession string
	confirmErr     error
	otpSession     string
	otpOut         *cognito.Tokens
	otpErr         error

	account *cognito.Account
	getErr  error

	attrs     map[string]string
	attrsUser string
	updateErr error

	deleted   []string
	deleteErr error

	revoked   string
	revokeErr error

	refreshOut *cognito.Tokens
	refreshErr error
}

func (f *fakeIDP) SignUp(_ context.Context, p cognito.SignUpParams) (*cognito.SignUpResult, error) {
	f.calls = append(f.calls, "SignUp")
	return f.signUpOut, f.signUpErr
}

func (f *fakeIDP) AddUserToGroup(_ context.Context, _ string, group string) error {
	f.calls = append(f.calls, "AddUserToGroup")
	if f.groupErr != nil {
		return f.groupErr
	}
	f.groups = append(f.groups, group)
	return nil
}

func (f *fakeIDP) SignIn(_ context.Context, _, _ string) (*cognito.Tokens, error) {
	f.calls = append(f.calls, "SignIn")
	return f.signInOut, f.signInErr
}

func (f *fakeIDP) ConfirmSignUp(_ context.Context, _, _, _ string) (string, error) {
	f.calls = append(f.calls, "ConfirmSignUp")
	return f.confirmSession, f.confirmErr
}

func (f *fakeIDP) CompleteEmailOTP(_ context.Context, _, _, session string) (*cognito.Tokens, error) {
	f.calls = append(f.calls, "CompleteEmailOTP")
	f.otpSession = session
	return f.otpOut, f.otpErr
}

func (f *fakeIDP) GetUser(_ context.Context, _ string) (*cognito.Account, error) {
	f.calls = append(f.calls, "GetUser")
	return f.account, f.getErr
}

func (f *fakeIDP) UpdateUserAttributes(_ context.Context, username string, attrs map[string]string) error {
	f.calls = append(f.calls, "UpdateUserAttributes")
	f.attrsUser = username
	f.attrs = attrs
	return f.updateErr
}

func (f *fakeIDP) DeleteUser(_ context.Context, username string) error {
	f.calls = append(f.calls, "DeleteUser")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, username)
	return nil
}

func (f *fakeIDP) RevokeToken(_ context.Context, token string) error {
	f.calls = append(f.calls, "RevokeToken")
	f.revoked = token
	return f.revokeErr
}

func (f *fakeIDP) RefreshTokens(_ context.Context, _ string) (*cognito.Tokens, error) {
	f.calls = append(f.calls, "RefreshTokens")
	return f.refreshOut, f.refreshErr
}

// memStore is an in-memory UserStore keyed by sub.
type memStore struct {
	users     map[string]*models.User
	createErr error
	deleteErr error
	mutations int
}

func newMemStore(users ...*models.User) *memStore {
	m := &memStore{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.Sub] = u
	}
	return m
}

func (m *memStore) find(key string) *models.User {
	for _, u := range m.users {
		if u.Sub == key || u.Email == key {
			return u
		}
	}
	return nil
}

func (m *memStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mutations++
	cp := *u
	m.users[u.Sub] = &cp
	return &cp, nil
}

func (m *memStore) Activate(_ context.Context, email string) (*models.User, error) {
	u := m.find(email)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	m.mutations++
	u.Active = true
	return u, nil
}

func (m *memStore) Get(_ context.Context, key string) (*models.User, error) {
	if u := m.find(key); u != nil {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memStore) Update(_ context.Context, key string, upd models.UserUpdate) (*models.User, error) {
	u := m.find(key)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	m.mutations++
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.ClearProject {
		u.Project = nil
	} else if upd.ProjectID != nil {
		u.Project = &models.Project{ID: *upd.ProjectID}
	}
	return u, nil
}

func (m *memStore) Delete(_ context.Context, key string) (*models.User, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	u := m.find(key)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	m.mutations++
	delete(m.users, u.Sub)
	return u, nil
}

func registered(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{Subject: sub}
}
