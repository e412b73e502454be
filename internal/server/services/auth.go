package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/logging"
	"github.com/dmitrijs2005/projecthub/internal/server/cognito"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/dmitrijs2005/projecthub/internal/server/tokens"
)

// ErrAccountRemoved marks a delete that failed after the remote account was
// already gone. Sessions for that account are dead either way.
var ErrAccountRemoved = errors.New("account removed")

// IdentityProvider is the user pool as seen by the auth flows.
// cognito.Client implements it.
type IdentityProvider interface {
	SignUp(ctx context.Context, p cognito.SignUpParams) (*cognito.SignUpResult, error)
	AddUserToGroup(ctx context.Context, username, group string) error
	SignIn(ctx context.Context, username, password string) (*cognito.Tokens, error)
	ConfirmSignUp(ctx context.Context, username, code, session string) (string, error)
	CompleteEmailOTP(ctx context.Context, username, code, session string) (*cognito.Tokens, error)
	GetUser(ctx context.Context, username string) (*cognito.Account, error)
	UpdateUserAttributes(ctx context.Context, username string, attrs map[string]string) error
	DeleteUser(ctx context.Context, username string) error
	RevokeToken(ctx context.Context, refreshToken string) error
	RefreshTokens(ctx context.Context, refreshToken string) (*cognito.Tokens, error)
}

// UserStore is the local mirror. UserService implements it.
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	Activate(ctx context.Context, email string) (*models.User, error)
	Get(ctx context.Context, key string) (*models.User, error)
	Update(ctx context.Context, key string, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, key string) (*models.User, error)
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Admin     bool
}

type SignupResult struct {
	Status                 models.AuthStatus
	Message                string
	UserVerificationStatus models.VerificationStatus
	// Session is the provider's interim session, to be stored in the
	// "session" cookie. Empty when the pool issued none.
	Session string
}

type UpdateUserInput struct {
	FirstName    *string
	LastName     *string
	Email        *string
	ProjectID    *string
	ClearProject bool
}

// AuthService orchestrates the identity provider and the local mirror.
// It never writes cookies; it returns tokens for the transport to set.
type AuthService struct {
	idp    IdentityProvider
	users  UserStore
	logger logging.Logger
}

func NewAuthService(idp IdentityProvider, users UserStore, l logging.Logger) *AuthService {
	return &AuthService{idp: idp, users: users, logger: l.With("module", "auth_service")}
}

func internal(msg string) error {
	return common.NewStatusError(common.ErrorInternal, msg)
}

func unauthorized(msg string) error {
	return common.NewStatusError(common.ErrorUnauthorized, msg)
}

// Signup creates the account, adds it to its groups and mirrors it locally.
// Once the remote account exists, any later failure deletes it again.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	res, err := s.idp.SignUp(ctx, cognito.SignUpParams{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		if errors.Is(err, cognito.ErrUserExists) {
			return nil, s.existingAccountError(ctx, in.Email)
		}
		s.logger.Error(ctx, "error signing up user", "email", in.Email, "error", err)
		return nil, internal("Error whilst signing up user")
	}
	if res.Sub == "" {
		s.logger.Error(ctx, "provider returned no subject", "email", in.Email)
		s.rollbackSignup(ctx, in.Email)
		return nil, internal("Error whilst signing up user")
	}

	roles := []models.Role{models.RoleUser}
	if in.Admin {
		roles = append(roles, models.RoleAdmin)
	}
	for _, role := range roles {
		if err := s.idp.AddUserToGroup(ctx, in.Email, string(role)); err != nil {
			s.logger.Error(ctx, "error adding user to group", "email", in.Email, "group", role, "error", err)
			s.rollbackSignup(ctx, in.Email)
			return nil, internal("Error whilst signing up user")
		}
	}

	_, err = s.users.Create(ctx, &models.User{
		Sub:       res.Sub,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Roles:     roles,
		Active:    false,
	})
	if err != nil {
		s.logger.Error(ctx, "error creating local user", "email", in.Email, "error", err)
		s.rollbackSignup(ctx, in.Email)
		return nil, internal("Error whilst signing up user")
	}

	status := models.VerificationUnconfirmed
	if res.Confirmed {
		status = models.VerificationConfirmed
	}
	return &SignupResult{
		Status:                 models.AuthStatusSuccess,
		Message:                "User created successfully",
		UserVerificationStatus: status,
		Session:                res.Session,
	}, nil
}

func (s *AuthService) rollbackSignup(ctx context.Context, email string) {
	if err := s.idp.DeleteUser(ctx, email); err != nil && !errors.Is(err, cognito.ErrUserNotFound) {
		s.logger.Error(ctx, "error rolling back remote account", "email", email, "error", err)
		return
	}
	s.logger.Warn(ctx, "remote account rolled back", "email", email)
}

func (s *AuthService) existingAccountError(ctx context.Context, email string) error {
	acc, err := s.idp.GetUser(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "error reading existing account", "email", email, "error", err)
		return internal("Error whilst signing up user")
	}
	switch models.VerificationStatus(acc.Status) {
	case models.VerificationUnconfirmed:
		return &common.StatusError{
			Kind:                   common.ErrorConflict,
			Status:                 string(models.AuthStatusPending),
			Message:                "User exists but not verified",
			UserVerificationStatus: string(models.VerificationUnconfirmed),
		}
	case models.VerificationConfirmed:
		return &common.StatusError{
			Kind:                   common.ErrorConflict,
			Status:                 string(models.AuthStatusConflict),
			Message:                "User already exists",
			UserVerificationStatus: string(models.VerificationConfirmed),
		}
	}
	s.logger.Error(ctx, "unexpected account status", "email", email, "status", acc.Status)
	return internal("Error whilst signing up user")
}

// VerifyUser confirms the signup code. With an interim session the code is
// also used as an email OTP to finish sign-in, and the new tokens are
// returned; otherwise tokens is nil.
func (s *AuthService) VerifyUser(ctx context.Context, email, code, session string) (*models.User, *cognito.Tokens, error) {
	next, err := s.idp.ConfirmSignUp(ctx, email, code, session)
	if err != nil {
		switch {
		case errors.Is(err, cognito.ErrCodeMismatch):
			return nil, nil, &common.StatusError{Kind: common.ErrorBadRequest, Status: string(models.AuthStatusInvalidCode), Message: "Invalid verification code"}
		case errors.Is(err, cognito.ErrCodeExpired):
			return nil, nil, &common.StatusError{Kind: common.ErrorBadRequest, Status: string(models.AuthStatusExpiredCode), Message: "Verification code has expired"}
		}
		s.logger.Error(ctx, "error verifying user", "email", email, "error", err)
		return nil, nil, internal("Error whilst verifying user")
	}

	var issued *cognito.Tokens
	if session != "" {
		issued, err = s.idp.CompleteEmailOTP(ctx, email, code, next)
		if err != nil {
			s.logger.Error(ctx, "error completing otp sign in", "email", email, "error", err)
			return nil, nil, internal("Error whilst verifying user")
		}
	}

	u, err := s.users.Activate(ctx, email)
	if err != nil {
		s.logger.Error(ctx, "error activating local user", "email", email, "error", err)
		return nil, nil, internal("Error whilst verifying user")
	}
	return u, issued, nil
}

// SignIn authenticates with email and password and returns the local user
// with a fresh token triple.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.User, *cognito.Tokens, error) {
	issued, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, cognito.ErrNotAuthorized) || errors.Is(err, cognito.ErrUserNotFound) || errors.Is(err, cognito.ErrIncompleteTokens) {
			s.logger.Info(ctx, "sign in rejected", "email", email, "error", err)
			return nil, nil, unauthorized("Invalid credentials")
		}
		s.logger.Error(ctx, "error signing in user", "email", email, "error", err)
		return nil, nil, internal("Error whilst signing in user")
	}

	u, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "authenticated account has no local record", "email", email)
			return nil, nil, unauthorized("Invalid credentials")
		}
		s.logger.Error(ctx, "error loading local user", "email", email, "error", err)
		return nil, nil, internal("Error whilst signing in user")
	}
	return u, issued, nil
}

// Refresh exchanges refreshToken for a new token triple. The ID token is
// decoded without verification only to reject obviously broken requests.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, idToken string) (*cognito.Tokens, error) {
	if refreshToken == "" || idToken == "" {
		return nil, unauthorized("Missing session tokens")
	}
	claims, err := tokens.DecodeClaims(idToken)
	if err != nil || claims.Subject == "" {
		return nil, unauthorized("Invalid session tokens")
	}

	issued, err := s.idp.RefreshTokens(ctx, refreshToken)
	if err != nil {
		s.logger.Warn(ctx, "error refreshing tokens", "sub", claims.Subject, "error", err)
		return nil, unauthorized("Unable to refresh session")
	}
	return issued, nil
}

// Logout revokes the refresh token. A failed revoke is an error: the token
// would otherwise stay usable.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return unauthorized("Missing refresh token")
	}
	if err := s.idp.RevokeToken(ctx, refreshToken); err != nil {
		s.logger.Error(ctx, "error revoking token", "error", err)
		return internal("Error whilst logging out user")
	}
	return nil
}

func attributesFor(in UpdateUserInput) map[string]string {
	attrs := make(map[string]string)
	if in.FirstName != nil {
		attrs[cognito.AttrGivenName] = *in.FirstName
	}
	if in.LastName != nil {
		attrs[cognito.AttrFamilyName] = *in.LastName
	}
	if in.Email != nil {
		attrs[cognito.AttrEmail] = *in.Email
		attrs[cognito.AttrEmailVerified] = "true"
	}
	return attrs
}

func (in UpdateUserInput) update() models.UserUpdate {
	return models.UserUpdate{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		ProjectID:    in.ProjectID,
		ClearProject: in.ClearProject,
	}
}

// UpdateUser updates another account, addressed by email.
func (s *AuthService) UpdateUser(ctx context.Context, email string, in UpdateUserInput) (*models.User, error) {
	return s.updateUser(ctx, email, in)
}

// UpdateLoggedInUser updates the caller's own account, addressed by sub.
func (s *AuthService) UpdateLoggedInUser(ctx context.Context, identity *tokens.Claims, in UpdateUserInput) (*models.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, unauthorized("Unauthorized")
	}
	return s.updateUser(ctx, identity.Subject, in)
}

func (s *AuthService) updateUser(ctx context.Context, username string, in UpdateUserInput) (*models.User, error) {
	if err := s.idp.UpdateUserAttributes(ctx, username, attributesFor(in)); err != nil {
		if errors.Is(err, cognito.ErrUserNotFound) {
			s.logger.Warn(ctx, "account vanished during update", "username", username)
			return nil, unauthorized("Unauthorized")
		}
		s.logger.Error(ctx, "error updating account attributes", "username", username, "error", err)
		return nil, internal("Error whilst updating user")
	}

	u, err := s.users.Update(ctx, username, in.update())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewStatusError(common.ErrorNotFound, "User not found")
		}
		s.logger.Error(ctx, "error updating local user", "username", username, "error", err)
		return nil, internal("Error whilst updating user")
	}
	return u, nil
}

// DeleteUser deletes another account by email. Callers cannot delete
// themselves here; they must use DeleteLoggedInUser.
func (s *AuthService) DeleteUser(ctx context.Context, email string, requester *tokens.Claims) (*models.User, error) {
	if requester == nil || requester.Email == "" {
		return nil, unauthorized("Unauthorized")
	}
	if strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(requester.Email)) {
		return nil, common.NewStatusError(common.ErrorBadRequest, "Cannot delete logged in user")
	}
	return s.deleteAccount(ctx, email)
}

// DeleteLoggedInUser deletes the caller's own account.
func (s *AuthService) DeleteLoggedInUser(ctx context.Context, identity *tokens.Claims) (*models.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, unauthorized("Unauthorized")
	}
	return s.deleteAccount(ctx, identity.Subject)
}

// deleteAccount removes the remote account, then the mirror. A remote
// account that is already gone still has its mirror removed.
func (s *AuthService) deleteAccount(ctx context.Context, username string) (*models.User, error) {
	if err := s.idp.DeleteUser(ctx, username); err != nil {
		if !errors.Is(err, cognito.ErrUserNotFound) {
			s.logger.Error(ctx, "error deleting account", "username", username, "error", err)
			return nil, internal("Error whilst deleting user")
		}
		s.logger.Warn(ctx, "remote account already gone, deleting local record", "username", username)
	}

	u, err := s.users.Delete(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrAccountRemoved, common.NewStatusError(common.ErrorNotFound, "User not found"))
		}
		s.logger.Error(ctx, "error deleting local user", "username", username, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAccountRemoved, internal("Error whilst deleting user"))
	}
	return u, nil
}

// LoggedInUser returns the local record named by the ID token. The token is
// decoded, not verified: the ID token middleware has already checked it.
func (s *AuthService) LoggedInUser(ctx context.Context, idToken string) (*models.User, error) {
	if idToken == "" {
		return nil, unauthorized("Unauthorized")
	}
	claims, err := tokens.DecodeClaims(idToken)
	if err != nil {
		return nil, unauthorized("Unauthorized")
	}
	key := claims.Email
	if key == "" {
		key = claims.Subject
	}
	if key == "" {
		return nil, unauthorized("Unauthorized")
	}

	u, err := s.users.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewStatusError(common.ErrorNotFound, "User not found")
		}
		s.logger.Error(ctx, "error loading local user", "key", key, "error", err)
		return nil, internal("Error whilst fetching user")
	}
	return u, nil
}
