package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/logging"
	"github.com/dmitrijs2005/projecthub/internal/server/cognito"
	"github.com/dmitrijs2005/projecthub/internal/server/cookies"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/dmitrijs2005/projecthub/internal/server/obs"
	"github.com/dmitrijs2005/projecthub/internal/server/services"
	"github.com/dmitrijs2005/projecthub/internal/server/tokens"
	"github.com/go-chi/chi/v5"
)

// AuthAPI is the orchestrator behind the /auth routes. services.AuthService
// implements it.
type AuthAPI interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.SignupResult, error)
	VerifyUser(ctx context.Context, email, code, session string) (*models.User, *cognito.Tokens, error)
	SignIn(ctx context.Context, email, password string) (*models.User, *cognito.Tokens, error)
	Refresh(ctx context.Context, refreshToken, idToken string) (*cognito.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	UpdateUser(ctx context.Context, email string, in services.UpdateUserInput) (*models.User, error)
	UpdateLoggedInUser(ctx context.Context, identity *tokens.Claims, in services.UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, email string, requester *tokens.Claims) (*models.User, error)
	DeleteLoggedInUser(ctx context.Context, identity *tokens.Claims) (*models.User, error)
	LoggedInUser(ctx context.Context, idToken string) (*models.User, error)
}

// Auth event labels.
const (
	eventSignup  = "signup"
	eventVerify  = "verify"
	eventSignin  = "signin"
	eventRefresh = "refresh"
	eventLogout  = "logout"
)

type AuthHandler struct {
	auth     AuthAPI
	cookies  *cookies.Service
	metrics  *obs.Metrics
	validate *Validator
	logger   logging.Logger
}

func NewAuthHandler(a AuthAPI, c *cookies.Service, m *obs.Metrics, v *Validator, l logging.Logger) *AuthHandler {
	return &AuthHandler{auth: a, cookies: c, metrics: m, validate: v, logger: l.With("module", "auth_handler")}
}

func (h *AuthHandler) bind(r *http.Request, v any) error {
	if err := decodeJSON(r, v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.auth.Signup(r.Context(), req.input())
	h.metrics.AuthEvent(eventSignup, err)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if res.Session != "" {
		h.cookies.SetInterim(w, res.Session)
	}
	writeJSON(w, http.StatusCreated, signupResponse{
		Status:                 res.Status,
		Message:                res.Message,
		UserVerificationStatus: res.UserVerificationStatus,
	})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	session := tokens.ExtractToken(r, cookies.Session, false)
	u, issued, err := h.auth.VerifyUser(r.Context(), strings.TrimSpace(req.Email), req.Code, session)
	h.metrics.AuthEvent(eventVerify, err)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if issued != nil {
		h.cookies.SetSession(w, issued.AccessToken, issued.IDToken, issued.RefreshToken)
	}
	if session != "" {
		h.cookies.ClearInterim(w)
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	u, issued, err := h.auth.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	h.metrics.AuthEvent(eventSignin, err)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.cookies.SetSession(w, issued.AccessToken, issued.IDToken, issued.RefreshToken)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Refresh reads both tokens from cookies only; the header is never used.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refresh := tokens.ExtractToken(r, cookies.RefreshToken, false)
	id := tokens.ExtractToken(r, cookies.IDToken, false)

	issued, err := h.auth.Refresh(r.Context(), refresh, id)
	h.metrics.AuthEvent(eventRefresh, err)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.cookies.SetSession(w, issued.AccessToken, issued.IDToken, issued.RefreshToken)
	writeJSON(w, http.StatusOK, messageResponse{Message: "success"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refresh := tokens.ExtractToken(r, cookies.RefreshToken, false)

	err := h.auth.Logout(r.Context(), refresh)
	h.metrics.AuthEvent(eventLogout, err)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.cookies.ClearSession(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "success"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.LoggedInUser(r.Context(), tokens.ExtractToken(r, cookies.IDToken, false))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *AuthHandler) bindUpdate(r *http.Request) (services.UpdateUserInput, error) {
	var req updateUserRequest
	if err := h.bind(r, &req); err != nil {
		return services.UpdateUserInput{}, err
	}
	return req.input()
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	in, err := h.bindUpdate(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	u, err := h.auth.UpdateLoggedInUser(r.Context(), identity(r.Context()), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// DeleteMe deletes the caller's account and clears their session cookies.
// Cookies are also cleared when only the local record could not be removed.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.DeleteLoggedInUser(r.Context(), identity(r.Context()))
	if err != nil {
		if errors.Is(err, services.ErrAccountRemoved) {
			h.cookies.ClearSession(w)
		}
		writeError(w, r, h.logger, err)
		return
	}
	h.cookies.ClearSession(w)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	in, err := h.bindUpdate(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	u, err := h.auth.UpdateUser(r.Context(), email, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// DeleteUser deletes the account named by ?email=. The caller's identity
// comes from the verified id_token cookie.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, r, h.logger, common.NewStatusError(common.ErrorBadRequest, "email is required"))
		return
	}
	requester, _ := tokens.IdentityFromContext(r.Context())
	u, err := h.auth.DeleteUser(r.Context(), email, requester)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
