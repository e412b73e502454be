package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/projecthub/internal/logging"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// UserReader reads the local mirror. services.UserService implements it.
type UserReader interface {
	Get(ctx context.Context, key string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type UsersHandler struct {
	users  UserReader
	logger logging.Logger
}

func NewUsersHandler(u UserReader, l logging.Logger) *UsersHandler {
	return &UsersHandler{users: u, logger: l.With("module", "users_handler")}
}

// List returns every user, or the single user named by ?email=.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
		u, err := h.users.Get(r.Context(), email)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
		return
	}

	list, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(list))
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "sub"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
