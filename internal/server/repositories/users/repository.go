package users

import (
	"context"

	"github.com/dmitrijs2005/projecthub/internal/server/models"
)

// Repository persists the local mirror of identity provider accounts.
// Lookups by "key" match either the email or the subject identifier.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	DeleteConflicting(ctx context.Context, email, sub string) error
	Get(ctx context.Context, key string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	SetActive(ctx context.Context, email string, active bool) (*models.User, error)
	Update(ctx context.Context, key string, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, key string) (*models.User, error)
}
