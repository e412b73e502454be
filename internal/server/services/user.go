// Package services contains the server-side business logic. This file
// implements UserService, which owns the local mirror of provider accounts.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/dbx"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/dmitrijs2005/projecthub/internal/server/repositories/repomanager"
)

// UserService reads and writes User records. Keys are either an email or a
// subject identifier.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// Create replaces any record that shares the new user's email or sub, in a
// single transaction.
func (s *UserService) Create(ctx context.Context, u *models.User) (*models.User, error) {
	var created *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if err := repo.DeleteConflicting(ctx, u.Email, u.Sub); err != nil {
			return err
		}
		var err error
		created, err = repo.Create(ctx, u)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// Activate marks the user with email as verified.
func (s *UserService) Activate(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).SetActive(ctx, email, true)
}

func (s *UserService) Get(ctx context.Context, key string) (*models.User, error) {
	return s.repomanager.Users(s.db).Get(ctx, key)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// Update applies upd to the user found by key. An empty update returns the
// current record untouched.
func (s *UserService) Update(ctx context.Context, key string, upd models.UserUpdate) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	if upd.Empty() {
		return repo.Get(ctx, key)
	}
	return repo.Update(ctx, key, upd)
}

func (s *UserService) Delete(ctx context.Context, key string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).Delete(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error deleting user: %w", err)
	}
	return u, nil
}
