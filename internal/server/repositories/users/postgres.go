package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/projecthub/internal/common"
	"github.com/dmitrijs2005/projecthub/internal/dbx"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `sub, first_name, last_name, email, user_roles, active, project_id,
	(SELECT p.name FROM projects p WHERE p.id = users.project_id) AS project_name`

type PostgresRepository struct {
	db    dbx.DBTX
	types *pgtype.Map
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, types: pgtype.NewMap()}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (sub, first_name, last_name, email, user_roles, active, project_id)
		 VALUES ($1, $2, $3, $4, $5::text[], $6, $7)
		 RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.Sub, user.FirstName, user.LastName, user.Email, encodeRoles(user.Roles), user.Active, projectID(user.Project))

	created, err := r.scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// DeleteConflicting removes rows that would collide with a new account on
// either unique key. Stale mirrors left behind by a deleted remote account
// are the usual reason they exist.
func (r *PostgresRepository) DeleteConflicting(ctx context.Context, email, sub string) error {
	query := `DELETE FROM users WHERE email = $1 OR sub = $2`

	if _, err := r.db.ExecContext(ctx, query, email, sub); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR sub = $1`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, email string, active bool) (*models.User, error) {
	query := `UPDATE users SET active = $2 WHERE email = $1 RETURNING ` + userColumns

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email, active))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Update applies only the non-nil fields of upd.
func (r *PostgresRepository) Update(ctx context.Context, key string, upd models.UserUpdate) (*models.User, error) {
	query :=
		`UPDATE users SET
		   first_name = COALESCE($2, first_name),
		   last_name  = COALESCE($3, last_name),
		   email      = COALESCE($4, email),
		   project_id = CASE WHEN $5 THEN NULL ELSE COALESCE($6::uuid, project_id) END
		 WHERE email = $1 OR sub = $1
		 RETURNING ` + userColumns

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, key,
		nullString(upd.FirstName), nullString(upd.LastName), nullString(upd.Email), upd.ClearProject, nullString(upd.ProjectID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, key string) (*models.User, error) {
	query := `DELETE FROM users WHERE email = $1 OR sub = $1 RETURNING ` + userColumns

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanUser(row scanner) (*models.User, error) {
	var (
		u       models.User
		roles   []string
		project sql.NullString
		name    sql.NullString
	)
	err := row.Scan(&u.Sub, &u.FirstName, &u.LastName, &u.Email, r.types.SQLScanner(&roles), &u.Active, &project, &name)
	if err != nil {
		return nil, err
	}
	u.Roles = make([]models.Role, 0, len(roles))
	for _, role := range roles {
		u.Roles = append(u.Roles, models.Role(role))
	}
	if project.Valid {
		u.Project = &models.Project{ID: project.String, Name: name.String}
	}
	return &u, nil
}

// encodeRoles renders roles as a text[] literal, e.g. {user,admin}.
func encodeRoles(roles []models.Role) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		parts = append(parts, string(r))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func projectID(p *models.Project) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.ID, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
