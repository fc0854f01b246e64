package role

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"baiki/internal/auth/models"
	"baiki/internal/platform/postgres"
	id "baiki/pkg/domain"
)

// PostgresStore persists roles and user_roles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureRole(ctx context.Context, name models.PlatformRoleName, now time.Time) (*models.Role, error) {
	query := `
		INSERT INTO roles (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`
	var (
		r      models.Role
		roleID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.New(), string(name), now).Scan(&roleID, &r.Name, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure role: %w", postgres.TranslateError(err))
	}
	r.ID = id.RoleID(roleID)
	return &r, nil
}

func (s *PostgresStore) FindByName(ctx context.Context, name models.PlatformRoleName) (*models.Role, error) {
	var (
		r      models.Role
		roleID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM roles WHERE name = $1`, string(name)).
		Scan(&roleID, &r.Name, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("find role: %w", postgres.TranslateError(err))
	}
	r.ID = id.RoleID(roleID)
	return &r, nil
}

func (s *PostgresStore) AssignToUser(ctx context.Context, userID id.UserID, roleID id.RoleID, now time.Time) error {
	query := `
		INSERT INTO user_roles (user_id, role_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, uuid.UUID(userID), uuid.UUID(roleID), now); err != nil {
		return fmt.Errorf("assign role: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Role, error) {
	query := `
		SELECT r.id, r.name, r.created_at
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ur.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", postgres.TranslateError(err))
	}
	defer rows.Close()

	var out []*models.Role
	for rows.Next() {
		var (
			r      models.Role
			roleID uuid.UUID
		)
		if err := rows.Scan(&roleID, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		r.ID = id.RoleID(roleID)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	return out, nil
}
