package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"baiki/internal/auth/models"
	"baiki/internal/platform/postgres"
	id "baiki/pkg/domain"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, name, email, password_hash, email_verified, image, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Name, models.NormalizeEmail(user.Email), user.PasswordHash,
		user.EmailVerified, user.Image, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, models.NormalizeEmail(email))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u      models.User
		userID uuid.UUID
		image  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&userID, &u.Name, &u.Email, &u.PasswordHash, &u.EmailVerified, &image, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", postgres.TranslateError(err))
	}
	u.ID = id.UserID(userID)
	if image.Valid {
		u.Image = &image.String
	}
	return &u, nil
}
