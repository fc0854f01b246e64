package tenant

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"baiki/internal/platform/postgres"
	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
)

// PostgresStore persists tenants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tenantColumns = `id, name, slug, type, status, created_by, created_at, onboarded_at, updated_at`

// Create inserts the tenant. A taken slug surfaces as sentinel.ErrAlreadyUsed and an
// unknown creator as sentinel.ErrInvalidReference.
func (s *PostgresStore) Create(ctx context.Context, t *models.Tenant) error {
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(t.ID), t.Name, t.Slug, string(t.Type), string(t.Status),
		uuid.UUID(t.CreatedBy), t.CreatedAt, t.OnboardedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create tenant: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return s.findOne(ctx, query, uuid.UUID(tenantID))
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1`
	return s.findOne(ctx, query, slug)
}

func (s *PostgresStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tenant slug: %w", err)
	}
	return exists, nil
}

// List returns all tenants, oldest first.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_at, slug`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tenants: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Tenant, error) {
	t, err := scanTenant(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", postgres.TranslateError(err))
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*models.Tenant, error) {
	var (
		t           models.Tenant
		tenantID    uuid.UUID
		createdBy   uuid.UUID
		tenantType  string
		status      string
		onboardedAt sql.NullTime
	)
	if err := row.Scan(&tenantID, &t.Name, &t.Slug, &tenantType, &status, &createdBy, &t.CreatedAt, &onboardedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = id.TenantID(tenantID)
	t.CreatedBy = id.UserID(createdBy)
	t.Type = models.TenantType(tenantType)
	t.Status = models.TenantStatus(status)
	if onboardedAt.Valid {
		ts := onboardedAt.Time
		t.OnboardedAt = &ts
	}
	return &t, nil
}
