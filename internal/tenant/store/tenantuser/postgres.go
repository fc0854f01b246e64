package tenantuser

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"baiki/internal/platform/postgres"
	"baiki/internal/tenant/models"
	id "baiki/pkg/domain"
)

// PostgresStore persists tenant memberships in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tenantUserColumns = `id, tenant_id, user_id, role, created_at, updated_at`

// Create inserts the membership. A duplicate pair surfaces as sentinel.ErrAlreadyUsed and
// a missing user or tenant as sentinel.ErrInvalidReference.
func (s *PostgresStore) Create(ctx context.Context, tu *models.TenantUser) error {
	query := `
		INSERT INTO tenant_users (` + tenantUserColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(tu.ID), uuid.UUID(tu.TenantID), uuid.UUID(tu.UserID), string(tu.Role), tu.CreatedAt, tu.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create tenant user: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresStore) FindByUserAndTenant(ctx context.Context, userID id.UserID, tenantID id.TenantID) (*models.TenantUser, error) {
	query := `SELECT ` + tenantUserColumns + ` FROM tenant_users WHERE user_id = $1 AND tenant_id = $2`
	tu, err := scanTenantUser(s.db.QueryRowContext(ctx, query, uuid.UUID(userID), uuid.UUID(tenantID)))
	if err != nil {
		return nil, fmt.Errorf("find tenant user: %w", postgres.TranslateError(err))
	}
	return tu, nil
}

// ListByUser returns the user's memberships, highest role first, then oldest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.TenantUser, error) {
	query := `
		SELECT ` + tenantUserColumns + `
		FROM tenant_users
		WHERE user_id = $1
		ORDER BY CASE role
			WHEN 'OWNER' THEN 0
			WHEN 'ADMIN' THEN 1
			WHEN 'STAFF' THEN 2
			WHEN 'TECHNICIAN' THEN 3
			ELSE 4
		END, created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list tenant users: %w", err)
	}
	defer rows.Close()

	var out []*models.TenantUser
	for rows.Next() {
		tu, err := scanTenantUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant user: %w", err)
		}
		out = append(out, tu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByTenant(ctx context.Context, tenantID id.TenantID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenant_users WHERE tenant_id = $1`, uuid.UUID(tenantID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tenant users: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenantUser(row rowScanner) (*models.TenantUser, error) {
	var (
		tu                      models.TenantUser
		rowID, tenantID, userID uuid.UUID
		role                    string
	)
	if err := row.Scan(&rowID, &tenantID, &userID, &role, &tu.CreatedAt, &tu.UpdatedAt); err != nil {
		return nil, err
	}
	tu.ID = id.TenantUserID(rowID)
	tu.TenantID = id.TenantID(tenantID)
	tu.UserID = id.UserID(userID)
	tu.Role = models.Role(role)
	return &tu, nil
}
