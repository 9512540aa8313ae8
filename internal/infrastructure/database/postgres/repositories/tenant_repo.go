package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/tenant"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type postgresTenantRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresTenantRepo returns a tenant.Repository backed by PostgreSQL.
func NewPostgresTenantRepo(conn *postgres.Connection, log logging.Logger) tenant.Repository {
	return &postgresTenantRepo{log: log, executor: conn.DB()}
}

const tenantColumns = `id, name, created_at`

func (r *postgresTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `INSERT INTO tenants (id, name) VALUES ($1, $2) RETURNING created_at`
	err := r.executor.QueryRowContext(ctx, query, t.ID, t.Name).Scan(&t.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return errors.Wrap(err, errors.ErrCodeConflict, "tenant already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create tenant")
	}
	return nil
}

func (r *postgresTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(r.executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTenantRepo) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE name = $1`
	return scanTenant(r.executor.QueryRowContext(ctx, query, name))
}

func scanTenant(row scanner) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeTenantNotFound, "tenant not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load tenant")
	}
	return &t, nil
}
