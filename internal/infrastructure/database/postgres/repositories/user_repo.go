package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/user"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type postgresUserRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresUserRepo returns a user.Repository backed by PostgreSQL.
func NewPostgresUserRepo(conn *postgres.Connection, log logging.Logger) user.Repository {
	return &postgresUserRepo{log: log, executor: conn.DB()}
}

const userColumns = `id, email, full_name, password_hash, is_active, tenant_id, created_at`

func (r *postgresUserRepo) Create(ctx context.Context, u *user.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, email, full_name, password_hash, is_active, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		u.ID, u.Email, u.FullName, u.PasswordHash, u.IsActive, u.TenantID,
	).Scan(&u.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "users_email_key" {
				return errors.Wrap(err, errors.ErrCodeEmailTaken, "Email already registered")
			}
			return errors.Wrap(err, errors.ErrCodeConflict, "user already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create user")
	}
	return nil
}

func (r *postgresUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.executor.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.executor.QueryRowContext(ctx, query, user.NormalizeEmail(email)))
}

func scanUser(row scanner) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.IsActive, &u.TenantID, &u.CreatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeUserNotFound, "user not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load user")
	}
	return &u, nil
}
