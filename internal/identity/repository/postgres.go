package repository

import (
	"context"
	"database/sql"
	"errors"

	"membership-backoffice/internal/identity/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an auth-user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const authUserColumns = `id, login_identity, secret_hash, member_id, member_number, email_confirmed, created_at`

// GetByLoginIdentity returns the auth user for the login identity, or nil if
// not found. It returns an error only for database failures, not missing rows.
func (r *PostgresRepository) GetByLoginIdentity(ctx context.Context, loginIdentity string) (*domain.AuthUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+authUserColumns+` FROM auth_users WHERE login_identity = $1`, loginIdentity)
	return scanAuthUser(row)
}

// GetByID returns the auth user for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuthUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+authUserColumns+` FROM auth_users WHERE id = $1`, id)
	return scanAuthUser(row)
}

// Create persists the auth user. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.AuthUser) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_users (id, login_identity, secret_hash, member_id, member_number, email_confirmed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.LoginIdentity, u.SecretHash, u.MemberID, u.MemberNumber, u.EmailConfirmed, u.CreatedAt)
	return err
}

func scanAuthUser(row *sql.Row) (*domain.AuthUser, error) {
	var u domain.AuthUser
	err := row.Scan(&u.ID, &u.LoginIdentity, &u.SecretHash, &u.MemberID, &u.MemberNumber, &u.EmailConfirmed, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
