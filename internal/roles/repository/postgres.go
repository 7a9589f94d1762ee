package repository

import (
	"context"
	"database/sql"

	"membership-backoffice/internal/roles/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a role repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListRolesForSubject returns the subject's roles ordered by assignment time.
func (r *PostgresRepository) ListRolesForSubject(ctx context.Context, subjectID string) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role FROM user_roles WHERE subject_id = $1 ORDER BY created_at`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, domain.Role(role))
	}
	return out, rows.Err()
}

// Assign adds a role for the subject. Duplicate assignments are ignored.
func (r *PostgresRepository) Assign(ctx context.Context, subjectID string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (subject_id, role) VALUES ($1, $2)
		 ON CONFLICT (subject_id, role) DO NOTHING`,
		subjectID, string(role))
	return err
}

// RemoveAllForSubject deletes every role assignment for the subject.
func (r *PostgresRepository) RemoveAllForSubject(ctx context.Context, subjectID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE subject_id = $1`, subjectID)
	return err
}
