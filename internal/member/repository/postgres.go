package repository

import (
	"context"
	"database/sql"
	"errors"

	"membership-backoffice/internal/member/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a member repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const memberColumns = `id, member_number, full_name, email, status, created_at, updated_at`

// GetByID returns the member for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	return scanMember(row)
}

// GetActiveByNumber returns the active member with the given member number,
// or nil when no active record matches. Missing rows are not errors.
func (r *PostgresRepository) GetActiveByNumber(ctx context.Context, memberNumber string) (*domain.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE member_number = $1 AND status = 'active' LIMIT 1`,
		memberNumber)
	return scanMember(row)
}

// List returns members ordered by member number with limit and offset.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY member_number LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Member
	for rows.Next() {
		m, err := scanMemberRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create persists the member. The member must have ID set; it is not assigned here.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Member) error {
	email := sql.NullString{String: m.Email, Valid: m.Email != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, member_number, full_name, email, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.MemberNumber, m.FullName, email, string(m.Status), m.CreatedAt, m.UpdatedAt)
	return err
}

// Update updates the existing member record. Missing rows are a no-op.
func (r *PostgresRepository) Update(ctx context.Context, m *domain.Member) error {
	email := sql.NullString{String: m.Email, Valid: m.Email != ""}
	_, err := r.db.ExecContext(ctx,
		`UPDATE members SET full_name = $2, email = $3, status = $4, updated_at = $5 WHERE id = $1`,
		m.ID, m.FullName, email, string(m.Status), m.UpdatedAt)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row *sql.Row) (*domain.Member, error) {
	m, err := scanMemberRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func scanMemberRow(s rowScanner) (*domain.Member, error) {
	var m domain.Member
	var email sql.NullString
	var status string
	if err := s.Scan(&m.ID, &m.MemberNumber, &m.FullName, &email, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Email = email.String
	m.Status = domain.MemberStatus(status)
	return &m, nil
}
