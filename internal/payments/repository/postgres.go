package repository

import (
	"context"
	"database/sql"
	"errors"

	"membership-backoffice/internal/payments/domain"
)

type PostgresCollectorRepository struct {
	db *sql.DB
}

func NewPostgresCollectorRepository(db *sql.DB) *PostgresCollectorRepository {
	return &PostgresCollectorRepository{db: db}
}

const collectorColumns = `id, name, member_number, active, created_at`

// GetActiveByName returns the active collector with the given name, or nil
// when no active record matches. Missing rows are not errors.
func (r *PostgresCollectorRepository) GetActiveByName(ctx context.Context, name string) (*domain.Collector, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+collectorColumns+` FROM members_collectors WHERE name = $1 AND active = true LIMIT 1`,
		name)
	return scanCollector(row)
}

func (r *PostgresCollectorRepository) GetByID(ctx context.Context, id string) (*domain.Collector, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+collectorColumns+` FROM members_collectors WHERE id = $1`, id)
	return scanCollector(row)
}

func (r *PostgresCollectorRepository) Create(ctx context.Context, c *domain.Collector) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members_collectors (id, name, member_number, active, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.MemberNumber, c.Active, c.CreatedAt)
	return err
}

func scanCollector(row *sql.Row) (*domain.Collector, error) {
	var c domain.Collector
	if err := row.Scan(&c.ID, &c.Name, &c.MemberNumber, &c.Active, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

type PostgresPaymentRequestRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRequestRepository(db *sql.DB) *PostgresPaymentRequestRepository {
	return &PostgresPaymentRequestRepository{db: db}
}

const paymentRequestColumns = `id, member_id, member_number, amount, payment_type, payment_method, collector_id, status, created_at`

func (r *PostgresPaymentRequestRepository) Create(ctx context.Context, p *domain.PaymentRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_requests (id, member_id, member_number, amount, payment_type, payment_method, collector_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.MemberID, p.MemberNumber, p.Amount, string(p.PaymentType), string(p.PaymentMethod),
		p.CollectorID, string(p.Status), p.CreatedAt)
	return err
}

func (r *PostgresPaymentRequestRepository) GetByID(ctx context.Context, id string) (*domain.PaymentRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentRequestColumns+` FROM payment_requests WHERE id = $1`, id)
	p, err := scanPaymentRequestRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresPaymentRequestRepository) ListByCollector(ctx context.Context, collectorID string, limit, offset int32) ([]*domain.PaymentRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentRequestColumns+` FROM payment_requests
		 WHERE collector_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		collectorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectPaymentRequests(rows)
}

func (r *PostgresPaymentRequestRepository) ListByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int32) ([]*domain.PaymentRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentRequestColumns+` FROM payment_requests
		 WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	return collectPaymentRequests(rows)
}

func collectPaymentRequests(rows *sql.Rows) ([]*domain.PaymentRequest, error) {
	defer rows.Close()
	var out []*domain.PaymentRequest
	for rows.Next() {
		p, err := scanPaymentRequestRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaymentRequestRow(s rowScanner) (*domain.PaymentRequest, error) {
	var p domain.PaymentRequest
	var ptype, pmethod, status string
	if err := s.Scan(&p.ID, &p.MemberID, &p.MemberNumber, &p.Amount, &ptype, &pmethod,
		&p.CollectorID, &status, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.PaymentType = domain.PaymentType(ptype)
	p.PaymentMethod = domain.PaymentMethod(pmethod)
	p.Status = domain.PaymentStatus(status)
	return &p, nil
}
