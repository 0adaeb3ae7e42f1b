package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/domain/ports/repository"
)

// Ensure interface compliance at compile time
var _ repository.DonationRepository = (*DonationRepo)(nil)

// DonationRepo implements repository.DonationRepository using Postgres.
type DonationRepo struct {
	pool *pgxpool.Pool
}

func NewDonationRepo(pool *pgxpool.Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

func (r *DonationRepo) Save(ctx context.Context, tx repository.Tx, d *model.Donation) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO donations (id, owner_id, amount, status, gateway, transaction_id, version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);
`
	_, err = ex.Exec(ctx, sql,
		d.ID,
		d.OwnerID,
		d.Amount,
		string(d.Status),
		d.Gateway,
		d.TransactionID,
		d.Version,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: saving donation: %w", err)
	}
	return nil
}

func (r *DonationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Donation, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT id, owner_id, amount, status, gateway, transaction_id, version, created_at, updated_at
  FROM donations
 WHERE id = $1;
`
	d, err := scanDonation(ex.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, fmt.Errorf("postgres: querying donation: %w", err)
	}
	return d, nil
}

func (r *DonationRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Donation, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT id, owner_id, amount, status, gateway, transaction_id, version, created_at, updated_at
  FROM donations
 WHERE owner_id = $1
 ORDER BY created_at DESC;
`
	rows, err := ex.Query(ctx, sql, ownerID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing donations: %w", err)
	}
	defer rows.Close()

	var out []*model.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning donation: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DonationRepo) ListAllWithDonor(ctx context.Context, tx repository.Tx) ([]*model.DonationWithDonor, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT d.id, d.owner_id, d.amount, d.status, d.gateway, d.transaction_id, d.version, d.created_at, d.updated_at,
       u.name, u.email
  FROM donations d
  JOIN users u ON u.id = d.owner_id
 ORDER BY d.created_at DESC;
`
	rows, err := ex.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing donations with donor: %w", err)
	}
	defer rows.Close()

	var out []*model.DonationWithDonor
	for rows.Next() {
		var (
			d      model.Donation
			status string
			name   string
			email  string
		)
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Amount, &status, &d.Gateway, &d.TransactionID,
			&d.Version, &d.CreatedAt, &d.UpdatedAt, &name, &email); err != nil {
			return nil, fmt.Errorf("postgres: scanning donation with donor: %w", err)
		}
		d.Status = model.DonationStatus(status)
		out = append(out, &model.DonationWithDonor{Donation: d, DonorName: name, DonorEmail: email})
	}
	return out, rows.Err()
}

func (r *DonationRepo) UpdateStatusCAS(ctx context.Context, tx repository.Tx, id string, version int64, status model.DonationStatus, transactionID string) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	const sql = `
UPDATE donations
   SET status = $3,
       transaction_id = $4,
       version = version + 1,
       updated_at = NOW()
 WHERE id = $1 AND version = $2;
`
	tag, err := ex.Exec(ctx, sql, id, version, string(status), transactionID)
	if err != nil {
		return false, fmt.Errorf("postgres: updating donation status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *DonationRepo) SumAmountByStatus(ctx context.Context, tx repository.Tx, status model.DonationStatus) (float64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const sql = `SELECT COALESCE(SUM(amount), 0) FROM donations WHERE status = $1;`
	var sum float64
	if err := ex.QueryRow(ctx, sql, string(status)).Scan(&sum); err != nil {
		return 0, fmt.Errorf("postgres: summing donations: %w", err)
	}
	return sum, nil
}

func (r *DonationRepo) CountPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const sql = `SELECT COUNT(*) FROM donations WHERE status = 'PENDING' AND created_at < $1;`
	var n int
	if err := ex.QueryRow(ctx, sql, cutoff).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting stale pending donations: %w", err)
	}
	return n, nil
}

func scanDonation(row pgx.Row) (*model.Donation, error) {
	var (
		d      model.Donation
		status string
	)
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Amount, &status, &d.Gateway, &d.TransactionID,
		&d.Version, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Status = model.DonationStatus(status)
	return &d, nil
}
