package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/domain/ports/repository"
)

// Ensure interface compliance at compile time
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements repository.UserRepository using Postgres.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const uniqueViolation = "23505"

func (r *UserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO users (id, name, email, password_hash, role, phone, address, additional_info, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);
`
	_, err = ex.Exec(ctx, sql,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		u.Phone,
		u.Address,
		u.AdditionalInfo,
		u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("postgres: saving user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, `WHERE id = $1`, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findOne(ctx, tx, `WHERE email = $1`, email)
}

func (r *UserRepo) findOne(ctx context.Context, tx repository.Tx, where string, arg interface{}) (*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql := `
SELECT id, name, email, password_hash, role, phone, address, additional_info, created_at
  FROM users ` + where + `;`
	u, err := scanUser(ex.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres: querying user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) ListByRole(ctx context.Context, tx repository.Tx, role model.Role) ([]*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT id, name, email, password_hash, role, phone, address, additional_info, created_at
  FROM users
 WHERE role = $1
 ORDER BY created_at DESC;
`
	rows, err := ex.Query(ctx, sql, string(role))
	if err != nil {
		return nil, fmt.Errorf("postgres: listing users: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) CountByRole(ctx context.Context, tx repository.Tx, role model.Role) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1;`, string(role)).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: counting users: %w", err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Phone,
		&u.Address, &u.AdditionalInfo, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
