package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"journal-backend/internal/domain"
)

// PostgresUserRepository stores users and their account state in Postgres.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, email, full_name, password_hash, subscription_plan,
	account_size::text, risk_per_trade_percent::text, is_active, created_at`

func (r *PostgresUserRepository) Create(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}

	_, err := r.pool.Exec(ctx, `
		insert into users(
			id, email, full_name, password_hash, subscription_plan,
			account_size, risk_per_trade_percent, is_active, created_at
		) values ($1,$2,$3,$4,$5,$6::text::numeric,$7::text::numeric,$8,$9)
	`,
		u.ID,
		u.Email,
		u.FullName,
		u.PasswordHash,
		string(u.SubscriptionPlan),
		u.AccountSize.String(),
		u.RiskPerTradePercent.String(),
		u.IsActive,
		u.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	}
	return err
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `select `+userColumns+` from users where id = $1`, id)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `select `+userColumns+` from users where lower(email) = lower($1)`, email)
}

func (r *PostgresUserRepository) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.pool.Exec(ctx, `
		update users set
			full_name=$2,
			subscription_plan=$3,
			account_size=$4::text::numeric,
			risk_per_trade_percent=$5::text::numeric,
			is_active=$6
		where id=$1
	`, u.ID, u.FullName, string(u.SubscriptionPlan), u.AccountSize.String(), u.RiskPerTradePercent.String(), u.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrNotFound)
	}
	return nil
}

// Ping checks the pool for readiness probes.
func (r *PostgresUserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var u domain.User
	var plan, accountSize, risk string

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&plan,
		&accountSize,
		&risk,
		&u.IsActive,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	u.SubscriptionPlan = domain.Plan(plan)
	if u.AccountSize, err = decimal.NewFromString(accountSize); err != nil {
		return nil, fmt.Errorf("user %s: bad account_size %q: %w", u.ID, accountSize, err)
	}
	if u.RiskPerTradePercent, err = decimal.NewFromString(risk); err != nil {
		return nil, fmt.Errorf("user %s: bad risk_per_trade_percent %q: %w", u.ID, risk, err)
	}
	return &u, nil
}

var _ domain.UserRepository = (*PostgresUserRepository)(nil)
