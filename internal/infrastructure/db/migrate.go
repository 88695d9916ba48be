package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the tables needed by the journal.
// Statements are idempotent so it is safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists users (
			id text primary key,
			email text not null,
			full_name varchar(255) not null,
			password_hash text not null,
			subscription_plan varchar(10) not null default 'FREE',
			account_size numeric(15,2) not null default 0,
			risk_per_trade_percent numeric(5,2) not null default 1,
			is_active boolean not null default true,
			created_at timestamptz not null default now()
		);`,
		`create unique index if not exists users_email_lower_idx on users(lower(email));`,
		`create table if not exists trades (
			seq bigserial,
			id text primary key,
			user_id text not null references users(id) on delete cascade,
			pair varchar(20) not null,
			direction varchar(5) not null,
			entry_price numeric(12,5) not null,
			stop_loss numeric(12,5) not null,
			take_profit numeric(12,5) not null,
			lot_size numeric(10,2) not null,
			risk_percent numeric(5,2) not null,
			rr_planned numeric(5,2) not null,
			rr_actual numeric(5,2) null,
			result varchar(5) not null,
			pnl numeric(15,2) not null,
			session varchar(10) not null,
			setup_type varchar(50) not null,
			grade varchar(10) not null,
			emotion_before varchar(50) not null default '',
			emotion_after varchar(50) not null default '',
			mistake_flag boolean not null default false,
			loss_reason text null,
			created_at timestamptz not null default now()
		);`,
		`create index if not exists trades_user_created_idx on trades(user_id, created_at);`,
		`create index if not exists trades_user_pair_idx on trades(user_id, pair);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
