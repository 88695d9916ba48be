package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"journal-backend/internal/domain"
)

// PostgresTradeRepository stores the trade ledger in Postgres.
// Numeric columns travel as text (cast in SQL) so values never pass through float64.
type PostgresTradeRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTradeRepository(pool *pgxpool.Pool) *PostgresTradeRepository {
	return &PostgresTradeRepository{pool: pool}
}

const tradeColumns = `id, user_id, pair, direction,
	entry_price::text, stop_loss::text, take_profit::text, lot_size::text, risk_percent::text,
	rr_planned::text, rr_actual::text, result, pnl::text,
	session, setup_type, grade, emotion_before, emotion_after, mistake_flag, loss_reason,
	created_at`

func (r *PostgresTradeRepository) Create(ctx context.Context, t *domain.Trade) error {
	if t == nil {
		return errors.New("nil trade")
	}

	_, err := r.pool.Exec(ctx, `
		insert into trades(
			id, user_id, pair, direction,
			entry_price, stop_loss, take_profit, lot_size, risk_percent,
			rr_planned, rr_actual, result, pnl,
			session, setup_type, grade, emotion_before, emotion_after, mistake_flag, loss_reason,
			created_at
		) values (
			$1, $2, $3, $4,
			$5::text::numeric, $6::text::numeric, $7::text::numeric, $8::text::numeric, $9::text::numeric,
			$10::text::numeric, $11::text::numeric, $12, $13::text::numeric,
			$14, $15, $16, $17, $18, $19, $20,
			$21
		)
	`,
		t.ID,
		t.UserID,
		t.Pair,
		string(t.Direction),
		t.EntryPrice.String(),
		t.StopLoss.String(),
		t.TakeProfit.String(),
		t.LotSize.String(),
		t.RiskPercent.String(),
		t.RRPlanned.String(),
		nullableDecimal(t.RRActual),
		string(t.Result),
		t.PnL.String(),
		string(t.Session),
		t.SetupType,
		string(t.Grade),
		t.EmotionBefore,
		t.EmotionAfter,
		t.MistakeFlag,
		nullableText(t.LossReason),
		t.CreatedAt,
	)
	return err
}

func (r *PostgresTradeRepository) GetByID(ctx context.Context, userID, id string) (*domain.Trade, error) {
	row := r.pool.QueryRow(ctx, `select `+tradeColumns+` from trades where id = $1 and user_id = $2`, id, userID)

	t, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("trade %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresTradeRepository) List(ctx context.Context, userID string, filter domain.TradeFilter) ([]*domain.Trade, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.Until != nil {
		add("created_at < $%d", *filter.Until)
	}
	if filter.Pair != "" {
		add("lower(pair) = lower($%d)", filter.Pair)
	}
	if filter.Session != "" {
		add("session = $%d", string(filter.Session))
	}
	if filter.Grade != "" {
		add("grade = $%d", string(filter.Grade))
	}
	if filter.Result != "" {
		add("result = $%d", string(filter.Result))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		add(`(pair ilike $%[1]d escape '\' or setup_type ilike $%[1]d escape '\')`, "%"+escapeLike(q)+"%")
	}

	rows, err := r.pool.Query(ctx,
		`select `+tradeColumns+` from trades where `+strings.Join(where, " and ")+` order by `+orderClause(filter.Ordering),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		t, scanErr := scanTrade(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (r *PostgresTradeRepository) UpdateAnnotation(ctx context.Context, t *domain.Trade) error {
	tag, err := r.pool.Exec(ctx, `
		update trades set
			setup_type=$3,
			emotion_before=$4,
			emotion_after=$5,
			mistake_flag=$6,
			loss_reason=$7
		where id=$1 and user_id=$2
	`, t.ID, t.UserID, t.SetupType, t.EmotionBefore, t.EmotionAfter, t.MistakeFlag, nullableText(t.LossReason))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trade %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresTradeRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `delete from trades where id=$1 and user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trade %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func orderClause(ordering string) string {
	switch ordering {
	case domain.OrderCreatedAsc:
		return "created_at asc, seq asc"
	case domain.OrderPnLAsc:
		return "pnl asc, seq asc"
	case domain.OrderPnLDesc:
		return "pnl desc, seq asc"
	default:
		return "created_at desc, seq asc"
	}
}

// Helpers

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (*domain.Trade, error) {
	var t domain.Trade
	var direction, result, session, grade string
	var entry, stop, take, lot, risk, rrPlanned, pnl string
	var rrActual pgtype.Text
	var lossReason pgtype.Text

	if err := s.Scan(
		&t.ID,
		&t.UserID,
		&t.Pair,
		&direction,
		&entry,
		&stop,
		&take,
		&lot,
		&risk,
		&rrPlanned,
		&rrActual,
		&result,
		&pnl,
		&session,
		&t.SetupType,
		&grade,
		&t.EmotionBefore,
		&t.EmotionAfter,
		&t.MistakeFlag,
		&lossReason,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}

	t.Direction = domain.Direction(direction)
	t.Result = domain.Result(result)
	t.Session = domain.Session(session)
	t.Grade = domain.Grade(grade)

	var err error
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&t.EntryPrice, entry},
		{&t.StopLoss, stop},
		{&t.TakeProfit, take},
		{&t.LotSize, lot},
		{&t.RiskPercent, risk},
		{&t.RRPlanned, rrPlanned},
		{&t.PnL, pnl},
	} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("trade %s: bad numeric %q: %w", t.ID, f.src, err)
		}
	}

	if rrActual.Valid {
		v, err := decimal.NewFromString(rrActual.String)
		if err != nil {
			return nil, fmt.Errorf("trade %s: bad rr_actual %q: %w", t.ID, rrActual.String, err)
		}
		t.RRActual = &v
	}
	if lossReason.Valid {
		v := lossReason.String
		t.LossReason = &v
	}

	return &t, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes q match literally inside an ilike pattern.
func escapeLike(q string) string {
	return likeEscaper.Replace(q)
}

func nullableDecimal(v *decimal.Decimal) any {
	if v == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{Valid: true, String: v.String()}
}

func nullableText(v *string) any {
	if v == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{Valid: true, String: *v}
}

// compile-time check
var _ domain.TradeRepository = (*PostgresTradeRepository)(nil)
