package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"journal-backend/internal/domain"
)

// CreateTradeInput is what a user submits when journaling a trade. The
// derived fields are never accepted from the caller.
type CreateTradeInput struct {
	Pair          string           `json:"pair"`
	Direction     domain.Direction `json:"direction"`
	EntryPrice    decimal.Decimal  `json:"entry_price"`
	StopLoss      decimal.Decimal  `json:"stop_loss"`
	TakeProfit    decimal.Decimal  `json:"take_profit"`
	LotSize       decimal.Decimal  `json:"lot_size"`
	RiskPercent   decimal.Decimal  `json:"risk_percent"`
	RRActual      *decimal.Decimal `json:"rr_actual"`
	Result        domain.Result    `json:"result"`
	Session       domain.Session   `json:"session"`
	SetupType     string           `json:"setup_type"`
	Grade         domain.Grade     `json:"grade"`
	EmotionBefore string           `json:"emotion_before"`
	EmotionAfter  string           `json:"emotion_after"`
	MistakeFlag   bool             `json:"mistake_flag"`
	LossReason    *string          `json:"loss_reason"`
}

// ListTradesQuery carries raw listing parameters. Month uses "YYYY-MM" and is
// ignored when malformed; an unknown ordering falls back to newest first.
type ListTradesQuery struct {
	Month    string
	Pair     string
	Session  string
	Grade    string
	Result   string
	Search   string
	Ordering string
}

// TradeService owns the write path of the ledger.
type TradeService struct {
	trades    domain.TradeRepository
	users     domain.UserRepository
	listeners []domain.TradeListener
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

func NewTradeService(trades domain.TradeRepository, users domain.UserRepository, loc *time.Location, logger *zap.Logger, listeners ...domain.TradeListener) *TradeService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TradeService{
		trades:    trades,
		users:     users,
		listeners: listeners,
		loc:       loc,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the input, derives rr_planned and pnl from the user's
// current account size and appends the trade to the ledger.
func (s *TradeService) Create(ctx context.Context, userID string, in CreateTradeInput) (*domain.Trade, error) {
	in.Pair = strings.ToUpper(strings.TrimSpace(in.Pair))
	in.SetupType = strings.TrimSpace(in.SetupType)
	if err := validateTradeInput(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	trade := &domain.Trade{
		ID:            uuid.NewString(),
		UserID:        userID,
		Pair:          in.Pair,
		Direction:     in.Direction,
		EntryPrice:    in.EntryPrice,
		StopLoss:      in.StopLoss,
		TakeProfit:    in.TakeProfit,
		LotSize:       in.LotSize,
		RiskPercent:   in.RiskPercent,
		RRActual:      in.RRActual,
		Result:        in.Result,
		Session:       in.Session,
		SetupType:     in.SetupType,
		Grade:         in.Grade,
		EmotionBefore: in.EmotionBefore,
		EmotionAfter:  in.EmotionAfter,
		MistakeFlag:   in.MistakeFlag,
		LossReason:    emptyToNil(in.LossReason),
		CreatedAt:     s.now(),
	}
	domain.DeriveMetrics(trade, user.AccountSize)

	if !fits(trade.RRPlanned, 3) {
		return nil, fmt.Errorf("planned risk:reward %s out of range: %w", trade.RRPlanned, domain.ErrInvalidInput)
	}
	if !fits(trade.PnL, 13) {
		return nil, fmt.Errorf("pnl %s out of range: %w", trade.PnL, domain.ErrInvalidInput)
	}

	if err := s.trades.Create(ctx, trade); err != nil {
		return nil, fmt.Errorf("store trade: %w", err)
	}

	s.logger.Info("trade recorded",
		zap.String("user_id", userID),
		zap.String("trade_id", trade.ID),
		zap.String("pair", trade.Pair),
		zap.String("result", string(trade.Result)),
		zap.String("pnl", trade.PnL.StringFixed(2)))

	s.publish(ctx, domain.TradeEvent{Type: domain.EventTradeCreated, UserID: userID, Trade: trade})
	return trade, nil
}

func (s *TradeService) Get(ctx context.Context, userID, id string) (*domain.Trade, error) {
	return s.trades.GetByID(ctx, userID, id)
}

func (s *TradeService) List(ctx context.Context, userID string, q ListTradesQuery) ([]*domain.Trade, error) {
	filter := domain.TradeFilter{
		Pair:     strings.TrimSpace(q.Pair),
		Session:  domain.Session(strings.ToUpper(strings.TrimSpace(q.Session))),
		Grade:    domain.Grade(strings.ToUpper(strings.TrimSpace(q.Grade))),
		Result:   domain.Result(strings.ToUpper(strings.TrimSpace(q.Result))),
		Search:   q.Search,
		Ordering: strings.TrimSpace(q.Ordering),
	}

	if filter.Session != "" && !filter.Session.Valid() {
		return nil, fmt.Errorf("session %q: %w", q.Session, domain.ErrInvalidInput)
	}
	if filter.Grade != "" && !filter.Grade.Valid() {
		return nil, fmt.Errorf("grade %q: %w", q.Grade, domain.ErrInvalidInput)
	}
	if filter.Result != "" && !filter.Result.Valid() {
		return nil, fmt.Errorf("result %q: %w", q.Result, domain.ErrInvalidInput)
	}
	if !domain.ValidOrdering(filter.Ordering) {
		filter.Ordering = ""
	}
	if ym, ok := domain.ParseMonth(q.Month); ok {
		from, until := ym.Bounds(s.loc)
		filter.From = &from
		filter.Until = &until
	}

	return s.trades.List(ctx, userID, filter)
}

// Annotate edits the journal fields of a recorded trade. Prices, sizing,
// outcome and the derived metrics stay as they were.
func (s *TradeService) Annotate(ctx context.Context, userID, id string, a domain.TradeAnnotation) (*domain.Trade, error) {
	trade, err := s.trades.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if a.SetupType != nil {
		v := strings.TrimSpace(*a.SetupType)
		a.SetupType = &v
		if v == "" || len(v) > 50 {
			return nil, fmt.Errorf("setup_type must be 1..50 characters: %w", domain.ErrInvalidInput)
		}
	}
	if (a.EmotionBefore != nil && len(*a.EmotionBefore) > 50) || (a.EmotionAfter != nil && len(*a.EmotionAfter) > 50) {
		return nil, fmt.Errorf("emotions must be at most 50 characters: %w", domain.ErrInvalidInput)
	}

	a.Apply(trade)
	if err := s.trades.UpdateAnnotation(ctx, trade); err != nil {
		return nil, fmt.Errorf("update trade: %w", err)
	}
	return trade, nil
}

func (s *TradeService) Delete(ctx context.Context, userID, id string) error {
	trade, err := s.trades.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.trades.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("trade deleted", zap.String("user_id", userID), zap.String("trade_id", id))
	s.publish(ctx, domain.TradeEvent{Type: domain.EventTradeDeleted, UserID: userID, Trade: trade})
	return nil
}

func (s *TradeService) publish(ctx context.Context, ev domain.TradeEvent) {
	for _, l := range s.listeners {
		l.OnTradeEvent(ctx, ev)
	}
}

func validateTradeInput(in CreateTradeInput) error {
	var problems []string

	if in.Pair == "" || len(in.Pair) > 20 {
		problems = append(problems, "pair must be 1..20 characters")
	}
	if !in.Direction.Valid() {
		problems = append(problems, "direction must be BUY or SELL")
	}
	if !in.Result.Valid() {
		problems = append(problems, "result must be WIN, LOSS or BE")
	}
	if !in.Session.Valid() {
		problems = append(problems, "session must be ASIAN, LONDON or NY")
	}
	if !in.Grade.Valid() {
		problems = append(problems, "grade must be A_PLUS or B")
	}
	if in.SetupType == "" || len(in.SetupType) > 50 {
		problems = append(problems, "setup_type must be 1..50 characters")
	}
	if len(in.EmotionBefore) > 50 || len(in.EmotionAfter) > 50 {
		problems = append(problems, "emotions must be at most 50 characters")
	}

	for _, f := range []struct {
		name   string
		v      decimal.Decimal
		digits int32
		places int32
	}{
		{"entry_price", in.EntryPrice, 7, 5},
		{"stop_loss", in.StopLoss, 7, 5},
		{"take_profit", in.TakeProfit, 7, 5},
		{"lot_size", in.LotSize, 8, 2},
		{"risk_percent", in.RiskPercent, 3, 2},
	} {
		if f.v.IsNegative() || !fits(f.v, f.digits) || !f.v.Equal(f.v.Round(f.places)) {
			problems = append(problems, fmt.Sprintf("%s must be non-negative with at most %d integer digits and %d decimals", f.name, f.digits, f.places))
		}
	}
	if in.RRActual != nil {
		if in.RRActual.IsNegative() || !fits(*in.RRActual, 3) || !in.RRActual.Equal(in.RRActual.Round(2)) {
			problems = append(problems, "rr_actual must be non-negative with at most 3 integer digits and 2 decimals")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), domain.ErrInvalidInput)
	}
	return nil
}

// fits reports whether |v| has at most intDigits digits before the point.
func fits(v decimal.Decimal, intDigits int32) bool {
	return v.Abs().LessThan(decimal.New(1, intDigits))
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
