package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

type Result string

const (
	ResultWin       Result = "WIN"
	ResultLoss      Result = "LOSS"
	ResultBreakEven Result = "BE"
)

type Session string

const (
	SessionAsian   Session = "ASIAN"
	SessionLondon  Session = "LONDON"
	SessionNewYork Session = "NY"
)

type Grade string

const (
	GradeAPlus Grade = "A_PLUS"
	GradeB     Grade = "B"
)

func (d Direction) Valid() bool { return d == DirectionBuy || d == DirectionSell }

func (r Result) Valid() bool {
	return r == ResultWin || r == ResultLoss || r == ResultBreakEven
}

func (s Session) Valid() bool {
	return s == SessionAsian || s == SessionLondon || s == SessionNewYork
}

func (g Grade) Valid() bool { return g == GradeAPlus || g == GradeB }

// Trade is a journaled trade. RRPlanned and PnL are derived once when the trade
// is recorded and stay frozen afterwards.
type Trade struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user"`
	Pair        string          `json:"pair"`
	Direction   Direction       `json:"direction"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	StopLoss    decimal.Decimal `json:"stop_loss"`
	TakeProfit  decimal.Decimal `json:"take_profit"`
	LotSize     decimal.Decimal `json:"lot_size"`
	RiskPercent decimal.Decimal `json:"risk_percent"`

	RRPlanned decimal.Decimal  `json:"rr_planned"`
	RRActual  *decimal.Decimal `json:"rr_actual"`
	Result    Result           `json:"result"`
	PnL       decimal.Decimal  `json:"pnl"`

	Session       Session `json:"session"`
	SetupType     string  `json:"setup_type"`
	Grade         Grade   `json:"grade"`
	EmotionBefore string  `json:"emotion_before"`
	EmotionAfter  string  `json:"emotion_after"`
	MistakeFlag   bool    `json:"mistake_flag"`
	LossReason    *string `json:"loss_reason"`

	CreatedAt time.Time `json:"created_at"`
}

// TradeAnnotation holds the journal fields that may still change after a
// trade is recorded. Nil fields are left untouched.
type TradeAnnotation struct {
	SetupType     *string `json:"setup_type"`
	EmotionBefore *string `json:"emotion_before"`
	EmotionAfter  *string `json:"emotion_after"`
	MistakeFlag   *bool   `json:"mistake_flag"`
	LossReason    *string `json:"loss_reason"`
}

// Apply merges the annotation into t.
func (a TradeAnnotation) Apply(t *Trade) {
	if a.SetupType != nil {
		t.SetupType = *a.SetupType
	}
	if a.EmotionBefore != nil {
		t.EmotionBefore = *a.EmotionBefore
	}
	if a.EmotionAfter != nil {
		t.EmotionAfter = *a.EmotionAfter
	}
	if a.MistakeFlag != nil {
		t.MistakeFlag = *a.MistakeFlag
	}
	if a.LossReason != nil {
		if *a.LossReason == "" {
			t.LossReason = nil
		} else {
			v := *a.LossReason
			t.LossReason = &v
		}
	}
}

// TradeFilter narrows a ledger listing. Zero values mean "no filter".
type TradeFilter struct {
	From     *time.Time // inclusive
	Until    *time.Time // exclusive
	Pair     string
	Session  Session
	Grade    Grade
	Result   Result
	Search   string
	Ordering string
}

const (
	OrderCreatedAsc  = "created_at"
	OrderCreatedDesc = "-created_at"
	OrderPnLAsc      = "pnl"
	OrderPnLDesc     = "-pnl"
)

// ValidOrdering reports whether o is one of the supported ordering keys.
func ValidOrdering(o string) bool {
	switch o {
	case "", OrderCreatedAsc, OrderCreatedDesc, OrderPnLAsc, OrderPnLDesc:
		return true
	}
	return false
}

// TradeRepository is the trade ledger. All operations are scoped to one user.
type TradeRepository interface {
	Create(ctx context.Context, trade *Trade) error
	GetByID(ctx context.Context, userID, id string) (*Trade, error)
	List(ctx context.Context, userID string, filter TradeFilter) ([]*Trade, error)
	UpdateAnnotation(ctx context.Context, trade *Trade) error
	Delete(ctx context.Context, userID, id string) error
}

// TradeEvent is published after the ledger changes.
type TradeEvent struct {
	Type   string `json:"type"` // "trade.created", "trade.deleted"
	UserID string `json:"-"`
	Trade  *Trade `json:"trade"`
}

const (
	EventTradeCreated = "trade.created"
	EventTradeDeleted = "trade.deleted"
)

// TradeListener receives ledger events. Implementations must not block for long.
type TradeListener interface {
	OnTradeEvent(ctx context.Context, event TradeEvent)
}
