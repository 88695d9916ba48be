package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// User owns the account state. AccountSize seeds the equity curve and sizes
// new trades; it is never stored per trade.
type User struct {
	ID                  string          `json:"id"`
	Email               string          `json:"email"`
	FullName            string          `json:"full_name"`
	PasswordHash        string          `json:"-"`
	SubscriptionPlan    Plan            `json:"subscription_plan"`
	AccountSize         decimal.Decimal `json:"account_size"`
	RiskPerTradePercent decimal.Decimal `json:"risk_per_trade_percent"`
	IsActive            bool            `json:"-"`
	CreatedAt           time.Time       `json:"-"`
}

// UserRepository stores users. GetByEmail matches case-insensitively.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}
