package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"journal-backend/internal/auth"
	"journal-backend/internal/domain"
)

type RegisterInput struct {
	Email               string           `json:"email"`
	FullName            string           `json:"full_name"`
	Password            string           `json:"password"`
	AccountSize         *decimal.Decimal `json:"account_size"`
	RiskPerTradePercent *decimal.Decimal `json:"risk_per_trade_percent"`
}

// ProfilePatch changes account state. The subscription plan is not editable.
type ProfilePatch struct {
	FullName            *string          `json:"full_name"`
	AccountSize         *decimal.Decimal `json:"account_size"`
	RiskPerTradePercent *decimal.Decimal `json:"risk_per_trade_percent"`
}

type AccountService struct {
	users  domain.UserRepository
	tokens auth.JWT
	logger *zap.Logger
}

func NewAccountService(users domain.UserRepository, tokens auth.JWT, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{users: users, tokens: tokens, logger: logger}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" || len(fullName) > 255 {
		return nil, fmt.Errorf("full_name must be 1..255 characters: %w", domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 || len(in.Password) > 72 {
		return nil, fmt.Errorf("password length must be 8..72: %w", domain.ErrInvalidInput)
	}

	accountSize := decimal.Zero
	if in.AccountSize != nil {
		accountSize = *in.AccountSize
	}
	risk := decimal.NewFromInt(1)
	if in.RiskPerTradePercent != nil {
		risk = *in.RiskPerTradePercent
	}
	if err := validateAccountState(accountSize, risk); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:                  uuid.NewString(),
		Email:               email,
		FullName:            fullName,
		PasswordHash:        string(hash),
		SubscriptionPlan:    domain.PlanFree,
		AccountSize:         accountSize,
		RiskPerTradePercent: risk,
		IsActive:            true,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return auth.TokenPair{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return auth.TokenPair{}, err
	}
	if !user.IsActive {
		return auth.TokenPair{}, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return auth.TokenPair{}, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("sign tokens: %w", err)
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenRefresh)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("unknown user: %w", domain.ErrUnauthorized)
	}
	if !user.IsActive {
		return auth.TokenPair{}, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}

	access, exp, err := s.tokens.Sign(auth.Claims{UserID: user.ID, Email: user.Email, TokenType: auth.TokenAccess})
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("sign token: %w", err)
	}
	return auth.TokenPair{Access: access, AccessExpiresAt: exp}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes the account state. Trades already recorded keep the
// pnl they were sized with.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, p ProfilePatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if p.FullName != nil {
		v := strings.TrimSpace(*p.FullName)
		if v == "" || len(v) > 255 {
			return nil, fmt.Errorf("full_name must be 1..255 characters: %w", domain.ErrInvalidInput)
		}
		user.FullName = v
	}
	if p.AccountSize != nil {
		user.AccountSize = *p.AccountSize
	}
	if p.RiskPerTradePercent != nil {
		user.RiskPerTradePercent = *p.RiskPerTradePercent
	}
	if err := validateAccountState(user.AccountSize, user.RiskPerTradePercent); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validateAccountState(accountSize, risk decimal.Decimal) error {
	if accountSize.IsNegative() || !fits(accountSize, 13) || !accountSize.Equal(accountSize.Round(2)) {
		return fmt.Errorf("account_size must be non-negative with at most 2 decimals: %w", domain.ErrInvalidInput)
	}
	if risk.IsNegative() || !fits(risk, 3) || !risk.Equal(risk.Round(2)) {
		return fmt.Errorf("risk_per_trade_percent must be non-negative with at most 2 decimals: %w", domain.ErrInvalidInput)
	}
	return nil
}

// normalizeEmail validates the address and lower-cases its domain part.
func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("email is required: %w", domain.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", fmt.Errorf("email %q is not valid: %w", raw, domain.ErrInvalidInput)
	}
	at := strings.LastIndex(raw, "@")
	return raw[:at] + strings.ToLower(raw[at:]), nil
}
