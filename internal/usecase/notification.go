package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"journal-backend/internal/domain"
)

// PushSender delivers a notification to a set of device tokens.
type PushSender interface {
	IsEnabled() bool
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

type DeviceTokens interface {
	GetTokens(userID string) []string
}

// NotificationService pushes a "trade logged" notification to every device
// the user registered. Deletions are not pushed.
type NotificationService struct {
	sender  PushSender
	devices DeviceTokens
	timeout time.Duration
	logger  *zap.Logger

	wg sync.WaitGroup
}

func NewNotificationService(sender PushSender, devices DeviceTokens, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		sender:  sender,
		devices: devices,
		timeout: 10 * time.Second,
		logger:  logger,
	}
}

func (n *NotificationService) OnTradeEvent(ctx context.Context, ev domain.TradeEvent) {
	if ev.Type != domain.EventTradeCreated || ev.Trade == nil {
		return
	}
	if n.sender == nil || !n.sender.IsEnabled() {
		return
	}

	tokens := n.devices.GetTokens(ev.UserID)
	if len(tokens) == 0 {
		return
	}

	title, body, data := tradeNotification(ev.Trade)

	// The request that produced the event may finish before FCM answers.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()

		if err := n.sender.SendMulticast(sendCtx, tokens, title, body, data); err != nil {
			n.logger.Warn("trade notification failed",
				zap.String("user_id", ev.UserID),
				zap.String("trade_id", ev.Trade.ID),
				zap.Error(err))
			return
		}
		n.logger.Debug("trade notification sent",
			zap.String("user_id", ev.UserID),
			zap.Int("devices", len(tokens)))
	}()
}

// Wait blocks until in-flight notifications are done.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func tradeNotification(t *domain.Trade) (title, body string, data map[string]string) {
	title = fmt.Sprintf("%s %s logged: %s", t.Pair, t.Direction, t.Result)

	sign := ""
	if t.PnL.IsPositive() {
		sign = "+"
	}
	body = fmt.Sprintf("PnL %s%s | RR %s | %s session", sign, t.PnL.StringFixed(2), t.RRPlanned.StringFixed(2), t.Session)

	data = map[string]string{
		"type":     domain.EventTradeCreated,
		"trade_id": t.ID,
		"pair":     t.Pair,
		"result":   string(t.Result),
		"pnl":      t.PnL.StringFixed(2),
	}
	return title, body, data
}
