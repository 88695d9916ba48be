package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"journal-backend/internal/domain"
)

// InMemoryTradeRepository stores trades in memory
type InMemoryTradeRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Trade
	order   []string // insertion order, breaks CreatedAt ties
}

// NewInMemoryTradeRepository creates a new in-memory trade repository
func NewInMemoryTradeRepository() *InMemoryTradeRepository {
	return &InMemoryTradeRepository{
		entries: make(map[string]*domain.Trade),
		order:   make([]string, 0),
	}
}

// Create stores a new trade
func (r *InMemoryTradeRepository) Create(_ context.Context, trade *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[trade.ID]; exists {
		return fmt.Errorf("trade %s: %w", trade.ID, domain.ErrConflict)
	}

	cp := *trade
	r.entries[trade.ID] = &cp
	r.order = append(r.order, trade.ID)
	return nil
}

// GetByID retrieves one of the user's trades
func (r *InMemoryTradeRepository) GetByID(_ context.Context, userID, id string) (*domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists || entry.UserID != userID {
		return nil, fmt.Errorf("trade %s: %w", id, domain.ErrNotFound)
	}
	cp := *entry
	return &cp, nil
}

// List returns copies of the user's trades matching filter
func (r *InMemoryTradeRepository) List(_ context.Context, userID string, filter domain.TradeFilter) ([]*domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Trade, 0)
	for _, id := range r.order {
		entry := r.entries[id]
		if entry.UserID != userID || !matches(entry, filter) {
			continue
		}
		cp := *entry
		result = append(result, &cp)
	}

	SortTrades(result, filter.Ordering)
	return result, nil
}

// UpdateAnnotation persists the editable journal fields of an existing trade
func (r *InMemoryTradeRepository) UpdateAnnotation(_ context.Context, trade *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.entries[trade.ID]
	if !exists || existing.UserID != trade.UserID {
		return fmt.Errorf("trade %s: %w", trade.ID, domain.ErrNotFound)
	}

	existing.SetupType = trade.SetupType
	existing.EmotionBefore = trade.EmotionBefore
	existing.EmotionAfter = trade.EmotionAfter
	existing.MistakeFlag = trade.MistakeFlag
	existing.LossReason = trade.LossReason
	return nil
}

// Delete removes one of the user's trades
func (r *InMemoryTradeRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists || entry.UserID != userID {
		return fmt.Errorf("trade %s: %w", id, domain.ErrNotFound)
	}

	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func matches(t *domain.Trade, f domain.TradeFilter) bool {
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.Until != nil && !t.CreatedAt.Before(*f.Until) {
		return false
	}
	if f.Pair != "" && !strings.EqualFold(t.Pair, f.Pair) {
		return false
	}
	if f.Session != "" && t.Session != f.Session {
		return false
	}
	if f.Grade != "" && t.Grade != f.Grade {
		return false
	}
	if f.Result != "" && t.Result != f.Result {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Pair), q) && !strings.Contains(strings.ToLower(t.SetupType), q) {
			return false
		}
	}
	return true
}

// SortTrades orders trades in place. The sort is stable so equal keys keep
// their storage order. An empty ordering means newest first.
func SortTrades(trades []*domain.Trade, ordering string) {
	var less func(a, b *domain.Trade) bool
	switch ordering {
	case domain.OrderCreatedAsc:
		less = func(a, b *domain.Trade) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case domain.OrderPnLAsc:
		less = func(a, b *domain.Trade) bool { return a.PnL.LessThan(b.PnL) }
	case domain.OrderPnLDesc:
		less = func(a, b *domain.Trade) bool { return a.PnL.GreaterThan(b.PnL) }
	default:
		less = func(a, b *domain.Trade) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(trades, func(i, j int) bool { return less(trades[i], trades[j]) })
}

// compile-time check
var _ domain.TradeRepository = (*InMemoryTradeRepository)(nil)
