package repository

import (
	"sync"

	"journal-backend/internal/domain"
)

// TokenRepository manages device tokens for push notifications, per user
type TokenRepository struct {
	tokens map[string]map[string]*domain.DeviceToken // user -> token -> DeviceToken
	mu     sync.RWMutex
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{
		tokens: make(map[string]map[string]*domain.DeviceToken),
	}
}

// RegisterToken adds or updates a device token for the user
func (r *TokenRepository) RegisterToken(userID, token, platform string, timestamp int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byToken, ok := r.tokens[userID]
	if !ok {
		byToken = make(map[string]*domain.DeviceToken)
		r.tokens[userID] = byToken
	}
	byToken[token] = &domain.DeviceToken{
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		CreatedAt: timestamp,
	}
}

// UnregisterToken removes a device token
func (r *TokenRepository) UnregisterToken(userID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byToken := r.tokens[userID]
	delete(byToken, token)
	if len(byToken) == 0 {
		delete(r.tokens, userID)
	}
}

// GetTokens returns all tokens registered by the user
func (r *TokenRepository) GetTokens(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byToken := r.tokens[userID]
	tokens := make([]string, 0, len(byToken))
	for token := range byToken {
		tokens = append(tokens, token)
	}
	return tokens
}

// GetTokenCount returns the number of tokens registered by the user
func (r *TokenRepository) GetTokenCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tokens[userID])
}
