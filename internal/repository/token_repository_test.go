package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenRepository(t *testing.T) {
	repo := NewTokenRepository()

	repo.RegisterToken("u1", "a", "android", 1)
	repo.RegisterToken("u1", "b", "ios", 2)
	repo.RegisterToken("u1", "a", "android", 3)
	repo.RegisterToken("u2", "c", "android", 1)

	assert.Equal(t, 2, repo.GetTokenCount("u1"))
	assert.ElementsMatch(t, []string{"a", "b"}, repo.GetTokens("u1"))
	assert.Equal(t, []string{"c"}, repo.GetTokens("u2"))

	repo.UnregisterToken("u1", "a")
	repo.UnregisterToken("u1", "missing")
	assert.Equal(t, []string{"b"}, repo.GetTokens("u1"))

	repo.UnregisterToken("u1", "b")
	assert.Equal(t, 0, repo.GetTokenCount("u1"))
	assert.Empty(t, repo.GetTokens("u1"))
}
