package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT() JWT {
	return JWT{Secret: []byte("secret"), Issuer: "journal", AccessTTL: time.Minute, RefreshTTL: time.Hour}
}

func TestIssuePairAndVerify(t *testing.T) {
	j := testJWT()
	pair, err := j.IssuePair("u1", "u1@example.com")
	require.NoError(t, err)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	c, err := j.Verify(pair.Access, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "u1@example.com", c.Email)
	assert.Equal(t, "journal", c.Issuer)
	assert.Equal(t, "u1", c.Subject)

	_, err = j.Verify(pair.Access, TokenRefresh)
	assert.Error(t, err)

	_, err = j.Verify(pair.Refresh, TokenRefresh)
	assert.NoError(t, err)
}

func TestVerifyRejects(t *testing.T) {
	j := testJWT()

	other := JWT{Secret: []byte("other"), AccessTTL: time.Minute}
	tok, _, err := other.Sign(Claims{UserID: "u1", TokenType: TokenAccess})
	require.NoError(t, err)
	_, err = j.Verify(tok, TokenAccess)
	assert.Error(t, err, "wrong secret")

	expired, _, err := j.Sign(Claims{
		UserID:    "u1",
		TokenType: TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	require.NoError(t, err)
	_, err = j.Verify(expired, TokenAccess)
	assert.Error(t, err, "expired")

	_, err = j.Verify("not-a-token", TokenAccess)
	assert.Error(t, err)
}

func TestBearerTokenAndContext(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("  bearer   abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("abc"))

	ctx := WithClaims(context.Background(), Claims{UserID: "u1"})
	c, ok := ClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", c.UserID)

	_, ok = ClaimsFromContext(context.Background())
	assert.False(t, ok)
}
