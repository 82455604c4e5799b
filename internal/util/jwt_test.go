package util

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "unit-test-secret-key"

func TestTokenPairRoundTrip(t *testing.T) {
	userId := uuid.New()

	pair, err := GenerateTokenPair(userId, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)

	tokenString, parsedId, err := ValidateAccessToken("Bearer "+pair.AccessToken, zap.NewNop(), testSecret)
	require.NoError(t, err)
	require.Equal(t, pair.AccessToken, tokenString)
	require.Equal(t, userId, parsedId)
}

func TestValidateAccessTokenRejectsBadInput(t *testing.T) {
	logger := zap.NewNop()

	_, _, err := ValidateAccessToken("", logger, testSecret)
	require.Error(t, err)

	_, _, err = ValidateAccessToken("Token abc", logger, testSecret)
	require.Error(t, err)

	_, _, err = ValidateAccessToken("Bearer ", logger, testSecret)
	require.Error(t, err)

	_, _, err = ValidateAccessToken("Bearer not-a-jwt", logger, testSecret)
	require.Error(t, err)

	// Token signed with a different secret must not validate
	pair, err := GenerateTokenPair(uuid.New(), "some-other-secret")
	require.NoError(t, err)

	_, _, err = ValidateAccessToken("Bearer "+pair.AccessToken, logger, testSecret)
	require.Error(t, err)
}

func TestGenerateVerificationCode(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 50; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code should be numeric: %s", code)
		}

		seen[code] = true
	}

	// 50 draws from a million values colliding every time would mean a broken generator
	require.Greater(t, len(seen), 1)
}

func TestHashTokenIsStable(t *testing.T) {
	a := HashToken("some-token")
	b := HashToken("some-token")
	c := HashToken("another-token")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 64)
}
