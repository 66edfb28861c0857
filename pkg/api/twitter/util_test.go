package twitter

import (
	"testing"

	"github.com/VAIOT/lottery-backend/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestParsePostID(t *testing.T) {
	id, err := ParsePostID("https://twitter.com/someone/status/1234567890")
	require.NoError(t, err)
	require.Equal(t, "1234567890", id)

	id, err = ParsePostID("https://twitter.com/someone/statuses/42?s=20&t=abc")
	require.NoError(t, err)
	require.Equal(t, "42", id)

	_, err = ParsePostID("https://twitter.com/someone")
	require.Error(t, err)
}

func TestIsRateLimit(t *testing.T) {
	require.True(t, IsRateLimit(&api.Response{Code: 429}))
	require.False(t, IsRateLimit(&api.Response{Code: 200}))

	require.True(t, IsRateLimit(&api.Response{
		Code: 200,
		Body: api.JSON{
			"errors": []any{map[string]any{"code": float64(88), "message": "Rate limit exceeded"}},
		},
	}))

	require.False(t, IsRateLimit(&api.Response{
		Code: 200,
		Body: api.JSON{
			"errors": []any{map[string]any{"code": float64(34), "message": "Not found"}},
		},
	}))
}
