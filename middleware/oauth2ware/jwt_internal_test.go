package oauth2ware

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestKeyfuncOptionsRefreshErrorHandlerIsSafe(t *testing.T) {
	opts := keyfuncOptions(nil, nil)
	require.NotNil(t, opts.RefreshErrorHandler)
	require.NotPanics(t, func() {
		opts.RefreshErrorHandler(errors.New("refresh failed"))
	})

	require.Equal(t, time.Hour, opts.RefreshInterval)
	require.Equal(t, 5*time.Minute, opts.RefreshRateLimit)
	require.Equal(t, 10*time.Second, opts.RefreshTimeout)
	require.True(t, opts.RefreshUnknownKID)
}

func TestClaimString(t *testing.T) {
	claims := jwt.MapClaims{
		"account":   " alice ",
		"tenant_id": float64(42),
		"flag":      true,
	}

	require.Equal(t, "alice", claimString(claims, "account"))
	require.Equal(t, "42", claimString(claims, "tenant_id"))
	require.Equal(t, "true", claimString(claims, "flag"))
	require.Equal(t, "", claimString(claims, "missing"))
}

func TestGetExtractorsSkipsUnknownSources(t *testing.T) {
	extractors := GetExtractors("header:Authorization, query:access_token, param:token, bogus")
	require.Len(t, extractors, 2)
}
