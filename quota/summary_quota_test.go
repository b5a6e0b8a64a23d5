package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-summary/config"
)

func TestWaitAndReserveDailyLimit(t *testing.T) {
	l := NewSummaryQuotaLimiter(config.SummaryQuotaConfig{RequestsPerDay: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.WaitAndReserve(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.WaitAndReserve(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWaitAndReserveUnlimited(t *testing.T) {
	l := NewSummaryQuotaLimiter(config.SummaryQuotaConfig{RequestsPerDay: -1, RequestsPerMinute: 0})
	for i := 0; i < 100; i++ {
		ok, err := l.WaitAndReserve(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestWaitAndReserveHonoursContextWhileSpacing(t *testing.T) {
	l := NewSummaryQuotaLimiter(config.SummaryQuotaConfig{RequestsPerMinute: 1})

	ok, err := l.WaitAndReserve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err = l.WaitAndReserve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}
