package reservation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRefundAmountTiers(t *testing.T) {
	total := decimal.RequireFromString("100.00")

	cases := []struct {
		name  string
		hours float64
		want  string
	}{
		{"well before departure", 100, "90.00"},
		{"exactly 48h", 48, "90.00"},
		{"just under 48h", 47.99, "70.00"},
		{"exactly 24h", 24, "70.00"},
		{"just under 24h", 23.99, "50.00"},
		{"exactly 2h", 2, "50.00"},
		{"just under 2h", 1.99, "0.00"},
		{"departure passed", -1, "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RefundAmount(total, tc.hours)
			assert.Equal(t, tc.want, got.StringFixed(2))
		})
	}
}

func TestRefundAmountRoundsHalfUp(t *testing.T) {
	// 33.35 * 0.5 = 16.675, the half cent rounds up.
	got := RefundAmount(decimal.RequireFromString("33.35"), 10)
	assert.Equal(t, "16.68", got.StringFixed(2))

	// 99.99 * 0.9 = 89.991 rounds down.
	got = RefundAmount(decimal.RequireFromString("99.99"), 72)
	assert.Equal(t, "89.99", got.StringFixed(2))
}

func TestRefundAmountZeroTotal(t *testing.T) {
	got := RefundAmount(decimal.Zero, 72)
	assert.True(t, got.IsZero())
}

func TestCancellationOpen(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	assert.True(t, CancellationOpen(now.Add(2*time.Hour+time.Second), now))
	assert.False(t, CancellationOpen(now.Add(2*time.Hour), now), "exactly at the cutoff is closed")
	assert.False(t, CancellationOpen(now.Add(time.Hour), now))
	assert.False(t, CancellationOpen(now.Add(-time.Hour), now))
}

func TestHoursUntil(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.InDelta(t, 48.0, HoursUntil(now.Add(48*time.Hour), now), 1e-9)
	assert.InDelta(t, -3.0, HoursUntil(now.Add(-3*time.Hour), now), 1e-9)
}
