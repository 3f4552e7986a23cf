package sniper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/config"
)

func newGate(t *testing.T, fake *fakeMarket, mutate func(*config.Config)) *RateGate {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRateGate(cfg, fake, zap.NewNop())
}

func TestAllowCyclePurchaseCap(t *testing.T) {
	gate := newGate(t, newFakeMarket(), func(c *config.Config) { c.MaxPurchases = 10 })

	ok, err := gate.AllowCycle(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.AllowCycle(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllowCycleHourlyQuotaResets(t *testing.T) {
	gate := newGate(t, newFakeMarket(), func(c *config.Config) { c.MaxSearchesPerHour = 2 })

	now := time.Now()
	gate.now = func() time.Time { return now }

	gate.RegisterSearch()
	gate.RegisterSearch()

	ok, err := gate.AllowCycle(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, ok, "quota exhausted")

	// the window rolls over after an hour of wall time
	gate.now = func() time.Time { return now.Add(time.Hour) }
	ok, err = gate.AllowCycle(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllowCycleTradePileFull(t *testing.T) {
	fake := newFakeMarket()
	fake.activeSales = 50
	gate := newGate(t, fake, func(c *config.Config) { c.MaxActiveSales = 50 })

	ok, err := gate.AllowCycle(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllowCyclePropagatesClientError(t *testing.T) {
	fake := newFakeMarket()
	fake.saleCntErr = assert.AnError
	gate := newGate(t, fake, nil)

	_, err := gate.AllowCycle(context.Background(), 0)
	assert.Error(t, err)
}

func TestRecordPurchaseCooldownStreak(t *testing.T) {
	gate := newGate(t, newFakeMarket(), func(c *config.Config) {
		c.PauseAfterPurchases = 3
		c.PauseDuration = 42 * time.Second
	})

	assert.False(t, gate.RecordPurchase())
	assert.False(t, gate.RecordPurchase())
	assert.True(t, gate.RecordPurchase(), "third purchase triggers exactly one cooldown")

	// streak reset after the cooldown fired
	assert.False(t, gate.RecordPurchase())
	assert.Equal(t, 42*time.Second, gate.CooldownDuration())
}
