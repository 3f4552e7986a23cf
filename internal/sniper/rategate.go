package sniper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/config"
	"github.com/Growfam/fc26-sniping/internal/market"
)

// RateGate decides whether the search loop may run another cycle and when a
// purchase burst must cool down. Two independent concerns: quota/capacity
// ("may we even try") and anti-detection pacing ("throttle after a burst").
// All methods are called from the search loop only.
type RateGate struct {
	cfg    config.Config
	client market.Client
	logger *zap.Logger
	now    func() time.Time

	hourlySearches int
	hourStart      time.Time

	purchaseStreak int
}

func NewRateGate(cfg config.Config, client market.Client, logger *zap.Logger) *RateGate {
	return &RateGate{
		cfg:       cfg,
		client:    client,
		logger:    logger,
		now:       time.Now,
		hourStart: time.Now(),
	}
}

// AllowCycle reports whether a search cycle may run. It checks the global
// purchase cap, the rolling hourly search quota and the live trade-pile
// occupancy. The error, if any, comes from the trade-pile query.
func (g *RateGate) AllowCycle(ctx context.Context, totalPurchases int64) (bool, error) {
	if totalPurchases >= g.cfg.MaxPurchases {
		g.logger.Info("purchase limit reached", zap.Int64("purchases", totalPurchases))
		return false, nil
	}

	now := g.now()
	if now.Sub(g.hourStart) >= time.Hour {
		g.hourStart = now
		g.hourlySearches = 0
	}
	if g.hourlySearches >= g.cfg.MaxSearchesPerHour {
		g.logger.Warn("hourly search quota exhausted", zap.Int("searches", g.hourlySearches))
		return false, nil
	}

	active, err := g.client.ActiveSaleCount(ctx)
	if err != nil {
		return false, err
	}
	if active >= g.cfg.MaxActiveSales {
		g.logger.Warn("trade pile full", zap.Int("active_sales", active))
		return false, nil
	}

	return true, nil
}

// RegisterSearch counts one search against the hourly quota.
func (g *RateGate) RegisterSearch() {
	g.hourlySearches++
}

// RecordPurchase notes one successful buy and reports whether the streak
// reached the cooldown threshold. When it did, the streak resets and the
// caller must sleep CooldownDuration before the next buy attempt.
func (g *RateGate) RecordPurchase() bool {
	g.purchaseStreak++
	if g.purchaseStreak >= g.cfg.PauseAfterPurchases {
		g.purchaseStreak = 0
		return true
	}
	return false
}

// CooldownDuration is the anti-detection pause after a purchase burst.
func (g *RateGate) CooldownDuration() time.Duration {
	return g.cfg.PauseDuration
}
