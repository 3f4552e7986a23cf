package sniper

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/config"
	"github.com/Growfam/fc26-sniping/internal/domain"
	"github.com/Growfam/fc26-sniping/internal/journal"
	"github.com/Growfam/fc26-sniping/internal/market"
	"github.com/Growfam/fc26-sniping/internal/notify"
)

// Engine runs one search-and-buy cycle per target: query the market, filter
// by price ceiling, verify funds and attempt at most one purchase.
type Engine struct {
	client   market.Client
	cfg      config.Config
	stats    *domain.RunStats
	notifier notify.Sink
	planner  *AutoSellPlanner
	journal  *journal.Journal
	logger   *zap.Logger
}

func NewEngine(client market.Client, cfg config.Config, stats *domain.RunStats,
	notifier notify.Sink, planner *AutoSellPlanner, jrnl *journal.Journal, logger *zap.Logger) *Engine {
	return &Engine{
		client:   client,
		cfg:      cfg,
		stats:    stats,
		notifier: notifier,
		planner:  planner,
		journal:  jrnl,
		logger:   logger,
	}
}

// RunCycle searches for the target and buys at most one qualifying listing.
// Returns true when a purchase happened. Errors are returned for the
// orchestrator to classify; ordinary buy failures (listing vanished, price
// changed) stay inside as failed-purchase counts.
func (e *Engine) RunCycle(ctx context.Context, target *domain.Target) (bool, error) {
	target.Searches.Add(1)
	e.stats.Searches.Add(1)

	listings, err := e.client.Search(ctx, target.Filter, 0)
	if err != nil {
		return false, errors.Wrapf(err, "search for target %s", target.Name)
	}

	// Auction-only listings (no fixed price) are never auto-bought.
	candidates := listings[:0:0]
	for _, l := range listings {
		if l.BuyNowPrice > 0 && l.BuyNowPrice <= target.MaxBuyPrice {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}

	target.Found.Add(int64(len(candidates)))
	e.logger.Info("qualifying listings found",
		zap.String("target", target.Name),
		zap.Int("count", len(candidates)))

	for _, listing := range candidates {
		balance, err := e.client.Balance(ctx)
		if err != nil {
			return false, errors.Wrap(err, "check balance")
		}
		if balance < listing.BuyNowPrice+e.cfg.MinCoinsReserve {
			// Reserve protection is a hard stop for the whole cycle, not a
			// per-candidate skip.
			e.logger.Warn("balance below reserve, aborting cycle",
				zap.Int64("balance", balance),
				zap.Int64("price", listing.BuyNowPrice),
				zap.Int64("reserve", e.cfg.MinCoinsReserve))
			return false, nil
		}

		bought, err := e.buyOne(ctx, listing, target)
		if err != nil {
			return false, err
		}
		if bought {
			return true, nil
		}

		if !sleepCtx(ctx, e.cfg.BuyDelay) {
			return false, ctx.Err()
		}
	}

	return false, nil
}

// buyOne attempts a single purchase. A listing that vanished or changed
// price between search and buy fails here and is counted, never escalated.
func (e *Engine) buyOne(ctx context.Context, listing domain.Listing, target *domain.Target) (bool, error) {
	ok, err := e.client.BuyNow(ctx, listing.TradeID, listing.BuyNowPrice)
	if err != nil {
		if market.IsFatal(err) || errors.Is(err, market.ErrRateLimited) {
			return false, errors.Wrapf(err, "buy trade %d", listing.TradeID)
		}
		e.stats.FailedPurchases.Add(1)
		e.logger.Warn("buy attempt failed",
			zap.Int64("trade_id", listing.TradeID),
			zap.Error(err))
		return false, nil
	}
	if !ok {
		e.stats.FailedPurchases.Add(1)
		e.logger.Debug("listing already gone", zap.Int64("trade_id", listing.TradeID))
		return false, nil
	}

	target.Bought.Add(1)
	e.stats.Purchases.Add(1)
	e.stats.Spent.Add(listing.BuyNowPrice)

	e.logger.Info("bought",
		zap.String("name", listing.Name),
		zap.Int("rating", listing.Rating),
		zap.Int64("price", listing.BuyNowPrice),
		zap.String("target", target.Name))

	e.notifier.OnPurchase(listing, listing.BuyNowPrice)
	if e.journal != nil {
		if err := e.journal.Purchase(listing.TradeID, listing.DefinitionID, listing.Name, listing.BuyNowPrice); err != nil {
			e.logger.Warn("failed to journal purchase", zap.Error(err))
		}
	}

	if e.cfg.AutoSell && e.planner != nil {
		if err := e.planner.PlaceForSale(ctx, listing, target); err != nil {
			// The item stays unlisted until the next relist pass or manual
			// intervention.
			e.logger.Warn("auto-sell failed",
				zap.String("name", listing.Name),
				zap.Error(err))
		}
	}

	return true, nil
}
