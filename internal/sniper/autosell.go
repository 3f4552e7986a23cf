package sniper

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/config"
	"github.com/Growfam/fc26-sniping/internal/domain"
	"github.com/Growfam/fc26-sniping/internal/journal"
	"github.com/Growfam/fc26-sniping/internal/market"
)

// pileSettleDelay gives the remote system time to register a pile move
// before the listing call. Sequencing requirement of the provider, not a
// synchronization primitive.
const pileSettleDelay = 500 * time.Millisecond

// AutoSellPlanner lists a freshly bought item: finds it among unassigned
// inventory, moves it to the trade pile and posts it at a marked-up price.
type AutoSellPlanner struct {
	client  market.Client
	cfg     config.Config
	journal *journal.Journal
	logger  *zap.Logger
}

func NewAutoSellPlanner(client market.Client, cfg config.Config, jrnl *journal.Journal, logger *zap.Logger) *AutoSellPlanner {
	return &AutoSellPlanner{client: client, cfg: cfg, journal: jrnl, logger: logger}
}

// PlaceForSale lists the bought item. When no matching unassigned item is
// found (inventory sync lag) it is a no-op. Listing failure is returned but
// not retried here.
func (p *AutoSellPlanner) PlaceForSale(ctx context.Context, bought domain.Listing, target *domain.Target) error {
	items, err := p.client.UnassignedItems(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch unassigned inventory")
	}

	// Definition id is the strongest identifier the feed offers here;
	// duplicates resolve to the first match.
	var item *domain.InventoryItem
	for i := range items {
		if items[i].DefinitionID == bought.DefinitionID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		p.logger.Info("bought item not in unassigned pile yet, skipping auto-sell",
			zap.Int64("definition_id", bought.DefinitionID))
		return nil
	}

	if _, err := p.client.MoveItem(ctx, item.ID, market.PileTrade); err != nil {
		return errors.Wrapf(err, "move item %d to trade pile", item.ID)
	}
	if !sleepCtx(ctx, pileSettleDelay) {
		return ctx.Err()
	}

	ask := p.askPrice(bought, target)
	start := domain.StartingBid(ask)

	tradeID, err := p.client.ListItem(ctx, item.ID, start, ask, int(p.cfg.SellDuration.Seconds()))
	if err != nil {
		return errors.Wrapf(err, "list item %d", item.ID)
	}

	p.logger.Info("listed for sale",
		zap.String("name", bought.Name),
		zap.Int64("ask", ask),
		zap.Int64("start", start),
		zap.Int64("trade_id", tradeID),
		zap.Int64("expected_profit", ask-bought.BuyNowPrice))

	if p.journal != nil {
		if err := p.journal.Listing(item.ID, start, ask); err != nil {
			p.logger.Warn("failed to journal listing", zap.Error(err))
		}
	}
	return nil
}

// askPrice picks the explicit target price when set, otherwise applies the
// configured markup, always rounded to the market's price steps.
func (p *AutoSellPlanner) askPrice(bought domain.Listing, target *domain.Target) int64 {
	if target.SellPrice > 0 {
		return domain.RoundPrice(target.SellPrice)
	}
	marked := decimal.NewFromInt(bought.BuyNowPrice).Mul(p.cfg.SellMarkup).IntPart()
	return domain.RoundPrice(marked)
}
