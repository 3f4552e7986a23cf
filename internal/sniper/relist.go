package sniper

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/internal/domain"
	"github.com/Growfam/fc26-sniping/internal/journal"
	"github.com/Growfam/fc26-sniping/internal/market"
	"github.com/Growfam/fc26-sniping/internal/notify"
)

// RelistScheduler reconciles completed sales and re-posts expired auctions.
// One Tick per relist interval; the orchestrator owns the cadence.
type RelistScheduler struct {
	client   market.Client
	stats    *domain.RunStats
	notifier notify.Sink
	journal  *journal.Journal
	logger   *zap.Logger
}

func NewRelistScheduler(client market.Client, stats *domain.RunStats,
	notifier notify.Sink, jrnl *journal.Journal, logger *zap.Logger) *RelistScheduler {
	return &RelistScheduler{
		client:   client,
		stats:    stats,
		notifier: notifier,
		journal:  jrnl,
		logger:   logger,
	}
}

// Tick collects proceeds from sold items and relists expired unsold ones.
// Zero proceeds and zero relists are ordinary outcomes, not errors.
func (s *RelistScheduler) Tick(ctx context.Context) error {
	proceeds, err := s.client.ClearSold(ctx)
	if err != nil {
		return errors.Wrap(err, "clear sold")
	}
	if proceeds > 0 {
		s.stats.Earned.Add(proceeds)
		s.stats.Sales.Add(1)
		profit := s.stats.Profit()

		s.logger.Info("sale proceeds collected",
			zap.Int64("proceeds", proceeds),
			zap.Int64("profit", profit))
		s.notifier.OnSale(proceeds, profit)
		if s.journal != nil {
			if err := s.journal.Sale(proceeds, profit); err != nil {
				s.logger.Warn("failed to journal sale", zap.Error(err))
			}
		}
	}

	relisted, err := s.client.RelistExpired(ctx)
	if err != nil {
		return errors.Wrap(err, "relist expired")
	}
	if relisted > 0 {
		s.logger.Info("relisted expired auctions", zap.Int("count", relisted))
	}
	return nil
}
