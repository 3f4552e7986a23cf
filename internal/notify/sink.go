// Package notify delivers purchase/sale/error events to external channels.
// Delivery is fire-and-forget from the sniper's point of view.
package notify

import (
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

// Sink receives trading events. Implementations must not assume they are
// called from a single goroutine.
type Sink interface {
	OnPurchase(listing domain.Listing, price int64)
	OnSale(proceeds, runningProfit int64)
	OnFatalError(err error)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) OnPurchase(domain.Listing, int64) {}
func (NopSink) OnSale(int64, int64)              {}
func (NopSink) OnFatalError(error)               {}

// LogSink writes events to the structured log.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) OnPurchase(listing domain.Listing, price int64) {
	s.Logger.Info("purchase",
		zap.String("name", listing.Name),
		zap.Int("rating", listing.Rating),
		zap.Int64("price", price))
}

func (s LogSink) OnSale(proceeds, runningProfit int64) {
	s.Logger.Info("sale",
		zap.Int64("proceeds", proceeds),
		zap.Int64("profit", runningProfit))
}

func (s LogSink) OnFatalError(err error) {
	s.Logger.Error("fatal market error", zap.Error(err))
}
