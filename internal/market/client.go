// Package market defines the transfer-market client contract the sniper core
// depends on, together with the error taxonomy the core classifies against.
package market

import (
	"context"
	"errors"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

// Pile destinations for MoveItem.
const (
	PileTrade = "trade"
	PileClub  = "club"
)

// Error taxonomy. The core only ever checks these with errors.Is; everything
// else is a generic retryable provider error.
var (
	// ErrAuthExpired means the session is gone and a re-login is required.
	ErrAuthExpired = errors.New("market: session expired")
	// ErrChallengeRequired means the provider demands a captcha. Fatal.
	ErrChallengeRequired = errors.New("market: challenge required")
	// ErrRateLimited means too many requests. Retryable after a long pause.
	ErrRateLimited = errors.New("market: rate limited")
	// ErrMarketBanned means the account lost transfer-market access. Fatal.
	ErrMarketBanned = errors.New("market: transfer market banned")
	// ErrNetwork wraps transport-level failures. Retryable.
	ErrNetwork = errors.New("market: network error")
)

// IsFatal reports whether err requires halting the search loop for manual
// intervention.
func IsFatal(err error) bool {
	return errors.Is(err, ErrChallengeRequired) || errors.Is(err, ErrMarketBanned)
}

// Client is the authenticated marketplace gateway. Implementations own
// request construction, header emulation and response decoding; the core
// only sees domain operations and the taxonomy above.
type Client interface {
	Balance(ctx context.Context) (int64, error)
	// CachedBalance returns the last balance observed by Balance without a
	// network call. Zero until the first successful Balance.
	CachedBalance() int64
	Search(ctx context.Context, filter domain.SearchFilter, page int) ([]domain.Listing, error)
	BuyNow(ctx context.Context, tradeID, price int64) (bool, error)
	Bid(ctx context.Context, tradeID, amount int64) (bool, error)
	ListItem(ctx context.Context, itemID, startPrice, buyNowPrice int64, durationSeconds int) (int64, error)
	MoveItem(ctx context.Context, itemID int64, pile string) (bool, error)
	QuickSell(ctx context.Context, itemID int64) (int64, error)
	UnassignedItems(ctx context.Context) ([]domain.InventoryItem, error)
	Watchlist(ctx context.Context) ([]domain.Listing, error)
	ActiveSaleCount(ctx context.Context) (int, error)
	ClearSold(ctx context.Context) (int64, error)
	RelistExpired(ctx context.Context) (int, error)
}
