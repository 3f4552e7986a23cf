package sniper

import (
	"context"
	"sync"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

// fakeMarket is a scriptable market.Client for core tests.
type fakeMarket struct {
	mu sync.Mutex

	balance     int64
	listings    []domain.Listing
	searchErr   error
	balanceErr  error
	buyErr      error
	failTrades  map[int64]bool // trade ids that answer "already gone"
	unassigned  []domain.InventoryItem
	activeSales int
	saleCntErr  error
	proceeds    int64
	clearErr    error
	relisted    int
	listItemID  int64
	listErr     error
	moveErr     error

	searchCalls  int
	balanceCalls int
	buyCalls     []int64
	buyPrices    []int64
	moved        []int64
	listedItems  []int64
	listedAsks   []int64
	listedStarts []int64
	clearCalls   int
	relistCalls  int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{balance: 1_000_000, failTrades: map[int64]bool{}, listItemID: 9000}
}

func (f *fakeMarket) Balance(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeMarket) CachedBalance() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance
}

func (f *fakeMarket) Search(context.Context, domain.SearchFilter, int) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := make([]domain.Listing, len(f.listings))
	copy(out, f.listings)
	return out, nil
}

func (f *fakeMarket) BuyNow(_ context.Context, tradeID, price int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buyCalls = append(f.buyCalls, tradeID)
	f.buyPrices = append(f.buyPrices, price)
	if f.buyErr != nil {
		return false, f.buyErr
	}
	if f.failTrades[tradeID] {
		return false, nil
	}
	return true, nil
}

func (f *fakeMarket) Bid(context.Context, int64, int64) (bool, error) {
	return false, nil
}

func (f *fakeMarket) ListItem(_ context.Context, itemID, startPrice, buyNowPrice int64, _ int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return 0, f.listErr
	}
	f.listedItems = append(f.listedItems, itemID)
	f.listedStarts = append(f.listedStarts, startPrice)
	f.listedAsks = append(f.listedAsks, buyNowPrice)
	return f.listItemID, nil
}

func (f *fakeMarket) MoveItem(_ context.Context, itemID int64, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return false, f.moveErr
	}
	f.moved = append(f.moved, itemID)
	return true, nil
}

func (f *fakeMarket) QuickSell(context.Context, int64) (int64, error) {
	return 0, nil
}

func (f *fakeMarket) UnassignedItems(context.Context) ([]domain.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.InventoryItem, len(f.unassigned))
	copy(out, f.unassigned)
	return out, nil
}

func (f *fakeMarket) Watchlist(context.Context) ([]domain.Listing, error) {
	return nil, nil
}

func (f *fakeMarket) ActiveSaleCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saleCntErr != nil {
		return 0, f.saleCntErr
	}
	return f.activeSales, nil
}

func (f *fakeMarket) ClearSold(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	if f.clearErr != nil {
		return 0, f.clearErr
	}
	p := f.proceeds
	f.proceeds = 0
	return p, nil
}

func (f *fakeMarket) RelistExpired(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relistCalls++
	return f.relisted, nil
}

// fakeSink records notifications synchronously.
type fakeSink struct {
	mu        sync.Mutex
	purchases []domain.Listing
	sales     [][2]int64
	fatals    []error
}

func (s *fakeSink) OnPurchase(listing domain.Listing, _ int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = append(s.purchases, listing)
}

func (s *fakeSink) OnSale(proceeds, profit int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, [2]int64{proceeds, profit})
}

func (s *fakeSink) OnFatalError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fatals = append(s.fatals, err)
}

func (s *fakeSink) fatalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fatals)
}
