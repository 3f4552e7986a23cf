package sniper

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/config"
	"github.com/Growfam/fc26-sniping/internal/domain"
)

func newPlanner(fake *fakeMarket, mutate func(*config.Config)) *AutoSellPlanner {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewAutoSellPlanner(fake, cfg, nil, zap.NewNop())
}

func TestPlaceForSaleMarkupPricing(t *testing.T) {
	fake := newFakeMarket()
	fake.unassigned = []domain.InventoryItem{
		{ID: 10, DefinitionID: 111},
		{ID: 20, DefinitionID: 777},
		{ID: 30, DefinitionID: 777}, // duplicate resolves to first match
	}

	planner := newPlanner(fake, nil)
	bought := domain.Listing{DefinitionID: 777, BuyNowPrice: 4500, Name: "card"}

	err := planner.PlaceForSale(context.Background(), bought, &domain.Target{Name: "t"})
	require.NoError(t, err)

	assert.Equal(t, []int64{20}, fake.moved)
	require.Len(t, fake.listedItems, 1)
	assert.Equal(t, int64(20), fake.listedItems[0])
	// 4500 * 1.10 = 4950 → 4900 at the 100 step; start 90% of 4900 = 4410 → 4400
	assert.Equal(t, int64(4900), fake.listedAsks[0])
	assert.Equal(t, int64(4400), fake.listedStarts[0])
}

func TestPlaceForSaleExplicitPriceWins(t *testing.T) {
	fake := newFakeMarket()
	fake.unassigned = []domain.InventoryItem{{ID: 10, DefinitionID: 777}}

	planner := newPlanner(fake, func(c *config.Config) {
		c.SellMarkup = decimal.RequireFromString("2.0")
	})
	bought := domain.Listing{DefinitionID: 777, BuyNowPrice: 1000}
	target := &domain.Target{Name: "t", SellPrice: 1234}

	require.NoError(t, planner.PlaceForSale(context.Background(), bought, target))
	require.Len(t, fake.listedAsks, 1)
	assert.Equal(t, int64(1200), fake.listedAsks[0], "explicit price still gets rounded")
}

func TestPlaceForSaleNoMatchingItemIsNoop(t *testing.T) {
	fake := newFakeMarket()
	fake.unassigned = []domain.InventoryItem{{ID: 10, DefinitionID: 111}}

	planner := newPlanner(fake, nil)
	err := planner.PlaceForSale(context.Background(), domain.Listing{DefinitionID: 777, BuyNowPrice: 1000}, &domain.Target{})
	require.NoError(t, err)
	assert.Empty(t, fake.moved)
	assert.Empty(t, fake.listedItems)
}

func TestPlaceForSaleListFailureSurfaces(t *testing.T) {
	fake := newFakeMarket()
	fake.unassigned = []domain.InventoryItem{{ID: 10, DefinitionID: 777}}
	fake.listErr = assert.AnError

	planner := newPlanner(fake, nil)
	err := planner.PlaceForSale(context.Background(), domain.Listing{DefinitionID: 777, BuyNowPrice: 1000}, &domain.Target{})
	assert.Error(t, err, "no retry here; item stays unlisted for the relist pass")
}
