package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*FUTClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewFUTClient(
		Credentials{SID: "test-sid", Platform: "pc"},
		zap.NewNop(),
		WithBaseURL(srv.URL),
		WithMinInterval(0),
	)
	return client, srv
}

func TestBalanceCachesValue(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/credits", r.URL.Path)
		assert.Equal(t, "test-sid", r.Header.Get("X-UT-SID"))
		fmt.Fprint(w, `{"credits": 42150}`)
	}))

	balance, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42150), balance)
	assert.Equal(t, int64(42150), client.CachedBalance())
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
		fatal    bool
	}{
		{"auth expired", http.StatusUnauthorized, ErrAuthExpired, false},
		{"challenge required", http.StatusUpgradeRequired, ErrChallengeRequired, true},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited, false},
		{"market banned", 458, ErrMarketBanned, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.Balance(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, tt.fatal, IsFatal(err))
		})
	}
}

func TestSearchSkipsMalformedEntries(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfermarket", r.URL.Path)
		assert.Equal(t, "231747", r.URL.Query().Get("maskedDefId"))
		assert.Equal(t, "25000", r.URL.Query().Get("maxb"))
		fmt.Fprint(w, `{"auctionInfo": [
			{"tradeId": 101, "buyNowPrice": 20000, "expires": 120,
			 "itemData": {"resourceId": 231747, "lastName": "Mbappe", "rating": 91}},
			{"buyNowPrice": 999},
			{"tradeId": 102, "buyNowPrice": 24000,
			 "itemData": {"resourceId": 231747, "lastName": "Mbappe", "rating": 91}}
		]}`)
	}))

	listings, err := client.Search(context.Background(), domain.SearchFilter{
		DefinitionID: 231747,
		MaxBuyNow:    25000,
	}, 0)
	require.NoError(t, err)
	require.Len(t, listings, 2, "entry without tradeId must be dropped")
	assert.Equal(t, int64(101), listings[0].TradeID)
	assert.Equal(t, "Mbappe", listings[0].Name)
	assert.True(t, listings[0].Snipeable())
	assert.False(t, listings[1].Snipeable())
}

func TestBuyNowOutcomes(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/trade/101/bid", r.URL.Path)
			assert.Equal(t, http.MethodPut, r.Method)
			fmt.Fprint(w, `{"auctionInfo": [{"tradeId": 101}]}`)
		}))

		ok, err := client.BuyNow(context.Background(), 101, 20000)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("already gone", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"auctionInfo": []}`)
		}))

		ok, err := client.BuyNow(context.Background(), 101, 20000)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTradePileOperations(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tradepile":
			fmt.Fprint(w, `{"auctionInfo": [{"tradeId": 1}, {"tradeId": 2}]}`)
		case "/trade/sold":
			assert.Equal(t, http.MethodDelete, r.Method)
			fmt.Fprint(w, `{"coins": 5400}`)
		case "/auctionhouse/relist":
			assert.Equal(t, http.MethodPut, r.Method)
			fmt.Fprint(w, `{"tradeIdList": [{"id": 1}, {"id": 2}, {"id": 3}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	ctx := context.Background()

	count, err := client.ActiveSaleCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	proceeds, err := client.ClearSold(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5400), proceeds)

	relisted, err := client.RelistExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, relisted)
}

func TestListAndMoveItem(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auctionhouse":
			assert.Equal(t, http.MethodPost, r.Method)
			fmt.Fprint(w, `{"id": 777}`)
		case "/item":
			assert.Equal(t, http.MethodPut, r.Method)
			fmt.Fprint(w, `{"itemData": [{"id": 55}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	ctx := context.Background()

	tradeID, err := client.ListItem(ctx, 55, 900, 1000, 3600)
	require.NoError(t, err)
	assert.Equal(t, int64(777), tradeID)

	moved, err := client.MoveItem(ctx, 55, PileTrade)
	require.NoError(t, err)
	assert.True(t, moved)
}

func TestNetworkErrorClassification(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := client.Balance(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, IsFatal(err))
}
