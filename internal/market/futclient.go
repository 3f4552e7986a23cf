package market

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

const (
	defaultBaseURL = "https://utas.mob.v1.fut.ea.com/ut/game/fc26"
	searchPageSize = 21

	// minRequestInterval paces outgoing calls so the client never looks
	// faster than a browser, independent of the core's RateGate.
	minRequestInterval = 1 * time.Second
	requestTimeout     = 30 * time.Second
)

// Credentials carries the browser session material for the web app.
type Credentials struct {
	SID      string
	Cookies  map[string]string
	Platform string
}

// FUTClient talks to the FC26 web-app endpoints, emulating browser requests.
type FUTClient struct {
	http     *resty.Client
	sid      string
	platform string
	logger   *zap.Logger

	pacingMu    sync.Mutex
	lastRequest time.Time
	minInterval time.Duration

	requests    atomic.Int64
	lastBalance atomic.Int64
}

// Option configures a FUTClient.
type Option func(*FUTClient)

// WithBaseURL overrides the endpoint root (used by tests).
func WithBaseURL(url string) Option {
	return func(c *FUTClient) {
		c.http.SetBaseURL(url)
	}
}

// WithMinInterval overrides request pacing (used by tests).
func WithMinInterval(d time.Duration) Option {
	return func(c *FUTClient) {
		c.minInterval = d
	}
}

// NewFUTClient builds a client from browser session credentials.
func NewFUTClient(creds Credentials, logger *zap.Logger, opts ...Option) *FUTClient {
	httpClient := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(requestTimeout).
		SetHeaders(map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Accept":          "application/json",
			"Accept-Language": "en-US,en;q=0.9",
			"Content-Type":    "application/json",
			"Origin":          "https://www.ea.com",
			"Referer":         "https://www.ea.com/",
		})
	for name, value := range creds.Cookies {
		httpClient.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	c := &FUTClient{
		http:        httpClient,
		sid:         creds.SID,
		platform:    creds.Platform,
		logger:      logger,
		minInterval: minRequestInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pace enforces the minimum inter-request spacing with a little jitter.
func (c *FUTClient) pace(ctx context.Context) error {
	c.pacingMu.Lock()
	elapsed := time.Since(c.lastRequest)
	minInterval := c.minInterval
	c.pacingMu.Unlock()

	if minInterval <= 0 || elapsed >= minInterval {
		return nil
	}
	wait := minInterval - elapsed + time.Duration(rand.Int63n(int64(100*time.Millisecond)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func (c *FUTClient) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetHeader("X-UT-SID", c.sid)
}

// classify maps a completed response (or transport error) to the taxonomy.
func (c *FUTClient) classify(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrapf(ErrNetwork, "%v", err)
	}

	c.pacingMu.Lock()
	c.lastRequest = time.Now()
	c.pacingMu.Unlock()
	c.requests.Add(1)

	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrAuthExpired
	case http.StatusUpgradeRequired:
		return ErrChallengeRequired
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case 458:
		return ErrMarketBanned
	default:
		return errors.Errorf("market: request failed with status %d", resp.StatusCode())
	}
}

// Balance fetches the coin balance and refreshes the cached value.
func (c *FUTClient) Balance(ctx context.Context) (int64, error) {
	if err := c.pace(ctx); err != nil {
		return 0, err
	}
	var out struct {
		Credits int64 `json:"credits"`
	}
	resp, err := c.request(ctx).SetResult(&out).Get("/user/credits")
	if err := c.classify(resp, err); err != nil {
		return 0, errors.Wrap(err, "get credits")
	}
	c.lastBalance.Store(out.Credits)
	return out.Credits, nil
}

// CachedBalance returns the last observed balance without a network call.
func (c *FUTClient) CachedBalance() int64 {
	return c.lastBalance.Load()
}

// RequestCount returns how many requests completed since construction.
func (c *FUTClient) RequestCount() int64 {
	return c.requests.Load()
}

type auctionEntry struct {
	TradeID           int64 `json:"tradeId"`
	BuyNowPrice       int64 `json:"buyNowPrice"`
	CurrentBid        int64 `json:"currentBid"`
	Expires           int64 `json:"expires"`
	SellerEstablished bool  `json:"sellerEstablished"`
	ItemData          struct {
		AssetID           int64  `json:"assetId"`
		ResourceID        int64  `json:"resourceId"`
		LastName          string `json:"lastName"`
		Rating            int    `json:"rating"`
		PreferredPosition string `json:"preferredPosition"`
	} `json:"itemData"`
}

func (e auctionEntry) toListing() domain.Listing {
	name := e.ItemData.LastName
	if name == "" {
		name = "Unknown"
	}
	return domain.Listing{
		TradeID:          e.TradeID,
		AssetID:          e.ItemData.AssetID,
		DefinitionID:     e.ItemData.ResourceID,
		Name:             name,
		Rating:           e.ItemData.Rating,
		Position:         e.ItemData.PreferredPosition,
		BuyNowPrice:      e.BuyNowPrice,
		CurrentBid:       e.CurrentBid,
		ExpiresInSeconds: e.Expires,
		SellerTrusted:    e.SellerEstablished,
	}
}

// Search queries the transfer market. Malformed entries are skipped with a
// warning, they never fail the whole page.
func (c *FUTClient) Search(ctx context.Context, filter domain.SearchFilter, page int) ([]domain.Listing, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	req := c.request(ctx).
		SetQueryParam("num", itoa(searchPageSize)).
		SetQueryParam("start", itoa(int64(page*searchPageSize))).
		SetQueryParam("type", "player")

	setIfPositive(req, "maskedDefId", filter.DefinitionID)
	setIfPositive(req, "micr", filter.MinPrice)
	setIfPositive(req, "macr", filter.MaxPrice)
	setIfPositive(req, "minb", filter.MinBuyNow)
	setIfPositive(req, "maxb", filter.MaxBuyNow)
	setIfPositive(req, "nat", filter.Nation)
	setIfPositive(req, "leag", filter.League)
	setIfPositive(req, "team", filter.Club)
	setIfPositive(req, "rarityIds", filter.RarityID)
	if filter.Quality != "" {
		req.SetQueryParam("lev", filter.Quality)
	}
	if filter.Position != "" {
		req.SetQueryParam("pos", filter.Position)
	}

	var out struct {
		AuctionInfo []auctionEntry `json:"auctionInfo"`
	}
	resp, err := req.SetResult(&out).Get("/transfermarket")
	if err := c.classify(resp, err); err != nil {
		return nil, errors.Wrap(err, "search transfer market")
	}

	listings := make([]domain.Listing, 0, len(out.AuctionInfo))
	for _, entry := range out.AuctionInfo {
		if entry.TradeID == 0 {
			c.logger.Warn("skipping malformed auction entry")
			continue
		}
		listings = append(listings, entry.toListing())
	}
	return listings, nil
}

// BuyNow attempts an immediate purchase. A well-formed "already gone" answer
// comes back as (false, nil); transport and provider failures as errors.
func (c *FUTClient) BuyNow(ctx context.Context, tradeID, price int64) (bool, error) {
	return c.placeBid(ctx, tradeID, price)
}

// Bid places a regular auction bid.
func (c *FUTClient) Bid(ctx context.Context, tradeID, amount int64) (bool, error) {
	return c.placeBid(ctx, tradeID, amount)
}

func (c *FUTClient) placeBid(ctx context.Context, tradeID, amount int64) (bool, error) {
	if err := c.pace(ctx); err != nil {
		return false, err
	}
	var out struct {
		AuctionInfo []auctionEntry `json:"auctionInfo"`
	}
	resp, err := c.request(ctx).
		SetBody(map[string]int64{"bid": amount}).
		SetResult(&out).
		Put("/trade/" + itoa(tradeID) + "/bid")
	if err := c.classify(resp, err); err != nil {
		return false, errors.Wrapf(err, "bid on trade %d", tradeID)
	}
	return len(out.AuctionInfo) > 0, nil
}

// ListItem posts an item to the auction house and returns the new trade id.
func (c *FUTClient) ListItem(ctx context.Context, itemID, startPrice, buyNowPrice int64, durationSeconds int) (int64, error) {
	if err := c.pace(ctx); err != nil {
		return 0, err
	}
	body := map[string]any{
		"itemData":    map[string]int64{"id": itemID},
		"startingBid": startPrice,
		"duration":    durationSeconds,
		"buyNowPrice": buyNowPrice,
	}
	var out struct {
		ID int64 `json:"id"`
	}
	resp, err := c.request(ctx).SetBody(body).SetResult(&out).Post("/auctionhouse")
	if err := c.classify(resp, err); err != nil {
		return 0, errors.Wrapf(err, "list item %d", itemID)
	}
	return out.ID, nil
}

// MoveItem relocates an item between piles ("trade" or "club").
func (c *FUTClient) MoveItem(ctx context.Context, itemID int64, pile string) (bool, error) {
	if err := c.pace(ctx); err != nil {
		return false, err
	}
	body := map[string][]map[string]any{
		"itemData": {{"id": itemID, "pile": pile}},
	}
	var out struct {
		ItemData []struct {
			ID int64 `json:"id"`
		} `json:"itemData"`
	}
	resp, err := c.request(ctx).SetBody(body).SetResult(&out).Put("/item")
	if err := c.classify(resp, err); err != nil {
		return false, errors.Wrapf(err, "move item %d to %s", itemID, pile)
	}
	return len(out.ItemData) > 0, nil
}

// QuickSell discards an item for its discard value.
func (c *FUTClient) QuickSell(ctx context.Context, itemID int64) (int64, error) {
	if err := c.pace(ctx); err != nil {
		return 0, err
	}
	var out struct {
		Coins int64 `json:"coins"`
	}
	resp, err := c.request(ctx).SetResult(&out).Delete("/item/" + itoa(itemID))
	if err := c.classify(resp, err); err != nil {
		return 0, errors.Wrapf(err, "quick sell item %d", itemID)
	}
	return out.Coins, nil
}

// UnassignedItems returns freshly acquired items not yet assigned to a pile.
func (c *FUTClient) UnassignedItems(ctx context.Context) ([]domain.InventoryItem, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}
	var out struct {
		ItemData []struct {
			ID         int64 `json:"id"`
			ResourceID int64 `json:"resourceId"`
		} `json:"itemData"`
	}
	resp, err := c.request(ctx).SetResult(&out).Get("/purchased/items")
	if err := c.classify(resp, err); err != nil {
		return nil, errors.Wrap(err, "get unassigned items")
	}
	items := make([]domain.InventoryItem, 0, len(out.ItemData))
	for _, it := range out.ItemData {
		items = append(items, domain.InventoryItem{ID: it.ID, DefinitionID: it.ResourceID})
	}
	return items, nil
}

// Watchlist returns the tracked auctions.
func (c *FUTClient) Watchlist(ctx context.Context) ([]domain.Listing, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}
	var out struct {
		AuctionInfo []auctionEntry `json:"auctionInfo"`
	}
	resp, err := c.request(ctx).SetResult(&out).Get("/watchlist")
	if err := c.classify(resp, err); err != nil {
		return nil, errors.Wrap(err, "get watchlist")
	}
	listings := make([]domain.Listing, 0, len(out.AuctionInfo))
	for _, entry := range out.AuctionInfo {
		listings = append(listings, entry.toListing())
	}
	return listings, nil
}

// ActiveSaleCount returns how many trade-pile slots are occupied.
func (c *FUTClient) ActiveSaleCount(ctx context.Context) (int, error) {
	if err := c.pace(ctx); err != nil {
		return 0, err
	}
	var out struct {
		AuctionInfo []auctionEntry `json:"auctionInfo"`
	}
	resp, err := c.request(ctx).SetResult(&out).Get("/tradepile")
	if err := c.classify(resp, err); err != nil {
		return 0, errors.Wrap(err, "get tradepile")
	}
	return len(out.AuctionInfo), nil
}

// ClearSold removes completed sales from the trade pile and returns the
// collected proceeds.
func (c *FUTClient) ClearSold(ctx context.Context) (int64, error) {
	if err := c.pace(ctx); err != nil {
		return 0, err
	}
	var out struct {
		Coins int64 `json:"coins"`
	}
	resp, err := c.request(ctx).SetResult(&out).Delete("/trade/sold")
	if err := c.classify(resp, err); err != nil {
		return 0, errors.Wrap(err, "clear sold")
	}
	return out.Coins, nil
}

// RelistExpired re-posts every expired unsold auction.
func (c *FUTClient) RelistExpired(ctx context.Context) (int, error) {
	if err := c.pace(ctx); err != nil {
		return 0, err
	}
	var out struct {
		TradeIDList []struct {
			ID int64 `json:"id"`
		} `json:"tradeIdList"`
	}
	resp, err := c.request(ctx).SetResult(&out).Put("/auctionhouse/relist")
	if err := c.classify(resp, err); err != nil {
		return 0, errors.Wrap(err, "relist expired")
	}
	return len(out.TradeIDList), nil
}

// Keepalive pings the balance endpoint to keep the session warm.
func (c *FUTClient) Keepalive(ctx context.Context) error {
	_, err := c.Balance(ctx)
	return err
}

func setIfPositive(req *resty.Request, key string, value int64) {
	if value > 0 {
		req.SetQueryParam(key, itoa(value))
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
