package domain

// snipeableWindow is the remaining-lifetime threshold below which a listing
// counts as snipeable (urgency heuristic, not a buy criterion).
const snipeableWindow = 3600

// Listing is a read-only snapshot of one transfer-market auction.
type Listing struct {
	TradeID          int64  `json:"trade_id"`
	AssetID          int64  `json:"asset_id"`
	DefinitionID     int64  `json:"definition_id"`
	Name             string `json:"name"`
	Rating           int    `json:"rating"`
	Position         string `json:"position"`
	BuyNowPrice      int64  `json:"buy_now_price"`
	CurrentBid       int64  `json:"current_bid"`
	ExpiresInSeconds int64  `json:"expires"`
	SellerTrusted    bool   `json:"seller_trusted"`
}

// Snipeable reports whether the auction is close enough to expiry to be
// worth racing for.
func (l Listing) Snipeable() bool {
	return l.ExpiresInSeconds < snipeableWindow
}

// InventoryItem is an item sitting in one of the account piles.
type InventoryItem struct {
	ID           int64 `json:"id"`
	DefinitionID int64 `json:"definition_id"`
}

// SearchFilter constrains a transfer-market search. Zero-valued fields are
// unconstrained.
type SearchFilter struct {
	DefinitionID int64  `yaml:"definition_id,omitempty" json:"definition_id,omitempty"`
	MinPrice     int64  `yaml:"min_price,omitempty" json:"min_price,omitempty"`
	MaxPrice     int64  `yaml:"max_price,omitempty" json:"max_price,omitempty"`
	MinBuyNow    int64  `yaml:"min_buy_now,omitempty" json:"min_buy_now,omitempty"`
	MaxBuyNow    int64  `yaml:"max_buy_now,omitempty" json:"max_buy_now,omitempty"`
	Quality      string `yaml:"quality,omitempty" json:"quality,omitempty"`
	Position     string `yaml:"position,omitempty" json:"position,omitempty"`
	Nation       int64  `yaml:"nation,omitempty" json:"nation,omitempty"`
	League       int64  `yaml:"league,omitempty" json:"league,omitempty"`
	Club         int64  `yaml:"club,omitempty" json:"club,omitempty"`
	RarityID     int64  `yaml:"rarity_id,omitempty" json:"rarity_id,omitempty"`
}
