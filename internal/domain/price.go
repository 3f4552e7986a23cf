package domain

// priceStep returns the market's allowed price granularity for the given
// magnitude. Prices not on a step boundary are rejected by the market, so
// every computed ask must be rounded down through RoundPrice first.
func priceStep(price int64) int64 {
	switch {
	case price < 1_000:
		return 50
	case price < 10_000:
		return 100
	case price < 50_000:
		return 250
	case price < 100_000:
		return 500
	default:
		return 1_000
	}
}

// RoundPrice floors price to the nearest allowed step. Idempotent.
func RoundPrice(price int64) int64 {
	if price <= 0 {
		return 0
	}
	step := priceStep(price)
	return price / step * step
}

// StartingBid derives the auction start price from a rounded ask: 90% of the
// ask, rounded again by the same rule.
func StartingBid(ask int64) int64 {
	return RoundPrice(ask * 9 / 10)
}
