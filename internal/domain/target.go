package domain

import "sync/atomic"

// Target is one acquisition goal: a search filter plus a price ceiling.
// Counter fields are written only by the search loop; atomics keep concurrent
// status snapshots tear-free.
type Target struct {
	Name        string
	Filter      SearchFilter
	MaxBuyPrice int64
	// SellPrice overrides markup-based pricing when > 0.
	SellPrice int64
	Enabled   bool
	Priority  int

	Searches atomic.Int64
	Found    atomic.Int64
	Bought   atomic.Int64
}

// TargetView is an immutable snapshot of a target for status export.
type TargetView struct {
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	MaxPrice int64  `json:"max_price"`
	Priority int    `json:"priority"`
	Searches int64  `json:"searches"`
	Found    int64  `json:"found"`
	Bought   int64  `json:"bought"`
}

// View captures the target state at call time.
func (t *Target) View() TargetView {
	return TargetView{
		Name:     t.Name,
		Enabled:  t.Enabled,
		MaxPrice: t.MaxBuyPrice,
		Priority: t.Priority,
		Searches: t.Searches.Load(),
		Found:    t.Found.Load(),
		Bought:   t.Bought.Load(),
	}
}
