package domain

import (
	"sync/atomic"
	"time"
)

// RunStats holds the monotonically non-decreasing run counters. The search
// loop writes search/purchase/spend fields, the relist loop writes
// sale/earned fields; atomics cover concurrent readers (status export).
type RunStats struct {
	startedAt       atomic.Int64 // unix seconds, 0 until started
	Searches        atomic.Int64
	Purchases       atomic.Int64
	Sales           atomic.Int64
	Spent           atomic.Int64
	Earned          atomic.Int64
	FailedPurchases atomic.Int64
}

// StatsSnapshot is an immutable copy of RunStats with derived fields.
type StatsSnapshot struct {
	StartedAt       time.Time `json:"started_at,omitempty"`
	Searches        int64     `json:"searches"`
	Purchases       int64     `json:"purchases"`
	Sales           int64     `json:"sales"`
	Spent           int64     `json:"spent"`
	Earned          int64     `json:"earned"`
	FailedPurchases int64     `json:"failed_purchases"`
	Profit          int64     `json:"profit"`
	ROI             float64   `json:"roi"`
}

// MarkStarted records the run start timestamp once per process run.
func (s *RunStats) MarkStarted(t time.Time) {
	s.startedAt.Store(t.Unix())
}

// Profit is earned minus spent; may be negative while inventory is unsold.
func (s *RunStats) Profit() int64 {
	return s.Earned.Load() - s.Spent.Load()
}

// ROI is profit relative to spend, in percent. Zero when nothing was spent.
func (s *RunStats) ROI() float64 {
	spent := s.Spent.Load()
	if spent == 0 {
		return 0
	}
	return float64(s.Profit()) / float64(spent) * 100
}

// Snapshot copies all counters at call time.
func (s *RunStats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Searches:        s.Searches.Load(),
		Purchases:       s.Purchases.Load(),
		Sales:           s.Sales.Load(),
		Spent:           s.Spent.Load(),
		Earned:          s.Earned.Load(),
		FailedPurchases: s.FailedPurchases.Load(),
	}
	snap.Profit = snap.Earned - snap.Spent
	if snap.Spent != 0 {
		snap.ROI = float64(snap.Profit) / float64(snap.Spent) * 100
	}
	if ts := s.startedAt.Load(); ts != 0 {
		snap.StartedAt = time.Unix(ts, 0)
	}
	return snap
}
