package sniper

import "github.com/Growfam/fc26-sniping/internal/domain"

// Status is a read-only snapshot for external monitoring. Balance is the
// client's last observed value, no fresh network call is made per read.
type Status struct {
	State   string               `json:"state"`
	Stats   domain.StatsSnapshot `json:"stats"`
	Targets []domain.TargetView  `json:"targets"`
	Balance int64                `json:"balance"`
}

// Status captures the full engine state at call time.
func (s *Sniper) Status() Status {
	return Status{
		State:   s.State().String(),
		Stats:   s.stats.Snapshot(),
		Targets: s.registry.Views(),
		Balance: s.client.CachedBalance(),
	}
}
