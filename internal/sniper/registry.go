// Package sniper contains the trading-agent core: target registry, rate
// gating, the search-and-buy engine, auto-sell planning, relist scheduling
// and the orchestrating state machine.
package sniper

import (
	"sort"
	"sync"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

// TargetRegistry keeps acquisition targets ordered by descending priority.
// The sort is stable, so equal priorities keep insertion order.
type TargetRegistry struct {
	mu      sync.RWMutex
	targets []*domain.Target
}

func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{}
}

// Add appends the target and restores priority order. Duplicate names are
// not rejected; Remove drops every match.
func (r *TargetRegistry) Add(target *domain.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
	sort.SliceStable(r.targets, func(i, j int) bool {
		return r.targets[i].Priority > r.targets[j].Priority
	})
}

// Remove drops all targets with the given name. No-op when absent.
func (r *TargetRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.targets[:0]
	for _, t := range r.targets {
		if t.Name != name {
			kept = append(kept, t)
		}
	}
	r.targets = kept
}

// Clear removes every target.
func (r *TargetRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = nil
}

// List returns the current priority-ordered targets. The slice is a copy;
// the targets themselves are shared.
func (r *TargetRegistry) List() []*domain.Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Len reports the number of registered targets.
func (r *TargetRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

// Views snapshots every target for status export.
func (r *TargetRegistry) Views() []domain.TargetView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	views := make([]domain.TargetView, 0, len(r.targets))
	for _, t := range r.targets {
		views = append(views, t.View())
	}
	return views
}
