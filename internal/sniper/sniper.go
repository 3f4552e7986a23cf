package sniper

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Growfam/fc26-sniping/config"
	"github.com/Growfam/fc26-sniping/internal/domain"
	"github.com/Growfam/fc26-sniping/internal/journal"
	"github.com/Growfam/fc26-sniping/internal/market"
	"github.com/Growfam/fc26-sniping/internal/notify"
)

const (
	// statePollInterval bounds how long a paused loop waits before
	// rechecking the run state.
	statePollInterval = 1 * time.Second
	// searchBackoff follows a transient search-loop failure.
	searchBackoff = 5 * time.Second
	// relistBackoff follows a failed relist tick.
	relistBackoff = 30 * time.Second
	// rateLimitPause follows a too-many-requests answer.
	rateLimitPause = 60 * time.Second
)

// Sniper owns the run-state machine and the two background loops. All state
// transitions go through its methods; loops communicate solely through
// RunStats, the registry and the gate.
type Sniper struct {
	cfg      config.Config
	client   market.Client
	notifier notify.Sink
	logger   *zap.Logger

	registry *TargetRegistry
	gate     *RateGate
	engine   *Engine
	relist   *RelistScheduler
	stats    *domain.RunStats

	mu     sync.Mutex
	state  domain.RunState
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New wires the core components around a market client. jrnl may be nil to
// disable the audit journal.
func New(cfg config.Config, client market.Client, notifier notify.Sink,
	jrnl *journal.Journal, logger *zap.Logger) *Sniper {
	stats := &domain.RunStats{}
	planner := NewAutoSellPlanner(client, cfg, jrnl, logger)

	s := &Sniper{
		cfg:      cfg,
		client:   client,
		notifier: notifier,
		logger:   logger,
		registry: NewTargetRegistry(),
		gate:     NewRateGate(cfg, client, logger),
		engine:   NewEngine(client, cfg, stats, notifier, planner, jrnl, logger),
		relist:   NewRelistScheduler(client, stats, notifier, jrnl, logger),
		stats:    stats,
		state:    domain.StateStopped,
	}
	return s
}

// AddTarget registers an acquisition target.
func (s *Sniper) AddTarget(target *domain.Target) {
	s.registry.Add(target)
	s.logger.Info("target added",
		zap.String("name", target.Name),
		zap.Int64("max_price", target.MaxBuyPrice),
		zap.Int("priority", target.Priority))
}

// RemoveTarget drops every target with the given name.
func (s *Sniper) RemoveTarget(name string) {
	s.registry.Remove(name)
}

// ClearTargets removes all targets.
func (s *Sniper) ClearTargets() {
	s.registry.Clear()
}

// State returns the current lifecycle state.
func (s *Sniper) State() domain.RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sniper) setState(state domain.RunState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Start launches the search loop and, when enabled, the relist loop.
// Requires at least one registered target.
func (s *Sniper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == domain.StateRunning {
		s.mu.Unlock()
		return nil
	}
	if s.registry.Len() == 0 {
		s.mu.Unlock()
		return errors.New("no targets registered")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.group, loopCtx = errgroup.WithContext(loopCtx)
	s.state = domain.StateRunning
	s.stats.MarkStarted(time.Now())
	s.mu.Unlock()

	s.logger.Info("sniper started", zap.Int("targets", s.registry.Len()))

	s.group.Go(func() error {
		return s.searchLoop(loopCtx)
	})
	if s.cfg.AutoRelist {
		s.group.Go(func() error {
			return s.relistLoop(loopCtx)
		})
	}
	return nil
}

// Stop cancels both loops and waits for them to terminate.
func (s *Sniper) Stop() {
	s.mu.Lock()
	if s.state == domain.StateStopped {
		s.mu.Unlock()
		return
	}
	s.state = domain.StateStopped
	cancel := s.cancel
	group := s.group
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if group != nil {
		_ = group.Wait()
	}
	s.logger.Info("sniper stopped")
}

// Pause suspends searching and relisting without stopping the loops.
func (s *Sniper) Pause() {
	s.mu.Lock()
	if s.state == domain.StateRunning {
		s.state = domain.StatePaused
	}
	s.mu.Unlock()
	s.logger.Info("sniper paused")
}

// Resume continues after Pause. Counters are untouched.
func (s *Sniper) Resume() {
	s.mu.Lock()
	if s.state == domain.StatePaused {
		s.state = domain.StateRunning
	}
	s.mu.Unlock()
	s.logger.Info("sniper resumed")
}

// searchLoop drives one engine cycle per enabled target, highest priority
// first, gated by the RateGate. Fatal provider conditions halt this loop
// only; the relist loop stays up.
func (s *Sniper) searchLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.State() != domain.StateRunning {
			if !sleepCtx(ctx, statePollInterval) {
				return nil
			}
			continue
		}

		ok, err := s.gate.AllowCycle(ctx, s.stats.Purchases.Load())
		if err != nil {
			if halted := s.handleSearchError(ctx, err); halted {
				return nil
			}
			continue
		}
		if !ok {
			if !sleepCtx(ctx, searchBackoff) {
				return nil
			}
			continue
		}

		for _, target := range s.registry.List() {
			if ctx.Err() != nil {
				return nil
			}
			if s.State() != domain.StateRunning {
				break
			}
			if !target.Enabled {
				continue
			}

			s.gate.RegisterSearch()
			bought, err := s.engine.RunCycle(ctx, target)
			if err != nil {
				if halted := s.handleSearchError(ctx, err); halted {
					return nil
				}
				continue
			}

			if bought && s.gate.RecordPurchase() {
				s.logger.Info("cooldown after purchase burst",
					zap.Duration("pause", s.gate.CooldownDuration()))
				if !sleepCtx(ctx, s.gate.CooldownDuration()) {
					return nil
				}
			}

			if !sleepCtx(ctx, s.cfg.SearchInterval) {
				return nil
			}
		}
	}
}

// handleSearchError classifies a search-loop failure. Returns true when the
// loop must halt (fatal provider condition).
func (s *Sniper) handleSearchError(ctx context.Context, err error) bool {
	switch {
	case errors.Is(err, context.Canceled):
		return true
	case market.IsFatal(err):
		s.setState(domain.StateError)
		s.logger.Error("fatal market condition, search loop halted", zap.Error(err))
		s.notifier.OnFatalError(err)
		return true
	case errors.Is(err, market.ErrRateLimited):
		s.logger.Warn("rate limited, backing off", zap.Error(err))
		sleepCtx(ctx, rateLimitPause)
		return false
	default:
		s.logger.Error("search cycle failed", zap.Error(err))
		sleepCtx(ctx, searchBackoff)
		return false
	}
}

// relistLoop runs the relist scheduler on its own cadence. A failed tick
// backs off and retries; the loop only exits on cancellation.
func (s *Sniper) relistLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.State() != domain.StateRunning {
			if !sleepCtx(ctx, statePollInterval) {
				return nil
			}
			continue
		}

		if err := s.relist.Tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			s.logger.Error("relist tick failed", zap.Error(err))
			if !sleepCtx(ctx, relistBackoff) {
				return nil
			}
			continue
		}

		if !sleepCtx(ctx, s.cfg.RelistInterval) {
			return nil
		}
	}
}

// sleepCtx sleeps for d unless ctx is cancelled first. Reports whether the
// full sleep elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
