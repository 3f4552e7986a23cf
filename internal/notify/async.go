package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

// AsyncSink decouples event producers from delivery: events go onto a
// bounded queue drained by a single consumer goroutine, so the trading loops
// never block on a slow channel. When the queue is full the event is dropped
// with a warning.
type AsyncSink struct {
	next   Sink
	queue  chan func()
	logger *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewAsync wraps next with a queue of the given capacity and starts the
// consumer.
func NewAsync(next Sink, capacity int, logger *zap.Logger) *AsyncSink {
	if capacity < 1 {
		capacity = 64
	}
	s := &AsyncSink{
		next:   next,
		queue:  make(chan func(), capacity),
		logger: logger,
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *AsyncSink) drain() {
	defer close(s.done)
	for fn := range s.queue {
		fn()
	}
}

func (s *AsyncSink) enqueue(fn func()) {
	select {
	case s.queue <- fn:
	default:
		s.logger.Warn("notification queue full, dropping event")
	}
}

func (s *AsyncSink) OnPurchase(listing domain.Listing, price int64) {
	s.enqueue(func() { s.next.OnPurchase(listing, price) })
}

func (s *AsyncSink) OnSale(proceeds, runningProfit int64) {
	s.enqueue(func() { s.next.OnSale(proceeds, runningProfit) })
}

func (s *AsyncSink) OnFatalError(err error) {
	s.enqueue(func() { s.next.OnFatalError(err) })
}

// Close stops the consumer after the queued events are delivered.
func (s *AsyncSink) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
	})
	<-s.done
}
