package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
	"github.com/gestion-comercial/backoffice/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher writes login events to the audit repository from a fixed set of
// workers. Events are sharded on the login identifier so the attempts of one
// identity are stored in the order they happened.
type Dispatcher struct {
	workers []chan domain.LoginEvent
	repo    ports.LoginEventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup

	// mu guards closed against the channel close in stop.
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.LoginEventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.LoginEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LoginEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx closes the queues:
// later events are dropped and the workers write out what is already queued
// before returning. Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
	go func() {
		<-ctx.Done()
		d.stop()
	}()
}

func (d *Dispatcher) stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	})
}

// Wait blocks until every worker started by Start has drained its queue and
// returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish hands event to its worker. It never blocks: when the worker queue is
// full, or the dispatcher has stopped, the event is dropped and counted.
func (d *Dispatcher) Publish(event domain.LoginEvent) {
	idx := d.shardIndex(event.LoginID)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("login_id", event.LoginID).
			Str("outcome", string(event.Outcome)).
			Msg("audit dispatcher stopped, login event dropped")
		return
	}

	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("login_id", event.LoginID).
			Str("outcome", string(event.Outcome)).
			Int("worker_id", idx).
			Msg("audit queue full, login event dropped")
	}
}

// shardIndex maps a login identifier deterministically to a worker index.
func (d *Dispatcher) shardIndex(loginID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(loginID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

// runWorker consumes ch until it is closed and empty.
func (d *Dispatcher) runWorker(id int, ch <-chan domain.LoginEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for event := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.insert(id, event)
	}
}

// insert runs detached from the Start context so queued events are still
// written while shutting down.
func (d *Dispatcher) insert(id int, event domain.LoginEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	if err := d.repo.InsertLoginEvent(ctx, &event); err != nil {
		d.log.Error().Err(err).
			Str("login_id", event.LoginID).
			Int("worker_id", id).
			Msg("login event insert failed")
	}
}
