package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

var _ ports.AuditRecorder = (*Dispatcher)(nil)

// Dispatcher routes audit events to a fixed set of workers using consistent
// hashing on the affected username, preserving per-account ordering.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	service ports.AuditService
	dropped prometheus.Counter
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. dropped may be nil.
func NewDispatcher(numWorkers int, service ports.AuditService, dropped prometheus.Counter, log zerolog.Logger) *Dispatcher {
	return newDispatcher(numWorkers, channelBuffer, service, dropped, log)
}

func newDispatcher(numWorkers, buffer int, service ports.AuditService, dropped prometheus.Counter, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		service: service,
		dropped: dropped,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, buffer)
	}
	return d
}

// Run launches all workers and blocks until ctx is cancelled and every
// worker has drained its queue.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i, ch := range d.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
	wg.Wait()
	return nil
}

// Record hands an event to the worker responsible for its username. It never
// blocks: when that worker's buffer is full the event is dropped.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	select {
	case d.workers[d.shardIndex(event.Username)] <- event:
	default:
		if d.dropped != nil {
			d.dropped.Inc()
		}
		d.log.Warn().
			Str("action", string(event.Action)).
			Int64("user_id", event.UserID).
			Msg("audit queue full, event dropped")
	}
}

// Len returns the number of events waiting across all workers.
func (d *Dispatcher) Len() int {
	n := 0
	for _, ch := range d.workers {
		n += len(ch)
	}
	return n
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx), id, ch)
			return
		case event := <-ch:
			d.process(ctx, id, event)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case event := <-ch:
			d.process(ctx, id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.AuditEvent) {
	if err := d.service.Process(ctx, event); err != nil {
		d.log.Error().Err(err).
			Str("action", string(event.Action)).
			Int64("user_id", event.UserID).
			Int("worker_id", id).
			Msg("audit event processing failed")
	}
}
