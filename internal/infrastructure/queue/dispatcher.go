package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/metrics"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 256
	deliveryTimeout = 5 * time.Second
)

// Dispatcher delivers published notifications on a fixed set of workers,
// sharded by recipient so that one user's notifications keep their order.
type Dispatcher struct {
	workers   []chan domain.Notification
	deliverer ports.NotificationDeliverer
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, deliverer ports.NotificationDeliverer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.Notification, numWorkers),
		deliverer: deliverer,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled or
// after Stop has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish implements ports.Notifier. It never blocks the caller: a
// notification whose worker channel is full is dropped and counted.
func (d *Dispatcher) Publish(_ context.Context, notifications ...domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	for _, n := range notifications {
		idx := d.shardIndex(n.UserID)
		select {
		case d.workers[idx] <- n:
			metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		default:
			metrics.NotificationsErrorsTotal.WithLabelValues("queue_full").Inc()
			d.log.Warn().
				Str("user_id", n.UserID).
				Str("type", string(n.Type)).
				Int("worker_id", idx).
				Msg("notification queue full, dropping notification")
		}
	}
}

// Stop rejects further notifications and waits for queued ones to be
// delivered.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n domain.Notification) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()
	if err := d.deliverer.Deliver(ctx, n); err != nil {
		d.log.Error().Err(err).
			Str("user_id", n.UserID).
			Str("type", string(n.Type)).
			Int("worker_id", id).
			Msg("notification delivery failed")
	}
}
