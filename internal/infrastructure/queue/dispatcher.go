package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 15 * time.Second
)

// Delivery outcomes reported to the Observer.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
)

// Observer receives delivery outcomes and queue depth changes.
type Observer interface {
	NotificationResult(result string)
	QueueDepth(delta int)
}

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the recipient, so mails to one address go out in order.
type Dispatcher struct {
	workers  []chan ports.Notification
	notifier ports.Notifier
	observer Observer
	wg       sync.WaitGroup
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. observer may be nil.
func NewDispatcher(numWorkers int, notifier ports.Notifier, observer Observer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.Notification, numWorkers),
		notifier: notifier,
		observer: observer,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// delivers what is already queued on its shard and then returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands n to the worker responsible for its recipient. It never
// blocks: when the shard is full the notification is dropped and logged.
func (d *Dispatcher) Enqueue(n ports.Notification) {
	select {
	case d.workers[d.shardIndex(n.Recipient())] <- n:
		d.depth(1)
	default:
		d.log.Warn().Str("template", n.TemplateID).Str("to", n.Recipient()).Msg("notification queue full, dropped")
		d.result(ResultDropped)
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			d.depth(-1)
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan ports.Notification) {
	pending := len(ch)
	if pending > 0 {
		d.log.Info().Int("worker_id", id).Int("pending", pending).Msg("draining notification queue")
	}
	for {
		select {
		case n, ok := <-ch:
			if !ok {
				return
			}
			d.depth(-1)
			d.deliver(ctx, id, n)
		default:
			return
		}
	}
}

// deliver detaches from ctx cancellation so shutdown does not abort a send;
// sendTimeout still bounds it.
func (d *Dispatcher) deliver(ctx context.Context, id int, n ports.Notification) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := d.notifier.Send(sendCtx, n); err != nil {
		d.log.Error().Err(err).
			Str("template", n.TemplateID).
			Int("worker_id", id).
			Msg("notification delivery failed")
		d.result(ResultFailed)
		return
	}
	d.result(ResultSent)
}

func (d *Dispatcher) result(r string) {
	if d.observer != nil {
		d.observer.NotificationResult(r)
	}
}

func (d *Dispatcher) depth(delta int) {
	if d.observer != nil {
		d.observer.QueueDepth(delta)
	}
}
