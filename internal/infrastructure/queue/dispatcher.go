package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
	"github.com/slconcert/theatre-system/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Publisher delivers a ticket event to its destination.
type Publisher interface {
	Publish(ctx context.Context, event domain.TicketEvent) error
}

// Dispatcher fans ticket events out to a fixed set of workers, sharded by
// showtime id so events of one showtime are published in order.
type Dispatcher struct {
	workers   []chan domain.TicketEvent
	publisher Publisher
	log       zerolog.Logger
}

var _ ports.TicketEventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher Publisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.TicketEvent, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.TicketEvent, channelBuffer)
	}
	return d
}

// Start launches the workers. They stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands the event to its showtime's worker. It never blocks: when
// the worker's buffer is full the event is dropped and logged.
func (d *Dispatcher) Enqueue(event domain.TicketEvent) {
	idx := d.shardIndex(event.ShowtimeID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.TicketEventsPublishedTotal.WithLabelValues(string(event.Type), "dropped").Inc()
		d.log.Warn().
			Str("type", string(event.Type)).
			Str("ticket_id", event.TicketID).
			Int("worker_id", idx).
			Msg("event queue full, dropping ticket event")
	}
}

func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.TicketEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.publisher.Publish(ctx, event); err != nil {
				metrics.TicketEventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
				d.log.Error().Err(err).
					Str("type", string(event.Type)).
					Str("ticket_id", event.TicketID).
					Int("worker_id", id).
					Msg("ticket event publish failed")
				continue
			}
			metrics.TicketEventsPublishedTotal.WithLabelValues(string(event.Type), "ok").Inc()
		}
	}
}
