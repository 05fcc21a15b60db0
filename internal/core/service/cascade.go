package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
	"github.com/slconcert/theatre-system/internal/pkg/metrics"
)

// cascade removes dependent documents children-first. Every step is safe
// to repeat, so a cascade interrupted by a failure can simply be retried.
type cascade struct {
	store     ports.DocumentStore
	inventory *Inventory
	relations *RelationSync
	events    ports.TicketEventPublisher
	log       zerolog.Logger
}

func newCascade(store ports.DocumentStore, events ports.TicketEventPublisher, log zerolog.Logger) *cascade {
	return &cascade{
		store:     store,
		inventory: NewInventory(store, log),
		relations: NewRelationSync(store, log),
		events:    events,
		log:       log,
	}
}

// deleteTicket removes one ticket, drops it from its customer and, when
// release is set, gives its seat back. The follow-ups only run if this
// call actually deleted the ticket, so a retry never releases twice.
func (c *cascade) deleteTicket(ctx context.Context, t *domain.Ticket, release bool) []error {
	existed, err := c.store.DeleteByID(ctx, domain.CollectionTickets, t.ID)
	if err != nil {
		return []error{fmt.Errorf("delete ticket %q: %w", t.ID, err)}
	}
	if !existed {
		return nil
	}

	var errs []error
	if release {
		if err := c.inventory.ReleaseSeat(ctx, t.ShowtimeID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.relations.Sync(ctx, ticketCustomer, t.ID, []string{t.CustomerID}, nil); err != nil {
		errs = append(errs, err)
	}
	c.publish(domain.TicketCancelled, t)
	return errs
}

// deleteTickets removes every ticket matching filter.
func (c *cascade) deleteTickets(ctx context.Context, filter ports.Filter, release bool) []error {
	tickets, err := findAll[domain.Ticket](ctx, c.store, domain.CollectionTickets, filter, ports.FindOptions{})
	if err != nil {
		return []error{err}
	}
	var errs []error
	for i := range tickets {
		errs = append(errs, c.deleteTicket(ctx, &tickets[i], release)...)
	}
	if len(tickets) > 0 {
		metrics.CascadeDeletesTotal.WithLabelValues(domain.CollectionTickets).Add(float64(len(tickets)))
	}
	return errs
}

// deleteShowtime removes a showtime after its tickets. Seats are not
// released since the counter goes away with the showtime.
func (c *cascade) deleteShowtime(ctx context.Context, showtimeID string) []error {
	if errs := c.deleteTickets(ctx, ports.Filter{ports.Eq(domain.FieldShowtimeID, showtimeID)}, false); len(errs) > 0 {
		return errs
	}
	if _, err := c.store.DeleteByID(ctx, domain.CollectionShowtimes, showtimeID); err != nil {
		return []error{fmt.Errorf("delete showtime %q: %w", showtimeID, err)}
	}
	return nil
}

func (c *cascade) publish(kind domain.TicketEventType, t *domain.Ticket) {
	publish(c.events, kind, t)
}

func publish(events ports.TicketEventPublisher, kind domain.TicketEventType, t *domain.Ticket) {
	if events == nil {
		return
	}
	events.Enqueue(domain.TicketEvent{
		Type:       kind,
		TicketID:   t.ID,
		ShowtimeID: t.ShowtimeID,
		CustomerID: t.CustomerID,
		SeatNumber: t.SeatNumber,
		OccurredAt: domain.Now(),
	})
}
