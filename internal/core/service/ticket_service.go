package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

type ticketService struct {
	store     ports.DocumentStore
	inventory *Inventory
	relations *RelationSync
	cascade   *cascade
	events    ports.TicketEventPublisher
	idem      ports.IdempotencyStore
	log       zerolog.Logger
}

// NewTicketService returns a TicketService. events and idem may be nil,
// which disables event publishing and purchase idempotency respectively.
func NewTicketService(
	store ports.DocumentStore,
	events ports.TicketEventPublisher,
	idem ports.IdempotencyStore,
	log zerolog.Logger,
) ports.TicketService {
	c := newCascade(store, events, log)
	return &ticketService{
		store:     store,
		inventory: c.inventory,
		relations: c.relations,
		cascade:   c,
		events:    events,
		idem:      idem,
		log:       log,
	}
}

// Create books a seat. Customers may only book on their own profile; staff
// may book for anyone. A repeated idempotency key from the same caller
// returns the ticket of the first purchase when the request matches it.
func (s *ticketService) Create(ctx context.Context, who ports.Principal, in ports.CreateTicketInput) (*ports.TicketResult, error) {
	customer, err := load[domain.Customer](ctx, s.store, domain.CollectionCustomers, "customer", in.CustomerID)
	if err != nil {
		return nil, err
	}
	if !who.IsStaff() && customer.UserID != who.UserID {
		return nil, fmt.Errorf("%w: cannot book for customer %q", domain.ErrForbidden, in.CustomerID)
	}

	key, prev, err := s.claim(ctx, who, in)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		return &ports.TicketResult{Ticket: prev, AlreadyExisted: true}, nil
	}

	now := domain.Now()
	t := &domain.Ticket{
		ID:           domain.NewID(),
		ShowtimeID:   in.ShowtimeID,
		CustomerID:   in.CustomerID,
		SeatNumber:   in.SeatNumber,
		Price:        in.Price,
		PurchaseDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.inventory.ReserveSeat(ctx, t); err != nil {
		s.release(key)
		return nil, err
	}

	syncErr := s.relations.Sync(ctx, ticketCustomer, t.ID, nil, []string{t.CustomerID})
	if key != "" {
		if err := s.idem.Complete(context.WithoutCancel(ctx), key, t.ID); err != nil {
			s.log.Warn().Err(err).Str("ticket_id", t.ID).Msg("failed to bind idempotency key")
		}
	}
	publish(s.events, domain.TicketBooked, t)

	s.log.Info().
		Str("ticket_id", t.ID).
		Str("showtime_id", t.ShowtimeID).
		Str("seat", t.SeatNumber).
		Msg("ticket booked")
	return &ports.TicketResult{Ticket: t}, syncErr
}

// claim reserves the caller's idempotency key before any seat is taken.
// It returns the scoped key to complete later, or the ticket an earlier
// identical purchase produced. Cache failures fall through to a normal
// purchase with no key held.
func (s *ticketService) claim(ctx context.Context, who ports.Principal, in ports.CreateTicketInput) (string, *domain.Ticket, error) {
	if in.IdempotencyKey == "" || s.idem == nil {
		return "", nil, nil
	}
	key := who.UserID + ":" + in.IdempotencyKey

	claimed, id, err := s.idem.Claim(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("idempotency claim failed, booking anyway")
		return "", nil, nil
	}
	if claimed {
		return key, nil, nil
	}
	if id == "" {
		return "", nil, domain.ErrPurchaseInProgress
	}

	t, err := load[domain.Ticket](ctx, s.store, domain.CollectionTickets, "ticket", id)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, fmt.Errorf("%w: ticket %q was cancelled", domain.ErrIdempotencyKeyReused, id)
	}
	if err != nil {
		return "", nil, err
	}
	if t.CustomerID != in.CustomerID || t.ShowtimeID != in.ShowtimeID || t.SeatNumber != in.SeatNumber {
		return "", nil, domain.ErrIdempotencyKeyReused
	}
	s.log.Debug().Str("ticket_id", id).Msg("idempotent purchase replayed")
	return "", t, nil
}

// release frees a claimed key after a failed purchase.
func (s *ticketService) release(key string) {
	if key == "" {
		return
	}
	if err := s.idem.Release(context.Background(), key); err != nil {
		s.log.Warn().Err(err).Msg("failed to release idempotency key")
	}
}

func (s *ticketService) List(ctx context.Context, page ports.Page) ([]domain.Ticket, error) {
	return find[domain.Ticket](ctx, s.store, domain.CollectionTickets, nil, page)
}

func (s *ticketService) Search(ctx context.Context, q ports.TicketSearch) ([]domain.Ticket, error) {
	var f ports.Filter
	if q.ShowtimeID != "" {
		f = append(f, ports.Eq(domain.FieldShowtimeID, q.ShowtimeID))
	}
	if q.CustomerID != "" {
		f = append(f, ports.Eq(domain.FieldCustomerID, q.CustomerID))
	}
	if q.IsUsed != nil {
		f = append(f, ports.Eq(domain.FieldIsUsed, *q.IsUsed))
	}
	return find[domain.Ticket](ctx, s.store, domain.CollectionTickets, f, q.Page)
}

func (s *ticketService) Mine(ctx context.Context, who ports.Principal) ([]domain.Ticket, error) {
	c, err := profileOf(ctx, s.store, who)
	if err != nil {
		return nil, err
	}
	return find[domain.Ticket](ctx, s.store, domain.CollectionTickets,
		ports.Filter{ports.Eq(domain.FieldCustomerID, c.ID)}, ports.Page{})
}

func (s *ticketService) Get(ctx context.Context, who ports.Principal, id string) (*domain.Ticket, error) {
	t, err := load[domain.Ticket](ctx, s.store, domain.CollectionTickets, "ticket", id)
	if err != nil {
		return nil, err
	}
	if who.IsAdmin() {
		return t, nil
	}
	var owner domain.Customer
	err = s.store.FindByID(ctx, domain.CollectionCustomers, t.CustomerID, &owner)
	if err != nil && !errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, fmt.Errorf("lookup ticket owner: %w", err)
	}
	if err != nil || owner.UserID != who.UserID {
		return nil, fmt.Errorf("%w: ticket %q", domain.ErrForbidden, id)
	}
	return t, nil
}

// Update edits a ticket. Moving it to another showtime or seat goes
// through the inventory; is_used can only move from false to true.
func (s *ticketService) Update(ctx context.Context, id string, in ports.UpdateTicketInput) (*domain.Ticket, error) {
	t, err := load[domain.Ticket](ctx, s.store, domain.CollectionTickets, "ticket", id)
	if err != nil {
		return nil, err
	}
	if in.IsUsed != nil && *in.IsUsed != t.IsUsed && !t.CanTransitionTo(*in.IsUsed) {
		return nil, fmt.Errorf("%w: ticket %q", domain.ErrTicketUsed, id)
	}

	oldCustomer := t.CustomerID
	if in.CustomerID != nil && *in.CustomerID != oldCustomer {
		if err := s.relations.Validate(ctx, ticketCustomer, []string{*in.CustomerID}); err != nil {
			return nil, err
		}
	}

	showtimeID, seat := t.ShowtimeID, t.SeatNumber
	if in.ShowtimeID != nil {
		showtimeID = *in.ShowtimeID
	}
	if in.SeatNumber != nil {
		seat = *in.SeatNumber
	}
	if err := s.inventory.TransferSeat(ctx, t, showtimeID, seat); err != nil {
		return nil, err
	}

	fields := ports.Fields{}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.CustomerID != nil {
		fields[domain.FieldCustomerID] = *in.CustomerID
	}
	if in.IsUsed != nil && *in.IsUsed && !t.IsUsed {
		fields[domain.FieldIsUsed] = true
	}
	fresh, err := updated[domain.Ticket](ctx, s.store, domain.CollectionTickets, "ticket", id, fields)
	if err != nil {
		return nil, err
	}

	var syncErr error
	if in.CustomerID != nil {
		syncErr = s.relations.Sync(ctx, ticketCustomer, id, []string{oldCustomer}, []string{*in.CustomerID})
	}
	if fields[domain.FieldIsUsed] == true {
		publish(s.events, domain.TicketUsed, fresh)
	}
	return fresh, syncErr
}

// MarkUsed flips is_used to true in a single conditional write.
func (s *ticketService) MarkUsed(ctx context.Context, id string) (*domain.Ticket, error) {
	n, err := s.store.UpdateWhere(ctx, domain.CollectionTickets,
		ports.Filter{ports.Eq(domain.FieldID, id), ports.Eq(domain.FieldIsUsed, false)},
		ports.Fields{domain.FieldIsUsed: true})
	if err != nil {
		return nil, fmt.Errorf("mark ticket %q used: %w", id, err)
	}

	t, err := load[domain.Ticket](ctx, s.store, domain.CollectionTickets, "ticket", id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: ticket %q", domain.ErrTicketUsed, id)
	}
	publish(s.events, domain.TicketUsed, t)
	return t, nil
}

// Delete cancels a ticket, returning its seat to the showtime.
func (s *ticketService) Delete(ctx context.Context, id string) error {
	t, err := load[domain.Ticket](ctx, s.store, domain.CollectionTickets, "ticket", id)
	if err != nil {
		return err
	}
	if err := domain.Partial("delete ticket "+id, s.cascade.deleteTicket(context.WithoutCancel(ctx), t, true)...); err != nil {
		return err
	}
	s.log.Info().Str("ticket_id", id).Str("showtime_id", t.ShowtimeID).Msg("ticket cancelled")
	return nil
}
