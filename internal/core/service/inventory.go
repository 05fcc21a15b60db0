package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
	"github.com/slconcert/theatre-system/internal/pkg/metrics"
)

// Inventory keeps showtime seat counters consistent with issued tickets.
// It holds no locks: correctness rests on the store's conditional increment
// and the unique (showtime_id, seat_number) ticket index.
type Inventory struct {
	store ports.DocumentStore
	log   zerolog.Logger
}

func NewInventory(store ports.DocumentStore, log zerolog.Logger) *Inventory {
	return &Inventory{store: store, log: log}
}

// ReserveSeat takes one seat of the ticket's showtime and inserts the
// ticket. A zero price is replaced by the showtime price.
func (inv *Inventory) ReserveSeat(ctx context.Context, t *domain.Ticket) error {
	st, err := inv.claim(ctx, t.ShowtimeID, t.SeatNumber)
	if err != nil {
		return err
	}
	if t.Price == 0 {
		t.Price = st.Price
	}

	if err := inv.store.Insert(ctx, domain.CollectionTickets, t); err != nil {
		undo := inv.unclaim(ctx, t.ShowtimeID)
		if errors.Is(err, ports.ErrDuplicateKey) {
			metrics.SeatConflictsTotal.WithLabelValues("seat_taken").Inc()
			return errors.Join(seatTaken(t.ShowtimeID, t.SeatNumber), undo)
		}
		return errors.Join(fmt.Errorf("insert ticket: %w", err), undo)
	}
	metrics.TicketsBookedTotal.Inc()
	return nil
}

// ReleaseSeat returns one seat to the showtime. A showtime that no longer
// exists is ignored.
func (inv *Inventory) ReleaseSeat(ctx context.Context, showtimeID string) error {
	ok, err := inv.store.Increment(ctx, domain.CollectionShowtimes, showtimeID, domain.FieldAvailableSeats, 1)
	if err != nil {
		return fmt.Errorf("release seat on showtime %q: %w", showtimeID, err)
	}
	if !ok {
		inv.log.Debug().Str("showtime_id", showtimeID).Msg("seat release skipped, showtime gone")
		return nil
	}
	metrics.SeatsReleasedTotal.Inc()
	return nil
}

// AdjustSeats applies a signed administrative change to available_seats.
// The counter never goes below zero; there is no upper bound.
func (inv *Inventory) AdjustSeats(ctx context.Context, showtimeID string, delta int) (*domain.Showtime, error) {
	ok, err := inv.store.ConditionalIncrement(ctx, domain.CollectionShowtimes, showtimeID, domain.FieldAvailableSeats, delta, 0)
	if err != nil {
		return nil, fmt.Errorf("adjust seats on showtime %q: %w", showtimeID, err)
	}
	st, err := load[domain.Showtime](ctx, inv.store, domain.CollectionShowtimes, "showtime", showtimeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: available seats cannot go below zero (currently %d, change %d)",
			domain.ErrInvalidArgument, st.AvailableSeats, delta)
	}
	return st, nil
}

// TransferSeat moves t to seat newSeat of showtime newShowtimeID. The target
// seat is claimed before the source seat is released, so a failed transfer
// leaves the ticket where it was.
func (inv *Inventory) TransferSeat(ctx context.Context, t *domain.Ticket, newShowtimeID, newSeat string) error {
	if newShowtimeID == t.ShowtimeID && newSeat == t.SeatNumber {
		return nil
	}
	moving := newShowtimeID != t.ShowtimeID

	if moving {
		if _, err := inv.claim(ctx, newShowtimeID, newSeat); err != nil {
			return err
		}
	} else if err := inv.checkSeatFree(ctx, newShowtimeID, newSeat); err != nil {
		return err
	}

	ok, err := inv.store.UpdateFields(ctx, domain.CollectionTickets, t.ID, ports.Fields{
		domain.FieldShowtimeID: newShowtimeID,
		domain.FieldSeatNumber: newSeat,
	})
	if err != nil || !ok {
		var undo error
		if moving {
			undo = inv.unclaim(ctx, newShowtimeID)
		}
		switch {
		case errors.Is(err, ports.ErrDuplicateKey):
			metrics.SeatConflictsTotal.WithLabelValues("seat_taken").Inc()
			return errors.Join(seatTaken(newShowtimeID, newSeat), undo)
		case err != nil:
			return errors.Join(fmt.Errorf("move ticket %q: %w", t.ID, err), undo)
		default:
			return errors.Join(domain.NotFoundError("ticket", t.ID), undo)
		}
	}

	if moving {
		if err := inv.ReleaseSeat(ctx, t.ShowtimeID); err != nil {
			return domain.Partial("transfer seat", err)
		}
	}
	t.ShowtimeID, t.SeatNumber = newShowtimeID, newSeat
	return nil
}

// claim checks availability and takes one seat of showtimeID.
func (inv *Inventory) claim(ctx context.Context, showtimeID, seat string) (*domain.Showtime, error) {
	st, err := load[domain.Showtime](ctx, inv.store, domain.CollectionShowtimes, "showtime", showtimeID)
	if err != nil {
		return nil, err
	}
	if st.AvailableSeats <= 0 {
		metrics.SeatConflictsTotal.WithLabelValues("sold_out").Inc()
		return nil, fmt.Errorf("%w: showtime %q", domain.ErrNoSeatsAvailable, showtimeID)
	}
	if err := inv.checkSeatFree(ctx, showtimeID, seat); err != nil {
		return nil, err
	}

	ok, err := inv.store.ConditionalIncrement(ctx, domain.CollectionShowtimes, showtimeID, domain.FieldAvailableSeats, -1, 0)
	if err != nil {
		return nil, fmt.Errorf("reserve seat on showtime %q: %w", showtimeID, err)
	}
	if !ok {
		// Lost the race for the last seat, or the showtime was deleted meanwhile.
		found, err := exists(ctx, inv.store, domain.CollectionShowtimes, showtimeID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, domain.NotFoundError("showtime", showtimeID)
		}
		metrics.SeatConflictsTotal.WithLabelValues("sold_out").Inc()
		return nil, fmt.Errorf("%w: showtime %q", domain.ErrNoSeatsAvailable, showtimeID)
	}
	return st, nil
}

func (inv *Inventory) checkSeatFree(ctx context.Context, showtimeID, seat string) error {
	n, err := inv.store.Count(ctx, domain.CollectionTickets, ports.Filter{
		ports.Eq(domain.FieldShowtimeID, showtimeID),
		ports.Eq(domain.FieldSeatNumber, seat),
	})
	if err != nil {
		return fmt.Errorf("check seat %q: %w", seat, err)
	}
	if n > 0 {
		metrics.SeatConflictsTotal.WithLabelValues("seat_taken").Inc()
		return seatTaken(showtimeID, seat)
	}
	return nil
}

// unclaim gives back a seat taken by claim whose ticket write failed.
func (inv *Inventory) unclaim(ctx context.Context, showtimeID string) error {
	if _, err := inv.store.Increment(ctx, domain.CollectionShowtimes, showtimeID, domain.FieldAvailableSeats, 1); err != nil {
		inv.log.Error().Err(err).Str("showtime_id", showtimeID).Msg("seat compensation failed")
		return fmt.Errorf("%w: seat compensation on showtime %q: %w", domain.ErrPartialFailure, showtimeID, err)
	}
	return nil
}

func seatTaken(showtimeID, seat string) error {
	return fmt.Errorf("%w: showtime %q seat %q", domain.ErrSeatTaken, showtimeID, seat)
}
