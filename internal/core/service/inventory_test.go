package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
	"github.com/slconcert/theatre-system/internal/infrastructure/db/memory"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

func seedInventory(t *testing.T, seats int) (*Inventory, ports.DocumentStore) {
	t.Helper()
	store := memory.New()
	if err := store.Insert(context.Background(), domain.CollectionShowtimes, domain.Showtime{
		ID: "s1", PlayID: "p1", AvailableSeats: seats, Price: 42,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewInventory(store, testLogger()), store
}

func TestInventory_AdjustSeats(t *testing.T) {
	inv, _ := seedInventory(t, 2)
	ctx := context.Background()

	st, err := inv.AdjustSeats(ctx, "s1", 3)
	if err != nil || st.AvailableSeats != 5 {
		t.Fatalf("increase: %+v %v", st, err)
	}
	st, err = inv.AdjustSeats(ctx, "s1", -5)
	if err != nil || st.AvailableSeats != 0 {
		t.Fatalf("decrease to zero: %+v %v", st, err)
	}

	_, err = inv.AdjustSeats(ctx, "s1", -1)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "currently 0") {
		t.Fatalf("expected current value in message, got %q", err)
	}
	if _, err := inv.AdjustSeats(ctx, "nope", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInventory_ReleaseSeatOnMissingShowtime(t *testing.T) {
	inv, _ := seedInventory(t, 0)
	if err := inv.ReleaseSeat(context.Background(), "gone"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

// duplicateOnInsert simulates losing the unique-index race after the
// pre-check passed.
type duplicateOnInsert struct {
	ports.DocumentStore
}

func (s duplicateOnInsert) Insert(context.Context, string, any) error {
	return ports.ErrDuplicateKey
}

func TestInventory_ReserveSeatCompensatesLostInsert(t *testing.T) {
	_, store := seedInventory(t, 4)
	inv := NewInventory(duplicateOnInsert{store}, testLogger())

	err := inv.ReserveSeat(context.Background(), &domain.Ticket{ID: "t1", ShowtimeID: "s1", SeatNumber: "A1"})
	if !errors.Is(err, domain.ErrSeatTaken) {
		t.Fatalf("expected ErrSeatTaken, got %v", err)
	}
	st := getDoc[domain.Showtime](t, store, domain.CollectionShowtimes, "s1")
	if st.AvailableSeats != 4 {
		t.Fatalf("seats = %d, want 4", st.AvailableSeats)
	}
}

func TestInventory_ReserveSeatDefaultsPrice(t *testing.T) {
	inv, store := seedInventory(t, 1)
	tk := &domain.Ticket{ID: "t1", ShowtimeID: "s1", SeatNumber: "A1"}
	if err := inv.ReserveSeat(context.Background(), tk); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if got := getDoc[domain.Ticket](t, store, domain.CollectionTickets, "t1"); got.Price != 42 {
		t.Fatalf("price = %v, want 42", got.Price)
	}

	explicit := &domain.Ticket{ID: "t2", ShowtimeID: "s1", SeatNumber: "A2", Price: 10}
	if err := inv.ReserveSeat(context.Background(), explicit); !errors.Is(err, domain.ErrNoSeatsAvailable) {
		t.Fatalf("expected ErrNoSeatsAvailable, got %v", err)
	}
}
