package service

import (
	"context"
	"errors"
	"testing"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
	"github.com/slconcert/theatre-system/internal/infrastructure/db/memory"
)

func ptr[T any](v T) *T { return &v }

func TestShowtimeService_UpdateSeatsAsDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.play("Hamlet", "")
	st := f.showtime(p.ID, 5)
	c := f.customer("alice")
	f.mustBook(st.ID, c.ID, "A1")

	got, err := f.showtimes.Update(ctx, st.ID, ports.UpdateShowtimeInput{
		Venue: ptr("Studio"), AvailableSeats: ptr(10),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Venue != "Studio" || got.AvailableSeats != 10 {
		t.Fatalf("unexpected showtime: %+v", got)
	}

	_, err = f.showtimes.Update(ctx, st.ID, ports.UpdateShowtimeInput{AvailableSeats: ptr(-1)})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if n := f.seats(st.ID); n != 10 {
		t.Fatalf("expected seats untouched at 10, got %d", n)
	}
}

func TestShowtimeService_UpdateFieldFailureLeavesSeats(t *testing.T) {
	store := &failingStore{DocumentStore: memory.New()}
	f := newFixtureWithStore(t, store)
	ctx := context.Background()
	p := f.play("Hamlet", "")
	st := f.showtime(p.ID, 5)

	store.failUpdateFields = domain.CollectionShowtimes
	store.err = errors.New("write timeout")

	_, err := f.showtimes.Update(ctx, st.ID, ports.UpdateShowtimeInput{
		Venue: ptr("Studio"), AvailableSeats: ptr(8),
	})
	if err == nil {
		t.Fatalf("expected the field write error")
	}
	if errors.Is(err, domain.ErrPartialFailure) {
		t.Fatalf("nothing was committed, got partial failure %v", err)
	}
	if n := f.seats(st.ID); n != 5 {
		t.Fatalf("expected seats unchanged at 5, got %d", n)
	}
}

func TestShowtimeService_UpdateUnknownPlay(t *testing.T) {
	f := newFixture(t)
	p := f.play("Hamlet", "")
	st := f.showtime(p.ID, 5)

	_, err := f.showtimes.Update(context.Background(), st.ID, ports.UpdateShowtimeInput{
		PlayID: ptr("missing"), AvailableSeats: ptr(7),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n := f.seats(st.ID); n != 5 {
		t.Fatalf("expected seats unchanged at 5, got %d", n)
	}
}
