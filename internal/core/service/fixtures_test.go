package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
	"github.com/slconcert/theatre-system/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Fixture wiring every service over one in-memory store
// ---------------------------------------------------------------------------

type fixture struct {
	t         *testing.T
	store     ports.DocumentStore
	events    *recordingEvents
	plays     ports.PlayService
	actors    ports.ActorService
	directors ports.DirectorService
	showtimes ports.ShowtimeService
	customers ports.CustomerService
	tickets   ports.TicketService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithStore(t, memory.New())
}

func newFixtureWithStore(t *testing.T, store ports.DocumentStore) *fixture {
	t.Helper()
	log := zerolog.Nop()
	events := &recordingEvents{}
	return &fixture{
		t:         t,
		store:     store,
		events:    events,
		plays:     NewPlayService(store, events, log),
		actors:    NewActorService(store, log),
		directors: NewDirectorService(store, log),
		showtimes: NewShowtimeService(store, events, log),
		customers: NewCustomerService(store, events, log),
		tickets:   NewTicketService(store, events, nil, log),
	}
}

var admin = ports.Principal{UserID: "admin-user", Username: "admin", Role: domain.RoleAdmin}

func (f *fixture) actor(name string) *domain.Actor {
	f.t.Helper()
	a, err := f.actors.Create(context.Background(), ports.CreateActorInput{Name: name})
	if err != nil {
		f.t.Fatalf("create actor: %v", err)
	}
	return a
}

func (f *fixture) director(name string) *domain.Director {
	f.t.Helper()
	d, err := f.directors.Create(context.Background(), ports.CreateDirectorInput{Name: name})
	if err != nil {
		f.t.Fatalf("create director: %v", err)
	}
	return d
}

func (f *fixture) play(title, directorID string, actors ...string) *domain.Play {
	f.t.Helper()
	p, err := f.plays.Create(context.Background(), ports.CreatePlayInput{
		Title: title, DurationMinutes: 120, DirectorID: directorID, Actors: actors,
	})
	if err != nil {
		f.t.Fatalf("create play: %v", err)
	}
	return p
}

func (f *fixture) showtime(playID string, seats int) *domain.Showtime {
	f.t.Helper()
	st, err := f.showtimes.Create(context.Background(), ports.CreateShowtimeInput{
		PlayID: playID, DateTime: time.Now().Add(48 * time.Hour), Venue: "Main Hall",
		AvailableSeats: seats, Price: 30,
	})
	if err != nil {
		f.t.Fatalf("create showtime: %v", err)
	}
	return st
}

// customer registers a bare user document and opens its profile.
func (f *fixture) customer(userID string) *domain.Customer {
	f.t.Helper()
	ctx := context.Background()
	if err := f.store.Insert(ctx, domain.CollectionUsers, domain.User{
		ID: userID, Username: userID, Email: userID + "@example.com", Role: domain.RoleCustomer,
	}); err != nil {
		f.t.Fatalf("insert user: %v", err)
	}
	c, err := f.customers.Create(ctx, ports.CreateCustomerInput{UserID: userID, Name: userID, Email: userID + "@example.com"})
	if err != nil {
		f.t.Fatalf("create customer: %v", err)
	}
	return c
}

func (f *fixture) book(showtimeID, customerID, seat string) (*domain.Ticket, error) {
	res, err := f.tickets.Create(context.Background(), admin, ports.CreateTicketInput{
		ShowtimeID: showtimeID, CustomerID: customerID, SeatNumber: seat,
	})
	if err != nil {
		return nil, err
	}
	return res.Ticket, nil
}

func (f *fixture) mustBook(showtimeID, customerID, seat string) *domain.Ticket {
	f.t.Helper()
	tk, err := f.book(showtimeID, customerID, seat)
	if err != nil {
		f.t.Fatalf("book %s: %v", seat, err)
	}
	return tk
}

func (f *fixture) seats(showtimeID string) int {
	f.t.Helper()
	n, err := f.showtimes.AvailableSeats(context.Background(), showtimeID)
	if err != nil {
		f.t.Fatalf("available seats: %v", err)
	}
	return n
}

func getDoc[T any](t *testing.T, store ports.DocumentStore, collection, id string) *T {
	t.Helper()
	var v T
	if err := store.FindByID(context.Background(), collection, id, &v); err != nil {
		t.Fatalf("load %s %s: %v", collection, id, err)
	}
	return &v
}

func count(t *testing.T, store ports.DocumentStore, collection string, filter ports.Filter) int64 {
	t.Helper()
	n, err := store.Count(context.Background(), collection, filter)
	if err != nil {
		t.Fatalf("count %s: %v", collection, err)
	}
	return n
}

func assertIDs(t *testing.T, what string, got []string, want ...string) {
	t.Helper()
	if !domain.SameIDs(got, want) || len(got) != len(domain.UniqueIDs(want)) {
		t.Fatalf("%s: got %v, want %v", what, got, want)
	}
}

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type recordingEvents struct {
	mu     sync.Mutex
	events []domain.TicketEvent
}

func (r *recordingEvents) Enqueue(e domain.TicketEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEvents) types() []domain.TicketEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TicketEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// failingStore wraps a store and fails AddToSet or UpdateFields calls on
// one collection.
type failingStore struct {
	ports.DocumentStore
	failAddToSet     string
	failUpdateFields string
	err              error
}

func (s *failingStore) UpdateFields(ctx context.Context, collection, id string, fields ports.Fields) (bool, error) {
	if collection == s.failUpdateFields {
		return false, s.err
	}
	return s.DocumentStore.UpdateFields(ctx, collection, id, fields)
}

func (s *failingStore) AddToSet(ctx context.Context, collection, id, field, value string) (bool, error) {
	if collection == s.failAddToSet {
		return false, s.err
	}
	return s.DocumentStore.AddToSet(ctx, collection, id, field, value)
}

// stubIdempotency mirrors the Redis claim semantics in memory.
type stubIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: map[string]string{}}
}

func (s *stubIdempotency) Claim(_ context.Context, key string) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.keys[key]; ok {
		return false, id, nil
	}
	s.keys[key] = ""
	return true, "", nil
}

func (s *stubIdempotency) Complete(_ context.Context, key, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = ticketID
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
