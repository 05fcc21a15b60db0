package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

const defaultUpcomingLimit = 10

type showtimeService struct {
	store     ports.DocumentStore
	inventory *Inventory
	cascade   *cascade
	log       zerolog.Logger
}

func NewShowtimeService(store ports.DocumentStore, events ports.TicketEventPublisher, log zerolog.Logger) ports.ShowtimeService {
	c := newCascade(store, events, log)
	return &showtimeService{store: store, inventory: c.inventory, cascade: c, log: log}
}

func (s *showtimeService) Create(ctx context.Context, in ports.CreateShowtimeInput) (*domain.Showtime, error) {
	if in.AvailableSeats < 0 {
		return nil, fmt.Errorf("%w: available_seats must not be negative", domain.ErrInvalidArgument)
	}
	if err := s.checkPlay(ctx, in.PlayID); err != nil {
		return nil, err
	}

	now := domain.Now()
	st := &domain.Showtime{
		ID:             domain.NewID(),
		PlayID:         in.PlayID,
		DateTime:       in.DateTime.UTC(),
		Venue:          in.Venue,
		AvailableSeats: in.AvailableSeats,
		Price:          in.Price,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Insert(ctx, domain.CollectionShowtimes, st); err != nil {
		return nil, fmt.Errorf("create showtime: %w", err)
	}
	s.log.Info().Str("showtime_id", st.ID).Str("play_id", st.PlayID).Int("seats", st.AvailableSeats).Msg("showtime created")
	return st, nil
}

func (s *showtimeService) List(ctx context.Context, page ports.Page) ([]domain.Showtime, error) {
	return find[domain.Showtime](ctx, s.store, domain.CollectionShowtimes, nil, page)
}

func (s *showtimeService) Search(ctx context.Context, q ports.ShowtimeSearch) ([]domain.Showtime, error) {
	var f ports.Filter
	if q.PlayID != "" {
		f = append(f, ports.Eq(domain.FieldPlayID, q.PlayID))
	}
	if q.Venue != "" {
		f = append(f, ports.Contains("venue", q.Venue))
	}
	if q.MinDate != nil {
		f = append(f, ports.Gte(domain.FieldDateTime, q.MinDate.UTC()))
	}
	if q.MaxDate != nil {
		f = append(f, ports.Lte(domain.FieldDateTime, q.MaxDate.UTC()))
	}
	if q.MinPrice != nil {
		f = append(f, ports.Gte("price", *q.MinPrice))
	}
	if q.MaxPrice != nil {
		f = append(f, ports.Lte("price", *q.MaxPrice))
	}
	return find[domain.Showtime](ctx, s.store, domain.CollectionShowtimes, f, q.Page)
}

// Upcoming lists showtimes from now on, soonest first.
func (s *showtimeService) Upcoming(ctx context.Context, limit int) ([]domain.Showtime, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	if limit > ports.MaxPageLimit {
		limit = ports.MaxPageLimit
	}
	return findAll[domain.Showtime](ctx, s.store, domain.CollectionShowtimes,
		ports.Filter{ports.Gte(domain.FieldDateTime, domain.Now())},
		ports.FindOptions{Sort: domain.FieldDateTime, Limit: int64(limit)})
}

func (s *showtimeService) Get(ctx context.Context, id string) (*domain.Showtime, error) {
	return load[domain.Showtime](ctx, s.store, domain.CollectionShowtimes, "showtime", id)
}

func (s *showtimeService) AvailableSeats(ctx context.Context, id string) (int, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return st.AvailableSeats, nil
}

// Update writes the supplied fields. A new available_seats value is applied
// as a guarded delta against the current counter, never as an overwrite, and
// only after every other field has been written.
func (s *showtimeService) Update(ctx context.Context, id string, in ports.UpdateShowtimeInput) (*domain.Showtime, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := ports.Fields{}
	if in.PlayID != nil {
		if err := s.checkPlay(ctx, *in.PlayID); err != nil {
			return nil, err
		}
		fields[domain.FieldPlayID] = *in.PlayID
	}
	if in.DateTime != nil {
		fields[domain.FieldDateTime] = in.DateTime.UTC()
	}
	if in.Venue != nil {
		fields["venue"] = *in.Venue
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	delta := 0
	if in.AvailableSeats != nil {
		if *in.AvailableSeats < 0 {
			return nil, fmt.Errorf("%w: available_seats must not be negative", domain.ErrInvalidArgument)
		}
		delta = *in.AvailableSeats - current.AvailableSeats
	}

	st, err := updated[domain.Showtime](ctx, s.store, domain.CollectionShowtimes, "showtime", id, fields)
	if err != nil || delta == 0 {
		return st, err
	}

	// Bookings since the read can make the delta overshoot the floor.
	adjusted, err := s.inventory.AdjustSeats(ctx, id, delta)
	if err != nil {
		if len(fields) > 0 {
			return st, domain.Partial("update showtime "+id+" seats", err)
		}
		return nil, err
	}
	return adjusted, nil
}

func (s *showtimeService) AdjustSeats(ctx context.Context, id string, delta int) (*domain.Showtime, error) {
	st, err := s.inventory.AdjustSeats(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("showtime_id", id).Int("delta", delta).Int("available_seats", st.AvailableSeats).Msg("seats adjusted")
	return st, nil
}

// Delete removes the showtime's tickets, detaching each from its customer,
// then the showtime itself.
func (s *showtimeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := domain.Partial("delete showtime "+id, s.cascade.deleteShowtime(context.WithoutCancel(ctx), id)...); err != nil {
		return err
	}
	s.log.Info().Str("showtime_id", id).Msg("showtime deleted")
	return nil
}

func (s *showtimeService) checkPlay(ctx context.Context, playID string) error {
	ok, err := exists(ctx, s.store, domain.CollectionPlays, playID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundError("play", playID)
	}
	return nil
}
