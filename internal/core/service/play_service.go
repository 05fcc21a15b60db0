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

type playService struct {
	store     ports.DocumentStore
	relations *RelationSync
	cascade   *cascade
	log       zerolog.Logger
}

// NewPlayService returns a PlayService. Plays own their director and cast
// references; the inverse lists on directors and actors follow every write.
func NewPlayService(store ports.DocumentStore, events ports.TicketEventPublisher, log zerolog.Logger) ports.PlayService {
	c := newCascade(store, events, log)
	return &playService{store: store, relations: c.relations, cascade: c, log: log}
}

func (s *playService) Create(ctx context.Context, in ports.CreatePlayInput) (*domain.Play, error) {
	now := domain.Now()
	play := &domain.Play{
		ID:              domain.NewID(),
		Title:           in.Title,
		Description:     in.Description,
		Genre:           in.Genre,
		DurationMinutes: in.DurationMinutes,
		DirectorID:      in.DirectorID,
		Actors:          domain.UniqueIDs(in.Actors),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.relations.Validate(ctx, playDirector, play.DirectorIDs()); err != nil {
		return nil, err
	}
	if err := s.relations.Validate(ctx, playActors, play.Actors); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, domain.CollectionPlays, play); err != nil {
		return nil, fmt.Errorf("create play: %w", err)
	}

	err := errors.Join(
		s.relations.Sync(ctx, playDirector, play.ID, nil, play.DirectorIDs()),
		s.relations.Sync(ctx, playActors, play.ID, nil, play.Actors),
	)
	s.log.Info().Str("play_id", play.ID).Str("title", play.Title).Msg("play created")
	return play, err
}

func (s *playService) List(ctx context.Context, page ports.Page) ([]domain.Play, error) {
	return find[domain.Play](ctx, s.store, domain.CollectionPlays, nil, page)
}

func (s *playService) Search(ctx context.Context, q ports.PlaySearch) ([]domain.Play, error) {
	var f ports.Filter
	if q.Title != "" {
		f = append(f, ports.Contains("title", q.Title))
	}
	if q.Genre != "" {
		f = append(f, ports.Contains("genre", q.Genre))
	}
	if q.DirectorID != "" {
		f = append(f, ports.Eq(domain.FieldDirectorID, q.DirectorID))
	}
	if q.ActorID != "" {
		f = append(f, ports.Eq(domain.FieldActors, q.ActorID))
	}
	if q.MinDuration != nil {
		f = append(f, ports.Gte("duration_minutes", *q.MinDuration))
	}
	if q.MaxDuration != nil {
		f = append(f, ports.Lte("duration_minutes", *q.MaxDuration))
	}
	return find[domain.Play](ctx, s.store, domain.CollectionPlays, f, q.Page)
}

func (s *playService) Get(ctx context.Context, id string) (*domain.Play, error) {
	return load[domain.Play](ctx, s.store, domain.CollectionPlays, "play", id)
}

func (s *playService) Update(ctx context.Context, id string, in ports.UpdatePlayInput) (*domain.Play, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := ports.Fields{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Genre != nil {
		fields["genre"] = *in.Genre
	}
	if in.DurationMinutes != nil {
		fields["duration_minutes"] = *in.DurationMinutes
	}

	var newDirector, newActors []string
	if in.DirectorID != nil {
		newDirector = domain.UniqueIDs([]string{*in.DirectorID})
		if err := s.relations.Validate(ctx, playDirector, newDirector); err != nil {
			return nil, err
		}
		fields[domain.FieldDirectorID] = *in.DirectorID
	}
	if in.Actors != nil {
		newActors = domain.UniqueIDs(*in.Actors)
		if err := s.relations.Validate(ctx, playActors, newActors); err != nil {
			return nil, err
		}
		fields[domain.FieldActors] = newActors
	}

	play, err := updated[domain.Play](ctx, s.store, domain.CollectionPlays, "play", id, fields)
	if err != nil {
		return nil, err
	}

	var errs []error
	if in.DirectorID != nil {
		errs = append(errs, s.relations.Sync(ctx, playDirector, id, current.DirectorIDs(), newDirector))
	}
	if in.Actors != nil {
		errs = append(errs, s.relations.Sync(ctx, playActors, id, current.Actors, newActors))
	}
	return play, errors.Join(errs...)
}

// Delete removes the play's showtimes and their tickets, unlinks the play
// from its director and actors, then deletes the play. The cascade runs to
// completion even if the caller goes away.
func (s *playService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	showtimes, err := findAll[domain.Showtime](ctx, s.store, domain.CollectionShowtimes,
		ports.Filter{ports.Eq(domain.FieldPlayID, id)}, ports.FindOptions{})
	if err != nil {
		return err
	}
	var errs []error
	for _, st := range showtimes {
		errs = append(errs, s.cascade.deleteShowtime(ctx, st.ID)...)
	}
	if len(showtimes) > 0 {
		metrics.CascadeDeletesTotal.WithLabelValues(domain.CollectionShowtimes).Add(float64(len(showtimes)))
	}
	errs = append(errs,
		s.relations.Detach(ctx, playDirector, id),
		s.relations.Detach(ctx, playActors, id),
	)
	if err := domain.Partial("delete play "+id, errs...); err != nil {
		return err
	}

	if _, err := s.store.DeleteByID(ctx, domain.CollectionPlays, id); err != nil {
		return fmt.Errorf("delete play %q: %w", id, err)
	}
	s.log.Info().Str("play_id", id).Int("showtimes", len(showtimes)).Msg("play deleted")
	return nil
}
