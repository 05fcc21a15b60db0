package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

type directorService struct {
	store     ports.DocumentStore
	relations *RelationSync
	log       zerolog.Logger
}

// NewDirectorService returns a DirectorService. Editing a director's plays
// reassigns those plays: each one leaves the set of its previous director.
func NewDirectorService(store ports.DocumentStore, log zerolog.Logger) ports.DirectorService {
	return &directorService{store: store, relations: NewRelationSync(store, log), log: log}
}

func (s *directorService) Create(ctx context.Context, in ports.CreateDirectorInput) (*domain.Director, error) {
	now := domain.Now()
	director := &domain.Director{
		ID:        domain.NewID(),
		Name:      in.Name,
		Bio:       in.Bio,
		Plays:     domain.UniqueIDs(in.Plays),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.relations.Validate(ctx, directorPlays, director.Plays); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, domain.CollectionDirectors, director); err != nil {
		return nil, fmt.Errorf("create director: %w", err)
	}
	return director, s.relations.Sync(ctx, directorPlays, director.ID, nil, director.Plays)
}

func (s *directorService) List(ctx context.Context, page ports.Page) ([]domain.Director, error) {
	return find[domain.Director](ctx, s.store, domain.CollectionDirectors, nil, page)
}

func (s *directorService) Search(ctx context.Context, q ports.PeopleSearch) ([]domain.Director, error) {
	return find[domain.Director](ctx, s.store, domain.CollectionDirectors, peopleFilter(q), q.Page)
}

func (s *directorService) Get(ctx context.Context, id string) (*domain.Director, error) {
	return load[domain.Director](ctx, s.store, domain.CollectionDirectors, "director", id)
}

func (s *directorService) Update(ctx context.Context, id string, in ports.UpdateDirectorInput) (*domain.Director, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := ports.Fields{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	var plays []string
	if in.Plays != nil {
		plays = domain.UniqueIDs(*in.Plays)
		if err := s.relations.Validate(ctx, directorPlays, plays); err != nil {
			return nil, err
		}
		fields[domain.FieldPlays] = plays
	}

	director, err := updated[domain.Director](ctx, s.store, domain.CollectionDirectors, "director", id, fields)
	if err != nil {
		return nil, err
	}
	if in.Plays == nil {
		return director, nil
	}
	return director, s.relations.Sync(ctx, directorPlays, id, current.Plays, plays)
}

func (s *directorService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	if err := s.relations.Detach(ctx, directorPlays, id); err != nil {
		return err
	}
	if _, err := s.store.DeleteByID(ctx, domain.CollectionDirectors, id); err != nil {
		return fmt.Errorf("delete director %q: %w", id, err)
	}
	s.log.Info().Str("director_id", id).Msg("director deleted")
	return nil
}
