package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

type actorService struct {
	store     ports.DocumentStore
	relations *RelationSync
	log       zerolog.Logger
}

func NewActorService(store ports.DocumentStore, log zerolog.Logger) ports.ActorService {
	return &actorService{store: store, relations: NewRelationSync(store, log), log: log}
}

func (s *actorService) Create(ctx context.Context, in ports.CreateActorInput) (*domain.Actor, error) {
	now := domain.Now()
	actor := &domain.Actor{
		ID:          domain.NewID(),
		Name:        in.Name,
		Bio:         in.Bio,
		DateOfBirth: in.DateOfBirth,
		Plays:       domain.UniqueIDs(in.Plays),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.relations.Validate(ctx, actorPlays, actor.Plays); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, domain.CollectionActors, actor); err != nil {
		return nil, fmt.Errorf("create actor: %w", err)
	}
	return actor, s.relations.Sync(ctx, actorPlays, actor.ID, nil, actor.Plays)
}

func (s *actorService) List(ctx context.Context, page ports.Page) ([]domain.Actor, error) {
	return find[domain.Actor](ctx, s.store, domain.CollectionActors, nil, page)
}

func (s *actorService) Search(ctx context.Context, q ports.PeopleSearch) ([]domain.Actor, error) {
	return find[domain.Actor](ctx, s.store, domain.CollectionActors, peopleFilter(q), q.Page)
}

func (s *actorService) Get(ctx context.Context, id string) (*domain.Actor, error) {
	return load[domain.Actor](ctx, s.store, domain.CollectionActors, "actor", id)
}

func (s *actorService) Update(ctx context.Context, id string, in ports.UpdateActorInput) (*domain.Actor, error) {
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
	if in.DateOfBirth != nil {
		fields["date_of_birth"] = *in.DateOfBirth
	}
	var plays []string
	if in.Plays != nil {
		plays = domain.UniqueIDs(*in.Plays)
		if err := s.relations.Validate(ctx, actorPlays, plays); err != nil {
			return nil, err
		}
		fields[domain.FieldPlays] = plays
	}

	actor, err := updated[domain.Actor](ctx, s.store, domain.CollectionActors, "actor", id, fields)
	if err != nil {
		return nil, err
	}
	if in.Plays == nil {
		return actor, nil
	}
	return actor, s.relations.Sync(ctx, actorPlays, id, current.Plays, plays)
}

func (s *actorService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	if err := s.relations.Detach(ctx, actorPlays, id); err != nil {
		return err
	}
	if _, err := s.store.DeleteByID(ctx, domain.CollectionActors, id); err != nil {
		return fmt.Errorf("delete actor %q: %w", id, err)
	}
	s.log.Info().Str("actor_id", id).Msg("actor deleted")
	return nil
}

func peopleFilter(q ports.PeopleSearch) ports.Filter {
	var f ports.Filter
	if q.Name != "" {
		f = append(f, ports.Contains("name", q.Name))
	}
	if q.PlayID != "" {
		f = append(f, ports.Eq(domain.FieldPlays, q.PlayID))
	}
	return f
}
