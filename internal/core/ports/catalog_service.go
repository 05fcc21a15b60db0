package ports

import (
	"context"
	"time"

	"github.com/slconcert/theatre-system/internal/core/domain"
)

// CreatePlayInput carries the fields of a new play.
type CreatePlayInput struct {
	Title           string
	Description     string
	Genre           string
	DurationMinutes int
	DirectorID      string
	Actors          []string
}

// UpdatePlayInput is a partial update: nil fields are left untouched. A
// non-nil empty Actors clears the cast; a non-nil empty DirectorID clears
// the director.
type UpdatePlayInput struct {
	Title           *string
	Description     *string
	Genre           *string
	DurationMinutes *int
	DirectorID      *string
	Actors          *[]string
}

// PlaySearch filters plays. Zero values are ignored.
type PlaySearch struct {
	Title       string
	Genre       string
	DirectorID  string
	ActorID     string
	MinDuration *int
	MaxDuration *int
	Page        Page
}

type PlayService interface {
	Create(ctx context.Context, in CreatePlayInput) (*domain.Play, error)
	List(ctx context.Context, page Page) ([]domain.Play, error)
	Search(ctx context.Context, q PlaySearch) ([]domain.Play, error)
	Get(ctx context.Context, id string) (*domain.Play, error)
	Update(ctx context.Context, id string, in UpdatePlayInput) (*domain.Play, error)
	Delete(ctx context.Context, id string) error
}

type CreateActorInput struct {
	Name        string
	Bio         string
	DateOfBirth *time.Time
	Plays       []string
}

type UpdateActorInput struct {
	Name        *string
	Bio         *string
	DateOfBirth *time.Time
	Plays       *[]string
}

// PeopleSearch filters actors and directors.
type PeopleSearch struct {
	Name   string
	PlayID string
	Page   Page
}

type ActorService interface {
	Create(ctx context.Context, in CreateActorInput) (*domain.Actor, error)
	List(ctx context.Context, page Page) ([]domain.Actor, error)
	Search(ctx context.Context, q PeopleSearch) ([]domain.Actor, error)
	Get(ctx context.Context, id string) (*domain.Actor, error)
	Update(ctx context.Context, id string, in UpdateActorInput) (*domain.Actor, error)
	Delete(ctx context.Context, id string) error
}

type CreateDirectorInput struct {
	Name  string
	Bio   string
	Plays []string
}

type UpdateDirectorInput struct {
	Name  *string
	Bio   *string
	Plays *[]string
}

type DirectorService interface {
	Create(ctx context.Context, in CreateDirectorInput) (*domain.Director, error)
	List(ctx context.Context, page Page) ([]domain.Director, error)
	Search(ctx context.Context, q PeopleSearch) ([]domain.Director, error)
	Get(ctx context.Context, id string) (*domain.Director, error)
	Update(ctx context.Context, id string, in UpdateDirectorInput) (*domain.Director, error)
	Delete(ctx context.Context, id string) error
}
