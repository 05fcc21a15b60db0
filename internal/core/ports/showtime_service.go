package ports

import (
	"context"
	"time"

	"github.com/slconcert/theatre-system/internal/core/domain"
)

type CreateShowtimeInput struct {
	PlayID         string
	DateTime       time.Time
	Venue          string
	AvailableSeats int
	Price          float64
}

type UpdateShowtimeInput struct {
	PlayID         *string
	DateTime       *time.Time
	Venue          *string
	AvailableSeats *int
	Price          *float64
}

// ShowtimeSearch filters showtimes; date and price bounds are inclusive.
type ShowtimeSearch struct {
	PlayID   string
	Venue    string
	MinDate  *time.Time
	MaxDate  *time.Time
	MinPrice *float64
	MaxPrice *float64
	Page     Page
}

type ShowtimeService interface {
	Create(ctx context.Context, in CreateShowtimeInput) (*domain.Showtime, error)
	List(ctx context.Context, page Page) ([]domain.Showtime, error)
	Search(ctx context.Context, q ShowtimeSearch) ([]domain.Showtime, error)
	Upcoming(ctx context.Context, limit int) ([]domain.Showtime, error)
	Get(ctx context.Context, id string) (*domain.Showtime, error)
	AvailableSeats(ctx context.Context, id string) (int, error)
	Update(ctx context.Context, id string, in UpdateShowtimeInput) (*domain.Showtime, error)
	// AdjustSeats applies a signed administrative change to available_seats.
	AdjustSeats(ctx context.Context, id string, delta int) (*domain.Showtime, error)
	Delete(ctx context.Context, id string) error
}
