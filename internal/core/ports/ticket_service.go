package ports

import (
	"context"

	"github.com/slconcert/theatre-system/internal/core/domain"
)

type CreateTicketInput struct {
	ShowtimeID string
	CustomerID string
	SeatNumber string
	// Price defaults to the showtime price when zero.
	Price float64
	// IdempotencyKey, when set, makes retries of the same purchase return
	// the ticket created by the first attempt.
	IdempotencyKey string
}

// TicketResult is returned by Create.
type TicketResult struct {
	Ticket *domain.Ticket
	// AlreadyExisted is true when the idempotency key matched a previous purchase.
	AlreadyExisted bool
}

type UpdateTicketInput struct {
	ShowtimeID *string
	CustomerID *string
	SeatNumber *string
	Price      *float64
	IsUsed     *bool
}

type TicketSearch struct {
	ShowtimeID string
	CustomerID string
	IsUsed     *bool
	Page       Page
}

type TicketService interface {
	Create(ctx context.Context, who Principal, in CreateTicketInput) (*TicketResult, error)
	List(ctx context.Context, page Page) ([]domain.Ticket, error)
	Search(ctx context.Context, q TicketSearch) ([]domain.Ticket, error)
	Mine(ctx context.Context, who Principal) ([]domain.Ticket, error)
	Get(ctx context.Context, who Principal, id string) (*domain.Ticket, error)
	Update(ctx context.Context, id string, in UpdateTicketInput) (*domain.Ticket, error)
	MarkUsed(ctx context.Context, id string) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

// TicketEventPublisher receives ticket lifecycle events after they are
// persisted. Implementations must not block the caller.
type TicketEventPublisher interface {
	Enqueue(event domain.TicketEvent)
}

// IdempotencyStore binds purchase keys to the ticket they produced. Keys
// arrive already scoped to the caller.
type IdempotencyStore interface {
	// Claim atomically reserves key for a new purchase. When the key is
	// already taken it returns claimed=false and the bound ticket id, which
	// is empty while the first purchase is still in flight.
	Claim(ctx context.Context, key string) (claimed bool, ticketID string, err error)
	// Complete binds a claimed key to the ticket it created.
	Complete(ctx context.Context, key, ticketID string) error
	// Release drops a claim whose purchase failed so the key can be retried.
	Release(ctx context.Context, key string) error
}
