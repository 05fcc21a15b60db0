package ports

import (
	"context"

	"github.com/slconcert/theatre-system/internal/core/domain"
)

type CreateCustomerInput struct {
	UserID  string
	Name    string
	Email   string
	Phone   string
	Address string
}

// UpdateCustomerInput covers the editable profile fields. user_id and the
// tickets list are not editable.
type UpdateCustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

type CustomerSearch struct {
	Name  string
	Email string
	Page  Page
}

type CustomerService interface {
	Create(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error)
	List(ctx context.Context, page Page) ([]domain.Customer, error)
	Search(ctx context.Context, q CustomerSearch) ([]domain.Customer, error)
	// Get enforces self-or-admin access.
	Get(ctx context.Context, who Principal, id string) (*domain.Customer, error)
	Me(ctx context.Context, who Principal) (*domain.Customer, error)
	Update(ctx context.Context, who Principal, id string, in UpdateCustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
}
