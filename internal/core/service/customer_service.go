package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

type customerService struct {
	store   ports.DocumentStore
	cascade *cascade
	log     zerolog.Logger
}

func NewCustomerService(store ports.DocumentStore, events ports.TicketEventPublisher, log zerolog.Logger) ports.CustomerService {
	return &customerService{store: store, cascade: newCascade(store, events, log), log: log}
}

// Create opens the booking profile of an existing user. A user has at most
// one profile. The tickets list always starts empty.
func (s *customerService) Create(ctx context.Context, in ports.CreateCustomerInput) (*domain.Customer, error) {
	ok, err := exists(ctx, s.store, domain.CollectionUsers, in.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFoundError("user", in.UserID)
	}
	n, err := s.store.Count(ctx, domain.CollectionCustomers, ports.Filter{ports.Eq(domain.FieldUserID, in.UserID)})
	if err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	if n > 0 {
		return nil, domain.ErrCustomerExists
	}

	now := domain.Now()
	c := &domain.Customer{
		ID:        domain.NewID(),
		UserID:    in.UserID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		Tickets:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, domain.CollectionCustomers, c); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, domain.ErrCustomerExists
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.log.Info().Str("customer_id", c.ID).Str("user_id", c.UserID).Msg("customer created")
	return c, nil
}

func (s *customerService) List(ctx context.Context, page ports.Page) ([]domain.Customer, error) {
	return find[domain.Customer](ctx, s.store, domain.CollectionCustomers, nil, page)
}

func (s *customerService) Search(ctx context.Context, q ports.CustomerSearch) ([]domain.Customer, error) {
	var f ports.Filter
	if q.Name != "" {
		f = append(f, ports.Contains("name", q.Name))
	}
	if q.Email != "" {
		f = append(f, ports.Contains(domain.FieldEmail, q.Email))
	}
	return find[domain.Customer](ctx, s.store, domain.CollectionCustomers, f, q.Page)
}

func (s *customerService) Get(ctx context.Context, who ports.Principal, id string) (*domain.Customer, error) {
	c, err := load[domain.Customer](ctx, s.store, domain.CollectionCustomers, "customer", id)
	if err != nil {
		return nil, err
	}
	if !who.IsAdmin() && c.UserID != who.UserID {
		return nil, fmt.Errorf("%w: customer %q", domain.ErrForbidden, id)
	}
	return c, nil
}

func (s *customerService) Me(ctx context.Context, who ports.Principal) (*domain.Customer, error) {
	return profileOf(ctx, s.store, who)
}

func (s *customerService) Update(ctx context.Context, who ports.Principal, id string, in ports.UpdateCustomerInput) (*domain.Customer, error) {
	if _, err := s.Get(ctx, who, id); err != nil {
		return nil, err
	}
	fields := ports.Fields{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		fields[domain.FieldEmail] = *in.Email
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	return updated[domain.Customer](ctx, s.store, domain.CollectionCustomers, "customer", id, fields)
}

// Delete cancels every ticket of the customer, returning the seats, then
// removes the profile.
func (s *customerService) Delete(ctx context.Context, id string) error {
	if _, err := load[domain.Customer](ctx, s.store, domain.CollectionCustomers, "customer", id); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	errs := s.cascade.deleteTickets(ctx, ports.Filter{ports.Eq(domain.FieldCustomerID, id)}, true)
	if err := domain.Partial("delete customer "+id, errs...); err != nil {
		return err
	}
	if _, err := s.store.DeleteByID(ctx, domain.CollectionCustomers, id); err != nil {
		return fmt.Errorf("delete customer %q: %w", id, err)
	}
	s.log.Info().Str("customer_id", id).Msg("customer deleted")
	return nil
}

// profileOf returns the customer profile of the principal's user.
func profileOf(ctx context.Context, store ports.DocumentStore, who ports.Principal) (*domain.Customer, error) {
	var c domain.Customer
	err := store.FindOne(ctx, domain.CollectionCustomers, ports.Filter{ports.Eq(domain.FieldUserID, who.UserID)}, &c)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, fmt.Errorf("%w: customer profile for user %q", domain.ErrNotFound, who.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup customer profile: %w", err)
	}
	return &c, nil
}
