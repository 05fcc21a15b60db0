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

// Relation describes one direction of a denormalized reference: documents
// in Owner hold related ids in OwnerField, and the related documents in
// Related mirror the owner id in InverseField. When SingleInverse is set,
// InverseField holds one id instead of a set.
type Relation struct {
	Owner         string
	OwnerField    string
	Related       string
	InverseField  string
	SingleInverse bool
	// Entity names a related document in error messages.
	Entity string
}

func (r Relation) String() string { return r.Owner + "." + r.OwnerField }

var (
	playDirector = Relation{
		Owner: domain.CollectionPlays, OwnerField: domain.FieldDirectorID,
		Related: domain.CollectionDirectors, InverseField: domain.FieldPlays,
		Entity: "director",
	}
	playActors = Relation{
		Owner: domain.CollectionPlays, OwnerField: domain.FieldActors,
		Related: domain.CollectionActors, InverseField: domain.FieldPlays,
		Entity: "actor",
	}
	actorPlays = Relation{
		Owner: domain.CollectionActors, OwnerField: domain.FieldPlays,
		Related: domain.CollectionPlays, InverseField: domain.FieldActors,
		Entity: "play",
	}
	directorPlays = Relation{
		Owner: domain.CollectionDirectors, OwnerField: domain.FieldPlays,
		Related: domain.CollectionPlays, InverseField: domain.FieldDirectorID,
		SingleInverse: true,
		Entity:        "play",
	}
	ticketCustomer = Relation{
		Owner: domain.CollectionTickets, OwnerField: domain.FieldCustomerID,
		Related: domain.CollectionCustomers, InverseField: domain.FieldTickets,
		Entity: "customer",
	}
)

// RelationSync keeps the inverse side of a Relation in step with edits to
// the owning side. It is not transactional: every write is attempted and
// failures are reported together as a partial failure.
type RelationSync struct {
	store ports.DocumentStore
	log   zerolog.Logger
}

func NewRelationSync(store ports.DocumentStore, log zerolog.Logger) *RelationSync {
	return &RelationSync{store: store, log: log}
}

// Validate checks that every id exists in the related collection and names
// the first one that does not.
func (s *RelationSync) Validate(ctx context.Context, rel Relation, ids []string) error {
	for _, id := range domain.UniqueIDs(ids) {
		ok, err := exists(ctx, s.store, rel.Related, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError(rel.Entity, id)
		}
	}
	return nil
}

// Sync applies the difference between oldIDs and newIDs to the inverse
// side of rel for the owner document ownerID.
func (s *RelationSync) Sync(ctx context.Context, rel Relation, ownerID string, oldIDs, newIDs []string) error {
	added := domain.Difference(newIDs, oldIDs)
	removed := domain.Difference(oldIDs, newIDs)
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	var errs []error
	if rel.SingleInverse {
		errs = s.syncPointer(ctx, rel, ownerID, added, removed)
	} else {
		errs = s.syncSet(ctx, rel, ownerID, added, removed)
	}
	return s.report(rel, ownerID, errs)
}

func (s *RelationSync) syncSet(ctx context.Context, rel Relation, ownerID string, added, removed []string) []error {
	var errs []error
	for _, id := range added {
		ok, err := s.store.AddToSet(ctx, rel.Related, id, rel.InverseField, ownerID)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("link %s %q: %w", rel.Entity, id, err))
		case !ok:
			errs = append(errs, domain.NotFoundError(rel.Entity, id))
		}
	}
	for _, id := range removed {
		if _, err := s.store.RemoveFromSet(ctx, rel.Related, id, rel.InverseField, ownerID); err != nil {
			errs = append(errs, fmt.Errorf("unlink %s %q: %w", rel.Entity, id, err))
		}
	}
	return errs
}

// syncPointer moves each added related document under ownerID, taking it
// out of the set of whichever owner it pointed at before.
func (s *RelationSync) syncPointer(ctx context.Context, rel Relation, ownerID string, added, removed []string) []error {
	var errs []error
	for _, id := range added {
		var doc map[string]any
		if err := s.store.FindByID(ctx, rel.Related, id, &doc); err != nil {
			if errors.Is(err, ports.ErrDocumentNotFound) {
				errs = append(errs, domain.NotFoundError(rel.Entity, id))
			} else {
				errs = append(errs, fmt.Errorf("load %s %q: %w", rel.Entity, id, err))
			}
			continue
		}
		if prev, _ := doc[rel.InverseField].(string); prev != "" && prev != ownerID {
			if _, err := s.store.RemoveFromSet(ctx, rel.Owner, prev, rel.OwnerField, id); err != nil {
				errs = append(errs, fmt.Errorf("detach %s %q from %q: %w", rel.Entity, id, prev, err))
			}
		}
		ok, err := s.store.UpdateFields(ctx, rel.Related, id, ports.Fields{rel.InverseField: ownerID})
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("link %s %q: %w", rel.Entity, id, err))
		case !ok:
			errs = append(errs, domain.NotFoundError(rel.Entity, id))
		}
	}
	if len(removed) > 0 {
		filter := ports.Filter{ports.In(domain.FieldID, removed), ports.Eq(rel.InverseField, ownerID)}
		if _, err := s.store.UpdateWhere(ctx, rel.Related, filter, ports.Fields{rel.InverseField: ""}); err != nil {
			errs = append(errs, fmt.Errorf("unlink %s %v: %w", rel.Entity, removed, err))
		}
	}
	return errs
}

// Detach strips ownerID from every related document that references it.
// It is idempotent and also repairs references that drifted from the
// owner's own list.
func (s *RelationSync) Detach(ctx context.Context, rel Relation, ownerID string) error {
	filter := ports.Filter{ports.Eq(rel.InverseField, ownerID)}
	var err error
	if rel.SingleInverse {
		_, err = s.store.UpdateWhere(ctx, rel.Related, filter, ports.Fields{rel.InverseField: ""})
	} else {
		_, err = s.store.RemoveFromSetWhere(ctx, rel.Related, filter, rel.InverseField, ownerID)
	}
	if err != nil {
		err = fmt.Errorf("detach %s from %s: %w", ownerID, rel.Related, err)
	}
	return s.report(rel, ownerID, []error{err})
}

func (s *RelationSync) report(rel Relation, ownerID string, errs []error) error {
	err := domain.Partial("sync "+rel.String(), errs...)
	if err == nil {
		return nil
	}
	metrics.RelationSyncFailuresTotal.WithLabelValues(rel.String()).Inc()
	s.log.Error().Err(err).Str("relation", rel.String()).Str("owner_id", ownerID).Msg("relation sync incomplete")
	return err
}
