package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

// load reads one document by id, translating a miss into a NotFound naming
// the entity.
func load[T any](ctx context.Context, store ports.DocumentStore, collection, entity, id string) (*T, error) {
	var v T
	if err := store.FindByID(ctx, collection, id, &v); err != nil {
		if errors.Is(err, ports.ErrDocumentNotFound) {
			return nil, domain.NotFoundError(entity, id)
		}
		return nil, fmt.Errorf("load %s %q: %w", entity, id, err)
	}
	return &v, nil
}

// find pages through the documents matching filter.
func find[T any](ctx context.Context, store ports.DocumentStore, collection string, filter ports.Filter, page ports.Page) ([]T, error) {
	page = page.Normalize()
	return findAll[T](ctx, store, collection, filter, ports.FindOptions{
		Skip:  int64(page.Skip),
		Limit: int64(page.Limit),
	})
}

func findAll[T any](ctx context.Context, store ports.DocumentStore, collection string, filter ports.Filter, opts ports.FindOptions) ([]T, error) {
	var out []T
	if err := store.FindMany(ctx, collection, filter, opts, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// exists reports whether a document with id is stored in collection.
func exists(ctx context.Context, store ports.DocumentStore, collection, id string) (bool, error) {
	n, err := store.Count(ctx, collection, ports.ByID(id))
	if err != nil {
		return false, fmt.Errorf("lookup %s %q: %w", collection, id, err)
	}
	return n > 0, nil
}

// updated writes fields to id and returns the fresh document.
func updated[T any](ctx context.Context, store ports.DocumentStore, collection, entity, id string, fields ports.Fields) (*T, error) {
	if len(fields) > 0 {
		ok, err := store.UpdateFields(ctx, collection, id, fields)
		if err != nil {
			return nil, fmt.Errorf("update %s %q: %w", entity, id, err)
		}
		if !ok {
			return nil, domain.NotFoundError(entity, id)
		}
	}
	return load[T](ctx, store, collection, entity, id)
}
