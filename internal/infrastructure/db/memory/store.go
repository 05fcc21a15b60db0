// Package memory implements ports.DocumentStore in process memory. Every
// operation is atomic with respect to the others, which gives it the same
// single-document guarantees the MongoDB store relies on.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

type Option func(*Store)

// WithClock overrides the source of updated_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithUniqueKeys replaces the unique constraints enforced on insert and update.
func WithUniqueKeys(keys []domain.UniqueKey) Option {
	return func(s *Store) { s.unique = keys }
}

type Store struct {
	mu     sync.Mutex
	cols   map[string][]bson.M
	unique []domain.UniqueKey
	now    func() time.Time
}

var _ ports.DocumentStore = (*Store)(nil)

func New(opts ...Option) *Store {
	s := &Store{
		cols:   make(map[string][]bson.M),
		unique: domain.UniqueKeys,
		now:    domain.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping always succeeds; it lets the store back the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) FindByID(ctx context.Context, collection, id string, out any) error {
	return s.FindOne(ctx, collection, ports.ByID(id), out)
}

func (s *Store) FindOne(ctx context.Context, collection string, filter ports.Filter, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.cols[collection] {
		if matches(doc, filter) {
			return decode(doc, out)
		}
	}
	return ports.ErrDocumentNotFound
}

func (s *Store) FindMany(ctx context.Context, collection string, filter ports.Filter, opts ports.FindOptions, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("memory: FindMany needs a pointer to a slice, got %T", out)
	}

	s.mu.Lock()
	var docs []bson.M
	for _, doc := range s.cols[collection] {
		if matches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	if opts.Sort != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			c, ok := compare(docs[i][opts.Sort], docs[j][opts.Sort])
			if !ok {
				return false
			}
			if opts.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	docs = window(docs, opts.Skip, opts.Limit)

	slice := rv.Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, doc := range docs {
		item := reflect.New(slice.Type().Elem())
		if err := decode(doc, item.Interface()); err != nil {
			s.mu.Unlock()
			return err
		}
		result = reflect.Append(result, item.Elem())
	}
	s.mu.Unlock()

	slice.Set(result)
	return nil
}

func (s *Store) Count(ctx context.Context, collection string, filter ports.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, doc := range s.cols[collection] {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := toDocument(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(collection, m, nil); err != nil {
		return err
	}
	s.cols[collection] = append(s.cols[collection], m)
	return nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields ports.Fields) (bool, error) {
	n, err := s.UpdateWhere(ctx, collection, ports.ByID(id), fields)
	return n > 0, err
}

func (s *Store) UpdateWhere(ctx context.Context, collection string, filter ports.Filter, fields ports.Fields) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	values := make(bson.M, len(fields))
	for k, v := range fields {
		bv, err := toValue(v)
		if err != nil {
			return 0, err
		}
		values[k] = bv
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targets := s.matching(collection, filter)
	candidates := make([]bson.M, 0, len(targets))
	for _, doc := range targets {
		next := make(bson.M, len(doc)+len(values))
		for k, v := range doc {
			next[k] = v
		}
		for k, v := range values {
			next[k] = v
		}
		if err := s.checkUnique(collection, next, doc); err != nil {
			return 0, err
		}
		candidates = append(candidates, next)
	}
	if err := s.checkUniqueAmong(collection, candidates); err != nil {
		return 0, err
	}
	for _, doc := range targets {
		for k, v := range values {
			doc[k] = v
		}
		s.touch(doc)
	}
	return int64(len(targets)), nil
}

func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int) (bool, error) {
	return s.increment(ctx, collection, id, field, delta, nil)
}

func (s *Store) ConditionalIncrement(ctx context.Context, collection, id, field string, delta, floor int) (bool, error) {
	return s.increment(ctx, collection, id, field, delta, &floor)
}

func (s *Store) increment(ctx context.Context, collection, id, field string, delta int, floor *int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.byID(collection, id)
	if doc == nil {
		return false, nil
	}
	cur, ok := toFloat(doc[field])
	if doc[field] != nil && !ok {
		return false, fmt.Errorf("memory: %s.%s is not numeric", collection, field)
	}
	if floor != nil && (doc[field] == nil || cur+float64(delta) < float64(*floor)) {
		return false, nil
	}
	doc[field] = addNumber(doc[field], delta)
	s.touch(doc)
	return true, nil
}

func (s *Store) AddToSet(ctx context.Context, collection, id, field, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.byID(collection, id)
	if doc == nil {
		return false, nil
	}
	arr, _ := doc[field].(bson.A)
	for _, v := range arr {
		if v == value {
			s.touch(doc)
			return true, nil
		}
	}
	doc[field] = append(append(bson.A{}, arr...), value)
	s.touch(doc)
	return true, nil
}

func (s *Store) RemoveFromSet(ctx context.Context, collection, id, field, value string) (bool, error) {
	n, err := s.RemoveFromSetWhere(ctx, collection, ports.ByID(id), field, value)
	return n > 0, err
}

func (s *Store) RemoveFromSetWhere(ctx context.Context, collection string, filter ports.Filter, field, value string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := s.matching(collection, filter)
	for _, doc := range targets {
		if arr, ok := doc[field].(bson.A); ok {
			kept := bson.A{}
			for _, v := range arr {
				if v != value {
					kept = append(kept, v)
				}
			}
			doc[field] = kept
		}
		s.touch(doc)
	}
	return int64(len(targets)), nil
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.cols[collection]
	for i, doc := range docs {
		if doc[domain.FieldID] == id {
			s.cols[collection] = append(docs[:i:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteMany(ctx context.Context, collection string, filter ports.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []bson.M
	var n int64
	for _, doc := range s.cols[collection] {
		if matches(doc, filter) {
			n++
			continue
		}
		kept = append(kept, doc)
	}
	s.cols[collection] = kept
	return n, nil
}

func (s *Store) matching(collection string, filter ports.Filter) []bson.M {
	var out []bson.M
	for _, doc := range s.cols[collection] {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func (s *Store) byID(collection, id string) bson.M {
	for _, doc := range s.cols[collection] {
		if doc[domain.FieldID] == id {
			return doc
		}
	}
	return nil
}

func (s *Store) touch(doc bson.M) {
	doc[domain.FieldUpdatedAt] = s.now().UTC()
}

// checkUnique reports ErrDuplicateKey when candidate collides with a stored
// document other than self on any unique key of the collection. Keys with a
// missing component are not enforced.
func (s *Store) checkUnique(collection string, candidate, self bson.M) error {
	for _, key := range s.unique {
		if key.Collection != collection || !hasAll(candidate, key.Fields) {
			continue
		}
		for _, doc := range s.cols[collection] {
			if self != nil && reflect.ValueOf(doc).Pointer() == reflect.ValueOf(self).Pointer() {
				continue
			}
			if sameKey(doc, candidate, key.Fields) {
				return fmt.Errorf("%w: %s %v", ports.ErrDuplicateKey, collection, key.Fields)
			}
		}
	}
	return nil
}

// checkUniqueAmong reports ErrDuplicateKey when two documents of one bulk
// update would end up sharing a unique key.
func (s *Store) checkUniqueAmong(collection string, candidates []bson.M) error {
	for _, key := range s.unique {
		if key.Collection != collection {
			continue
		}
		for i := range candidates {
			if !hasAll(candidates[i], key.Fields) {
				continue
			}
			for j := i + 1; j < len(candidates); j++ {
				if sameKey(candidates[i], candidates[j], key.Fields) {
					return fmt.Errorf("%w: %s %v", ports.ErrDuplicateKey, collection, key.Fields)
				}
			}
		}
	}
	return nil
}

func hasAll(doc bson.M, fields []string) bool {
	for _, f := range fields {
		if doc[f] == nil {
			return false
		}
	}
	return true
}

func sameKey(a, b bson.M, fields []string) bool {
	for _, f := range fields {
		if !equal(a[f], b[f]) {
			return false
		}
	}
	return true
}

func window(docs []bson.M, skip, limit int64) []bson.M {
	if skip > 0 {
		if skip >= int64(len(docs)) {
			return nil
		}
		docs = docs[skip:]
	}
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("memory: encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("memory: decode document: %w", err)
	}
	return m, nil
}

// toValue converts a Go value into the representation it would have after
// a BSON roundtrip, so stored values compare uniformly.
func toValue(v any) (any, error) {
	m, err := toDocument(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}

func decode(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("memory: encode document: %w", err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("memory: decode into %T: %w", out, err)
	}
	return nil
}
