package ports

import (
	"context"
	"errors"
)

var (
	// ErrDocumentNotFound is returned by lookups that match nothing.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned by writes that violate a unique key.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Op is a filter comparison operator.
type Op int

const (
	// OpEq matches equal values; against an array field it matches when any
	// element is equal.
	OpEq Op = iota
	// OpNe matches values that are not equal.
	OpNe
	// OpIn matches when the field equals any of the values ([]string).
	OpIn
	OpGte
	OpLte
	// OpContains is a case-insensitive literal substring match on strings.
	OpContains
)

// Cond is a single field condition.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. An empty filter matches everything.
type Filter []Cond

func Eq(field string, v any) Cond        { return Cond{Field: field, Op: OpEq, Value: v} }
func Ne(field string, v any) Cond        { return Cond{Field: field, Op: OpNe, Value: v} }
func In(field string, ids []string) Cond { return Cond{Field: field, Op: OpIn, Value: ids} }
func Gte(field string, v any) Cond       { return Cond{Field: field, Op: OpGte, Value: v} }
func Lte(field string, v any) Cond       { return Cond{Field: field, Op: OpLte, Value: v} }
func Contains(field, s string) Cond      { return Cond{Field: field, Op: OpContains, Value: s} }
func ByID(id string) Filter              { return Filter{Eq("id", id)} }

// Fields is a partial document: field name to new value.
type Fields map[string]any

// FindOptions controls paging and ordering of FindMany.
type FindOptions struct {
	Skip  int64
	Limit int64 // 0 = no limit
	Sort  string
	Desc  bool
}

// DocumentStore is a collection-oriented store keyed by the string "id"
// field of every document. Mutating calls refresh the document's
// updated_at and report whether a target existed.
type DocumentStore interface {
	FindByID(ctx context.Context, collection, id string, out any) error
	FindOne(ctx context.Context, collection string, filter Filter, out any) error
	// FindMany decodes the matching documents into out, a pointer to a slice.
	FindMany(ctx context.Context, collection string, filter Filter, opts FindOptions, out any) error
	Count(ctx context.Context, collection string, filter Filter) (int64, error)

	Insert(ctx context.Context, collection string, doc any) error
	UpdateFields(ctx context.Context, collection, id string, fields Fields) (bool, error)
	// UpdateWhere applies fields to every document matching filter and
	// returns how many matched.
	UpdateWhere(ctx context.Context, collection string, filter Filter, fields Fields) (int64, error)

	Increment(ctx context.Context, collection, id, field string, delta int) (bool, error)
	// ConditionalIncrement applies delta only if the result stays >= floor.
	// The check and the write are a single atomic store operation; false
	// means the document is missing or the guard failed.
	ConditionalIncrement(ctx context.Context, collection, id, field string, delta, floor int) (bool, error)

	AddToSet(ctx context.Context, collection, id, field, value string) (bool, error)
	RemoveFromSet(ctx context.Context, collection, id, field, value string) (bool, error)
	// RemoveFromSetWhere pulls value from field on every matching document.
	RemoveFromSetWhere(ctx context.Context, collection string, filter Filter, field, value string) (int64, error)

	DeleteByID(ctx context.Context, collection, id string) (bool, error)
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)
}
