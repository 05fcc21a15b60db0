package memory

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/slconcert/theatre-system/internal/core/ports"
)

func matches(doc bson.M, filter ports.Filter) bool {
	for _, c := range filter {
		if !match(doc[c.Field], c) {
			return false
		}
	}
	return true
}

func match(field any, c ports.Cond) bool {
	switch c.Op {
	case ports.OpEq:
		return anyElem(field, func(v any) bool { return equal(v, c.Value) })
	case ports.OpNe:
		return !anyElem(field, func(v any) bool { return equal(v, c.Value) })
	case ports.OpIn:
		ids, _ := c.Value.([]string)
		return anyElem(field, func(v any) bool {
			for _, id := range ids {
				if v == id {
					return true
				}
			}
			return false
		})
	case ports.OpGte:
		cmp, ok := compare(field, c.Value)
		return ok && cmp >= 0
	case ports.OpLte:
		cmp, ok := compare(field, c.Value)
		return ok && cmp <= 0
	case ports.OpContains:
		s, ok := field.(string)
		needle, _ := c.Value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	}
	return false
}

// anyElem applies fn to the value, or to each element when the stored value
// is an array, mirroring MongoDB's array matching.
func anyElem(field any, fn func(any) bool) bool {
	if arr, ok := field.(bson.A); ok {
		for _, v := range arr {
			if fn(v) {
				return true
			}
		}
		return false
	}
	return fn(field)
}

func equal(a, b any) bool {
	if cmp, ok := compare(a, b); ok {
		return cmp == 0
	}
	return a == b
}

// compare orders numbers, instants and strings. ok is false when the two
// values are not of a comparable kind.
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return sign(fa - fb), true
	}
	if ta, ok := toMillis(a); ok {
		tb, ok := toMillis(b)
		if !ok {
			return 0, false
		}
		return sign(float64(ta - tb)), true
	}
	sa, ok := a.(string)
	if !ok {
		return 0, false
	}
	sb, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli(), true
	case *time.Time:
		if t == nil {
			return 0, false
		}
		return t.UnixMilli(), true
	case primitive.DateTime:
		return int64(t), true
	}
	return 0, false
}

// addNumber keeps the stored numeric type stable across increments.
func addNumber(cur any, delta int) any {
	switch n := cur.(type) {
	case int32:
		return n + int32(delta)
	case int64:
		return n + int64(delta)
	case float64:
		return n + float64(delta)
	}
	return int32(delta)
}
