package docstore

import (
	"fmt"
	"time"
)

// Op is a comparison operator in a query filter.
type Op string

// Supported filter operators.
const (
	OpEqual        Op = "=="
	OpNotEqual     Op = "!="
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
)

// Valid reports whether op is a supported operator.
func (op Op) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// Filter compares one top-level field against a value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where builds a Filter.
func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Query selects documents of a collection.
type Query struct {
	Filters []Filter
	// Limit caps the number of returned documents. Zero means no limit.
	Limit int
}

// Validate checks that every filter uses a known operator and a field name.
func (q Query) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("negative limit %d", q.Limit)
	}
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("filter with empty field")
		}
		if !f.Op.Valid() {
			return fmt.Errorf("unsupported operator %q on field %q", f.Op, f.Field)
		}
	}
	return nil
}

// Match reports whether data satisfies every filter.
//
// A missing field never matches. Numbers compare by value regardless of
// their Go type, strings lexicographically, time.Time chronologically.
// Booleans support only == and !=. Values of different kinds are unequal
// and unordered.
func Match(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok {
			return false
		}
		if !matchOne(v, f.Op, f.Value) {
			return false
		}
	}
	return true
}

func matchOne(actual any, op Op, want any) bool {
	cmp, comparable := compare(actual, want)
	if !comparable {
		if op == OpNotEqual {
			return !equalUnordered(actual, want)
		}
		if op == OpEqual {
			return equalUnordered(actual, want)
		}
		return false
	}

	switch op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	}
	return false
}

// compare orders a and b. The second result is false when the pair has no
// ordering (different kinds, booleans, nil).
func compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	}
	return 0, false
}

func equalUnordered(a, b any) bool {
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
