package domain

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"time"
)

// Entry is one key/value pair of a map association.
type Entry struct {
	Key   any
	Value any
}

// SortedMap is a plain map copy whose entries are kept sorted by key.
type SortedMap struct {
	Entries []Entry
}

// NewSortedMap copies entries and sorts them by key.
func NewSortedMap(entries []Entry) SortedMap {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int { return Compare(a.Key, b.Key) })
	return SortedMap{Entries: out}
}

// Len returns the number of entries.
func (m SortedMap) Len() int { return len(m.Entries) }

// Get returns the value stored under key.
func (m SortedMap) Get(key any) (any, bool) {
	for _, e := range m.Entries {
		if Compare(e.Key, key) == 0 {
			return e.Value, true
		}
	}
	return nil, false
}

// Comparable is implemented by values with a natural order, used when
// sorting the elements of sorted associations.
type Comparable interface {
	CompareTo(other any) int
}

// Compare orders two values by their natural order: Comparable values first,
// then numbers, strings, booleans and times by value, and anything else by
// its string form.
func Compare(a, b any) int {
	if ca, ok := a.(Comparable); ok {
		return ca.CompareTo(b)
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.IsValid() && vb.IsValid() {
		switch {
		case isInt(va) && isInt(vb):
			return cmp.Compare(va.Int(), vb.Int())
		case isUint(va) && isUint(vb):
			return cmp.Compare(va.Uint(), vb.Uint())
		case isNumber(va) && isNumber(vb):
			return cmp.Compare(toFloat(va), toFloat(vb))
		case va.Kind() == reflect.String && vb.Kind() == reflect.String:
			return cmp.Compare(va.String(), vb.String())
		case va.Kind() == reflect.Bool && vb.Kind() == reflect.Bool:
			return cmp.Compare(boolRank(va.Bool()), boolRank(vb.Bool()))
		}
	}

	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumber(v reflect.Value) bool {
	return isInt(v) || isUint(v) || v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v):
		return float64(v.Int())
	case isUint(v):
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
