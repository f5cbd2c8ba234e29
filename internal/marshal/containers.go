package marshal

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/zjrosen/domxml/internal/domain"
)

// Container errors
var (
	ErrNotCollection = errors.New("association value is not a collection")
	ErrNotMap        = errors.New("association value is not a map")
)

// elements returns the members of a to-many collection value. ordered is
// false when the source defines no iteration order (sets, set-like maps).
func elements(v any) ([]any, bool, error) {
	if members, ok := domain.SetMembers(v); ok {
		return members, false, nil
	}

	rv := domain.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceValues(rv), true, nil
	case reflect.Map:
		keys := make([]any, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.Interface())
		}
		return keys, false, nil
	}
	return nil, false, fmt.Errorf("%T: %w", v, ErrNotCollection)
}

func sliceValues(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// entries returns the entries of a to-many map value. ordered is true for
// domain.SortedMap.
func entries(v any) ([]domain.Entry, bool, error) {
	switch m := v.(type) {
	case domain.SortedMap:
		return slices.Clone(m.Entries), true, nil
	case *domain.SortedMap:
		return slices.Clone(m.Entries), true, nil
	}

	rv := domain.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Map {
		return nil, false, fmt.Errorf("%T: %w", v, ErrNotMap)
	}
	out := make([]domain.Entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, domain.Entry{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
	}
	return out, false, nil
}

func sortElements(elems []any) {
	slices.SortStableFunc(elems, domain.Compare)
}

func sortEntries(es []domain.Entry) {
	slices.SortStableFunc(es, func(a, b domain.Entry) int { return domain.Compare(a.Key, b.Key) })
}

// normalize copies an association value into a plain container matching the
// association's ordering: sorted maps become domain.SortedMap, sorted
// collections a sorted []any, unordered collections a mapset.Set[any],
// unordered maps a map[any]any and sequences a []any. To-one values pass through.
func normalize(a *domain.Association, v any) (any, error) {
	switch a.Kind {
	case domain.KindToManyMap:
		es, _, err := entries(v)
		if err != nil {
			return nil, err
		}
		if a.Ordering == domain.OrderSorted || !comparableKeys(es) {
			return domain.NewSortedMap(es), nil
		}
		out := make(map[any]any, len(es))
		for _, e := range es {
			out[e.Key] = e.Value
		}
		return out, nil

	case domain.KindToManyCollection:
		elems, _, err := elements(v)
		if err != nil {
			return nil, err
		}
		switch a.Ordering {
		case domain.OrderSorted:
			sortElements(elems)
			return elems, nil
		case domain.OrderUnordered:
			if !comparableValues(elems) {
				return elems, nil
			}
			return mapset.NewSet(elems...), nil
		default:
			return elems, nil
		}
	}
	return v, nil
}

func comparableValues(vs []any) bool {
	for _, v := range vs {
		if v != nil && !reflect.ValueOf(v).Comparable() {
			return false
		}
	}
	return true
}

func comparableKeys(es []domain.Entry) bool {
	for _, e := range es {
		if e.Key != nil && !reflect.ValueOf(e.Key).Comparable() {
			return false
		}
	}
	return true
}
