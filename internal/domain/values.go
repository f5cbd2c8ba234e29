package domain

import (
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
)

const mapsetPkg = "github.com/deckarep/golang-set/v2"

// IsNil reports whether v is nil or a nil pointer, map, slice, interface,
// func or channel.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Indirect follows pointers and interfaces until a non-nil concrete value or
// a nil is reached.
func Indirect(rv reflect.Value) reflect.Value {
	for (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv
}

// SetMembers returns the members of a golang-set value of any element type.
// ok is false for everything else.
func SetMembers(v any) (members []any, ok bool) {
	if set, isSet := v.(mapset.Set[any]); isSet {
		return set.ToSlice(), true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	t := rv.Type()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() != mapsetPkg {
		return nil, false
	}
	m := rv.MethodByName("ToSlice")
	if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() != 1 {
		return nil, false
	}
	out := Indirect(m.Call(nil)[0])
	if out.Kind() != reflect.Slice {
		return nil, false
	}
	members = make([]any, out.Len())
	for i := range out.Len() {
		members[i] = out.Index(i).Interface()
	}
	return members, true
}
