// Package access reads named properties off arbitrary Go values.
//
// A property name resolves, in order, to an exported field with that name
// (first letter case-insensitive), an exported field whose `domain` or `xml`
// tag names it, or a zero-argument getter method named Name() or GetName()
// returning one value, optionally followed by an error.
package access

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/zjrosen/domxml/internal/domain"
)

// ErrNoSuchProperty is returned when a property does not exist on a type.
var ErrNoSuchProperty = errors.New("no such property")

// ErrNilInstance is returned when reading from a nil instance.
var ErrNilInstance = errors.New("nil instance")

// Error describes a failed property read.
type Error struct {
	Property string
	Type     string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("read property %q of %s: %v", e.Property, e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Accessor implements domain.PropertyAccessor using reflection.
// Lookups are cached per type and property name; it is safe for concurrent use.
type Accessor struct {
	cache sync.Map // lookupKey -> lookup
}

var _ domain.PropertyAccessor = (*Accessor)(nil)

// New creates an Accessor.
func New() *Accessor {
	return &Accessor{}
}

type lookupKey struct {
	typ  reflect.Type
	name string
}

type lookup struct {
	field  []int
	method int
	ok     bool
}

// Get returns the value of property on instance.
func (a *Accessor) Get(instance any, property string) (any, error) {
	v := reflect.ValueOf(instance)
	if !v.IsValid() {
		return nil, &Error{Property: property, Type: "<nil>", Err: ErrNilInstance}
	}

	// Methods may be declared on the pointer receiver, so try them before
	// dereferencing.
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, &Error{Property: property, Type: v.Type().String(), Err: ErrNilInstance}
		}
		if l := a.resolve(v.Type(), property); l.ok && l.field == nil {
			return callGetter(v.Method(l.method), property, v.Type())
		}
		v = v.Elem()
	}

	l := a.resolve(v.Type(), property)
	if !l.ok {
		return nil, &Error{Property: property, Type: v.Type().String(), Err: ErrNoSuchProperty}
	}
	if l.field == nil {
		return callGetter(v.Method(l.method), property, v.Type())
	}

	f, err := v.FieldByIndexErr(l.field)
	if err != nil {
		return nil, &Error{Property: property, Type: v.Type().String(), Err: err}
	}
	return f.Interface(), nil
}

func callGetter(m reflect.Value, property string, t reflect.Type) (any, error) {
	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, &Error{Property: property, Type: t.String(), Err: out[1].Interface().(error)}
	}
	return out[0].Interface(), nil
}

func (a *Accessor) resolve(t reflect.Type, name string) lookup {
	key := lookupKey{typ: t, name: name}
	if cached, ok := a.cache.Load(key); ok {
		return cached.(lookup)
	}
	l := findProperty(t, name)
	a.cache.Store(key, l)
	return l
}

var errorType = reflect.TypeFor[error]()

func findProperty(t reflect.Type, name string) lookup {
	if name == "" {
		return lookup{}
	}
	exported := strings.ToUpper(name[:1]) + name[1:]

	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(exported); ok && f.IsExported() {
			return lookup{field: f.Index, ok: true}
		}
		if idx, ok := taggedField(t, name); ok {
			return lookup{field: idx, ok: true}
		}
		// Initialisms: "id" reads ID, "isbn" reads ISBN.
		for _, f := range reflect.VisibleFields(t) {
			if f.IsExported() && !f.Anonymous && strings.EqualFold(f.Name, name) {
				return lookup{field: f.Index, ok: true}
			}
		}
	}

	for _, candidate := range []string{exported, "Get" + exported} {
		m, ok := t.MethodByName(candidate)
		if !ok || m.Type.NumIn() != 1 {
			continue
		}
		switch m.Type.NumOut() {
		case 1:
			return lookup{method: m.Index, ok: true}
		case 2:
			if m.Type.Out(1) == errorType {
				return lookup{method: m.Index, ok: true}
			}
		}
	}
	return lookup{}
}

func taggedField(t reflect.Type, name string) ([]int, bool) {
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		for _, key := range []string{"domain", "xml"} {
			tag, ok := f.Tag.Lookup(key)
			if !ok {
				continue
			}
			if tagName, _, _ := strings.Cut(tag, ","); tagName == name {
				return f.Index, true
			}
		}
	}
	return nil, false
}
