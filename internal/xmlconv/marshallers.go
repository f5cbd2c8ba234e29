package xmlconv

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/zjrosen/domxml/internal/domain"
	"github.com/zjrosen/domxml/internal/metadata"
)

// TextSink is a sink that accepts character data.
type TextSink interface {
	domain.Sink
	Text(s string) error
}

// MarshallerFunc adapts a support predicate and a conversion function to ObjectMarshaller.
type MarshallerFunc struct {
	SupportsFunc func(v any) bool
	MarshalFunc  func(v any, sink domain.Sink) error
}

func (f MarshallerFunc) Supports(v any) bool                   { return f.SupportsFunc(v) }
func (f MarshallerFunc) Marshal(v any, sink domain.Sink) error { return f.MarshalFunc(v, sink) }

// defaultMarshallers returns the built-in chain, lowest precedence first.
func defaultMarshallers() []ObjectMarshaller {
	return []ObjectMarshaller{
		MarshallerFunc{isStruct, marshalStruct},
		MarshallerFunc{isList, marshalList},
		MarshallerFunc{isMap, marshalMap},
		MarshallerFunc{isPrimitive, marshalText},
		MarshallerFunc{isTextual, marshalText},
		MarshallerFunc{isTime, marshalText},
		// Sets print themselves through String; their members are wanted instead.
		MarshallerFunc{isSet, marshalSet},
		MarshallerFunc{isSortedMap, marshalSortedMap},
		MarshallerFunc{domain.IsNil, marshalNothing},
	}
}

func text(sink domain.Sink, s string) error {
	ts, ok := sink.(TextSink)
	if !ok {
		return fmt.Errorf("sink %T cannot write text", sink)
	}
	return ts.Text(s)
}

func marshalNothing(any, domain.Sink) error { return nil }

func isTime(v any) bool {
	switch v.(type) {
	case time.Time, *time.Time:
		return true
	}
	return false
}

func isTextual(v any) bool {
	switch v.(type) {
	case encoding.TextMarshaler, fmt.Stringer:
		return true
	}
	return false
}

func isPrimitive(v any) bool {
	if _, ok := v.([]byte); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func marshalText(v any, sink domain.Sink) error {
	switch x := v.(type) {
	case []byte:
		return text(sink, base64.StdEncoding.EncodeToString(x))
	case *time.Time:
		return text(sink, domain.String(*x))
	}
	return text(sink, domain.String(v))
}

func isSortedMap(v any) bool {
	switch v.(type) {
	case domain.SortedMap, *domain.SortedMap:
		return true
	}
	return false
}

func marshalSortedMap(v any, sink domain.Sink) error {
	m, ok := v.(domain.SortedMap)
	if !ok {
		m = *v.(*domain.SortedMap)
	}
	for _, e := range m.Entries {
		if err := writeEntry(sink, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(sink domain.Sink, key, value any) error {
	if err := sink.StartNode("entry"); err != nil {
		return err
	}
	if err := sink.Attribute("key", domain.String(key)); err != nil {
		return err
	}
	if err := sink.ConvertAnother(value); err != nil {
		return err
	}
	return sink.End()
}

func writeElement(sink domain.Sink, el any) error {
	if err := sink.StartNode(sink.ElementName(el)); err != nil {
		return err
	}
	if err := sink.ConvertAnother(el); err != nil {
		return err
	}
	return sink.End()
}

func isSet(v any) bool {
	_, ok := domain.SetMembers(v)
	return ok
}

// marshalSet writes set members in their natural order; sets have none of their own.
func marshalSet(v any, sink domain.Sink) error {
	members, _ := domain.SetMembers(v)
	slices.SortStableFunc(members, domain.Compare)
	for _, el := range members {
		if err := writeElement(sink, el); err != nil {
			return err
		}
	}
	return nil
}

func isList(v any) bool {
	k := domain.Indirect(reflect.ValueOf(v)).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func marshalList(v any, sink domain.Sink) error {
	rv := domain.Indirect(reflect.ValueOf(v))
	for i := range rv.Len() {
		if err := writeElement(sink, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func isMap(v any) bool {
	return domain.Indirect(reflect.ValueOf(v)).Kind() == reflect.Map
}

// marshalMap writes entries ordered by key so output is deterministic.
func marshalMap(v any, sink domain.Sink) error {
	rv := domain.Indirect(reflect.ValueOf(v))
	keys := rv.MapKeys()
	slices.SortStableFunc(keys, func(a, b reflect.Value) int {
		return domain.Compare(a.Interface(), b.Interface())
	})
	for _, k := range keys {
		if err := writeEntry(sink, k.Interface(), rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func isStruct(v any) bool {
	return domain.Indirect(reflect.ValueOf(v)).Kind() == reflect.Struct
}

// marshalStruct writes each exported field as a child node.
func marshalStruct(v any, sink domain.Sink) error {
	rv := domain.Indirect(reflect.ValueOf(v))
	for _, f := range reflect.VisibleFields(rv.Type()) {
		if !f.IsExported() || f.Anonymous || f.Tag.Get(metadata.TagName) == "-" {
			continue
		}
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			continue // promoted through a nil embedded pointer
		}
		if err := sink.StartNode(metadata.PropertyName(f.Name)); err != nil {
			return err
		}
		if err := sink.ConvertAnother(fv.Interface()); err != nil {
			return err
		}
		if err := sink.End(); err != nil {
			return err
		}
	}
	return nil
}
