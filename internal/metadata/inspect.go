package metadata

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zjrosen/domxml/internal/domain"
)

// TagName is the struct tag read by Inspect.
//
// Format: `domain:"[name][,option...]"`. Options:
//
//	id, version             identifier / version property
//	-, transient            not persistent
//	one-to-one, many-to-one, one-to-many, many-to-many, embedded
//	ref=Class               referenced class (default: the field's element type name)
//	sequence, unordered, sorted
//	map                     to-many association keyed by map key (default for map fields)
//	enum                    enumerated type, always rendered inline
const TagName = "domain"

// ErrNotStruct is returned when inspecting a non-struct type.
var ErrNotStruct = errors.New("domain class must be a struct")

type fieldTag struct {
	name        string
	skip        bool
	id          bool
	version     bool
	cardinality domain.Cardinality
	ref         string
	ordering    string
	mapped      bool
	enum        bool
}

func parseTag(tag string) (fieldTag, error) {
	var ft fieldTag
	if tag == "-" {
		ft.skip = true
		return ft, nil
	}
	parts := strings.Split(tag, ",")
	ft.name = strings.TrimSpace(parts[0])
	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "id":
			ft.id = true
		case opt == "version":
			ft.version = true
		case opt == "transient":
			ft.skip = true
		case opt == "enum":
			ft.enum = true
		case opt == "map":
			ft.mapped = true
		case opt == "sequence", opt == "unordered", opt == "sorted":
			ft.ordering = opt
		case strings.HasPrefix(opt, "ref="):
			ft.ref = strings.TrimPrefix(opt, "ref=")
		default:
			c, err := domain.ParseCardinality(opt)
			if err != nil {
				return ft, fmt.Errorf("tag option %q: %w", opt, err)
			}
			ft.cardinality = c
		}
	}
	return ft, nil
}

// Inspect builds a descriptor from the exported fields of a struct type.
//
// Untagged exported fields are plain persistent properties, except a field
// named ID (identifier) and an integer field named Version (version) when no
// field is tagged as such.
func Inspect(t reflect.Type) (*domain.Descriptor, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s: %w", t, ErrNotStruct)
	}

	d := &domain.Descriptor{Name: TypeName(t)}
	var implicitID, implicitVersion *domain.Property

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		ft, err := parseTag(f.Tag.Get(TagName))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", d.Name, f.Name, err)
		}
		if ft.skip {
			continue
		}
		name := ft.name
		if name == "" {
			name = PropertyName(f.Name)
		}
		p := &domain.Property{Name: name, Type: f.Type.String(), Enum: ft.enum}

		switch {
		case ft.id:
			d.Identifier = p
			continue
		case ft.version:
			d.Version = p
			continue
		case f.Name == "ID" && ft.cardinality == "":
			implicitID = p
			continue
		case f.Name == "Version" && ft.cardinality == "" && isInteger(f.Type):
			implicitVersion = p
			continue
		}

		if ft.cardinality != "" {
			assoc, err := fieldAssociation(f.Type, ft)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", d.Name, f.Name, err)
			}
			p.Association = assoc
		}
		d.Properties = append(d.Properties, p)
	}

	if d.Identifier == nil {
		d.Identifier = implicitID
	} else if implicitID != nil {
		d.Properties = append(d.Properties, implicitID)
	}
	if d.Version == nil {
		d.Version = implicitVersion
	} else if implicitVersion != nil {
		d.Properties = append(d.Properties, implicitVersion)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func fieldAssociation(t reflect.Type, ft fieldTag) (*domain.Association, error) {
	elem := t
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	mapped := ft.mapped
	if !ft.cardinality.ToOne() {
		switch elem.Kind() {
		case reflect.Map:
			mapped = true
			elem = elem.Elem()
		case reflect.Slice, reflect.Array:
			elem = elem.Elem()
		}
	}

	ordering, err := domain.ParseOrdering(ft.ordering)
	if err != nil {
		return nil, err
	}
	if ft.ordering == "" && mapped {
		ordering = domain.OrderUnordered
	}

	ref := ft.ref
	if ref == "" {
		ref = TypeName(elem)
	}
	return domain.NewAssociation(ft.cardinality, ref, ordering, mapped), nil
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
