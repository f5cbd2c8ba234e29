package domain

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// VersionProperty is the name passed to property filters when deciding
// whether the version attribute is written.
const VersionProperty = "version"

// Descriptor errors
var (
	ErrMissingName       = errors.New("descriptor name is required")
	ErrMissingIdentifier = errors.New("descriptor identifier is required")
	ErrDuplicateProperty = errors.New("duplicate property")
)

// Property describes one persistent property of a domain class.
type Property struct {
	Name string
	// Type is the declared type name, used for display only.
	Type string
	// Association is nil for plain (non-relational) properties.
	Association *Association
	// Enum marks properties whose type is an enumeration; enums always render inline.
	Enum bool
}

// IsAssociation reports whether the property references other domain instances.
func (p *Property) IsAssociation() bool {
	return p != nil && p.Association != nil
}

// IsEmbedded reports whether the property is an embedded component.
func (p *Property) IsEmbedded() bool {
	return p.IsAssociation() && p.Association.Cardinality == Embedded
}

// Referenced returns the referenced class name, or "" for plain properties.
func (p *Property) Referenced() string {
	if !p.IsAssociation() {
		return ""
	}
	return p.Association.Referenced
}

func (p *Property) String() string {
	if p.IsAssociation() {
		return fmt.Sprintf("%s: %s", p.Name, p.Association)
	}
	return fmt.Sprintf("%s: %s", p.Name, p.Type)
}

// Descriptor is the metadata of a persistence-mapped class.
type Descriptor struct {
	// Name is the class name used for lookups, e.g. "Book".
	Name string
	// Identifier is the id property. Required.
	Identifier *Property
	// Version is the optimistic-locking version property, nil when unversioned.
	Version *Property
	// Properties are the persistent properties in declaration order. The
	// identifier and version are not part of this list.
	Properties []*Property
}

// PropertyName returns the class name with its first letter lower-cased.
func (d *Descriptor) PropertyName() string {
	return LowerFirst(d.Name)
}

// Property returns the persistent property with the given name, or nil.
func (d *Descriptor) Property(name string) *Property {
	if d == nil {
		return nil
	}
	for _, p := range d.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Associations returns the association properties in declaration order.
func (d *Descriptor) Associations() []*Property {
	var out []*Property
	for _, p := range d.Properties {
		if p.IsAssociation() {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the descriptor is well formed.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return ErrMissingName
	}
	if d.Identifier == nil || d.Identifier.Name == "" {
		return fmt.Errorf("%s: %w", d.Name, ErrMissingIdentifier)
	}
	seen := map[string]bool{d.Identifier.Name: true}
	if d.Version != nil {
		if seen[d.Version.Name] {
			return fmt.Errorf("%s.%s: %w", d.Name, d.Version.Name, ErrDuplicateProperty)
		}
		seen[d.Version.Name] = true
	}
	for _, p := range d.Properties {
		if p.Name == "" {
			return fmt.Errorf("%s: property name is required", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s.%s: %w", d.Name, p.Name, ErrDuplicateProperty)
		}
		seen[p.Name] = true
	}
	return nil
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
