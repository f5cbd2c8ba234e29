package domain

import "fmt"

// Kind is the shape of an association value.
type Kind int

const (
	// KindToOne references a single domain instance.
	KindToOne Kind = iota
	// KindToManyCollection references a collection of domain instances.
	KindToManyCollection
	// KindToManyMap references domain instances keyed by a map key.
	KindToManyMap
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindToOne:
		return "to-one"
	case KindToManyCollection:
		return "to-many-collection"
	case KindToManyMap:
		return "to-many-map"
	default:
		return "unknown"
	}
}

// Cardinality is the relational cardinality declared for an association.
type Cardinality string

const (
	OneToOne   Cardinality = "one-to-one"
	ManyToOne  Cardinality = "many-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToMany Cardinality = "many-to-many"
	Embedded   Cardinality = "embedded"
)

// ParseCardinality returns the Cardinality for s.
func ParseCardinality(s string) (Cardinality, error) {
	switch c := Cardinality(s); c {
	case OneToOne, ManyToOne, OneToMany, ManyToMany, Embedded:
		return c, nil
	default:
		return "", fmt.Errorf("unknown cardinality %q", s)
	}
}

// ToOne reports whether the cardinality references at most one instance.
func (c Cardinality) ToOne() bool {
	return c == OneToOne || c == ManyToOne || c == Embedded
}

// Ordering describes how the elements of a to-many association are ordered.
type Ordering int

const (
	// OrderSequence keeps elements in their stored order (lists).
	OrderSequence Ordering = iota
	// OrderUnordered has no defined order (sets, hash maps).
	OrderUnordered
	// OrderSorted keeps elements sorted by their natural order (sorted sets and maps).
	OrderSorted
)

// String returns a human-readable representation of the Ordering.
func (o Ordering) String() string {
	switch o {
	case OrderSequence:
		return "sequence"
	case OrderUnordered:
		return "unordered"
	case OrderSorted:
		return "sorted"
	default:
		return "unknown"
	}
}

// ParseOrdering returns the Ordering for s. An empty string is a sequence.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "sequence", "list":
		return OrderSequence, nil
	case "unordered", "set":
		return OrderUnordered, nil
	case "sorted":
		return OrderSorted, nil
	default:
		return 0, fmt.Errorf("unknown ordering %q", s)
	}
}

// Association describes a property that references other domain instances.
type Association struct {
	Kind        Kind
	Cardinality Cardinality
	Ordering    Ordering
	// Referenced is the class name of the referenced descriptor, empty when the
	// referenced type is not a domain class.
	Referenced string
}

// NewAssociation builds an association from a cardinality, deriving its kind.
// mapped selects KindToManyMap for to-many cardinalities.
func NewAssociation(c Cardinality, referenced string, ordering Ordering, mapped bool) *Association {
	a := &Association{Cardinality: c, Referenced: referenced, Ordering: ordering}
	switch {
	case c.ToOne():
		a.Kind = KindToOne
		a.Ordering = OrderSequence
	case mapped:
		a.Kind = KindToManyMap
	default:
		a.Kind = KindToManyCollection
	}
	return a
}

func (a *Association) String() string {
	if a.Kind == KindToOne {
		return fmt.Sprintf("%s %s", a.Cardinality, a.Referenced)
	}
	return fmt.Sprintf("%s %s (%s, %s)", a.Cardinality, a.Referenced, a.Kind, a.Ordering)
}
