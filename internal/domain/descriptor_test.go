package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func bookDescriptor() *Descriptor {
	return &Descriptor{
		Name:       "Book",
		Identifier: &Property{Name: "id", Type: "int64"},
		Version:    &Property{Name: "version", Type: "int64"},
		Properties: []*Property{
			{Name: "title", Type: "string"},
			{Name: "author", Type: "Author", Association: NewAssociation(ManyToOne, "Author", OrderSequence, false)},
			{Name: "tags", Type: "[]Tag", Association: NewAssociation(ManyToMany, "Tag", OrderUnordered, false)},
		},
	}
}

func TestDescriptor_PropertyName(t *testing.T) {
	require.Equal(t, "book", bookDescriptor().PropertyName())
	require.Equal(t, "bookEdition", (&Descriptor{Name: "BookEdition"}).PropertyName())
	require.Equal(t, "", (&Descriptor{}).PropertyName())
}

func TestDescriptor_Property(t *testing.T) {
	d := bookDescriptor()
	require.Equal(t, "title", d.Property("title").Name)
	require.Nil(t, d.Property("missing"))

	var nilDesc *Descriptor
	require.Nil(t, nilDesc.Property("title"))
}

func TestDescriptor_Associations(t *testing.T) {
	assocs := bookDescriptor().Associations()
	require.Len(t, assocs, 2)
	require.Equal(t, "author", assocs[0].Name)
	require.Equal(t, "tags", assocs[1].Name)
}

func TestDescriptor_Validate(t *testing.T) {
	require.NoError(t, bookDescriptor().Validate())

	err := (&Descriptor{}).Validate()
	require.ErrorIs(t, err, ErrMissingName)

	err = (&Descriptor{Name: "Book"}).Validate()
	require.ErrorIs(t, err, ErrMissingIdentifier)

	d := bookDescriptor()
	d.Properties = append(d.Properties, &Property{Name: "title"})
	err = d.Validate()
	require.ErrorIs(t, err, ErrDuplicateProperty)
	require.Contains(t, err.Error(), "Book.title")

	d = bookDescriptor()
	d.Properties = append(d.Properties, &Property{Name: "id"})
	require.ErrorIs(t, d.Validate(), ErrDuplicateProperty)
}

func TestProperty_Flags(t *testing.T) {
	plain := &Property{Name: "title"}
	require.False(t, plain.IsAssociation())
	require.False(t, plain.IsEmbedded())
	require.Equal(t, "", plain.Referenced())

	embedded := &Property{Name: "address", Association: NewAssociation(Embedded, "Address", OrderSequence, false)}
	require.True(t, embedded.IsAssociation())
	require.True(t, embedded.IsEmbedded())
	require.Equal(t, "Address", embedded.Referenced())

	var nilProp *Property
	require.False(t, nilProp.IsAssociation())
}

func TestNewAssociation_Kind(t *testing.T) {
	tests := []struct {
		cardinality Cardinality
		mapped      bool
		want        Kind
	}{
		{OneToOne, false, KindToOne},
		{ManyToOne, true, KindToOne},
		{Embedded, false, KindToOne},
		{OneToMany, false, KindToManyCollection},
		{ManyToMany, false, KindToManyCollection},
		{OneToMany, true, KindToManyMap},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.cardinality, tt.mapped), func(t *testing.T) {
			a := NewAssociation(tt.cardinality, "X", OrderSorted, tt.mapped)
			require.Equal(t, tt.want, a.Kind)
			if tt.want == KindToOne {
				require.Equal(t, OrderSequence, a.Ordering, "to-one has no ordering")
			} else {
				require.Equal(t, OrderSorted, a.Ordering)
			}
		})
	}
}

func TestParseCardinality(t *testing.T) {
	c, err := ParseCardinality("many-to-one")
	require.NoError(t, err)
	require.Equal(t, ManyToOne, c)

	_, err = ParseCardinality("some-to-few")
	require.Error(t, err)
}

func TestParseOrdering(t *testing.T) {
	for in, want := range map[string]Ordering{
		"":          OrderSequence,
		"list":      OrderSequence,
		"set":       OrderUnordered,
		"unordered": OrderUnordered,
		"sorted":    OrderSorted,
	} {
		got, err := ParseOrdering(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseOrdering("random")
	require.Error(t, err)
}

func TestConversionError(t *testing.T) {
	cause := errors.New("boom")
	err := NewConversionError("Book", "title", cause)
	require.True(t, IsConversionError(err))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "converting Book.title: boom", err.Error())

	// The innermost location wins.
	outer := NewConversionError("Library", "books", err)
	require.Same(t, err, outer)

	require.Equal(t, "converting Book: boom", NewConversionError("Book", "", cause).Error())
	require.False(t, IsConversionError(cause))
}

type rank int

func (r rank) CompareTo(other any) int {
	return int(r) - int(other.(rank))
}

func TestCompare(t *testing.T) {
	require.Negative(t, Compare(1, 2))
	require.Positive(t, Compare(int64(3), 2))
	require.Zero(t, Compare(uint8(4), uint64(4)))
	require.Negative(t, Compare(1, 2.5))
	require.Negative(t, Compare("a", "b"))
	require.Negative(t, Compare(false, true))
	require.Negative(t, Compare(rank(1), rank(5)))
	require.Negative(t, Compare(nil, "x"))
	require.Zero(t, Compare(nil, nil))

	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Negative(t, Compare(early, early.Add(time.Hour)))
}

func TestSortedMap(t *testing.T) {
	m := NewSortedMap([]Entry{{Key: "b", Value: 2}, {Key: "a", Value: 1}, {Key: "c", Value: 3}})
	require.Equal(t, 3, m.Len())
	require.Equal(t, "a", m.Entries[0].Key)
	require.Equal(t, "c", m.Entries[2].Key)

	v, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)

	_, ok = m.Get("z")
	require.False(t, ok)
}

func TestString(t *testing.T) {
	require.Equal(t, "null", String(nil))
	require.Equal(t, "5", String(int64(5)))
	require.Equal(t, "5", String(5))
	require.Equal(t, "true", String(true))
	require.Equal(t, "1.5", String(1.5))
	require.Equal(t, "x", String("x"))
	require.Equal(t, "2024-03-01T10:00:00Z", String(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	require.Equal(t, "many-to-one", String(ManyToOne))
	require.Equal(t, "sorted", String(OrderSorted))

	n := 7
	require.Equal(t, "7", String(&n))
	require.Equal(t, "null", String((*int)(nil)))
	require.Equal(t, "null", String((*time.Time)(nil)))
}
