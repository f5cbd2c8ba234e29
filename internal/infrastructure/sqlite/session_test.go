package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/domxml/internal/library"
	"github.com/zjrosen/domxml/internal/marshal"
	"github.com/zjrosen/domxml/internal/testutil"
	"github.com/zjrosen/domxml/internal/xmlconv"
)

func libraryDB(t *testing.T) *DB {
	t.Helper()
	conn := testutil.NewTestDB(t)
	testutil.NewBuilder(t, conn).WithStandardLibrary().Build()
	return &DB{conn: conn, path: ":memory:"}
}

func TestSession_ChaptersOrderedByNumber(t *testing.T) {
	s := libraryDB(t).Session()

	b, err := s.Books().Get(context.Background(), 10)
	require.NoError(t, err)

	headings := make([]string, 0, len(b.Chapters))
	for _, c := range b.Chapters {
		headings = append(headings, c.Heading)
	}
	require.Equal(t, []string{"Launch", "Drift", "Return"}, headings)
	require.Equal(t, int64(3), b.Version)
}

func TestSession_SharedTagInstances(t *testing.T) {
	ctx := context.Background()
	s := libraryDB(t).Session()

	orbit, err := s.Books().Get(ctx, 10)
	require.NoError(t, err)
	notes, err := s.Books().Get(ctx, 20)
	require.NoError(t, err)

	find := func(b *library.Book, label string) *library.Tag {
		for _, tag := range b.Tags.ToSlice() {
			if tag.Label == label {
				return tag
			}
		}
		return nil
	}
	require.NotNil(t, find(orbit, "space"))
	require.Same(t, find(orbit, "space"), find(notes, "space"))
}

func TestSession_BookWithoutAssociations(t *testing.T) {
	s := libraryDB(t).Session()

	b, err := s.Books().Get(context.Background(), 30)
	require.NoError(t, err)
	require.Nil(t, b.Author)
	require.Nil(t, b.Publisher)
	require.Empty(t, b.Chapters)
	require.Equal(t, 0, b.Tags.Cardinality())
	require.Empty(t, b.Editions)
	require.Equal(t, library.GenrePoetry, b.Genre)

	var sb strings.Builder
	require.NoError(t, newMarshaller(t).Render(&sb, b, xmlconv.Options{}))
	require.Contains(t, sb.String(), "<author></author>")
	require.Contains(t, sb.String(), "<chapters></chapters>")
}

func TestSession_ExportSortedEditions(t *testing.T) {
	s := libraryDB(t).Session()

	b, err := s.Books().Get(context.Background(), 10)
	require.NoError(t, err)

	var sb strings.Builder
	m := newMarshaller(t, marshal.WithIncludeVersion(true))
	require.NoError(t, m.Render(&sb, b, xmlconv.Options{}))
	out := sb.String()

	require.True(t, strings.HasPrefix(out, `<book id="10" version="3">`), out)
	hb := strings.Index(out, `<entry key="hb"`)
	pb := strings.Index(out, `<entry key="pb"`)
	require.Positive(t, hb)
	require.Less(t, hb, pb, "sorted map entries are written in key order")
	require.Contains(t, out, `<tags><tag id="`)
	require.Contains(t, out, `<publisher id="`+testutil.HarborPressID+`"></publisher>`)
}
