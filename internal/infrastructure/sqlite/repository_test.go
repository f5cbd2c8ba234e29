package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/domxml/internal/access"
	"github.com/zjrosen/domxml/internal/library"
	"github.com/zjrosen/domxml/internal/marshal"
	"github.com/zjrosen/domxml/internal/metadata"
	"github.com/zjrosen/domxml/internal/proxy"
	"github.com/zjrosen/domxml/internal/xmlconv"
)

func seededDB(t *testing.T) *DB {
	t.Helper()
	db := openTestDB(t)
	require.NoError(t, Seed(context.Background(), db))
	return db
}

func TestSeed_Idempotent(t *testing.T) {
	db := seededDB(t)
	require.NoError(t, Seed(context.Background(), db))

	var authors, books int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM authors").Scan(&authors))
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM books").Scan(&books))
	require.Equal(t, 1, authors)
	require.Equal(t, 2, books)
}

func TestBookRepository_Get(t *testing.T) {
	ctx := context.Background()
	s := seededDB(t).Session()

	b, err := s.Books().Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "The Quiet Orbit", b.Title)
	require.Equal(t, library.GenreFiction, b.Genre)
	require.Equal(t, time.Date(2019, time.March, 4, 0, 0, 0, 0, time.UTC), b.Published)
	require.Equal(t, int64(0), b.Version)

	require.NotNil(t, b.Author)
	require.False(t, b.Author.Initialized(), "author is loaded on first access")
	id, ok := b.Author.ProxyIdentifier()
	require.True(t, ok)
	require.Equal(t, int64(1), id)

	require.Len(t, b.Chapters, 2)
	require.Equal(t, "Launch", b.Chapters[0].Heading)
	require.Equal(t, 2, b.Chapters[1].Number)

	labels := make([]string, 0, b.Tags.Cardinality())
	for _, tag := range b.Tags.ToSlice() {
		labels = append(labels, tag.Label)
	}
	require.ElementsMatch(t, []string{"space", "debut"}, labels)

	require.Len(t, b.Editions, 2)
	require.Equal(t, "hardback", b.Editions["hb"].Format)
	require.Equal(t, "hb", b.Editions["hb"].Code)

	require.NotNil(t, b.Publisher)
	require.Equal(t, SeedPublisherID, b.Publisher.ID)
	require.Equal(t, "Bristol", b.Publisher.Address.City)

	a, err := b.Author.Get()
	require.NoError(t, err)
	require.Equal(t, "Ursula Vance", a.Name)
	require.Equal(t, 1, b.Author.LoadCount())
}

func TestBookRepository_GetNotFound(t *testing.T) {
	s := openTestDB(t).Session()

	_, err := s.Books().Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSession_IdentityMap(t *testing.T) {
	ctx := context.Background()
	s := seededDB(t).Session()

	b1, err := s.Books().Get(ctx, 1)
	require.NoError(t, err)
	b2, err := s.Books().Get(ctx, 1)
	require.NoError(t, err)
	require.Same(t, b1, b2)

	other, err := s.Books().Get(ctx, 2)
	require.NoError(t, err)
	require.Same(t, b1.Publisher, other.Publisher, "publisher is shared within a session")

	author, err := b1.Author.Get()
	require.NoError(t, err)
	books, err := author.Books.Get()
	require.NoError(t, err)
	require.Len(t, books, 2)
	require.Same(t, b1, books[0], "the author's books reuse loaded instances")
	require.Same(t, other, books[1])

	require.NoError(t, s.Clear(ctx))
	require.Zero(t, s.Loaded())
	b3, err := s.Books().Get(ctx, 1)
	require.NoError(t, err)
	require.NotSame(t, b1, b3)
}

func TestSession_Find(t *testing.T) {
	ctx := context.Background()
	s := seededDB(t).Session()

	v, err := s.Find(ctx, "Book", "2")
	require.NoError(t, err)
	require.Equal(t, "Salt and Iron", v.(*library.Book).Title)

	v, err = s.Find(ctx, "Author", "1")
	require.NoError(t, err)
	require.Equal(t, "Ursula Vance", v.(*library.Author).Name)

	v, err = s.Find(ctx, "Publisher", SeedPublisherID.String())
	require.NoError(t, err)
	require.Equal(t, "Harbor Press", v.(*library.Publisher).Name)

	_, err = s.Find(ctx, "Book", "abc")
	require.Error(t, err)

	_, err = s.Find(ctx, "Publisher", uuid.New().String())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Find(ctx, "Chapter", "1")
	require.ErrorIs(t, err, ErrUnsupportedClass)
}

func TestBookRepository_SaveUpdate(t *testing.T) {
	ctx := context.Background()
	db := seededDB(t)

	b, err := db.Session().Books().Get(ctx, 2)
	require.NoError(t, err)
	b.Title = "Salt and Iron (Revised)"
	b.Chapters = append(b.Chapters, &library.Chapter{Number: 2, Heading: "The Forge"})
	b.Tags.Add(&library.Tag{Label: "space"})
	b.Editions = map[string]*library.Edition{"eb": {Format: "ebook"}}
	require.NoError(t, db.Session().Books().Save(ctx, b))
	require.Equal(t, int64(1), b.Version)

	reloaded, err := db.Session().Books().Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "Salt and Iron (Revised)", reloaded.Title)
	require.Equal(t, int64(1), reloaded.Version)
	require.Len(t, reloaded.Chapters, 2)
	require.Equal(t, 2, reloaded.Tags.Cardinality())
	require.Len(t, reloaded.Editions, 1)

	var tags int
	require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM tags WHERE label = 'space'").Scan(&tags))
	require.Equal(t, 1, tags, "tags are shared by label")

	id, ok := reloaded.Author.ProxyIdentifier()
	require.True(t, ok)
	require.Equal(t, int64(1), id)
}

func TestBookRepository_SaveStaleVersion(t *testing.T) {
	ctx := context.Background()
	db := seededDB(t)

	first, err := db.Session().Books().Get(ctx, 1)
	require.NoError(t, err)
	second, err := db.Session().Books().Get(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, db.Session().Books().Save(ctx, first))
	err = db.Session().Books().Save(ctx, second)
	require.ErrorIs(t, err, ErrStaleVersion)
}

func TestBookRepository_SaveRequiresSavedAuthor(t *testing.T) {
	s := openTestDB(t).Session()

	b := &library.Book{
		Title:  "Orphan",
		Author: proxy.Loaded("Author", nil, &library.Author{Name: "Unsaved"}),
	}
	require.Error(t, s.Books().Save(context.Background(), b))
}

func TestAuthorRepository_SaveAndUpdate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	a := &library.Author{Name: "Ann"}
	require.NoError(t, db.Session().Authors().Save(ctx, a))
	require.NotZero(t, a.ID)
	require.NotNil(t, a.Books)

	a.Name = "Ann B."
	require.NoError(t, db.Session().Authors().Save(ctx, a))
	require.Equal(t, int64(1), a.Version)

	got, err := db.Session().Authors().Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Ann B.", got.Name)
	books, err := got.Books.Get()
	require.NoError(t, err)
	require.Empty(t, books)

	stale := &library.Author{ID: a.ID, Version: 0, Name: "Old"}
	require.ErrorIs(t, db.Session().Authors().Save(ctx, stale), ErrStaleVersion)
}

func TestPublisherRepository_Save(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	p := &library.Publisher{Name: "Lantern", Address: library.Address{City: "Leeds"}}
	require.NoError(t, db.Session().Publishers().Save(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	p.Name = "Lantern Books"
	require.NoError(t, db.Session().Publishers().Save(ctx, p))

	got, err := db.Session().Publishers().Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Lantern Books", got.Name)
	require.Equal(t, "Leeds", got.Address.City)
}

func newMarshaller(t *testing.T, opts ...marshal.Option) *marshal.DomainMarshaller {
	t.Helper()
	reg := metadata.NewRegistry(metadata.Options{CacheDescriptors: true})
	t.Cleanup(reg.Close)
	require.NoError(t, library.Register(reg))
	return marshal.New(reg, access.New(), proxy.NewResolver(), opts...)
}

func TestExport_Shallow(t *testing.T) {
	ctx := context.Background()
	s := seededDB(t).Session()
	b, err := s.Books().Get(ctx, 1)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, newMarshaller(t).Render(&sb, b, xmlconv.Options{}))
	out := sb.String()

	require.True(t, strings.HasPrefix(out, `<book id="1">`), out)
	require.Contains(t, out, `<author id="1"></author>`)
	require.Contains(t, out, `<publisher id="`+SeedPublisherID.String()+`"></publisher>`)
	require.Contains(t, out, `<editions><entry key="hb" id="`)
	require.False(t, b.Author.Initialized(), "shallow export must not load the author")
}

// Loading through one session keeps a single instance per row, so the
// book -> author -> books cycle terminates.
func TestExport_FullGraph(t *testing.T) {
	ctx := context.Background()
	s := seededDB(t).Session()
	b, err := s.Books().Get(ctx, 1)
	require.NoError(t, err)

	var sb strings.Builder
	m := newMarshaller(t, marshal.WithRenderMode(marshal.RenderFull), marshal.WithIncludeVersion(true))
	require.NoError(t, m.Render(&sb, b, xmlconv.Options{}))
	out := sb.String()

	require.True(t, strings.HasPrefix(out, `<book id="1" version="0">`), out)
	require.Contains(t, out, "<name>Ursula Vance</name>")
	require.Contains(t, out, "<title>Salt and Iron</title>")
	require.Equal(t, 1, strings.Count(out, "<title>The Quiet Orbit</title>"))
	require.Contains(t, out, "<city>Bristol</city>")
}
