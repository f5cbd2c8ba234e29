package testutil

import (
	"database/sql"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type authorData struct {
	id      int64
	version int64
	name    string
}

type publisherData struct {
	id   string
	name string
	city string
}

// Builder accumulates test data and inserts it in the correct order.
type Builder struct {
	t          *testing.T
	db         *sql.DB
	authors    []authorData
	publishers []publisherData
	books      []bookData
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sql.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithAuthor adds an author.
func (b *Builder) WithAuthor(id int64, name string) *Builder {
	b.authors = append(b.authors, authorData{id: id, name: name})
	return b
}

// WithPublisher adds a publisher. id must be a UUID string.
func (b *Builder) WithPublisher(id, name, city string) *Builder {
	b.publishers = append(b.publishers, publisherData{id: id, name: name, city: city})
	return b
}

// WithBook adds a book with optional configuration.
func (b *Builder) WithBook(id int64, opts ...BookOption) *Builder {
	book := defaultBook(id)
	for _, opt := range opts {
		opt(&book)
	}
	b.books = append(b.books, book)
	return b
}

// Build inserts all accumulated data into the database.
func (b *Builder) Build() {
	b.t.Helper()
	// Insert in dependency order: authors → publishers → books → children
	for _, a := range b.authors {
		_, err := b.db.Exec(`INSERT INTO authors (id, version, name) VALUES (?, ?, ?)`, a.id, a.version, a.name)
		require.NoError(b.t, err)
	}
	for _, p := range b.publishers {
		_, err := b.db.Exec(`INSERT INTO publishers (id, name, city) VALUES (?, ?, ?)`, p.id, p.name, p.city)
		require.NoError(b.t, err)
	}
	for _, book := range b.books {
		b.insertBook(book)
		b.insertChapters(book.id, book.chapters)
		b.insertTags(book.id, book.tags)
		b.insertEditions(book.id, book.editions)
	}
}

func (b *Builder) insertBook(book bookData) {
	b.t.Helper()
	var published *int64
	if book.published != nil {
		ts := book.published.Unix()
		published = &ts
	}
	_, err := b.db.Exec(
		`INSERT INTO books (id, version, title, isbn, published_at, genre, author_id, publisher_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.id, book.version, book.title, book.isbn, published, book.genre, book.authorID, book.publisherID,
	)
	require.NoError(b.t, err)
}

func (b *Builder) insertChapters(bookID int64, chapters []ChapterData) {
	b.t.Helper()
	for _, c := range chapters {
		_, err := b.db.Exec(`INSERT INTO chapters (book_id, number, heading) VALUES (?, ?, ?)`,
			bookID, c.Number, c.Heading)
		require.NoError(b.t, err)
	}
}

func (b *Builder) insertTags(bookID int64, labels []string) {
	b.t.Helper()
	for _, label := range labels {
		_, err := b.db.Exec(`INSERT INTO tags (label) VALUES (?) ON CONFLICT (label) DO NOTHING`, label)
		require.NoError(b.t, err)
		_, err = b.db.Exec(
			`INSERT INTO book_tags (book_id, tag_id) SELECT ?, id FROM tags WHERE label = ?`, bookID, label)
		require.NoError(b.t, err)
	}
}

func (b *Builder) insertEditions(bookID int64, editions []EditionData) {
	b.t.Helper()
	for _, e := range editions {
		_, err := b.db.Exec(`INSERT INTO editions (book_id, code, format, pages) VALUES (?, ?, ?, ?)`,
			bookID, e.Code, e.Format, e.Pages)
		require.NoError(b.t, err)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
