package sqlite

import (
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/domxml/internal/library"
)

// bookModel represents a row of the books table.
// Times are stored as Unix timestamps.
type bookModel struct {
	ID          int64
	Version     int64
	Title       string
	ISBN        string
	PublishedAt *int64  // nullable
	Genre       string
	AuthorID    *int64  // nullable
	PublisherID *string // nullable
}

const bookColumns = `id, version, title, isbn, published_at, genre, author_id, publisher_id`

func scanBook(scanner interface{ Scan(...any) error }) (*bookModel, error) {
	var m bookModel
	err := scanner.Scan(&m.ID, &m.Version, &m.Title, &m.ISBN, &m.PublishedAt, &m.Genre, &m.AuthorID, &m.PublisherID)
	return &m, err
}

// toBookModel converts a library Book to its row. authorID is resolved by the caller.
func toBookModel(b *library.Book, authorID *int64) *bookModel {
	m := &bookModel{
		ID:       b.ID,
		Version:  b.Version,
		Title:    b.Title,
		ISBN:     b.ISBN,
		Genre:    b.Genre.String(),
		AuthorID: authorID,
	}
	if !b.Published.IsZero() {
		ts := b.Published.Unix()
		m.PublishedAt = &ts
	}
	if b.Publisher != nil {
		id := b.Publisher.ID.String()
		m.PublisherID = &id
	}
	return m
}

// toDomain converts the row to a Book without its associations.
func (m *bookModel) toDomain() *library.Book {
	b := &library.Book{
		ID:      m.ID,
		Version: m.Version,
		Title:   m.Title,
		ISBN:    m.ISBN,
	}
	if m.PublishedAt != nil {
		b.Published = time.Unix(*m.PublishedAt, 0).UTC()
	}
	if g, err := library.ParseGenre(m.Genre); err == nil {
		b.Genre = g
	}
	return b
}

// publisherModel represents a row of the publishers table.
type publisherModel struct {
	ID      string
	Name    string
	Street  string
	City    string
	Country string
}

func (m *publisherModel) toDomain() (*library.Publisher, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return &library.Publisher{
		ID:   id,
		Name: m.Name,
		Address: library.Address{
			Street:  m.Street,
			City:    m.City,
			Country: m.Country,
		},
	}, nil
}
