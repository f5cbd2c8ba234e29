package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/domxml/internal/library"
	"github.com/zjrosen/domxml/internal/log"
	"github.com/zjrosen/domxml/internal/proxy"
)

// SeedPublisherID is the identifier of the seeded publisher.
var SeedPublisherID = uuid.MustParse("6f1c2a5e-8a1b-4d3e-9c7f-2b4e5d6a7c8e")

// Seed fills an empty database with a small sample library. It does nothing
// when the database already holds authors.
func Seed(ctx context.Context, db *DB) error {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`).Scan(&n); err != nil {
		return fmt.Errorf("failed to count authors: %w", err)
	}
	if n > 0 {
		return nil
	}

	s := db.Session()
	pub := &library.Publisher{
		ID:   SeedPublisherID,
		Name: "Harbor Press",
		Address: library.Address{
			Street:  "1 Quay Street",
			City:    "Bristol",
			Country: "UK",
		},
	}
	if err := s.Publishers().Save(ctx, pub); err != nil {
		return err
	}

	ursula := &library.Author{Name: "Ursula Vance"}
	if err := s.Authors().Save(ctx, ursula); err != nil {
		return err
	}

	books := []*library.Book{
		{
			Title:     "The Quiet Orbit",
			ISBN:      "978-0-00-000001-1",
			Published: time.Date(2019, time.March, 4, 0, 0, 0, 0, time.UTC),
			Genre:     library.GenreFiction,
			Publisher: pub,
			Chapters: []*library.Chapter{
				{Number: 1, Heading: "Launch"},
				{Number: 2, Heading: "Drift"},
			},
			Tags: library.NewTagSet(&library.Tag{Label: "space"}, &library.Tag{Label: "debut"}),
			Editions: map[string]*library.Edition{
				"hb": {Format: "hardback", Pages: 320},
				"pb": {Format: "paperback", Pages: 336},
			},
		},
		{
			Title:     "Salt and Iron",
			ISBN:      "978-0-00-000002-8",
			Published: time.Date(2022, time.October, 12, 0, 0, 0, 0, time.UTC),
			Genre:     library.GenreHistory,
			Publisher: pub,
			Chapters: []*library.Chapter{
				{Number: 1, Heading: "The Mine"},
			},
			Tags: library.NewTagSet(&library.Tag{Label: "industry"}),
		},
	}
	for _, b := range books {
		b.Author = proxy.Loaded("Author", ursula.ID, ursula)
		if err := s.Books().Save(ctx, b); err != nil {
			return fmt.Errorf("seed %q: %w", b.Title, err)
		}
	}

	log.Info(log.CatDB, "Seeded sample library", "authors", 1, "books", len(books))
	return nil
}
