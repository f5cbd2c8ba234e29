package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/domxml/internal/library"
	"github.com/zjrosen/domxml/internal/proxy"
)

// AuthorRepository loads and stores authors.
type AuthorRepository struct {
	s *Session
}

// Get loads the author with id. The author's books are loaded on first access.
func (r *AuthorRepository) Get(ctx context.Context, id int64) (*library.Author, error) {
	if a, ok := lookup[*library.Author](ctx, r.s, "Author", id); ok {
		return a, nil
	}

	a := &library.Author{}
	err := r.s.conn.QueryRowContext(ctx,
		`SELECT id, version, name FROM authors WHERE id = ?`, id,
	).Scan(&a.ID, &a.Version, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("author %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}

	a.Books = proxy.NewLazy("Book", id, func(any) ([]*library.Book, error) {
		return r.s.Books().ListByAuthor(ctx, id)
	})
	r.s.remember(ctx, "Author", id, a)
	return a, nil
}

// Save inserts a new author (ID == 0) or updates an existing one under
// optimistic locking. The author's books are not saved.
func (r *AuthorRepository) Save(ctx context.Context, a *library.Author) error {
	if a.ID == 0 {
		result, err := r.s.conn.ExecContext(ctx,
			`INSERT INTO authors (version, name) VALUES (?, ?)`, a.Version, a.Name)
		if err != nil {
			return fmt.Errorf("failed to insert author: %w", err)
		}
		if a.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	} else {
		result, err := r.s.conn.ExecContext(ctx,
			`UPDATE authors SET version = version + 1, name = ? WHERE id = ? AND version = ?`,
			a.Name, a.ID, a.Version)
		if err != nil {
			return fmt.Errorf("failed to update author: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("author %d version %d: %w", a.ID, a.Version, ErrStaleVersion)
		}
		a.Version++
	}

	if a.Books == nil {
		id := a.ID
		a.Books = proxy.NewLazy("Book", id, func(any) ([]*library.Book, error) {
			return r.s.Books().ListByAuthor(ctx, id)
		})
	}
	r.s.remember(ctx, "Author", a.ID, a)
	return nil
}
