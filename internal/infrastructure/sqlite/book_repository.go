package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/zjrosen/domxml/internal/library"
	"github.com/zjrosen/domxml/internal/log"
	"github.com/zjrosen/domxml/internal/proxy"
)

// BookRepository loads and stores books.
type BookRepository struct {
	s *Session
}

// Get loads the book with id. The author is a proxy that is loaded on first
// access; the publisher, chapters, tags and editions are loaded eagerly.
// Returns ErrNotFound if no such book exists.
func (r *BookRepository) Get(ctx context.Context, id int64) (*library.Book, error) {
	if b, ok := lookup[*library.Book](ctx, r.s, "Book", id); ok {
		return b, nil
	}

	row := r.s.conn.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	model, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}

	book := model.toDomain()
	r.s.remember(ctx, "Book", id, book)

	if model.AuthorID != nil {
		authorID := *model.AuthorID
		book.Author = proxy.NewLazy("Author", authorID, func(any) (*library.Author, error) {
			return r.s.Authors().Get(ctx, authorID)
		})
	}
	if model.PublisherID != nil {
		pub, err := r.s.Publishers().getByString(ctx, *model.PublisherID)
		if err != nil {
			return nil, err
		}
		book.Publisher = pub
	}
	if book.Chapters, err = r.chapters(ctx, id); err != nil {
		return nil, err
	}
	if book.Tags, err = r.tags(ctx, id); err != nil {
		return nil, err
	}
	if book.Editions, err = r.editions(ctx, id); err != nil {
		return nil, err
	}

	log.Debug(log.CatDB, "Loaded book", "id", id, "chapters", len(book.Chapters))
	return book, nil
}

func (r *BookRepository) chapters(ctx context.Context, bookID int64) ([]*library.Chapter, error) {
	rows, err := r.s.conn.QueryContext(ctx,
		`SELECT id, number, heading FROM chapters WHERE book_id = ? ORDER BY number`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chapters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*library.Chapter
	for rows.Next() {
		var c library.Chapter
		if err := rows.Scan(&c.ID, &c.Number, &c.Heading); err != nil {
			return nil, fmt.Errorf("failed to scan chapter row: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *BookRepository) tags(ctx context.Context, bookID int64) (mapset.Set[*library.Tag], error) {
	rows, err := r.s.conn.QueryContext(ctx,
		`SELECT t.id, t.label FROM tags t JOIN book_tags bt ON bt.tag_id = t.id WHERE bt.book_id = ?`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := library.NewTagSet()
	for rows.Next() {
		var t library.Tag
		if err := rows.Scan(&t.ID, &t.Label); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		shared, ok := lookup[*library.Tag](ctx, r.s, "Tag", t.ID)
		if !ok {
			shared = &t
			r.s.remember(ctx, "Tag", t.ID, shared)
		}
		set.Add(shared)
	}
	return set, rows.Err()
}

func (r *BookRepository) editions(ctx context.Context, bookID int64) (map[string]*library.Edition, error) {
	rows, err := r.s.conn.QueryContext(ctx,
		`SELECT id, code, format, pages FROM editions WHERE book_id = ?`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load editions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]*library.Edition)
	for rows.Next() {
		var e library.Edition
		if err := rows.Scan(&e.ID, &e.Code, &e.Format, &e.Pages); err != nil {
			return nil, fmt.Errorf("failed to scan edition row: %w", err)
		}
		out[e.Code] = &e
	}
	return out, rows.Err()
}

// ListByAuthor loads every book written by the author, ordered by id.
func (r *BookRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*library.Book, error) {
	rows, err := r.s.conn.QueryContext(ctx, `SELECT id FROM books WHERE author_id = ? ORDER BY id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan book id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating book rows: %w", err)
	}
	_ = rows.Close()

	books := make([]*library.Book, 0, len(ids))
	for _, id := range ids {
		b, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

// Save persists a book with its chapters, tags and editions.
// New books (ID == 0) are inserted and get their ID set. Existing books are
// updated when their version matches the stored one, which is then
// incremented; otherwise ErrStaleVersion is returned.
func (r *BookRepository) Save(ctx context.Context, b *library.Book) error {
	authorID, err := bookAuthorID(b)
	if err != nil {
		return err
	}
	model := toBookModel(b, authorID)

	err = r.s.inTx(ctx, func(tx *sql.Tx) error {
		if b.ID == 0 {
			result, err := tx.ExecContext(ctx,
				`INSERT INTO books (version, title, isbn, published_at, genre, author_id, publisher_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				model.Version, model.Title, model.ISBN, model.PublishedAt, model.Genre, model.AuthorID, model.PublisherID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert book: %w", err)
			}
			if model.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
		} else {
			result, err := tx.ExecContext(ctx,
				`UPDATE books SET version = version + 1, title = ?, isbn = ?, published_at = ?, genre = ?,
					author_id = ?, publisher_id = ?
				 WHERE id = ? AND version = ?`,
				model.Title, model.ISBN, model.PublishedAt, model.Genre, model.AuthorID, model.PublisherID,
				model.ID, model.Version,
			)
			if err != nil {
				return fmt.Errorf("failed to update book: %w", err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("book %d version %d: %w", model.ID, model.Version, ErrStaleVersion)
			}
			model.Version++
		}
		return saveBookChildren(ctx, tx, model.ID, b)
	})
	if err != nil {
		return err
	}

	b.ID, b.Version = model.ID, model.Version
	r.s.remember(ctx, "Book", b.ID, b)
	return nil
}

func bookAuthorID(b *library.Book) (*int64, error) {
	if b.Author == nil {
		return nil, nil
	}
	if id, ok := b.Author.ProxyIdentifier(); ok {
		n, ok := id.(int64)
		if !ok {
			return nil, fmt.Errorf("author id %v is %T, want int64", id, id)
		}
		return &n, nil
	}
	a, err := b.Author.Get()
	if err != nil {
		return nil, err
	}
	if a == nil || a.ID == 0 {
		return nil, errors.New("author must be saved before the book")
	}
	return &a.ID, nil
}

func saveBookChildren(ctx context.Context, tx *sql.Tx, bookID int64, b *library.Book) error {
	for _, stmt := range []string{
		`DELETE FROM chapters WHERE book_id = ?`,
		`DELETE FROM editions WHERE book_id = ?`,
		`DELETE FROM book_tags WHERE book_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, bookID); err != nil {
			return fmt.Errorf("failed to clear book children: %w", err)
		}
	}

	for _, c := range b.Chapters {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (book_id, number, heading) VALUES (?, ?, ?)`, bookID, c.Number, c.Heading)
		if err != nil {
			return fmt.Errorf("failed to insert chapter: %w", err)
		}
		if c.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	}

	for _, code := range slices.Sorted(maps.Keys(b.Editions)) {
		e := b.Editions[code]
		e.Code = code
		result, err := tx.ExecContext(ctx,
			`INSERT INTO editions (book_id, code, format, pages) VALUES (?, ?, ?, ?)`, bookID, code, e.Format, e.Pages)
		if err != nil {
			return fmt.Errorf("failed to insert edition: %w", err)
		}
		if e.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	}

	if b.Tags == nil {
		return nil
	}
	for _, t := range b.Tags.ToSlice() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tags (label) VALUES (?) ON CONFLICT (label) DO NOTHING`, t.Label); err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE label = ?`, t.Label).Scan(&t.ID); err != nil {
			return fmt.Errorf("failed to read tag id: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO book_tags (book_id, tag_id) VALUES (?, ?)`, bookID, t.ID); err != nil {
			return fmt.Errorf("failed to link tag: %w", err)
		}
	}
	return nil
}
