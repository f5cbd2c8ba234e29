package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/zjrosen/domxml/internal/cachemanager"
)

// Repository errors
var (
	ErrNotFound         = errors.New("not found")
	ErrStaleVersion     = errors.New("stale version")
	ErrUnsupportedClass = errors.New("class is not loadable by id")
)

// Session is a unit of work. Every instance loaded through one session is
// loaded once and shared, so an object graph holds a single instance per row.
// A Session is not safe for concurrent use.
type Session struct {
	conn     *sql.DB
	identity *cachemanager.InMemoryCacheManager[string, any]
}

func newSession(conn *sql.DB) *Session {
	return &Session{
		conn:     conn,
		identity: cachemanager.NewInMemoryCacheManager[string, any]("identity-map", cachemanager.NoExpiration, 0),
	}
}

func identityKey(class string, id any) string {
	return fmt.Sprintf("%s#%v", class, id)
}

func lookup[T any](ctx context.Context, s *Session, class string, id any) (T, bool) {
	var zero T
	v, ok := s.identity.Get(ctx, identityKey(class, id))
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func (s *Session) remember(ctx context.Context, class string, id any, v any) {
	s.identity.Set(ctx, identityKey(class, id), v, cachemanager.NoExpiration)
}

// Clear detaches every loaded instance.
func (s *Session) Clear(ctx context.Context) error {
	return s.identity.Flush(ctx)
}

// Loaded returns the number of instances in the identity map.
func (s *Session) Loaded() int {
	return s.identity.Len()
}

// Books returns the book repository of this session.
func (s *Session) Books() *BookRepository {
	return &BookRepository{s: s}
}

// Authors returns the author repository of this session.
func (s *Session) Authors() *AuthorRepository {
	return &AuthorRepository{s: s}
}

// Publishers returns the publisher repository of this session.
func (s *Session) Publishers() *PublisherRepository {
	return &PublisherRepository{s: s}
}

// Find loads the instance of class identified by the string form of its id.
func (s *Session) Find(ctx context.Context, class, id string) (any, error) {
	switch class {
	case "Book", "Author":
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s id %q: %w", class, id, err)
		}
		if class == "Book" {
			return s.Books().Get(ctx, n)
		}
		return s.Authors().Get(ctx, n)
	case "Publisher":
		u, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%s id %q: %w", class, id, err)
		}
		return s.Publishers().Get(ctx, u)
	default:
		return nil, fmt.Errorf("%s: %w", class, ErrUnsupportedClass)
	}
}

// inTx runs fn in a transaction, rolling back when it fails.
func (s *Session) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
