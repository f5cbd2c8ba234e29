package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zjrosen/domxml/internal/library"
)

// PublisherRepository loads and stores publishers.
type PublisherRepository struct {
	s *Session
}

// Get loads the publisher with id.
func (r *PublisherRepository) Get(ctx context.Context, id uuid.UUID) (*library.Publisher, error) {
	return r.getByString(ctx, id.String())
}

func (r *PublisherRepository) getByString(ctx context.Context, id string) (*library.Publisher, error) {
	if p, ok := lookup[*library.Publisher](ctx, r.s, "Publisher", id); ok {
		return p, nil
	}

	var m publisherModel
	err := r.s.conn.QueryRowContext(ctx,
		`SELECT id, name, street, city, country FROM publishers WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.Street, &m.City, &m.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("publisher %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find publisher: %w", err)
	}

	p, err := m.toDomain()
	if err != nil {
		return nil, fmt.Errorf("publisher %s: %w", id, err)
	}
	r.s.remember(ctx, "Publisher", id, p)
	return p, nil
}

// Save inserts or replaces a publisher. A publisher without an ID gets a new one.
func (r *PublisherRepository) Save(ctx context.Context, p *library.Publisher) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.s.conn.ExecContext(ctx,
		`INSERT INTO publishers (id, name, street, city, country) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, street = excluded.street,
			city = excluded.city, country = excluded.country`,
		p.ID.String(), p.Name, p.Address.Street, p.Address.City, p.Address.Country,
	)
	if err != nil {
		return fmt.Errorf("failed to save publisher: %w", err)
	}
	r.s.remember(ctx, "Publisher", p.ID.String(), p)
	return nil
}
