// Package library is the sample domain exported by domxml: books, their
// authors, chapters, tags, editions and publishers.
package library

import (
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/zjrosen/domxml/internal/proxy"
)

// Genre is the enumerated genre of a book.
type Genre int

const (
	GenreUnknown Genre = iota
	GenreFiction
	GenreScience
	GenreHistory
	GenrePoetry
)

var genreNames = map[Genre]string{
	GenreUnknown: "unknown",
	GenreFiction: "fiction",
	GenreScience: "science",
	GenreHistory: "history",
	GenrePoetry:  "poetry",
}

func (g Genre) String() string {
	if name, ok := genreNames[g]; ok {
		return name
	}
	return fmt.Sprintf("genre(%d)", int(g))
}

// ParseGenre returns the Genre named s, case-insensitively.
func ParseGenre(s string) (Genre, error) {
	for g, name := range genreNames {
		if strings.EqualFold(name, s) {
			return g, nil
		}
	}
	return GenreUnknown, fmt.Errorf("unknown genre %q", s)
}

// Author writes books. Books is loaded on first access.
type Author struct {
	ID      int64
	Version int64
	Name    string
	Books   *proxy.Lazy[[]*Book] `domain:",one-to-many,ref=Book"`
}

// Book is the aggregate root of the library.
type Book struct {
	ID        int64
	Version   int64
	Title     string
	ISBN      string
	Published time.Time
	Genre     Genre
	Author    *proxy.Lazy[*Author] `domain:",many-to-one,ref=Author"`
	Publisher *Publisher           `domain:",many-to-one"`
	Chapters  []*Chapter           `domain:",one-to-many"`
	Tags      mapset.Set[*Tag]     `domain:",many-to-many,ref=Tag,unordered"`
	Editions  map[string]*Edition  `domain:",one-to-many,sorted"`
}

// Chapter is a numbered part of a book. Chapters order by number.
type Chapter struct {
	ID      int64
	Number  int
	Heading string
}

func (c *Chapter) CompareTo(other any) int {
	o, ok := other.(*Chapter)
	if !ok {
		return -1
	}
	return c.Number - o.Number
}

// Tag labels books. Tags order by label.
type Tag struct {
	ID    int64
	Label string
}

func (t *Tag) CompareTo(other any) int {
	o, ok := other.(*Tag)
	if !ok {
		return -1
	}
	return strings.Compare(t.Label, o.Label)
}

// Edition is a published format of a book, keyed by its code.
type Edition struct {
	ID     int64
	Code   string
	Format string
	Pages  int
}

// Publisher publishes books. Its address is an embedded component.
type Publisher struct {
	ID      uuid.UUID
	Name    string
	Address Address `domain:",embedded"`
}

// Address is embedded in publishers; it is not a domain class of its own.
type Address struct {
	Street  string
	City    string
	Country string
}

// Registry is the part of the metadata registry used to register the library.
type Registry interface {
	RegisterType(sample any) error
}

// Register registers every library class with reg.
func Register(reg Registry) error {
	for _, sample := range []any{Author{}, Book{}, Chapter{}, Tag{}, Edition{}, Publisher{}} {
		if err := reg.RegisterType(sample); err != nil {
			return fmt.Errorf("register %T: %w", sample, err)
		}
	}
	return nil
}

// NewTagSet returns a tag set holding tags.
func NewTagSet(tags ...*Tag) mapset.Set[*Tag] {
	return mapset.NewSet(tags...)
}
