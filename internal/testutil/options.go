package testutil

import "time"

// ChapterData holds data for a chapter to be inserted.
type ChapterData struct {
	Number  int
	Heading string
}

// Chapter creates a ChapterData structure.
func Chapter(number int, heading string) ChapterData {
	return ChapterData{Number: number, Heading: heading}
}

// EditionData holds data for an edition to be inserted.
type EditionData struct {
	Code   string
	Format string
	Pages  int
}

// Edition creates an EditionData structure.
func Edition(code, format string, pages int) EditionData {
	return EditionData{Code: code, Format: format, Pages: pages}
}

// bookData holds all data for a book to be inserted.
type bookData struct {
	id          int64
	version     int64
	title       string
	isbn        string
	published   *time.Time
	genre       string
	authorID    *int64
	publisherID *string
	chapters    []ChapterData
	tags        []string
	editions    []EditionData
}

func defaultBook(id int64) bookData {
	return bookData{
		id:    id,
		title: "Book " + itoa(id),
		genre: "unknown",
	}
}

// BookOption configures a book during builder setup.
type BookOption func(*bookData)

// Title sets the book title.
func Title(title string) BookOption {
	return func(b *bookData) { b.title = title }
}

// ISBN sets the book ISBN.
func ISBN(isbn string) BookOption {
	return func(b *bookData) { b.isbn = isbn }
}

// Version sets the stored version.
func Version(v int64) BookOption {
	return func(b *bookData) { b.version = v }
}

// Genre sets the genre name (fiction, science, history, poetry).
func Genre(g string) BookOption {
	return func(b *bookData) { b.genre = g }
}

// Published sets the publication time.
func Published(t time.Time) BookOption {
	return func(b *bookData) { b.published = &t }
}

// WrittenBy sets the author of the book.
func WrittenBy(authorID int64) BookOption {
	return func(b *bookData) { b.authorID = &authorID }
}

// PublishedBy sets the publisher of the book.
func PublishedBy(publisherID string) BookOption {
	return func(b *bookData) { b.publisherID = &publisherID }
}

// Chapters adds chapters to the book (nested option).
func Chapters(chapters ...ChapterData) BookOption {
	return func(b *bookData) { b.chapters = append(b.chapters, chapters...) }
}

// Tags adds tag labels to the book. Tags are shared by label.
func Tags(labels ...string) BookOption {
	return func(b *bookData) { b.tags = append(b.tags, labels...) }
}

// Editions adds editions to the book (nested option).
func Editions(editions ...EditionData) BookOption {
	return func(b *bookData) { b.editions = append(b.editions, editions...) }
}
