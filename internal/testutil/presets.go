package testutil

import "time"

// Publisher identifiers used by the presets.
const (
	HarborPressID = "0b7e8a52-3c1d-4f6e-8a9b-1c2d3e4f5a6b"
	NorthwindID   = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
)

// WithStandardLibrary adds the standard library dataset.
//
// Structure:
//
//	author 1 Ursula Vance
//	  ├── book 10 The Quiet Orbit (3 chapters, tags space+debut, editions hb+pb)
//	  └── book 11 Salt and Iron (1 chapter, tag history)
//	author 2 Tomas Reyes
//	  └── book 20 Field Notes (no chapters, tag space)
//	book 30 Anonymous Verses (no author, no publisher)
func (b *Builder) WithStandardLibrary() *Builder {
	return b.
		WithAuthor(1, "Ursula Vance").
		WithAuthor(2, "Tomas Reyes").
		WithPublisher(HarborPressID, "Harbor Press", "Bristol").
		WithPublisher(NorthwindID, "Northwind", "Oslo").
		WithBook(10,
			Title("The Quiet Orbit"), ISBN("978-0-00-000001-1"), Genre("fiction"), Version(3),
			Published(time.Date(2019, time.March, 4, 0, 0, 0, 0, time.UTC)),
			WrittenBy(1), PublishedBy(HarborPressID),
			// inserted out of order; chapters load ordered by number
			Chapters(Chapter(3, "Return"), Chapter(1, "Launch"), Chapter(2, "Drift")),
			Tags("space", "debut"),
			Editions(Edition("pb", "paperback", 336), Edition("hb", "hardback", 320))).
		WithBook(11,
			Title("Salt and Iron"), Genre("history"),
			WrittenBy(1), PublishedBy(HarborPressID),
			Chapters(Chapter(1, "The Mine")),
			Tags("history")).
		WithBook(20,
			Title("Field Notes"), Genre("science"),
			WrittenBy(2), PublishedBy(NorthwindID),
			Tags("space")).
		WithBook(30,
			Title("Anonymous Verses"), Genre("poetry"))
}
