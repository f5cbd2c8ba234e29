package metadata

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/domxml/internal/domain"
)

const authorsYAML = `
classes:
  - name: Author
    version: version
    properties:
      - name: name
        type: string
      - name: books
        association: one-to-many
        ref: Book
        ordering: unordered
`

const booksYAML = `
classes:
  - name: Book
    id: isbn
    properties:
      - name: title
      - name: author
        association: many-to-one
        ref: Author
      - name: chapters
        association: one-to-many
        ref: Chapter
        ordering: sorted
        map: true
  - name: Chapter
    properties:
      - name: heading
`

func TestParseMappings(t *testing.T) {
	descs, err := ParseMappings([]byte(booksYAML))
	require.NoError(t, err)
	require.Len(t, descs, 2)

	book := descs[0]
	require.Equal(t, "Book", book.Name)
	require.Equal(t, "isbn", book.Identifier.Name)
	require.Nil(t, book.Version)

	author := book.Property("author")
	require.Equal(t, domain.KindToOne, author.Association.Kind)
	require.Equal(t, "Author", author.Type, "association type defaults to the referenced class")

	chapters := book.Property("chapters")
	require.Equal(t, domain.KindToManyMap, chapters.Association.Kind)
	require.Equal(t, domain.OrderSorted, chapters.Association.Ordering)

	require.Equal(t, "id", descs[1].Identifier.Name)
}

func TestParseMappings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "classes: [", ""},
		{"bad cardinality", "classes:\n  - name: A\n    properties:\n      - name: b\n        association: few-to-one\n", "few-to-one"},
		{"bad ordering", "classes:\n  - name: A\n    properties:\n      - name: b\n        association: one-to-many\n        ordering: shuffled\n", "shuffled"},
		{"missing name", "classes:\n  - properties: []\n", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMappings([]byte(tt.content))
			require.Error(t, err)
			if tt.want != "" {
				require.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestLoadMappings(t *testing.T) {
	fsys := fstest.MapFS{
		"mappings/authors.yaml":   {Data: []byte(authorsYAML)},
		"mappings/nested/book.yml": {Data: []byte(booksYAML)},
		"mappings/README.md":      {Data: []byte("# not a mapping")},
	}

	descs, err := LoadMappings(fsys, "mappings")
	require.NoError(t, err)

	var names []string
	for _, d := range descs {
		names = append(names, d.Name)
	}
	require.ElementsMatch(t, []string{"Author", "Book", "Chapter"}, names)
}

func TestLoadMappings_DuplicateClass(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte(authorsYAML)},
		"b.yaml": {Data: []byte(authorsYAML)},
	}
	_, err := LoadMappings(fsys, ".")
	require.ErrorIs(t, err, ErrDuplicateClass)
}

func TestIsMappingFile(t *testing.T) {
	require.True(t, IsMappingFile("x/a.yaml"))
	require.True(t, IsMappingFile("a.yml"))
	require.False(t, IsMappingFile("a.yaml.bak"))
	require.False(t, IsMappingFile("a.json"))
}
