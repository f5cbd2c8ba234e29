package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/domxml/internal/infrastructure/sqlite"
)

// run executes the command line with an isolated config file and database.
func run(t *testing.T, dbPath, configPath string, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, nil, dbPath, configPath, args...)
}

// runCLI is run with a caller-supplied cli; nil uses NewRootCmd.
func runCLI(t *testing.T, c *cli, dbPath, configPath string, args ...string) (string, error) {
	t.Helper()
	if configPath == "" {
		configPath = filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("output:\n  indent: \"\"\n  header: false\n"), 0o600))
	}
	root := NewRootCmd()
	if c != nil {
		root = newRootCmd(c)
	}
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath, "--db", dbPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func initDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.db")
	out, err := run(t, dbPath, "", "init-db")
	require.NoError(t, err)
	require.Contains(t, out, "database ready: "+dbPath)
	return dbPath
}

func TestExport_Shallow(t *testing.T) {
	dbPath := initDB(t)

	out, err := run(t, dbPath, "", "export", "Book", "1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, `<book id="1"><title>The Quiet Orbit</title>`), out)
	require.Contains(t, out, `<author id="1"></author>`)
	require.NotContains(t, out, "version=")
}

func TestExport_FlagsOverrideConfig(t *testing.T) {
	dbPath := initDB(t)

	out, err := run(t, dbPath, "", "export", "book", "1", "--full", "--version", "--exclude", "isbn", "--exclude", "Author.name")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, `<book id="1" version="0">`), out)
	require.Contains(t, out, "<title>Salt and Iron</title>", "full mode follows the author to their books")
	require.NotContains(t, out, "<isbn>")
	require.NotContains(t, out, "Ursula Vance")
}

func TestExport_ConfigFile(t *testing.T) {
	dbPath := initDB(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
marshal:
  include_version: true
  include:
    Author: [version, name]
output:
  indent: ""
  header: true
`), 0o600))

	out, err := run(t, dbPath, configPath, "export", "Author", "1")
	require.NoError(t, err)
	require.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><author version="0"><name>Ursula Vance</name></author>`+"\n", out)
}

func TestExport_ToFile(t *testing.T) {
	dbPath := initDB(t)
	outPath := filepath.Join(t.TempDir(), "publisher.xml")

	out, err := run(t, dbPath, "", "export", "Publisher", sqlite.SeedPublisherID.String(), "-o", outPath)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `<publisher id="`+sqlite.SeedPublisherID.String()+`">`)
	require.Contains(t, string(data), "<address><street>1 Quay Street</street>")
}

func TestExport_Errors(t *testing.T) {
	dbPath := initDB(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown class", []string{"export", "Magazine", "1"}, "not a domain class"},
		{"missing instance", []string{"export", "Book", "99"}, "not found"},
		{"class without repository", []string{"export", "Chapter", "1"}, "not loadable"},
		{"bad id", []string{"export", "Book", "one"}, "invalid syntax"},
		{"missing args", []string{"export", "Book"}, "accepts 2 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dbPath, "", tt.args...)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestClasses(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")

	out, err := run(t, dbPath, "", "classes")
	require.NoError(t, err)
	for _, class := range []string{"Author", "Book", "Chapter", "Edition", "Publisher", "Tag"} {
		require.Contains(t, out, class+" (struct)\n")
	}
	require.Contains(t, out, "  author: many-to-one Author\n")

	out, err = run(t, dbPath, "", "classes", "tag")
	require.NoError(t, err)
	require.Equal(t, "Tag (struct)\n  id: identifier\n  label: string\n", out)
}

func TestClasses_MappingDir(t *testing.T) {
	mappings := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(mappings, "shelf.yaml"), []byte(`
classes:
  - name: Shelf
    properties:
      - name: label
        type: string
      - name: books
        association: one-to-many
        ref: Book
`), 0o600))
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("mapping:\n  dir: "+mappings+"\n"), 0o600))

	out, err := run(t, filepath.Join(t.TempDir(), "library.db"), configPath, "classes", "Shelf")
	require.NoError(t, err)
	require.Contains(t, out, "Shelf (mapping)\n")
	require.Contains(t, out, "books: one-to-many Book (to-many-collection, sequence)")
}

func TestInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("marshal:\n  render: deep\n"), 0o600))

	_, err := run(t, filepath.Join(t.TempDir(), "library.db"), configPath, "classes")
	require.ErrorContains(t, err, "invalid configuration")
}

func TestParseExcludes(t *testing.T) {
	got := parseExcludes([]string{"isbn", "Author.name"}, map[string][]string{"Book": {"title"}})
	require.Equal(t, map[string][]string{
		"*":      {"isbn"},
		"Author": {"name"},
		"Book":   {"title"},
	}, map[string][]string(got))
}

type closeFailure struct {
	bytes.Buffer
}

func (*closeFailure) Close() error { return errors.New("disk full") }

func TestExport_OutputCloseError(t *testing.T) {
	dbPath := initDB(t)
	file := &closeFailure{}
	var opened string
	c := &cli{createOutput: func(name string) (io.WriteCloser, error) {
		opened = name
		return file, nil
	}}

	_, err := runCLI(t, c, dbPath, "", "export", "Book", "1", "-o", "book.xml")
	require.ErrorContains(t, err, "closing output file: disk full")
	require.Equal(t, "book.xml", opened)
	require.True(t, strings.HasPrefix(file.String(), `<book id="1">`), file.String())
}
