// Package migrations embeds the library database schema migrations.
package migrations

import (
	"embed"
	"io/fs"
	"slices"
	"strings"
)

// FS holds the migration files, named <version>_<title>.{up,down}.sql.
//
//go:embed *.sql
var FS embed.FS

// UpSchema returns every up migration concatenated in version order.
func UpSchema() (string, error) {
	names, err := fs.Glob(FS, "*.up.sql")
	if err != nil {
		return "", err
	}
	slices.Sort(names)

	var sb strings.Builder
	for _, name := range names {
		content, err := fs.ReadFile(FS, name)
		if err != nil {
			return "", err
		}
		sb.Write(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
