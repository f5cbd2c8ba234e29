package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreset_StandardLibrary(t *testing.T) {
	db := NewTestDB(t)

	NewBuilder(t, db).WithStandardLibrary().Build()

	rows, err := db.Query(`SELECT id FROM books ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []int64{10, 11, 20, 30}, ids)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM authors`).Scan(&count))
	require.Equal(t, 2, count)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&count))
	require.Equal(t, 3, count, "space, debut, history")

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM books WHERE author_id IS NULL`).Scan(&count))
	require.Equal(t, 1, count)

	var heading string
	require.NoError(t, db.QueryRow(`SELECT heading FROM chapters WHERE book_id = 10 AND number = 3`).Scan(&heading))
	require.Equal(t, "Return", heading)
}
