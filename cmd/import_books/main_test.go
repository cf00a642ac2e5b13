package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/library"
)

func newManager(t *testing.T, capacity int) *library.LibraryManager {
	t.Helper()
	dir := t.TempDir()
	mgr := library.NewLibraryManager(
		library.NewTextFile(filepath.Join(dir, "books.txt")),
		library.NewTextFile(filepath.Join(dir, "books_backup.txt")),
		capacity,
	)
	require.NoError(t, mgr.Load())
	return mgr
}

func TestImportBooks(t *testing.T) {
	mgr := newManager(t, library.DefaultCapacity)
	csv := `isbn,title,author,edition,publication,category
111,Dune,Frank Herbert,1st,Chilton,SF
,No ISBN,Nobody,,,
222,"Emma, Revised",Jane Austen
333
`
	var out bytes.Buffer
	added, skipped, err := importBooks(mgr, strings.NewReader(csv), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, skipped)

	books := mgr.Books()
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "SF", books[0].Category)
	assert.Equal(t, "Emma, Revised", books[1].Title)
	assert.Empty(t, books[1].Edition)
}

func TestImportBooksStopsWhenFull(t *testing.T) {
	mgr := newManager(t, 2)
	csv := "1,A\n2,B\n3,C\n"

	var out bytes.Buffer
	added, _, err := importBooks(mgr, strings.NewReader(csv), &out)
	require.ErrorIs(t, err, library.ErrCapacityExceeded)
	assert.Equal(t, 2, added)
	assert.Contains(t, out.String(), "catalog full")
	assert.Equal(t, 2, mgr.Len())
}
