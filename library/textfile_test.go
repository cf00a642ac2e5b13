package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempTextFile(t *testing.T, name string) *TextFile {
	t.Helper()
	f := NewTextFile(filepath.Join(t.TempDir(), name))
	f.Codec = utcCodec
	return f
}

func TestTextFileMissingLoadsEmpty(t *testing.T) {
	f := tempTextFile(t, "books.txt")
	books, err := f.Load(DefaultCapacity)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestTextFileSaveLoad(t *testing.T) {
	f := tempTextFile(t, "books.txt")
	want := []Book{sampleBook(), book("2", "Emma"), book("3", "Ulysses")}
	require.NoError(t, f.Save(want))

	got, err := f.Load(DefaultCapacity)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"111", "2", "3"}, isbns(got))
	assert.Equal(t, "Ann", got[0].BorrowerName)
	assert.Equal(t, sampleBook().AddedAt.Truncate(1e9), got[0].AddedAt)

	raw, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(raw), "\n"))
}

func TestTextFileSaveOverwrites(t *testing.T) {
	f := tempTextFile(t, "books.txt")
	require.NoError(t, f.Save([]Book{book("1", "a"), book("2", "b")}))
	require.NoError(t, f.Save([]Book{book("3", "c")}))

	got, err := f.Load(DefaultCapacity)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, isbns(got))
}

func TestTextFileLoadStopsAtCapacity(t *testing.T) {
	f := tempTextFile(t, "books.txt")
	require.NoError(t, f.Save([]Book{book("1", "a"), book("2", "b"), book("3", "c")}))

	got, err := f.Load(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, isbns(got))
}

func TestTextFileSkipsBlankLines(t *testing.T) {
	f := tempTextFile(t, "books.txt")
	content := "1;A;;;;;0;0;;;;\n\n   \n2;B;;;;;0;0;;;;\n"
	require.NoError(t, os.WriteFile(f.Path, []byte(content), 0o644))

	got, err := f.Load(DefaultCapacity)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, isbns(got))
}

func TestTextFileSaveMissingDirectory(t *testing.T) {
	f := NewTextFile(filepath.Join(t.TempDir(), "no", "such", "dir", "books.txt"))
	err := f.Save([]Book{book("1", "a")})
	require.ErrorIs(t, err, ErrIO)
}

func TestTextFileLoadUnreadable(t *testing.T) {
	// Opening a directory succeeds on most platforms but reading it fails.
	dir := t.TempDir()
	f := NewTextFile(dir)
	_, err := f.Load(DefaultCapacity)
	require.ErrorIs(t, err, ErrIO)
}

func TestTextFileLoadsVeryLongLines(t *testing.T) {
	f := tempTextFile(t, "books.txt")
	long := book("2", strings.Repeat("x", 2<<20))
	long.Review = strings.Repeat("y", 1<<20)
	require.NoError(t, f.Save([]Book{book("1", "Small"), long, book("3", "After")}))

	got, err := f.Load(DefaultCapacity)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, isbns(got))
	assert.Len(t, got[1].Title, 2<<20)
	assert.Len(t, got[1].Review, 1<<20)
}

func TestTextFileLoadsLastLineWithoutNewline(t *testing.T) {
	f := tempTextFile(t, "books.txt")
	require.NoError(t, os.WriteFile(f.Path, []byte("1;A;;;;;0;0;;;;\r\n2;B;;;;;0;0;;;;"), 0o644))

	got, err := f.Load(DefaultCapacity)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, isbns(got))
	assert.Equal(t, "A", got[0].Title)
}
