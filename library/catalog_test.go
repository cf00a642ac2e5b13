package library

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func book(isbn, title string) Book {
	return NewBook(BookDetails{ISBN: isbn, Title: title}, fixedNow)
}

func isbns(books []Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ISBN)
	}
	return out
}

func TestCatalogCapacity(t *testing.T) {
	c := NewCatalog(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Add(book(fmt.Sprint(i), "T")))
	}
	require.True(t, c.Full())

	for i := 0; i < 2; i++ {
		err := c.Add(book("x", "T"))
		require.ErrorIs(t, err, ErrCapacityExceeded)
	}
	assert.Equal(t, 3, c.Len())
}

func TestNewCatalogDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewCatalog(0).Capacity())
	assert.Equal(t, DefaultCapacity, NewCatalog(-5).Capacity())
}

func TestCatalogRemovePreservesOrder(t *testing.T) {
	c := NewCatalog(10)
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.Add(book(id, id)))
	}

	removed, err := c.Remove("c")
	require.NoError(t, err)
	assert.Equal(t, "c", removed.ISBN)
	assert.Equal(t, []string{"a", "b", "d"}, isbns(c.Books()))

	_, err = c.Remove("zzz")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, c.Len())
}

func TestCatalogDuplicateISBNFirstMatchWins(t *testing.T) {
	c := NewCatalog(10)
	require.NoError(t, c.Add(book("222", "First")))
	require.NoError(t, c.Add(book("222", "Second")))

	got, err := c.Get("222")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)

	_, err = c.Remove("222")
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Second", c.Books()[0].Title)
}

func TestCatalogEdit(t *testing.T) {
	c := NewCatalog(10)
	require.NoError(t, c.Add(book("1", "Old")))

	edited, err := c.Edit("1", BookDetails{ISBN: "2", Title: "New", Author: "Someone"})
	require.NoError(t, err)
	assert.Equal(t, "2", edited.ISBN)
	assert.Equal(t, "New", edited.Title)
	assert.Equal(t, fixedNow, edited.AddedAt)

	_, err = c.Get("1")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Edit("1", BookDetails{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogSearch(t *testing.T) {
	c := NewCatalog(10)
	require.NoError(t, c.Add(book("111", "Dune")))
	require.NoError(t, c.Add(book("112", "Dune Messiah")))
	require.NoError(t, c.Add(book("113", "Emma")))

	assert.Equal(t, []string{"111", "112"}, isbns(c.Search("Dune")))
	assert.Equal(t, []string{"113"}, isbns(c.Search("113")))
	assert.Empty(t, c.Search("11"))
	assert.Empty(t, c.Search("dune"))
}

func TestCatalogSortByTitle(t *testing.T) {
	c := NewCatalog(10)
	for _, b := range []Book{book("1", "b"), book("2", "a"), book("3", "C"), book("4", "a")} {
		require.NoError(t, c.Add(b))
	}
	c.SortByTitle()

	books := c.Books()
	for i := 1; i < len(books); i++ {
		assert.LessOrEqual(t, books[i-1].Title, books[i].Title)
	}
	assert.Equal(t, []string{"3", "2", "4", "1"}, isbns(books))
}

func TestCatalogBorrowReturnGuards(t *testing.T) {
	c := NewCatalog(10)
	require.NoError(t, c.Add(book("1", "T")))
	when := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)

	_, err := c.Return("1")
	require.ErrorIs(t, err, ErrNotBorrowed)
	assert.Equal(t, book("1", "T"), c.Books()[0])

	b, err := c.Borrow("1", "Ann", when)
	require.NoError(t, err)
	assert.True(t, b.Borrowed)
	assert.Equal(t, "Ann", b.BorrowerName)
	assert.Equal(t, when, b.LastBorrowedAt)

	before := c.Books()[0]
	_, err = c.Borrow("1", "Bob", when.Add(time.Hour))
	require.ErrorIs(t, err, ErrAlreadyBorrowed)
	assert.Equal(t, before, c.Books()[0])

	b, err = c.Return("1")
	require.NoError(t, err)
	assert.False(t, b.Borrowed)
	assert.Equal(t, "Ann", b.BorrowerName)

	_, err = c.Borrow("nope", "Ann", when)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.Return("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogReview(t *testing.T) {
	c := NewCatalog(10)
	require.NoError(t, c.Add(book("1", "T")))

	for _, bad := range []float64{-0.1, 5.01, 7.5} {
		_, err := c.Review("1", "text", bad)
		require.ErrorIs(t, err, ErrInvalidRating)
	}
	assert.Zero(t, c.Books()[0].Rating)
	assert.Empty(t, c.Books()[0].Review)

	b, err := c.Review("1", "lovely", 5.0)
	require.NoError(t, err)
	assert.Equal(t, "lovely", b.Review)
	assert.InDelta(t, 5.0, b.Rating, 1e-9)

	_, err = c.Review("2", "x", 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogReplaceTruncatesToCapacity(t *testing.T) {
	c := NewCatalog(2)
	c.Replace([]Book{book("1", "a"), book("2", "b"), book("3", "c")})
	assert.Equal(t, []string{"1", "2"}, isbns(c.Books()))
}
