package library

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultCapacity is the catalog size limit when none is configured.
const DefaultCapacity = 100

// Catalog is the ordered, capacity-bounded in-memory book collection. Every
// lookup is a linear scan in order and returns the first match.
type Catalog struct {
	books    []Book
	capacity int
}

// NewCatalog returns an empty catalog holding at most capacity books.
// A non-positive capacity falls back to DefaultCapacity.
func NewCatalog(capacity int) *Catalog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Catalog{capacity: capacity}
}

func (c *Catalog) Len() int      { return len(c.books) }
func (c *Catalog) Capacity() int { return c.capacity }
func (c *Catalog) Full() bool    { return len(c.books) >= c.capacity }

// Books returns a copy of the catalog in its current order.
func (c *Catalog) Books() []Book { return slices.Clone(c.books) }

// Replace discards the current contents and keeps at most Capacity books.
func (c *Catalog) Replace(books []Book) {
	if len(books) > c.capacity {
		books = books[:c.capacity]
	}
	c.books = slices.Clone(books)
}

// Add appends b unless the catalog is full.
func (c *Catalog) Add(b Book) error {
	if c.Full() {
		return fmt.Errorf("add %q: %w (%d)", b.ISBN, ErrCapacityExceeded, c.capacity)
	}
	c.books = append(c.books, b)
	return nil
}

// IndexOf returns the position of the first book with isbn, or -1.
func (c *Catalog) IndexOf(isbn string) int {
	return slices.IndexFunc(c.books, func(b Book) bool { return b.ISBN == isbn })
}

// Get returns the first book with isbn.
func (c *Catalog) Get(isbn string) (Book, error) {
	i := c.IndexOf(isbn)
	if i < 0 {
		return Book{}, fmt.Errorf("isbn %q: %w", isbn, ErrNotFound)
	}
	return c.books[i], nil
}

// Remove deletes the first book with isbn; later books shift left by one.
func (c *Catalog) Remove(isbn string) (Book, error) {
	i := c.IndexOf(isbn)
	if i < 0 {
		return Book{}, fmt.Errorf("isbn %q: %w", isbn, ErrNotFound)
	}
	b := c.books[i]
	c.books = slices.Delete(c.books, i, i+1)
	return b, nil
}

// Edit overwrites the editable fields of the first book with isbn, including
// the ISBN itself.
func (c *Catalog) Edit(isbn string, d BookDetails) (Book, error) {
	i := c.IndexOf(isbn)
	if i < 0 {
		return Book{}, fmt.Errorf("isbn %q: %w", isbn, ErrNotFound)
	}
	c.books[i].apply(d)
	return c.books[i], nil
}

// Search returns every book whose ISBN equals keyword or whose title
// contains it.
func (c *Catalog) Search(keyword string) []Book {
	var out []Book
	for _, b := range c.books {
		if b.ISBN == keyword || strings.Contains(b.Title, keyword) {
			out = append(out, b)
		}
	}
	return out
}

// SortByTitle orders the catalog by title, byte-wise ascending. Books with
// equal titles keep their relative order.
func (c *Catalog) SortByTitle() {
	slices.SortStableFunc(c.books, func(a, b Book) int {
		return strings.Compare(a.Title, b.Title)
	})
}

// Borrow lends the first book with isbn to borrower. Borrowing a book that is
// already out changes nothing and returns ErrAlreadyBorrowed.
func (c *Catalog) Borrow(isbn, borrower string, now time.Time) (Book, error) {
	i := c.IndexOf(isbn)
	if i < 0 {
		return Book{}, fmt.Errorf("isbn %q: %w", isbn, ErrNotFound)
	}
	b := &c.books[i]
	if b.Borrowed {
		return *b, fmt.Errorf("isbn %q: %w", isbn, ErrAlreadyBorrowed)
	}
	b.Borrowed = true
	b.LastBorrowedAt = now
	b.BorrowerName = borrower
	return *b, nil
}

// Return marks the first book with isbn as back on the shelf. The borrower
// name is left in place.
func (c *Catalog) Return(isbn string) (Book, error) {
	i := c.IndexOf(isbn)
	if i < 0 {
		return Book{}, fmt.Errorf("isbn %q: %w", isbn, ErrNotFound)
	}
	b := &c.books[i]
	if !b.Borrowed {
		return *b, fmt.Errorf("isbn %q: %w", isbn, ErrNotBorrowed)
	}
	b.Borrowed = false
	return *b, nil
}

// Review sets the review text and rating of the first book with isbn. An
// out-of-range rating is rejected without touching the book.
func (c *Catalog) Review(isbn, review string, rating float64) (Book, error) {
	i := c.IndexOf(isbn)
	if i < 0 {
		return Book{}, fmt.Errorf("isbn %q: %w", isbn, ErrNotFound)
	}
	if !ValidRating(rating) {
		return c.books[i], fmt.Errorf("rating %.1f: %w", rating, ErrInvalidRating)
	}
	c.books[i].Review = review
	c.books[i].Rating = rating
	return c.books[i], nil
}
