package library

import "time"

// Book is one catalog entry. ISBN is the lookup key but uniqueness is not
// enforced; lookups return the first match in catalog order.
type Book struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Edition     string `json:"edition"`
	Publication string `json:"publication"`
	Category    string `json:"category"`
	Review      string `json:"review"`

	Borrowed bool    `json:"borrowed"`
	Rating   float64 `json:"rating"` // 0 means unrated

	AddedAt        time.Time `json:"added_at"`
	LastBorrowedAt time.Time `json:"last_borrowed_at"` // zero until first borrow
	BorrowerName   string    `json:"borrower_name"`    // kept after return
}

// BookDetails holds the fields an operator supplies on Add and replaces on Edit.
type BookDetails struct {
	ISBN        string
	Title       string
	Author      string
	Edition     string
	Publication string
	Category    string
}

// NewBook builds a not-borrowed, unrated book added at now.
func NewBook(d BookDetails, now time.Time) Book {
	b := Book{AddedAt: now}
	b.apply(d)
	return b
}

func (b *Book) apply(d BookDetails) {
	b.ISBN = d.ISBN
	b.Title = d.Title
	b.Author = d.Author
	b.Edition = d.Edition
	b.Publication = d.Publication
	b.Category = d.Category
}

// Rated reports whether the book carries a review rating.
func (b Book) Rated() bool { return b.Rating > 0 }

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// ValidRating reports whether r is inside [MinRating, MaxRating].
func ValidRating(r float64) bool { return r >= MinRating && r <= MaxRating }
