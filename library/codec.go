package library

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Line format
// ---------------------------------------------------------------------------

// One record per line, fieldCount fields separated by ';' in this order:
//
//	isbn;title;author;edition;publication;category;borrowed;rating;review;added;lastBorrowed;borrower
//
// Field values are not escaped. A ';' inside a value shifts every later field
// when the line is read back.
const (
	fieldSep   = ";"
	fieldCount = 12

	// DateLayout is the text form of both timestamps.
	DateLayout = "2006-01-02 15:04:05"
)

// Codec converts books to and from single text lines. Timestamps are written
// and read in Location (time.Local when nil).
type Codec struct {
	Location *time.Location
}

func (c Codec) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// EncodeLine renders b as one newline-terminated line.
func (c Codec) EncodeLine(b Book) string {
	borrowed := "0"
	if b.Borrowed {
		borrowed = "1"
	}
	fields := []string{
		b.ISBN,
		b.Title,
		b.Author,
		b.Edition,
		b.Publication,
		b.Category,
		borrowed,
		strconv.FormatFloat(b.Rating, 'f', 6, 64),
		b.Review,
		c.formatDate(b.AddedAt),
		c.formatDate(b.LastBorrowedAt),
		b.BorrowerName,
	}
	return strings.Join(fields, fieldSep) + "\n"
}

// DecodeLine parses a line produced by EncodeLine. It never fails: missing
// fields read as empty, extra fields are dropped, an unparseable rating is 0
// and an unparseable date is the zero time.
func (c Codec) DecodeLine(line string) Book {
	line = strings.TrimRight(line, "\r\n")
	f := strings.Split(line, fieldSep)
	for len(f) < fieldCount {
		f = append(f, "")
	}
	return Book{
		ISBN:           f[0],
		Title:          f[1],
		Author:         f[2],
		Edition:        f[3],
		Publication:    f[4],
		Category:       f[5],
		Borrowed:       f[6] == "1",
		Rating:         parseRating(f[7]),
		Review:         f[8],
		AddedAt:        c.parseDate(f[9]),
		LastBorrowedAt: c.parseDate(f[10]),
		BorrowerName:   f[11],
	}
}

func parseRating(s string) float64 {
	r, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// The zero time is written as the Unix epoch so "never borrowed" survives a
// round trip through the file.
func (c Codec) formatDate(t time.Time) string {
	if t.IsZero() {
		t = time.Unix(0, 0)
	}
	return t.In(c.loc()).Format(DateLayout)
}

func (c Codec) parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(DateLayout, s, c.loc())
	if err != nil || t.Unix() == 0 {
		return time.Time{}
	}
	return t
}

// FormatDate renders t the way it is stored, or "never" for the zero time.
func (c Codec) FormatDate(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.In(c.loc()).Format(DateLayout)
}
