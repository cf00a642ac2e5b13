package library

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// LibraryManager owns the catalog and keeps the primary store in step with it:
// every successful mutation is followed by a full save. Backup and Restore use
// a second store with the same format.
type LibraryManager struct {
	catalog *Catalog
	primary Persister
	backup  Persister

	log *slog.Logger
	now func() time.Time
}

// Option customises a LibraryManager.
type Option func(*LibraryManager)

// WithLogger sets the structured logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(lm *LibraryManager) {
		if l != nil {
			lm.log = l
		}
	}
}

// WithClock overrides time.Now for added and borrowed timestamps.
func WithClock(now func() time.Time) Option {
	return func(lm *LibraryManager) { lm.now = now }
}

// NewLibraryManager returns a manager with an empty catalog of the given
// capacity. Call Load to populate it from the primary store.
func NewLibraryManager(primary, backup Persister, capacity int, opts ...Option) *LibraryManager {
	lm := &LibraryManager{
		catalog: NewCatalog(capacity),
		primary: primary,
		backup:  backup,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(lm)
	}
	return lm
}

// Load replaces the catalog with the primary store's contents. On error the
// catalog is left empty.
func (lm *LibraryManager) Load() error {
	books, err := lm.primary.Load(lm.catalog.Capacity())
	if err != nil {
		lm.catalog.Replace(nil)
		lm.log.Error("load catalog", "path", lm.primary.Location(), "err", err)
		return err
	}
	lm.catalog.Replace(books)
	lm.log.Debug("catalog loaded", "path", lm.primary.Location(), "count", lm.catalog.Len())
	return nil
}

func (lm *LibraryManager) save() error {
	if err := lm.primary.Save(lm.catalog.books); err != nil {
		lm.log.Error("save catalog", "path", lm.primary.Location(), "err", err)
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	lm.log.Debug("catalog saved", "path", lm.primary.Location(), "count", lm.catalog.Len())
	return nil
}

// ------------------ Queries ------------------

func (lm *LibraryManager) Books() []Book { return lm.catalog.Books() }
func (lm *LibraryManager) Len() int      { return lm.catalog.Len() }
func (lm *LibraryManager) Capacity() int { return lm.catalog.Capacity() }
func (lm *LibraryManager) Full() bool    { return lm.catalog.Full() }

// PrimaryLocation names the store the catalog is saved to.
func (lm *LibraryManager) PrimaryLocation() string { return lm.primary.Location() }

// BackupLocation names the backup store.
func (lm *LibraryManager) BackupLocation() string { return lm.backup.Location() }

// FindBook returns the first book with isbn.
func (lm *LibraryManager) FindBook(isbn string) (Book, error) { return lm.catalog.Get(isbn) }

// SearchBooks matches keyword against ISBNs exactly and titles as a substring.
func (lm *LibraryManager) SearchBooks(keyword string) []Book { return lm.catalog.Search(keyword) }

// ------------------ Mutations ------------------

// AddBook appends a new book and saves.
func (lm *LibraryManager) AddBook(d BookDetails) (Book, error) {
	b := NewBook(d, lm.now())
	if err := lm.catalog.Add(b); err != nil {
		return Book{}, err
	}
	lm.log.Debug("book added", "isbn", b.ISBN, "title", b.Title)
	return b, lm.save()
}

// DeleteBook removes the first book with isbn when confirm approves it.
// It reports whether the book was removed.
func (lm *LibraryManager) DeleteBook(isbn string, confirm func(Book) bool) (Book, bool, error) {
	b, err := lm.catalog.Get(isbn)
	if err != nil {
		return Book{}, false, err
	}
	if confirm != nil && !confirm(b) {
		return b, false, nil
	}
	if _, err := lm.catalog.Remove(isbn); err != nil {
		return Book{}, false, err
	}
	lm.log.Debug("book deleted", "isbn", isbn)
	return b, true, lm.save()
}

// EditBook replaces the details of the first book with isbn and saves.
func (lm *LibraryManager) EditBook(isbn string, d BookDetails) (Book, error) {
	b, err := lm.catalog.Edit(isbn, d)
	if err != nil {
		return Book{}, err
	}
	lm.log.Debug("book edited", "isbn", isbn, "new_isbn", b.ISBN)
	return b, lm.save()
}

// SortBooks orders the catalog by title. The new order is written on the
// next save.
func (lm *LibraryManager) SortBooks() { lm.catalog.SortByTitle() }

// BorrowBook lends the first book with isbn and saves.
func (lm *LibraryManager) BorrowBook(isbn, borrower string) (Book, error) {
	b, err := lm.catalog.Borrow(isbn, borrower, lm.now())
	if err != nil {
		return b, err
	}
	lm.log.Debug("book borrowed", "isbn", isbn, "borrower", borrower)
	return b, lm.save()
}

// ReturnBook takes back the first book with isbn and saves.
func (lm *LibraryManager) ReturnBook(isbn string) (Book, error) {
	b, err := lm.catalog.Return(isbn)
	if err != nil {
		return b, err
	}
	lm.log.Debug("book returned", "isbn", isbn)
	return b, lm.save()
}

// AddReview stores review and rating on the first book with isbn and saves.
// Ratings outside [0, 5] return ErrInvalidRating and change nothing.
func (lm *LibraryManager) AddReview(isbn, review string, rating float64) (Book, error) {
	b, err := lm.catalog.Review(isbn, review, rating)
	if err != nil {
		return b, err
	}
	lm.log.Debug("review added", "isbn", isbn, "rating", rating)
	return b, lm.save()
}

// ------------------ Backup / Restore ------------------

// Backup writes the whole catalog to the backup store.
func (lm *LibraryManager) Backup() error {
	if err := lm.backup.Save(lm.catalog.books); err != nil {
		lm.log.Error("backup catalog", "path", lm.backup.Location(), "err", err)
		return err
	}
	lm.log.Info("catalog backed up", "path", lm.backup.Location(), "count", lm.catalog.Len())
	return nil
}

// Restore replaces the catalog with the backup store's contents and saves
// the result to the primary store. A missing backup restores an empty
// catalog. If the backup cannot be read the catalog is left unchanged.
func (lm *LibraryManager) Restore() (int, error) {
	books, err := lm.backup.Load(lm.catalog.Capacity())
	if err != nil {
		lm.log.Error("restore catalog", "path", lm.backup.Location(), "err", err)
		return 0, err
	}
	lm.catalog.Replace(books)
	lm.log.Info("catalog restored", "path", lm.backup.Location(), "count", lm.catalog.Len())
	return lm.catalog.Len(), lm.save()
}
