package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

// console is the numbered menu loop an operator drives from a terminal.
type console struct {
	sc    *bufio.Scanner
	out   io.Writer
	mgr   *library.LibraryManager
	dates library.Codec

	// interactive enables screen clearing and "Press Enter" pauses.
	interactive bool
}

// maxInputLine bounds a single line typed or piped into the console.
const maxInputLine = 16 << 20

func newConsole(in io.Reader, out io.Writer, mgr *library.LibraryManager, interactive bool) *console {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxInputLine)
	return &console{
		sc:          sc,
		out:         out,
		mgr:         mgr,
		interactive: interactive,
	}
}

var menuItems = []string{
	"ADD BOOK",
	"DELETE BOOK",
	"EDIT BOOK",
	"SEARCH BOOK",
	"VIEW ALL BOOKS",
	"SORT BOOKS",
	"BORROW BOOK",
	"RETURN BOOK",
	"ADD REVIEW TO BOOK",
	"BACKUP BOOKS",
	"RESTORE BOOKS",
	"VIEW BOOK RATINGS",
	"QUIT",
}

// run shows the menu until the operator quits or input ends.
func (c *console) run() {
	for {
		c.clearScreen()
		c.printMenu()
		choice, ok := c.prompt("ENTER CHOICE: ")
		if !ok {
			return
		}
		c.clearScreen()

		switch choice {
		case "1":
			c.handleAddBook()
		case "2":
			c.handleDeleteBook()
		case "3":
			c.handleEditBook()
		case "4":
			c.handleSearchBooks()
		case "5":
			printBooks(c.out, c.mgr.Books())
		case "6":
			c.mgr.SortBooks()
			fmt.Fprintln(c.out, "Books sorted by title.")
		case "7":
			c.handleBorrowBook()
		case "8":
			c.handleReturnBook()
		case "9":
			c.handleAddReview()
		case "10":
			c.handleBackup()
		case "11":
			c.handleRestore()
		case "12":
			printRatings(c.out, c.mgr.Books())
		case "13":
			fmt.Fprintln(c.out, "Goodbye!")
			return
		default:
			fmt.Fprintln(c.out, "Invalid choice. Enter a number from 1 to 13.")
		}
		c.pause()
	}
}

func (c *console) printMenu() {
	fmt.Fprintln(c.out, "===============================")
	fmt.Fprintln(c.out, "    LIBRARY MANAGEMENT SYSTEM")
	fmt.Fprintln(c.out, "===============================")
	for i, item := range menuItems {
		fmt.Fprintf(c.out, "[%d] %s\n", i+1, item)
	}
}

// prompt prints label and reads one trimmed line. ok is false once input
// ends or can no longer be read.
func (c *console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.sc.Scan() {
		if err := c.sc.Err(); err != nil {
			fmt.Fprintf(c.out, "\nInput error: %v\n", err)
		}
		return "", false
	}
	return strings.TrimSpace(c.sc.Text()), true
}

// readLine is prompt with an error for ended input.
func (c *console) readLine(label string) (string, error) {
	v, ok := c.prompt(label)
	if !ok {
		return "", io.ErrUnexpectedEOF
	}
	return v, nil
}

func (c *console) promptDetails(prefix string) (library.BookDetails, bool) {
	var d library.BookDetails
	fields := []struct {
		label string
		dst   *string
	}{
		{"ISBN", &d.ISBN},
		{"Title", &d.Title},
		{"Author", &d.Author},
		{"Edition", &d.Edition},
		{"Publication", &d.Publication},
		{"Category", &d.Category},
	}
	for _, f := range fields {
		v, ok := c.prompt(fmt.Sprintf("Enter %s%s: ", prefix, f.label))
		if !ok {
			return d, false
		}
		*f.dst = v
	}
	return d, true
}

func (c *console) pause() {
	if !c.interactive {
		return
	}
	fmt.Fprint(c.out, "\nPress Enter to continue...")
	c.sc.Scan()
}

func (c *console) clearScreen() {
	if c.interactive {
		fmt.Fprint(c.out, "\033[2J\033[H")
	}
}

// reportSave explains a failed save after an in-memory change went through.
func (c *console) reportSave(err error) {
	fmt.Fprintf(c.out, "Warning: change kept in memory but not saved to %s: %v\n", c.mgr.PrimaryLocation(), err)
}

func (c *console) handleAddBook() {
	if c.mgr.Full() {
		fmt.Fprintf(c.out, "Maximum number of books reached (%d).\n", c.mgr.Capacity())
		return
	}
	fmt.Fprintln(c.out, "ADD BOOK")
	d, ok := c.promptDetails("")
	if !ok {
		return
	}
	b, err := c.mgr.AddBook(d)
	switch {
	case errors.Is(err, library.ErrCapacityExceeded):
		fmt.Fprintf(c.out, "Maximum number of books reached (%d).\n", c.mgr.Capacity())
	case err != nil:
		c.reportSave(err)
	default:
		fmt.Fprintf(c.out, "Added '%s' (ISBN %s).\n", b.Title, b.ISBN)
	}
}

func (c *console) handleDeleteBook() {
	if c.mgr.Len() == 0 {
		fmt.Fprintln(c.out, "No books to delete.")
		return
	}
	isbn, ok := c.prompt("DELETE BOOK\nEnter ISBN: ")
	if !ok {
		return
	}
	confirm := func(b library.Book) bool {
		fmt.Fprintf(c.out, "Found '%s' by %s.\n", b.Title, b.Author)
		answer, ok := c.prompt("Delete it? [1] Yes [2] No: ")
		return ok && answer == "1"
	}
	_, deleted, err := c.mgr.DeleteBook(isbn, confirm)
	switch {
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintln(c.out, "Book not found.")
	case err != nil:
		c.reportSave(err)
	case deleted:
		fmt.Fprintln(c.out, "Book deleted.")
	default:
		fmt.Fprintln(c.out, "Delete cancelled.")
	}
}

func (c *console) handleEditBook() {
	if c.mgr.Len() == 0 {
		fmt.Fprintln(c.out, "No books to edit.")
		return
	}
	isbn, ok := c.prompt("EDIT BOOK\nEnter ISBN: ")
	if !ok {
		return
	}
	if _, err := c.mgr.FindBook(isbn); err != nil {
		fmt.Fprintln(c.out, "Book not found.")
		return
	}
	d, ok := c.promptDetails("new ")
	if !ok {
		return
	}
	if _, err := c.mgr.EditBook(isbn, d); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			fmt.Fprintln(c.out, "Book not found.")
			return
		}
		c.reportSave(err)
		return
	}
	fmt.Fprintln(c.out, "Book updated.")
}

func (c *console) handleSearchBooks() {
	keyword, ok := c.prompt("SEARCH BOOK\nEnter ISBN or Title: ")
	if !ok {
		return
	}
	books := c.mgr.SearchBooks(keyword)
	if len(books) == 0 {
		fmt.Fprintln(c.out, "No book found.")
		return
	}
	for _, b := range books {
		fmt.Fprintf(c.out, "\nTitle: %s\nAuthor: %s\nISBN: %s\nRating: %s\nBorrowed: %s\nAdded: %s\nLast borrowed: %s\n",
			b.Title, b.Author, b.ISBN, formatRating(b.Rating), yesNo(b.Borrowed),
			c.dates.FormatDate(b.AddedAt), c.dates.FormatDate(b.LastBorrowedAt))
	}
}

func (c *console) handleBorrowBook() {
	if c.mgr.Len() == 0 {
		fmt.Fprintln(c.out, "No books to borrow.")
		return
	}
	isbn, ok := c.prompt("BORROW BOOK\nEnter ISBN: ")
	if !ok {
		return
	}
	b, err := c.mgr.FindBook(isbn)
	if err != nil {
		fmt.Fprintln(c.out, "Book not found.")
		return
	}
	if b.Borrowed {
		fmt.Fprintln(c.out, "This book is already borrowed.")
		return
	}
	name, ok := c.prompt("Enter borrower name: ")
	if !ok {
		return
	}
	_, err = c.mgr.BorrowBook(isbn, name)
	switch {
	case errors.Is(err, library.ErrAlreadyBorrowed):
		fmt.Fprintln(c.out, "This book is already borrowed.")
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintln(c.out, "Book not found.")
	case err != nil:
		c.reportSave(err)
	default:
		fmt.Fprintf(c.out, "Book borrowed successfully by %s!\n", name)
	}
}

func (c *console) handleReturnBook() {
	isbn, ok := c.prompt("RETURN BOOK\nEnter ISBN: ")
	if !ok {
		return
	}
	_, err := c.mgr.ReturnBook(isbn)
	switch {
	case errors.Is(err, library.ErrNotFound):
		fmt.Fprintln(c.out, "Book not found.")
	case errors.Is(err, library.ErrNotBorrowed):
		fmt.Fprintln(c.out, "This book is not currently borrowed.")
	case err != nil:
		c.reportSave(err)
	default:
		fmt.Fprintln(c.out, "Book returned successfully!")
	}
}

func (c *console) handleAddReview() {
	isbn, ok := c.prompt("ADD REVIEW\nEnter ISBN: ")
	if !ok {
		return
	}
	if _, err := c.mgr.FindBook(isbn); err != nil {
		fmt.Fprintln(c.out, "Book not found.")
		return
	}
	review, ok := c.prompt("Enter your review: ")
	if !ok {
		return
	}
	for {
		text, ok := c.prompt("Enter rating (0.0 - 5.0): ")
		if !ok {
			return
		}
		rating, err := strconv.ParseFloat(text, 64)
		if err != nil {
			fmt.Fprintln(c.out, "Invalid rating! Please enter between 0.0 and 5.0.")
			continue
		}
		_, err = c.mgr.AddReview(isbn, review, rating)
		switch {
		case errors.Is(err, library.ErrInvalidRating):
			fmt.Fprintln(c.out, "Invalid rating! Please enter between 0.0 and 5.0.")
			continue
		case errors.Is(err, library.ErrNotFound):
			fmt.Fprintln(c.out, "Book not found.")
		case err != nil:
			c.reportSave(err)
		default:
			fmt.Fprintln(c.out, "Review added!")
		}
		return
	}
}

func (c *console) handleBackup() {
	if err := c.mgr.Backup(); err != nil {
		fmt.Fprintf(c.out, "Backup failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Books backed up to %s!\n", c.mgr.BackupLocation())
}

func (c *console) handleRestore() {
	n, err := c.mgr.Restore()
	if errors.Is(err, library.ErrNotSaved) {
		c.reportSave(err)
		return
	}
	if err != nil {
		fmt.Fprintf(c.out, "Restore failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Restored %d book(s) from %s!\n", n, c.mgr.BackupLocation())
}

// ---------------------------------------------------------------------------
// Listings shared with the non-interactive subcommands
// ---------------------------------------------------------------------------

func printBooks(out io.Writer, books []library.Book) {
	fmt.Fprintln(out, "ALL BOOKS:")
	if len(books) == 0 {
		fmt.Fprintln(out, "No books available.")
		return
	}
	fmt.Fprintf(out, "%-4s %-30s %-20s %-17s %s\n", "#", "Title", "Author", "ISBN", "Status")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for i, b := range books {
		status := "[AVAILABLE]"
		if b.Borrowed {
			status = "[BORROWED by " + b.BorrowerName + "]"
		}
		fmt.Fprintf(out, "%-4d %-30s %-20s %-17s %s\n",
			i+1, truncateString(b.Title, 30), truncateString(b.Author, 20), b.ISBN, status)
	}
}

func printRatings(out io.Writer, books []library.Book) {
	fmt.Fprintln(out, "BOOK RATINGS:")
	if len(books) == 0 {
		fmt.Fprintln(out, "No books available.")
		return
	}
	for i, b := range books {
		if b.Rated() {
			fmt.Fprintf(out, "%d. %s [ISBN: %s] - Rating: %s/5.0\n", i+1, b.Title, b.ISBN, formatRating(b.Rating))
		} else {
			fmt.Fprintf(out, "%d. %s [ISBN: %s] - No rating yet\n", i+1, b.Title, b.ISBN)
		}
	}
}

func formatRating(r float64) string { return strconv.FormatFloat(r, 'f', -1, 64) }

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
