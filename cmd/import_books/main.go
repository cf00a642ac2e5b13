package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"library-catalog/configs"
	"library-catalog/library"
)

// Columns: isbn,title,author,edition,publication,category. A first row whose
// first cell is "isbn" is treated as a header.
const minColumns = 2

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <books.csv>\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	var primary library.Persister = library.NewTextFile(cfg.BooksFile)
	if cfg.Store == configs.StoreSQLite {
		store, err := library.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		primary = store
	}

	manager := library.NewLibraryManager(primary, library.NewTextFile(cfg.BackupFile), cfg.Capacity, library.WithLogger(logger))
	if err := manager.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(filepath.Clean(os.Args[1]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	defer f.Close()

	added, skipped, err := importBooks(manager, f, os.Stdout)
	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", added)
	fmt.Printf("Skipped: %d\n", skipped)
	fmt.Printf("Catalog now holds %d of %d books in %s\n", manager.Len(), manager.Capacity(), manager.PrimaryLocation())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// importBooks adds every CSV row through the manager until the catalog is
// full. Malformed rows are skipped and counted.
func importBooks(mgr *library.LibraryManager, r io.Reader, out io.Writer) (added, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return added, skipped, nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(out, "line %d: %v, skipping\n", line, err)
			skipped++
			continue
		}
		if err != nil {
			return added, skipped, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "isbn") {
			continue
		}
		if len(record) < minColumns || strings.TrimSpace(record[0]) == "" {
			fmt.Fprintf(out, "line %d: need at least isbn and title, skipping\n", line)
			skipped++
			continue
		}

		d := detailsFromRecord(record)
		fmt.Fprintf(out, "Importing: %s (%s)... ", d.Title, d.ISBN)
		if _, err := mgr.AddBook(d); err != nil {
			if errors.Is(err, library.ErrCapacityExceeded) {
				fmt.Fprintln(out, "catalog full")
				return added, skipped, err
			}
			fmt.Fprintln(out, "ERROR")
			return added, skipped, err
		}
		fmt.Fprintln(out, "SUCCESS")
		added++
	}
}

func detailsFromRecord(record []string) library.BookDetails {
	col := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	return library.BookDetails{
		ISBN:        col(0),
		Title:       col(1),
		Author:      col(2),
		Edition:     col(3),
		Publication: col(4),
		Category:    col(5),
	}
}
