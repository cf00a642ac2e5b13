package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Persister loads and saves the whole catalog in order.
type Persister interface {
	// Load returns at most capacity books. A store that does not exist yet
	// yields an empty catalog, not an error.
	Load(capacity int) ([]Book, error)
	// Save replaces the stored catalog with books.
	Save(books []Book) error
	// Location names the store for messages and logs.
	Location() string
}

// TextFile stores one encoded book per line in a plain text file.
type TextFile struct {
	Path  string
	Codec Codec
}

// NewTextFile returns a TextFile at path using local time for dates.
func NewTextFile(path string) *TextFile {
	return &TextFile{Path: filepath.Clean(path)}
}

func (f *TextFile) Location() string { return f.Path }

func (f *TextFile) Load(capacity int) ([]Book, error) {
	file, err := os.Open(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, f.Path, err)
	}
	defer file.Close()

	var books []Book
	r := bufio.NewReader(file)
	for len(books) < capacity {
		line, err := r.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			books = append(books, f.Codec.DecodeLine(strings.TrimSuffix(line, "\n")))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrIO, f.Path, err)
		}
	}
	return books, nil
}

// Save truncates the file and writes every book. A failure part way through
// can leave a truncated file behind.
func (f *TextFile) Save(books []Book) error {
	file, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, f.Path, err)
	}
	w := bufio.NewWriter(file)
	for _, b := range books {
		if _, err := w.WriteString(f.Codec.EncodeLine(b)); err != nil {
			file.Close()
			return fmt.Errorf("%w: write %s: %w", ErrIO, f.Path, err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("%w: write %s: %w", ErrIO, f.Path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, f.Path, err)
	}
	return nil
}
