package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/configs"
	"library-catalog/library"
)

const maxLoginAttempts = 3

// app holds what every subcommand needs once configuration is resolved.
type app struct {
	cfg     configs.Config
	log     *slog.Logger
	mgr     *library.LibraryManager
	closers []io.Closer
}

// Close releases the log file and database. It is safe to call twice.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
	a.closers = nil
}

func main() {
	if err := runCLI(&app{}, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runCLI executes the command line and closes whatever it opened, including
// when the command fails.
func runCLI(a *app, args []string, in io.Reader, out io.Writer) error {
	defer a.Close()
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	return root.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	var flags struct {
		file, backup, store, db string
		capacity                int
	}

	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Single-user library book catalog backed by a text file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "hash-password" {
				return nil
			}
			cfg, err := configs.Load()
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			if fs.Changed("file") {
				cfg.BooksFile = flags.file
			}
			if fs.Changed("backup-file") {
				cfg.BackupFile = flags.backup
			}
			if fs.Changed("store") {
				cfg.Store = strings.ToLower(flags.store)
			}
			if fs.Changed("db") {
				cfg.DBPath = flags.db
			}
			if fs.Changed("capacity") {
				cfg.Capacity = flags.capacity
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			return a.open()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)
			c := newConsole(cmd.InOrStdin(), cmd.OutOrStdout(), a.mgr, interactive)
			if a.cfg.AdminPasswordHash != "" {
				read := readPassword
				if !isTerminal(os.Stdin) {
					read = c.readLine
				}
				if err := authenticateAdmin(cmd.OutOrStdout(), read, a.cfg.AdminPasswordHash); err != nil {
					return err
				}
			}
			c.run()
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.file, "file", "books.txt", "primary catalog file (CATALOG_FILE)")
	pf.StringVar(&flags.backup, "backup-file", "books_backup.txt", "backup file (CATALOG_BACKUP_FILE)")
	pf.StringVar(&flags.store, "store", configs.StoreText, "primary store: text or sqlite (CATALOG_STORE)")
	pf.StringVar(&flags.db, "db", "catalog.db", "SQLite database when --store=sqlite (CATALOG_DB)")
	pf.IntVar(&flags.capacity, "capacity", library.DefaultCapacity, "maximum number of books (CATALOG_CAPACITY)")

	root.AddCommand(
		newListCmd(a),
		newRatingsCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newExportCmd(a),
		newHashPasswordCmd(),
	)

	return root
}

// open builds the logger, the stores and the manager, then loads the catalog.
// An unreadable primary store is reported and the catalog starts empty.
func (a *app) open() error {
	logger, closer, err := newLogger(a.cfg)
	if err != nil {
		return err
	}
	a.log = logger
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	var primary library.Persister
	switch a.cfg.Store {
	case configs.StoreSQLite:
		store, err := library.NewSQLiteStore(a.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, store)
		primary = store
	default:
		primary = library.NewTextFile(a.cfg.BooksFile)
	}
	backup := library.NewTextFile(a.cfg.BackupFile)

	a.mgr = library.NewLibraryManager(primary, backup, a.cfg.Capacity, library.WithLogger(logger))
	if err := a.mgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s, starting with an empty catalog: %v\n", primary.Location(), err)
	}
	a.log.Info("catalog opened", "store", a.cfg.Store, "path", primary.Location(), "count", a.mgr.Len(), "capacity", a.mgr.Capacity())
	return nil
}

// newLogger writes JSON records to LOG_FILE when set, text records to stderr
// otherwise.
func newLogger(cfg configs.Config) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil, nil
	}
	if dir := filepath.Dir(cfg.LogFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), f, nil
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every book in catalog order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printBooks(cmd.OutOrStdout(), a.mgr.Books())
		},
	}
}

func newRatingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ratings",
		Short: "Print the rating of every book",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printRatings(cmd.OutOrStdout(), a.mgr.Books())
		},
	}
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write the catalog to the backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.mgr.Backup(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d book(s) to %s\n", a.mgr.Len(), a.mgr.BackupLocation())
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Replace the catalog with the backup file and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.mgr.Restore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d book(s) from %s\n", n, a.mgr.BackupLocation())
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(a.mgr.Books(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode catalog: %w", err)
			}
			data = append(data, '\n')
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(filepath.Clean(out), data, 0o644); err != nil {
				return fmt.Errorf("%w: write %s: %w", library.ErrIO, out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d book(s) to %s\n", a.mgr.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				password string
				err      error
			)
			if isTerminal(os.Stdin) {
				password, err = readPassword("Enter admin password: ")
			} else {
				password, err = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if errors.Is(err, io.EOF) {
					err = nil
				}
				password = strings.TrimSpace(password)
			}
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			hash, err := library.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// authenticateAdmin asks for the admin password up to maxLoginAttempts times.
func authenticateAdmin(out io.Writer, read func(prompt string) (string, error), hash string) error {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		password, err := read("Admin password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		err = library.CheckPassword(hash, password)
		if err == nil {
			fmt.Fprintln(out, "Hello Admin!")
			return nil
		}
		if !errors.Is(err, library.ErrUnauthorized) {
			return err
		}
		fmt.Fprintf(out, "Wrong password (%d/%d).\n", attempt, maxLoginAttempts)
	}
	return library.ErrUnauthorized
}

func isTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }
