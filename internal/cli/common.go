package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookfinder/internal/books"
	"github.com/mrlokans/bookfinder/internal/config"
	"github.com/mrlokans/bookfinder/internal/database"
	"github.com/mrlokans/bookfinder/internal/entities"
	"github.com/mrlokans/bookfinder/internal/entrypoint"
)

// openRepository opens the favorites database at dbPath and the OpenLibrary
// client configured from the environment.
func openRepository(dbPath string, verbose bool) (*books.Repository, *database.Database, error) {
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	logLevel := logger.Silent
	if verbose {
		logLevel = logger.Info
	}
	db, err := database.NewDatabaseWithOptions(absDBPath, database.Options{LogLevel: logLevel})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cfg := config.NewConfig()
	cfg.Database.Path = absDBPath
	return entrypoint.NewBookRepository(cfg, db), db, nil
}

// printBook writes a one-line summary of a book.
func printBook(w io.Writer, n int, book entities.Book) {
	authors := strings.Join(book.Authors, ", ")
	if authors == "" {
		authors = "(no author)"
	}

	line := fmt.Sprintf("%d. \"%s\" by %s [%s]", n, book.Title, authors, book.ID)
	if book.FirstPublishYear != nil {
		line += fmt.Sprintf(" (%s)", *book.FirstPublishYear)
	}
	if book.AverageRating != nil {
		line += fmt.Sprintf(" %.1f★", *book.AverageRating)
	}
	fmt.Fprintln(w, line)
}
