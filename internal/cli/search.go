package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/bookfinder/internal/config"
	"github.com/mrlokans/bookfinder/internal/dataerror"
)

// SearchCommand searches OpenLibrary and optionally saves a result as a
// favorite.
type SearchCommand struct {
	Query        string
	Page         int
	Limit        int
	Save         int
	DatabasePath string
	Verbose      bool

	Out io.Writer
}

func NewSearchCommand() *SearchCommand {
	return &SearchCommand{Out: os.Stdout}
}

func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)

	fs.StringVar(&cmd.Query, "q", "", "Search query (required)")
	fs.IntVar(&cmd.Page, "page", 1, "Result page, starting at 1")
	fs.IntVar(&cmd.Limit, "limit", 10, "Results per page")
	fs.IntVar(&cmd.Save, "save", 0, "Save result number N of the page as a favorite")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the favorites database")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s search -q <query> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Search books on OpenLibrary.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s search -q \"the left hand of darkness\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s search -q dune -page 2 -limit 5\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s search -q dune -save 1\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Query = strings.TrimSpace(cmd.Query)
	if cmd.Query == "" {
		return fmt.Errorf("required flag -q not provided")
	}
	if cmd.Page < 1 {
		return fmt.Errorf("-page must be at least 1")
	}
	if cmd.Limit < 1 {
		return fmt.Errorf("-limit must be at least 1")
	}
	if cmd.Save < 0 || cmd.Save > cmd.Limit {
		return fmt.Errorf("-save must be between 1 and -limit")
	}

	return nil
}

func (cmd *SearchCommand) Run() error {
	repo, db, err := openRepository(cmd.DatabasePath, cmd.Verbose)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	page, err := repo.SearchPage(ctx, cmd.Query, cmd.Page, cmd.Limit)
	if err != nil {
		return fmt.Errorf("search failed: %s", dataerror.Message(err))
	}

	if len(page.Books) == 0 {
		fmt.Fprintf(cmd.Out, "No books found for %q\n", cmd.Query)
		return nil
	}

	fmt.Fprintf(cmd.Out, "Found %d books, page %d:\n\n", page.NumFound, page.Page)
	for i, book := range page.Books {
		printBook(cmd.Out, i+1, book)
	}
	if page.HasMore {
		fmt.Fprintf(cmd.Out, "\nMore results: -page %d\n", page.Page+1)
	}

	if cmd.Save == 0 {
		return nil
	}
	if cmd.Save > len(page.Books) {
		return fmt.Errorf("result %d does not exist on this page", cmd.Save)
	}

	book := page.Books[cmd.Save-1]
	if err := repo.MarkAsFavorite(ctx, book); err != nil {
		return fmt.Errorf("failed to save favorite: %s", dataerror.Message(err))
	}
	fmt.Fprintf(cmd.Out, "\nSaved \"%s\" to favorites\n", book.Title)
	return nil
}
