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

// FavoritesCommand lists favorites or removes one.
type FavoritesCommand struct {
	Remove       string
	DatabasePath string
	Verbose      bool

	Out io.Writer
}

func NewFavoritesCommand() *FavoritesCommand {
	return &FavoritesCommand{Out: os.Stdout}
}

func (cmd *FavoritesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("favorites", flag.ContinueOnError)

	fs.StringVar(&cmd.Remove, "remove", "", "Remove the favorite with this work id")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the favorites database")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s favorites [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List favorite books, or remove one with -remove.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Remove = strings.TrimSpace(cmd.Remove)
	return nil
}

func (cmd *FavoritesCommand) Run() error {
	repo, db, err := openRepository(cmd.DatabasePath, cmd.Verbose)
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Remove != "" {
		book, err := repo.GetFavorite(cmd.Remove)
		if err != nil {
			return fmt.Errorf("failed to read favorite: %s", dataerror.Message(err))
		}
		if book == nil {
			fmt.Fprintf(cmd.Out, "%s is not a favorite\n", cmd.Remove)
			return nil
		}
		if err := repo.DeleteFromFavorites(context.Background(), cmd.Remove); err != nil {
			return fmt.Errorf("failed to remove favorite: %s", dataerror.Message(err))
		}
		fmt.Fprintf(cmd.Out, "Removed \"%s\" from favorites\n", book.Title)
		return nil
	}

	favorites, err := repo.FavoriteBooks()
	if err != nil {
		return fmt.Errorf("failed to list favorites: %s", dataerror.Message(err))
	}

	if len(favorites) == 0 {
		fmt.Fprintln(cmd.Out, "No favorites yet")
		return nil
	}

	fmt.Fprintf(cmd.Out, "%d favorites:\n\n", len(favorites))
	missing := 0
	for i, book := range favorites {
		printBook(cmd.Out, i+1, book)
		if book.Description == nil || *book.Description == "" {
			missing++
		}
	}
	if missing > 0 {
		fmt.Fprintf(cmd.Out, "\n%d without description (refreshed in the background by the server)\n", missing)
	}
	return nil
}
