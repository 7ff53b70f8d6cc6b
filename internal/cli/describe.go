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

// DescribeCommand prints the description of an OpenLibrary work.
type DescribeCommand struct {
	WorkID       string
	DatabasePath string
	Verbose      bool

	Out io.Writer
}

func NewDescribeCommand() *DescribeCommand {
	return &DescribeCommand{Out: os.Stdout}
}

func (cmd *DescribeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)

	fs.StringVar(&cmd.WorkID, "id", "", "OpenLibrary work id, e.g. OL45804W (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the favorites database")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s describe -id <work id>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the description of a book. Stored favorites are answered\n")
		fmt.Fprintf(os.Stderr, "from the local database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.WorkID = strings.TrimPrefix(strings.TrimSpace(cmd.WorkID), "/works/")
	if cmd.WorkID == "" {
		return fmt.Errorf("required flag -id not provided")
	}

	return nil
}

func (cmd *DescribeCommand) Run() error {
	repo, db, err := openRepository(cmd.DatabasePath, cmd.Verbose)
	if err != nil {
		return err
	}
	defer db.Close()

	desc, err := repo.GetBookDescription(context.Background(), cmd.WorkID)
	if err != nil {
		return fmt.Errorf("failed to get description: %s", dataerror.Message(err))
	}

	if desc == nil || *desc == "" {
		fmt.Fprintf(cmd.Out, "No description available for %s\n", cmd.WorkID)
		return nil
	}

	fmt.Fprintln(cmd.Out, *desc)
	return nil
}
