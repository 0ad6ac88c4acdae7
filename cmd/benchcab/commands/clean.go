package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/clean"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
)

type CleanCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	target string
}

// NewCleanCommand returns the clean command.
func NewCleanCommand(rootCmd *RootCommand, app *kingpin.Application) *CleanCommand {
	c := &CleanCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("clean", "Cleanup files created by running benchcab.")
	c.Cmd.Arg("target", "Files to remove (all, realisations, submissions).").Required().
		EnumVar(&c.target, string(clean.TargetAll), string(clean.TargetRealisations), string(clean.TargetSubmissions))

	return c
}

func (c CleanCommand) Name() string { return c.Cmd.FullCommand() }

func (c CleanCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	dir, err := workDir()
	if err != nil {
		return err
	}

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	// Create clean service.
	svc, err := clean.NewService(clean.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute clean.
	err = svc.Run(ctx, clean.Request{
		WorkDir: dir,
		Target:  clean.Target(c.target),
	})
	if err != nil {
		return fmt.Errorf("could not clean work directory: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Cleaned %s files", c.target)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
