package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/checkout"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type CheckoutCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewCheckoutCommand returns the checkout command.
func NewCheckoutCommand(rootCmd *RootCommand, app *kingpin.Application) *CheckoutCommand {
	c := &CheckoutCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("checkout", "Run the checkout step in the benchmarking workflow.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c CheckoutCommand) Name() string { return c.Cmd.FullCommand() }

func (c CheckoutCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, configPath, err := loadConfig(ctx, c.configPath)
	if err != nil {
		return err
	}

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

	// Create checkout service.
	svc, err := checkout.NewService(checkout.ServiceConfig{
		Repository: repo,
		Runner:     syscmd.NewRunner(logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute checkout.
	records, err := svc.Run(ctx, checkout.Request{
		Config:     cfg,
		ConfigPath: configPath,
		WorkDir:    dir,
	})
	if err != nil {
		return fmt.Errorf("could not check out realisations: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Checked out %d realisations", len(records))); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
