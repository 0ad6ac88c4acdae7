package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/fluxsitecompare"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type FluxsiteBitwiseCmpCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewFluxsiteBitwiseCmpCommand returns the fluxsite-bitwise-cmp command.
func NewFluxsiteBitwiseCmpCommand(rootCmd *RootCommand, app *kingpin.Application) *FluxsiteBitwiseCmpCommand {
	c := &FluxsiteBitwiseCmpCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("fluxsite-bitwise-cmp", "Run the bitwise comparison step of the main fluxsite command.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c FluxsiteBitwiseCmpCommand) Name() string { return c.Cmd.FullCommand() }

func (c FluxsiteBitwiseCmpCommand) Run(ctx context.Context) error {
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

	// Create comparison service.
	svc, err := fluxsitecompare.NewService(fluxsitecompare.ServiceConfig{
		Repository: repo,
		Runner:     syscmd.NewRunner(logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute comparisons.
	err = svc.Run(ctx, fluxsitecompare.Request{
		Config:     cfg,
		ConfigPath: configPath,
		WorkDir:    dir,
	})
	if err != nil {
		return fmt.Errorf("could not run comparisons: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage("Comparison tasks finished, check `benchcab status` for the outcomes"); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
