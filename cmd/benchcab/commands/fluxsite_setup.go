package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/fluxsitesetup"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
)

type FluxsiteSetupCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewFluxsiteSetupCommand returns the fluxsite-setup-work-dir command.
func NewFluxsiteSetupCommand(rootCmd *RootCommand, app *kingpin.Application) *FluxsiteSetupCommand {
	c := &FluxsiteSetupCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("fluxsite-setup-work-dir", "Run the work directory setup step of the fluxsite command.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c FluxsiteSetupCommand) Name() string { return c.Cmd.FullCommand() }

func (c FluxsiteSetupCommand) Run(ctx context.Context) error {
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

	// Create fluxsite setup service.
	svc, err := fluxsitesetup.NewService(fluxsitesetup.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute setup.
	tasks, err := svc.Run(ctx, fluxsitesetup.Request{
		Config:     cfg,
		ConfigPath: configPath,
		WorkDir:    dir,
	})
	if err != nil {
		return fmt.Errorf("could not set up fluxsite tasks: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Created %d fluxsite tasks", len(tasks))); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
