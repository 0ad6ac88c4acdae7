package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/fluxsiterun"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type FluxsiteRunTasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewFluxsiteRunTasksCommand returns the fluxsite-run-tasks command.
func NewFluxsiteRunTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *FluxsiteRunTasksCommand {
	c := &FluxsiteRunTasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("fluxsite-run-tasks", "Run the fluxsite tasks of the main fluxsite command.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c FluxsiteRunTasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c FluxsiteRunTasksCommand) Run(ctx context.Context) error {
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

	// Create fluxsite run service.
	svc, err := fluxsiterun.NewService(fluxsiterun.ServiceConfig{
		Repository: repo,
		Runner:     syscmd.NewRunner(logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute tasks.
	err = svc.Run(ctx, fluxsiterun.Request{
		Config:     cfg,
		ConfigPath: configPath,
		WorkDir:    dir,
	})
	if err != nil {
		return fmt.Errorf("could not run fluxsite tasks: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage("Fluxsite tasks finished, check `benchcab status` for the results"); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
