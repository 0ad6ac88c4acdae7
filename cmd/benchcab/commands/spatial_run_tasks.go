package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/spatialrun"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type SpatialRunTasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewSpatialRunTasksCommand returns the spatial-run-tasks command.
func NewSpatialRunTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *SpatialRunTasksCommand {
	c := &SpatialRunTasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("spatial-run-tasks", "Run the spatial tasks of the main spatial command.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c SpatialRunTasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c SpatialRunTasksCommand) Run(ctx context.Context) error {
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

	// Create spatial run service.
	svc, err := spatialrun.NewService(spatialrun.ServiceConfig{
		Repository: repo,
		Runner:     syscmd.NewRunner(logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute tasks.
	err = svc.Run(ctx, spatialrun.Request{
		Config:     cfg,
		ConfigPath: configPath,
		WorkDir:    dir,
	})
	if err != nil {
		return fmt.Errorf("could not run spatial tasks: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage("Dispatched payu runs for the spatial tasks"); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
