package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/spatialsetup"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type SpatialSetupCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewSpatialSetupCommand returns the spatial-setup-work-dir command.
func NewSpatialSetupCommand(rootCmd *RootCommand, app *kingpin.Application) *SpatialSetupCommand {
	c := &SpatialSetupCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("spatial-setup-work-dir", "Run the work directory setup step of the spatial command.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c SpatialSetupCommand) Name() string { return c.Cmd.FullCommand() }

func (c SpatialSetupCommand) Run(ctx context.Context) error {
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

	// Create spatial setup service.
	svc, err := spatialsetup.NewService(spatialsetup.ServiceConfig{
		Repository: repo,
		Runner:     syscmd.NewRunner(logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute setup.
	tasks, err := svc.Run(ctx, spatialsetup.Request{
		Config:     cfg,
		ConfigPath: configPath,
		WorkDir:    dir,
	})
	if err != nil {
		return fmt.Errorf("could not set up spatial tasks: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Created %d spatial tasks", len(tasks))); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
