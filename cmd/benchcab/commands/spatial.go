package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/build"
	"github.com/cable-lsm/benchcab/internal/app/checkout"
	"github.com/cable-lsm/benchcab/internal/app/spatialrun"
	"github.com/cable-lsm/benchcab/internal/app/spatialsetup"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type SpatialCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewSpatialCommand returns the spatial command.
func NewSpatialCommand(rootCmd *RootCommand, app *kingpin.Application) *SpatialCommand {
	c := &SpatialCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("spatial", "Run the spatial tests only.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c SpatialCommand) Name() string { return c.Cmd.FullCommand() }

func (c SpatialCommand) Run(ctx context.Context) error {
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

	runner := syscmd.NewRunner(logger)

	// Checkout phase.
	checkoutSvc, err := checkout.NewService(checkout.ServiceConfig{
		Repository: repo,
		Runner:     runner,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create checkout service: %w", err)
	}
	_, err = checkoutSvc.Run(ctx, checkout.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not check out realisations: %w", err)
	}

	// MPI build phase, payu drives the MPI executable.
	buildSvc, err := build.NewService(build.ServiceConfig{
		Runner: runner,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create build service: %w", err)
	}
	err = buildSvc.Run(ctx, build.Request{Config: cfg, WorkDir: dir, MPI: true})
	if err != nil {
		return fmt.Errorf("could not build realisations: %w", err)
	}

	// Work directory setup phase.
	setupSvc, err := spatialsetup.NewService(spatialsetup.ServiceConfig{
		Repository: repo,
		Runner:     runner,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create setup service: %w", err)
	}
	_, err = setupSvc.Run(ctx, spatialsetup.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not set up spatial tasks: %w", err)
	}

	// Dispatch phase.
	runSvc, err := spatialrun.NewService(spatialrun.ServiceConfig{
		Repository: repo,
		Runner:     runner,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create run service: %w", err)
	}
	err = runSvc.Run(ctx, spatialrun.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not run spatial tasks: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage("Dispatched payu runs for the spatial tasks"); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
