package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/build"
	"github.com/cable-lsm/benchcab/internal/app/checkout"
	"github.com/cable-lsm/benchcab/internal/app/fluxsitesetup"
	"github.com/cable-lsm/benchcab/internal/app/fluxsitesubmit"
	"github.com/cable-lsm/benchcab/internal/app/spatialrun"
	"github.com/cable-lsm/benchcab/internal/app/spatialsetup"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
	skip       []string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run all test suites for CABLE.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)
	c.Cmd.Flag("skip", "Optional phase to skip in the workflow.").EnumsVar(&c.skip, skipBitwiseCmp)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
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

	// Build phases, the fluxsite tests run the serial executable and the
	// spatial tests run the MPI one.
	buildSvc, err := build.NewService(build.ServiceConfig{
		Runner: runner,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create build service: %w", err)
	}
	err = buildSvc.Run(ctx, build.Request{Config: cfg, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not build realisations: %w", err)
	}
	err = buildSvc.Run(ctx, build.Request{Config: cfg, WorkDir: dir, MPI: true})
	if err != nil {
		return fmt.Errorf("could not build realisations with MPI: %w", err)
	}

	// Work directory setup phases.
	fluxsiteSetupSvc, err := fluxsitesetup.NewService(fluxsitesetup.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create fluxsite setup service: %w", err)
	}
	_, err = fluxsiteSetupSvc.Run(ctx, fluxsitesetup.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not set up fluxsite tasks: %w", err)
	}

	spatialSetupSvc, err := spatialsetup.NewService(spatialsetup.ServiceConfig{
		Repository: repo,
		Runner:     runner,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create spatial setup service: %w", err)
	}
	_, err = spatialSetupSvc.Run(ctx, spatialsetup.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not set up spatial tasks: %w", err)
	}

	// Dispatch phases.
	submitSvc, err := fluxsitesubmit.NewService(fluxsitesubmit.ServiceConfig{
		Repository: repo,
		Runner:     runner,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create submit service: %w", err)
	}
	jobID, err := submitSvc.Run(ctx, fluxsitesubmit.Request{
		Config:         cfg,
		ConfigPath:     configPath,
		WorkDir:        dir,
		Verbose:        c.rootCmd.Debug,
		SkipBitwiseCmp: skips(c.skip, skipBitwiseCmp),
	})
	if err != nil {
		return fmt.Errorf("could not submit fluxsite job: %w", err)
	}

	spatialRunSvc, err := spatialrun.NewService(spatialrun.ServiceConfig{
		Repository: repo,
		Runner:     runner,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create spatial run service: %w", err)
	}
	err = spatialRunSvc.Run(ctx, spatialrun.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not run spatial tasks: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Submitted PBS job %s and dispatched payu runs", jobID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
