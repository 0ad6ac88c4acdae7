package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/build"
	"github.com/cable-lsm/benchcab/internal/app/checkout"
	"github.com/cable-lsm/benchcab/internal/app/fluxsitecompare"
	"github.com/cable-lsm/benchcab/internal/app/fluxsiterun"
	"github.com/cable-lsm/benchcab/internal/app/fluxsitesetup"
	"github.com/cable-lsm/benchcab/internal/app/fluxsitesubmit"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type FluxsiteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
	noSubmit   bool
	skip       []string
}

// NewFluxsiteCommand returns the fluxsite command.
func NewFluxsiteCommand(rootCmd *RootCommand, app *kingpin.Application) *FluxsiteCommand {
	c := &FluxsiteCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("fluxsite", "Run the fluxsite test suite for CABLE.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)
	c.Cmd.Flag("no-submit", "Force benchcab to execute tasks on the current compute node.").BoolVar(&c.noSubmit)
	c.Cmd.Flag("skip", "Optional phase to skip in the workflow.").EnumsVar(&c.skip, skipBitwiseCmp)

	return c
}

func (c FluxsiteCommand) Name() string { return c.Cmd.FullCommand() }

func (c FluxsiteCommand) Run(ctx context.Context) error {
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

	// Build phase.
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

	// Work directory setup phase.
	setupSvc, err := fluxsitesetup.NewService(fluxsitesetup.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create setup service: %w", err)
	}
	_, err = setupSvc.Run(ctx, fluxsitesetup.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not set up fluxsite tasks: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)

	if !c.noSubmit {
		// Submit the run and comparison phases as a PBS job.
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

		if err := p.PrintMessage(fmt.Sprintf("Submitted PBS job: %s", jobID)); err != nil {
			return fmt.Errorf("could not print message: %w", err)
		}
		return nil
	}

	// Run the tasks on the current node instead of submitting.
	runSvc, err := fluxsiterun.NewService(fluxsiterun.ServiceConfig{
		Repository: repo,
		Runner:     runner,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create run service: %w", err)
	}
	err = runSvc.Run(ctx, fluxsiterun.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
	if err != nil {
		return fmt.Errorf("could not run fluxsite tasks: %w", err)
	}

	if !skips(c.skip, skipBitwiseCmp) {
		compareSvc, err := fluxsitecompare.NewService(fluxsitecompare.ServiceConfig{
			Repository: repo,
			Runner:     runner,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("could not create comparison service: %w", err)
		}
		err = compareSvc.Run(ctx, fluxsitecompare.Request{Config: cfg, ConfigPath: configPath, WorkDir: dir})
		if err != nil {
			return fmt.Errorf("could not run comparisons: %w", err)
		}
	}

	if err := p.PrintMessage("Fluxsite tests finished, check `benchcab status` for the results"); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
