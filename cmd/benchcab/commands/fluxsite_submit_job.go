package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/fluxsitesubmit"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/storage/sqlite"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type FluxsiteSubmitJobCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
	skip       []string
}

// NewFluxsiteSubmitJobCommand returns the fluxsite-submit-job command.
func NewFluxsiteSubmitJobCommand(rootCmd *RootCommand, app *kingpin.Application) *FluxsiteSubmitJobCommand {
	c := &FluxsiteSubmitJobCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("fluxsite-submit-job", "Generate and submit the PBS job script for the fluxsite test suite.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)
	c.Cmd.Flag("skip", "Optional phase to skip in the submitted job.").EnumsVar(&c.skip, skipBitwiseCmp)

	return c
}

func (c FluxsiteSubmitJobCommand) Name() string { return c.Cmd.FullCommand() }

func (c FluxsiteSubmitJobCommand) Run(ctx context.Context) error {
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

	// Create submit service.
	svc, err := fluxsitesubmit.NewService(fluxsitesubmit.ServiceConfig{
		Repository: repo,
		Runner:     syscmd.NewRunner(logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute job submission.
	jobID, err := svc.Run(ctx, fluxsitesubmit.Request{
		Config:         cfg,
		ConfigPath:     configPath,
		WorkDir:        dir,
		Verbose:        c.rootCmd.Debug,
		SkipBitwiseCmp: skips(c.skip, skipBitwiseCmp),
	})
	if err != nil {
		return fmt.Errorf("could not submit fluxsite job: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Submitted PBS job: %s", jobID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
