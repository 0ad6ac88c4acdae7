package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/build"
	"github.com/cable-lsm/benchcab/internal/printer"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type BuildCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
	mpi        bool
}

// NewBuildCommand returns the build command.
func NewBuildCommand(rootCmd *RootCommand, app *kingpin.Application) *BuildCommand {
	c := &BuildCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("build", "Run the build step in the benchmarking workflow.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)
	c.Cmd.Flag("mpi", "Enable MPI build.").BoolVar(&c.mpi)

	return c
}

func (c BuildCommand) Name() string { return c.Cmd.FullCommand() }

func (c BuildCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, _, err := loadConfig(ctx, c.configPath)
	if err != nil {
		return err
	}

	dir, err := workDir()
	if err != nil {
		return err
	}

	// Create build service.
	svc, err := build.NewService(build.ServiceConfig{
		Runner: syscmd.NewRunner(logger),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute build.
	err = svc.Run(ctx, build.Request{
		Config:  cfg,
		WorkDir: dir,
		MPI:     c.mpi,
	})
	if err != nil {
		return fmt.Errorf("could not build realisations: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Compiled CABLE for %d realisations", len(cfg.Realisations))); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
