package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/app/doctor"
	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/syscmd"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the benchmarking workflow.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout

	cfg, _, err := loadConfig(ctx, c.configPath)
	if err != nil {
		return err
	}

	dir, err := workDir()
	if err != nil {
		return err
	}

	// Create doctor service.
	svc, err := doctor.NewService(doctor.ServiceConfig{
		Runner: syscmd.NewRunner(logger),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute checks.
	results, err := svc.Run(ctx, doctor.Request{
		Config:  cfg,
		WorkDir: dir,
	})
	if err != nil {
		return fmt.Errorf("could not run checks: %w", err)
	}

	// Print results.
	fmt.Fprintf(out, "Checking benchmark environment...\n")
	for _, r := range results {
		fmt.Fprintf(out, "  %s %-20s %s\n", statusIcon(r.Status), r.ID, r.Message)
	}

	// Summary.
	_, totalWarnings, totalErrors := model.CountByStatus(results)

	fmt.Fprintln(out)
	if totalErrors == 0 && totalWarnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
	} else {
		var summary []string
		if totalErrors > 0 {
			summary = append(summary, fmt.Sprintf("%d error(s)", totalErrors))
		}
		if totalWarnings > 0 {
			summary = append(summary, fmt.Sprintf("%d warning(s)", totalWarnings))
		}
		fmt.Fprintf(out, "%s\n", strings.Join(summary, ", "))
	}

	if totalErrors > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", totalErrors)
	}

	return nil
}

func statusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}
