package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/cable-lsm/benchcab/internal/printer"
)

type ValidateConfigCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath string
}

// NewValidateConfigCommand returns the validate-config command.
func NewValidateConfigCommand(rootCmd *RootCommand, app *kingpin.Application) *ValidateConfigCommand {
	c := &ValidateConfigCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("validate-config", "Validates a benchcab configuration file.")
	c.Cmd.Flag("config", "Config filename.").Short('c').Default("config.yaml").StringVar(&c.configPath)

	return c
}

func (c ValidateConfigCommand) Name() string { return c.Cmd.FullCommand() }

func (c ValidateConfigCommand) Run(ctx context.Context) error {
	// Loading runs the full validation.
	_, configPath, err := loadConfig(ctx, c.configPath)
	if err != nil {
		return err
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Configuration %s is valid", configPath)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
