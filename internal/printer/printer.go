package printer

import "github.com/cable-lsm/benchcab/internal/model"

// Printer knows how to print benchmark run information in different
// formats.
type Printer interface {
	PrintRunStatus(report model.RunReport) error
	PrintMessage(msg string) error
}
