package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cable-lsm/benchcab/internal/model"
	"github.com/cable-lsm/benchcab/internal/pbs"
)

// TablePrinter prints benchmark run information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRunStatus prints the recorded state of a benchmark run.
func (t *TablePrinter) PrintRunStatus(report model.RunReport) error {
	run := report.Run

	fmt.Fprintf(t.writer, "Work dir:   %s\n", run.WorkDir)
	fmt.Fprintf(t.writer, "Config:     %s\n", run.ConfigPath)
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(run.CreatedAt))
	fmt.Fprintf(t.writer, "Updated:    %s\n", TimeAgo(run.UpdatedAt))

	if run.PBSJobID != "" {
		jobLine := run.PBSJobID
		if desc, ok := pbs.StateDescriptions[report.PBSJobState]; ok {
			jobLine = fmt.Sprintf("%s (%s)", jobLine, desc)
		}
		fmt.Fprintf(t.writer, "PBS job:    %s\n", jobLine)
	}

	if len(report.Realisations) > 0 {
		fmt.Fprintln(t.writer)
		tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tREVISION")
		for _, r := range report.Realisations {
			fmt.Fprintf(tw, "R%d\t%s\t%s\n", r.Index, r.Name, r.Revision)
		}
		tw.Flush()
	}

	if len(report.Tasks) > 0 {
		fmt.Fprintln(t.writer)
		tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TASK\tMODE\tSTATUS\tDURATION")
		for _, task := range report.Tasks {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", task.Name, task.Mode, task.Status, TaskDuration(task.StartedAt, task.FinishedAt))
		}
		tw.Flush()

		s := model.SummarizeTasks(report.Tasks)
		fmt.Fprintf(t.writer, "\nTasks: %d completed, %d failed, %d running, %d pending\n",
			s.Completed, s.Failed, s.Running, s.Pending)
	}

	if len(report.Comparisons) > 0 {
		fmt.Fprintln(t.writer)
		tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COMPARISON\tOUTCOME\tDETAIL")
		for _, c := range report.Comparisons {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Outcome, c.Detail)
		}
		tw.Flush()

		s := model.SummarizeComparisons(report.Comparisons)
		fmt.Fprintf(t.writer, "\nComparisons: %d identical, %d differ, %d errors, %d pending\n",
			s.Identical, s.Differ, s.Error, s.Pending)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
