package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/cable-lsm/benchcab/internal/model"
)

// JSONPrinter prints benchmark run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// runStatusOutput represents the full run status output.
type runStatusOutput struct {
	ID           string              `json:"id"`
	WorkDir      string              `json:"work_dir"`
	ConfigPath   string              `json:"config_path"`
	PBSJobID     string              `json:"pbs_job_id,omitempty"`
	PBSJobState  string              `json:"pbs_job_state,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Realisations []realisationOutput `json:"realisations"`
	Tasks        []taskOutput        `json:"tasks"`
	Comparisons  []comparisonOutput  `json:"comparisons"`
}

type realisationOutput struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Revision string `json:"revision"`
}

type taskOutput struct {
	Name       string     `json:"name"`
	Mode       string     `json:"mode"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

type comparisonOutput struct {
	Name    string `json:"name"`
	FileA   string `json:"file_a"`
	FileB   string `json:"file_b"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintRunStatus prints the recorded state of a benchmark run in JSON
// format.
func (j *JSONPrinter) PrintRunStatus(report model.RunReport) error {
	output := runStatusOutput{
		ID:           report.Run.ID,
		WorkDir:      report.Run.WorkDir,
		ConfigPath:   report.Run.ConfigPath,
		PBSJobID:     report.Run.PBSJobID,
		PBSJobState:  report.PBSJobState,
		CreatedAt:    report.Run.CreatedAt.UTC(),
		UpdatedAt:    report.Run.UpdatedAt.UTC(),
		Realisations: make([]realisationOutput, 0, len(report.Realisations)),
		Tasks:        make([]taskOutput, 0, len(report.Tasks)),
		Comparisons:  make([]comparisonOutput, 0, len(report.Comparisons)),
	}

	for _, r := range report.Realisations {
		output.Realisations = append(output.Realisations, realisationOutput{
			Index:    r.Index,
			Name:     r.Name,
			Revision: r.Revision,
		})
	}

	for _, task := range report.Tasks {
		out := taskOutput{
			Name:   task.Name,
			Mode:   string(task.Mode),
			Status: string(task.Status),
			Error:  task.Error,
		}
		if task.StartedAt != nil {
			utcTime := task.StartedAt.UTC()
			out.StartedAt = &utcTime
		}
		if task.FinishedAt != nil {
			utcTime := task.FinishedAt.UTC()
			out.FinishedAt = &utcTime
		}
		output.Tasks = append(output.Tasks, out)
	}

	for _, c := range report.Comparisons {
		output.Comparisons = append(output.Comparisons, comparisonOutput{
			Name:    c.Name,
			FileA:   c.FileA,
			FileB:   c.FileB,
			Outcome: string(c.Outcome),
			Detail:  c.Detail,
		})
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
