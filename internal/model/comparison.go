package model

// ComparisonOutcome represents the result of a bitwise output comparison.
type ComparisonOutcome string

const (
	ComparisonOutcomePending ComparisonOutcome = "pending"
	// ComparisonOutcomeIdentical means the two outputs are bitwise
	// identical.
	ComparisonOutcomeIdentical ComparisonOutcome = "identical"
	// ComparisonOutcomeDiffer means the outputs differ, the differences
	// are captured in a report file.
	ComparisonOutcomeDiffer ComparisonOutcome = "differ"
	// ComparisonOutcomeError means the comparison itself could not run.
	ComparisonOutcomeError ComparisonOutcome = "error"
)

// Comparison is a pairwise bitwise comparison between the outputs of two
// tasks that share a met forcing and science configuration.
type Comparison struct {
	ID    string
	RunID string
	// Name identifies the comparison, for example
	// "AU-Tum_2002-2017_OzFlux_Met_S1_R0_R1".
	Name string
	// FileA and FileB are the output files under comparison.
	FileA string
	FileB string
	// TaskA and TaskB name the tasks that produced the files.
	TaskA   string
	TaskB   string
	Outcome ComparisonOutcome
	// Detail holds the path of the difference report for outcomes that
	// differ, or the error message when the comparison failed.
	Detail string
}

// ComparisonSummary counts comparisons by outcome.
type ComparisonSummary struct {
	Pending   int
	Identical int
	Differ    int
	Error     int
}

// SummarizeComparisons aggregates comparison counts by outcome.
func SummarizeComparisons(cs []Comparison) ComparisonSummary {
	var s ComparisonSummary
	for _, c := range cs {
		switch c.Outcome {
		case ComparisonOutcomePending:
			s.Pending++
		case ComparisonOutcomeIdentical:
			s.Identical++
		case ComparisonOutcomeDiffer:
			s.Differ++
		case ComparisonOutcomeError:
			s.Error++
		}
	}
	return s
}
