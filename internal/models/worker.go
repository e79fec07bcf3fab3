package models

// WorkerResult is what every source worker returns from Run. A worker
// may return success with an empty Leads slice — that is a valid "no
// matches" outcome, distinguished from failure by the absence of Err.
type WorkerResult struct {
	Success   bool
	Leads     []Lead
	Err       string
	LastStep  string
	Trace     []string
}

// StepName enumerates the canonical Worker Pipeline Contract steps
// (spec §4.2). Every source worker structures its Run around these in
// order, each independently retriable.
type StepName string

const (
	StepFetch   StepName = "fetch"
	StepScore   StepName = "score_select"
	StepExtract StepName = "extract"
	StepFilter  StepName = "filter"
)
