// Package models defines the core data types shared between the planner,
// workers, supervisor, and aggregator: Lead, Strategy, Event, WorkerResult,
// and RunResult.
package models

import "fmt"

// Priority is the tier a Lead is bucketed into once its IntentScore is
// known. The aggregator is the single source of truth for this value;
// nothing upstream of it may set Priority meaningfully.
type Priority string

const (
	PriorityHot  Priority = "hot"
	PriorityWarm Priority = "warm"
	PriorityCold Priority = "cold"
)

// DerivePriority maps an intent score to its tier: hot >= 80, warm in
// [60,80), cold < 60.
func DerivePriority(intentScore int) Priority {
	switch {
	case intentScore >= 80:
		return PriorityHot
	case intentScore >= 60:
		return PriorityWarm
	default:
		return PriorityCold
	}
}

// Lead is the unit of output: a prospective buyer surfaced by one of the
// source workers.
type Lead struct {
	Name            string   `json:"name" validate:"required"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	ProfileURL      string   `json:"profile_url,omitempty"`
	Email           string   `json:"email,omitempty"`
	IntentSignal    string   `json:"intent_signal" validate:"required"`
	IntentScore     int      `json:"intent_score" validate:"min=0,max=100"`
	SourcePlatform  string   `json:"source_platform" validate:"required"`
	SourceURL       string   `json:"source_url"`
	Priority        Priority `json:"priority"`
}

// Validate checks the invariants named in the data model: name and
// intent_signal are non-empty, intent_score is in range, and any lead
// scoring at or above the warm cutoff must carry a non-empty signal.
func (l Lead) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("lead validation: name is required")
	}
	if l.IntentScore < 0 || l.IntentScore > 100 {
		return fmt.Errorf("lead validation: intent_score %d out of range [0,100]", l.IntentScore)
	}
	if l.IntentSignal == "" {
		return fmt.Errorf("lead validation: intent_signal is required")
	}
	if l.IntentScore >= 60 && l.IntentSignal == "" {
		return fmt.Errorf("lead validation: intent_score %d requires a non-empty intent_signal", l.IntentScore)
	}
	return nil
}

// WithDerivedPriority returns a copy of l with Priority overwritten per
// DerivePriority, discarding any caller-supplied value.
func (l Lead) WithDerivedPriority() Lead {
	l.Priority = DerivePriority(l.IntentScore)
	return l
}
