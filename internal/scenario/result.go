package scenario

import (
	"time"
)

// Step names in execution order.
const (
	StepConnectivity = "connectivity"
	StepTrigger      = "trigger"
	StepCollection   = "collection"
	StepVerify       = "verify"
)

// Status of a single scenario step.
type Status string

const (
	// StatusPassed marks a step whose expectations all held.
	StatusPassed Status = "passed"
	// StatusFailed marks a step with at least one failed expectation.
	StatusFailed Status = "failed"
	// StatusSkipped marks a step not executed because an earlier one failed.
	StatusSkipped Status = "skipped"
)

// StepResult captures the outcome of one scenario step.
type StepResult struct {
	Name      string
	Status    Status
	Message   string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

// Result aggregates the step outcomes of one scenario run.
type Result struct {
	ScenarioName string
	StartedAt    time.Time
	Duration     time.Duration
	Steps        []StepResult
}

// Passed reports whether every executed step succeeded.
func (r *Result) Passed() bool {
	if r == nil {
		return false
	}
	for _, step := range r.Steps {
		if step.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Counts returns the number of passed, failed and skipped steps.
func (r *Result) Counts() (passed, failed, skipped int) {
	if r == nil {
		return 0, 0, 0
	}
	for _, step := range r.Steps {
		switch step.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// FirstFailure returns the first failed step, if any.
func (r *Result) FirstFailure() (StepResult, bool) {
	if r == nil {
		return StepResult{}, false
	}
	for _, step := range r.Steps {
		if step.Status == StatusFailed {
			return step, true
		}
	}
	return StepResult{}, false
}
