package engine

import "time"

// Outcome labels reported to Metrics.RunCompleted.
const (
	OutcomeOK          = "ok"
	OutcomeUserError   = "user_error"
	OutcomeInvalidStep = "invalid_step"
	OutcomeError       = "error"
)

// Metrics receives engine measurements. The engine calls it inline on the run
// path, so implementations must be cheap and safe for concurrent use.
type Metrics interface {
	// RunCompleted records one finished run: its operation, outcome label,
	// recorded step count and wall time.
	RunCompleted(op, outcome string, steps int, elapsed time.Duration)

	// RuleApplied records one rule application that produced a step.
	RuleApplied(op, rule string)
}

// nopMetrics is the default sink when no collector is wired in.
type nopMetrics struct{}

func (nopMetrics) RunCompleted(string, string, int, time.Duration) {}
func (nopMetrics) RuleApplied(string, string)                     {}
