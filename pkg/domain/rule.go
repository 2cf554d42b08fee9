package domain

// Metadata keys recorded on step nodes and results.
const (
	// MetaNoop marks a rule application whose output equals its input.
	MetaNoop = "noop"
	// MetaVariableAbsent marks a differentiation whose variable never occurs
	// in the input, so the zero result is a tagged terminal state rather than
	// a computed coincidence.
	MetaVariableAbsent = "variable_absent"
	// MetaShape records matrix dimensions, e.g. "2x3".
	MetaShape = "shape"
)

// Explanation carries the narrative of one step at every verbosity level.
// Only Concise is mandatory; missing levels fall back to the closest present one.
type Explanation struct {
	Concise  string `json:"concise"`
	Detailed string `json:"detailed,omitempty"`
	Teacher  string `json:"teacher,omitempty"`
}

// At returns the explanation text for the requested verbosity, falling back to
// the most detailed level actually present.
func (e Explanation) At(v Verbosity) string {
	switch v {
	case VerbosityTeacher:
		if e.Teacher != "" {
			return e.Teacher
		}
		fallthrough
	case VerbosityDetailed:
		if e.Detailed != "" {
			return e.Detailed
		}
	}
	return e.Concise
}

// RuleContext carries the request parameters a rule may consult while matching
// or rewriting. Second holds the right-hand operand of binary matrix operations.
type RuleContext struct {
	Operation Operation
	Variable  string
	Order     int
	Second    Expr
}

// StepSpec describes one node a structured rule wants recorded. The engine
// assigns graph placement and validates each spec on insertion. Rule may name
// the sub-procedure that produced the node; when empty the node carries the
// name of the registered rule.
type StepSpec struct {
	ID          string
	Rule        string
	Input       string
	Output      string
	Explanation Explanation
	DependsOn   []string
	Metadata    map[string]any
}

// Application is the outcome of applying one rule.
//
// Iterative rules fill Goal (the transformed work item) and Explanation.
// Structured rules additionally fill Steps with the whole batch of nodes they
// computed and set Output to the summary text; composite results such as an
// eigenvalue report have no expression form, so Output is authoritative when
// present and the engine prints Goal.Expr otherwise. Noop signals a fixpoint.
type Application struct {
	Goal        Goal
	Output      string
	NodeID      string
	DependsOn   []string
	Explanation Explanation
	Metadata    map[string]any
	Steps       []StepSpec
	Noop        bool
}

// Rule is a named, prioritized, domain-tagged pattern-match + rewrite unit.
// Match must be free of side effects; Match and Apply must be deterministic
// for a fixed goal and context. A rule must either decline to match, produce a
// genuinely different output, or flag itself as a no-op; it must never loop
// silently.
type Rule struct {
	Name      string
	Operation Operation
	Priority  int
	Domains   []Domain
	Match     func(g Goal, rc RuleContext) bool
	Apply     func(g Goal, rc RuleContext) (Application, error)
}
