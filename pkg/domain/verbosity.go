package domain

import "fmt"

// Verbosity selects how much narrative a rendered explanation carries.
type Verbosity string

const (
	// VerbosityConcise is the one-line summary form.
	VerbosityConcise Verbosity = "concise"
	// VerbosityDetailed includes the intermediate reasoning of each step.
	VerbosityDetailed Verbosity = "detailed"
	// VerbosityTeacher is the fully narrated, classroom-style form.
	VerbosityTeacher Verbosity = "teacher"
)

// ParseVerbosity maps a wire name onto a Verbosity. The empty string means concise.
func ParseVerbosity(s string) (Verbosity, error) {
	switch s {
	case "", string(VerbosityConcise):
		return VerbosityConcise, nil
	case string(VerbosityDetailed):
		return VerbosityDetailed, nil
	case string(VerbosityTeacher):
		return VerbosityTeacher, nil
	}
	return "", fmt.Errorf("%w: unknown verbosity %q", ErrInvalidInput, s)
}

// Domain tags group rules by mathematical area.
type Domain string

const (
	DomainCalculus      Domain = "calculus"
	DomainAlgebra       Domain = "algebra"
	DomainTrigonometry  Domain = "trigonometry"
	DomainLinearAlgebra Domain = "linear_algebra"
	DomainGraphTheory   Domain = "graph_theory"
	DomainNumerical     Domain = "numerical"
	DomainGeneral       Domain = "general"
)
