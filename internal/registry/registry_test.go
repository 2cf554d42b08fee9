package registry

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
)

func rule(name string, op domain.Operation, priority int, matches bool) domain.Rule {
	return domain.Rule{
		Name:      name,
		Operation: op,
		Priority:  priority,
		Match:     func(domain.Goal, domain.RuleContext) bool { return matches },
		Apply: func(g domain.Goal, _ domain.RuleContext) (domain.Application, error) {
			return domain.Application{Goal: g}, nil
		},
	}
}

func TestRulesOrdering(t *testing.T) {
	r := New()
	r.RegisterRules(
		rule("low_a", domain.OpDifferentiate, 50, true),
		rule("high", domain.OpDifferentiate, 100, true),
		rule("low_b", domain.OpDifferentiate, 50, true),
		rule("other_op", domain.OpExpand, 200, true),
	)

	got := r.Rules(domain.OpDifferentiate)
	want := []string{"high", "low_a", "low_b"}
	if len(got) != len(want) {
		t.Fatalf("Rules returned %d rules, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("Rules[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestSelectPrefersPriorityThenMatch(t *testing.T) {
	r := New()
	r.RegisterRules(
		rule("picky", domain.OpSimplify, 100, false),
		rule("fallback", domain.OpSimplify, -100, true),
	)

	selected, ok := r.Select(domain.OpSimplify, domain.Goal{}, domain.RuleContext{})
	if !ok {
		t.Fatal("Select found no rule")
	}
	if selected.Name != "fallback" {
		t.Errorf("Select = %q, want %q", selected.Name, "fallback")
	}
}

func TestSelectNilMatchAlwaysMatches(t *testing.T) {
	r := New()
	always := domain.Rule{Name: "always", Operation: domain.OpFactor, Priority: 10}
	r.RegisterRule(always)

	selected, ok := r.Select(domain.OpFactor, domain.Goal{}, domain.RuleContext{})
	if !ok || selected.Name != "always" {
		t.Fatalf("Select = (%q, %v), want (always, true)", selected.Name, ok)
	}
}

func TestSelectNoRules(t *testing.T) {
	r := New()
	if _, ok := r.Select(domain.OpMatrixLU, domain.Goal{}, domain.RuleContext{}); ok {
		t.Error("Select matched in an empty registry")
	}
}

func TestSelectDeterministicAcrossCalls(t *testing.T) {
	r := New()
	r.RegisterRules(
		rule("tie_first", domain.OpExpand, 100, true),
		rule("tie_second", domain.OpExpand, 100, true),
	)
	for i := 0; i < 10; i++ {
		selected, ok := r.Select(domain.OpExpand, domain.Goal{}, domain.RuleContext{})
		if !ok || selected.Name != "tie_first" {
			t.Fatalf("pass %d: Select = %q, want tie_first", i, selected.Name)
		}
	}
}

type fakeRenderer struct{ format string }

func (f fakeRenderer) Format() string { return f.format }
func (f fakeRenderer) Render(*domain.EngineResult, domain.Verbosity) (string, error) {
	return f.format, nil
}

func TestRendererLookup(t *testing.T) {
	r := New()
	r.RegisterRenderer(fakeRenderer{format: "text"})
	r.RegisterRenderer(fakeRenderer{format: "json"})

	if _, ok := r.Renderer("text"); !ok {
		t.Error("text renderer not found")
	}
	if _, ok := r.Renderer("yaml"); ok {
		t.Error("unexpected yaml renderer")
	}
	if got := r.Formats(); len(got) != 2 || got[0] != "text" || got[1] != "json" {
		t.Errorf("Formats = %v, want [text json]", got)
	}
}

type fakeSolver struct{ name string }

func (f fakeSolver) Name() string { return f.name }
func (f fakeSolver) Solve(string, string) ([]string, error) {
	return nil, nil
}

func TestSolverLookup(t *testing.T) {
	r := New()
	r.RegisterSolver(fakeSolver{name: "linear"})

	if _, ok := r.Solver("linear"); !ok {
		t.Error("linear solver not found")
	}
	if _, ok := r.Solver("cubic"); ok {
		t.Error("unexpected cubic solver")
	}
}

func TestOperationsCanonicalOrder(t *testing.T) {
	r := New()
	r.RegisterRules(
		rule("lu", domain.OpMatrixLU, 100, true),
		rule("diff", domain.OpDifferentiate, 100, true),
		rule("det", domain.OpMatrixDeterminant, 100, true),
	)

	got := r.Operations()
	want := []domain.Operation{domain.OpDifferentiate, domain.OpMatrixDeterminant, domain.OpMatrixLU}
	if len(got) != len(want) {
		t.Fatalf("Operations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Operations[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
