package calculus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/internal/registry"
	"github.com/aretw0/stepwise/internal/symbolic"
	"github.com/aretw0/stepwise/pkg/domain"
)

// diffGoal builds the goal a differentiation run starts from: the parsed,
// canonicalized expression wrapped in a pending-derivative marker.
func diffGoal(t *testing.T, text, variable string, order int) domain.Goal {
	t.Helper()
	e, err := symbolic.Parse(text)
	require.NoError(t, err, "Parse(%q)", text)
	return domain.Goal{
		Expr:    symbolic.DerivOf(symbolic.Simplify(e), variable, order),
		Pending: &domain.PendingDerivative{Variable: variable, Order: order},
	}
}

// plainGoal builds a resolved goal without canonicalizing, so rules see the
// raw parse.
func plainGoal(t *testing.T, text string) domain.Goal {
	t.Helper()
	e, err := symbolic.Parse(text)
	require.NoError(t, err, "Parse(%q)", text)
	return domain.Goal{Expr: e}
}

func goalText(t *testing.T, g domain.Goal) string {
	t.Helper()
	e, ok := g.Expr.(symbolic.Expr)
	require.True(t, ok, "goal does not carry a backend expression")
	return symbolic.Format(e)
}

func findRule(t *testing.T, name string) domain.Rule {
	t.Helper()
	for _, r := range Rules() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("rule %q not in catalog", name)
	return domain.Rule{}
}

// resolveDiff drives the catalog the way a run does: select the
// highest-priority matching rule, apply, stop on no-op or resolution.
func resolveDiff(t *testing.T, text, variable string, order int) (domain.Goal, []string) {
	t.Helper()
	reg := registry.New()
	reg.RegisterRules(Rules()...)
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: variable, Order: order}

	g := diffGoal(t, text, variable, order)
	var names []string
	for i := 0; i < 64; i++ {
		rule, ok := reg.Select(domain.OpDifferentiate, g, rc)
		require.True(t, ok, "no rule matched %q", goalText(t, g))
		app, err := rule.Apply(g, rc)
		require.NoError(t, err, "apply %s", rule.Name)
		if app.Noop {
			break
		}
		g = app.Goal
		names = append(names, rule.Name)
		if g.Resolved() {
			break
		}
	}
	return g, names
}

func TestCatalogShape(t *testing.T) {
	assert.Len(t, chainCatalog, 26)

	seen := map[string]bool{}
	for _, r := range Rules() {
		assert.False(t, seen[r.Name], "duplicate rule name %s", r.Name)
		seen[r.Name] = true
		require.NotNil(t, r.Match, "%s has no match", r.Name)
		require.NotNil(t, r.Apply, "%s has no apply", r.Name)
	}
	for _, entry := range chainCatalog {
		assert.True(t, symbolic.IsKnownFunction(entry.fn), "chain entry %s is not a known function", entry.fn)
	}
}

func TestSelectionOrder(t *testing.T) {
	reg := registry.New()
	reg.RegisterRules(Rules()...)

	var names []string
	for _, r := range reg.Rules(domain.OpDifferentiate) {
		names = append(names, r.Name)
	}
	require.GreaterOrEqual(t, len(names), 10)
	assert.Equal(t, []string{
		"expand_higher_order",
		"diff_constant",
		"diff_identity",
		"constant_multiple",
		"sum_rule",
		"power_rule",
		"chain_rule_sin",
	}, names[:7])

	// Registration order breaks the three-way tie at priority 80.
	pos := map[string]int{}
	for i, n := range names {
		pos[n] = i
	}
	assert.Less(t, pos["quotient_rule"], pos["product_rule"])
	assert.Less(t, pos["product_rule"], pos["logarithmic_differentiation"])
	assert.Less(t, pos["logarithmic_differentiation"], pos["evaluate_derivative_fallback"])
	assert.Less(t, pos["evaluate_derivative_fallback"], pos["simplify_result"])
}

func TestDiffConstantRule(t *testing.T) {
	r := findRule(t, "diff_constant")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 1}

	g := diffGoal(t, "5", "x", 1)
	require.True(t, r.Match(g, rc))
	app, err := r.Apply(g, rc)
	require.NoError(t, err)
	assert.True(t, app.Goal.Resolved())
	assert.Equal(t, "0", goalText(t, app.Goal))
	assert.Equal(t, "Derivative of a constant is 0.", app.Explanation.Concise)

	assert.False(t, r.Match(diffGoal(t, "x", "x", 1), rc), "x is not constant in x")
	assert.True(t, r.Match(diffGoal(t, "y**2 + 1", "x", 1), rc), "free variables exclude x")
	assert.True(t, r.Match(diffGoal(t, "pi", "x", 1), rc), "pi is a constant, not a variable")
}

func TestDiffIdentityRule(t *testing.T) {
	r := findRule(t, "diff_identity")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "t", Order: 1}

	g := diffGoal(t, "t", "t", 1)
	require.True(t, r.Match(g, rc))
	app, err := r.Apply(g, rc)
	require.NoError(t, err)
	assert.Equal(t, "1", goalText(t, app.Goal))
	assert.Equal(t, "Derivative of t with respect to t is 1.", app.Explanation.Concise)

	assert.False(t, r.Match(diffGoal(t, "y", "t", 1), rc))
}

func TestSumRuleSplitsTerms(t *testing.T) {
	r := findRule(t, "sum_rule")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 1}

	g := diffGoal(t, "x**2 + x", "x", 1)
	require.True(t, r.Match(g, rc))
	app, err := r.Apply(g, rc)
	require.NoError(t, err)
	assert.False(t, app.Goal.Resolved())
	assert.Equal(t, "Derivative(x**2, x) + Derivative(x, x)", goalText(t, app.Goal))
}

func TestConstantMultipleRule(t *testing.T) {
	r := findRule(t, "constant_multiple")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 1}

	g := diffGoal(t, "3*x**2", "x", 1)
	require.True(t, r.Match(g, rc))
	app, err := r.Apply(g, rc)
	require.NoError(t, err)
	assert.Equal(t, "3*Derivative(x**2, x)", goalText(t, app.Goal))

	t.Run("other symbols count as constants", func(t *testing.T) {
		g := diffGoal(t, "2*x*y", "x", 1)
		require.True(t, r.Match(g, rc))
		app, err := r.Apply(g, rc)
		require.NoError(t, err)
		assert.Equal(t, "2*y*Derivative(x, x)", goalText(t, app.Goal))
	})

	t.Run("declines a pure product of the variable", func(t *testing.T) {
		assert.False(t, r.Match(diffGoal(t, "x*sin(x)", "x", 1), rc))
	})
}

func TestPowerRuleChainsInnerDerivative(t *testing.T) {
	r := findRule(t, "power_rule")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 1}

	g := diffGoal(t, "x**2", "x", 1)
	require.True(t, r.Match(g, rc))
	app, err := r.Apply(g, rc)
	require.NoError(t, err)
	assert.Equal(t, "2*x*Derivative(x, x)", goalText(t, app.Goal))
	assert.False(t, app.Goal.Resolved(), "the chain factor stays pending")

	assert.False(t, r.Match(diffGoal(t, "x**x", "x", 1), rc), "variable exponent belongs to logarithmic differentiation")
}

func TestHigherOrderCollapsesInOneStep(t *testing.T) {
	r := findRule(t, "expand_higher_order")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 2}

	g := diffGoal(t, "x**3", "x", 2)
	require.True(t, r.Match(g, rc))
	app, err := r.Apply(g, rc)
	require.NoError(t, err)
	assert.True(t, app.Goal.Resolved())
	assert.Equal(t, "6*x", goalText(t, app.Goal))
	assert.Equal(t, "Compute second derivative: d²/dx²[x**3]", app.Explanation.Concise)

	assert.False(t, r.Match(diffGoal(t, "x**3", "x", 1), rc), "first order is left to the structural rules")

	t.Run("notation follows the variable", func(t *testing.T) {
		g := diffGoal(t, "y**4", "y", 3)
		app, err := r.Apply(g, domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "y", Order: 3})
		require.NoError(t, err)
		assert.Equal(t, "Compute third derivative: d³/dy³[y**4]", app.Explanation.Concise)
		assert.Equal(t, "24*y", goalText(t, app.Goal))
	})
}

func TestDifferentiatePolynomial(t *testing.T) {
	g, names := resolveDiff(t, "x**2", "x", 1)
	assert.Equal(t, "2*x", goalText(t, g))
	assert.Equal(t, []string{"power_rule", "diff_identity"}, names)
}

func TestDifferentiateSum(t *testing.T) {
	g, names := resolveDiff(t, "x**2 + x", "x", 1)
	assert.Equal(t, "2*x + 1", goalText(t, g))
	assert.Equal(t, []string{"sum_rule", "power_rule", "diff_identity", "diff_identity"}, names)
}

func TestDifferentiateChain(t *testing.T) {
	g, names := resolveDiff(t, "sin(x**2)", "x", 1)
	assert.Equal(t, "2*x*cos(x**2)", goalText(t, g))
	assert.Equal(t, []string{"chain_rule_sin", "power_rule", "diff_identity"}, names)
}

func TestDifferentiateProduct(t *testing.T) {
	g, names := resolveDiff(t, "x*sin(x)", "x", 1)
	assert.Equal(t, "x*cos(x) + sin(x)", goalText(t, g))
	assert.Equal(t, []string{"product_rule", "chain_rule_sin", "diff_identity", "diff_identity"}, names)
}

func TestDifferentiateQuotient(t *testing.T) {
	g, names := resolveDiff(t, "sin(x)/x", "x", 1)
	assert.Equal(t, "(x*cos(x) - sin(x))/x**2", goalText(t, g))
	require.NotEmpty(t, names)
	assert.Equal(t, "quotient_rule", names[0])
}

func TestDifferentiateGeneralPower(t *testing.T) {
	g, names := resolveDiff(t, "x**x", "x", 1)
	assert.Equal(t, "x**x*(log(x) + 1)", goalText(t, g))
	require.NotEmpty(t, names)
	assert.Equal(t, "logarithmic_differentiation", names[0])
}

func TestDifferentiateConstantExpression(t *testing.T) {
	g, names := resolveDiff(t, "y**2 + 1", "x", 1)
	assert.Equal(t, "0", goalText(t, g))
	assert.Equal(t, []string{"diff_constant"}, names)
}

func TestFallbackHandlesUnnamedShapes(t *testing.T) {
	r := findRule(t, "evaluate_derivative_fallback")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 1}

	g := diffGoal(t, "sign(x)", "x", 1)
	require.True(t, r.Match(g, rc), "fallback matches any pending derivative")
	app, err := r.Apply(g, rc)
	require.NoError(t, err)
	assert.True(t, app.Goal.Resolved())
	assert.Equal(t, "2*DiracDelta(x)", goalText(t, app.Goal))
	assert.Equal(t, backendName, app.Metadata["backend"])

	t.Run("no chain rule claims sign", func(t *testing.T) {
		g, names := resolveDiff(t, "sign(x)", "x", 1)
		assert.Equal(t, "2*DiracDelta(x)", goalText(t, g))
		assert.Equal(t, []string{"evaluate_derivative_fallback"}, names)
	})
}

func TestChainRuleTable(t *testing.T) {
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 1}
	cases := []struct {
		rule string
		in   string
		want string
	}{
		{"chain_rule_cos", "cos(x)", "-sin(x)*Derivative(x, x)"},
		{"chain_rule_exp", "exp(x**2)", "exp(x**2)*Derivative(x**2, x)"},
		{"chain_rule_log", "log(x)", "Derivative(x, x)/x"},
		{"chain_rule_floor", "floor(x)", "0"},
		{"chain_rule_heaviside", "Heaviside(x)", "DiracDelta(x)*Derivative(x, x)"},
		{"chain_rule_abs", "Abs(x)", "sign(x)*Derivative(x, x)"},
	}
	for _, tc := range cases {
		t.Run(tc.rule, func(t *testing.T) {
			r := findRule(t, tc.rule)
			g := diffGoal(t, tc.in, "x", 1)
			require.True(t, r.Match(g, rc))
			app, err := r.Apply(g, rc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, goalText(t, app.Goal))
		})
	}

	t.Run("exact operand only", func(t *testing.T) {
		// sin buried inside a product is the product rule's job.
		r := findRule(t, "chain_rule_sin")
		assert.False(t, r.Match(diffGoal(t, "x*sin(x)", "x", 1), rc))
	})
}

func TestSimplifyResultRule(t *testing.T) {
	r := findRule(t, "simplify_result")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 1}

	t.Run("matches only resolved goals", func(t *testing.T) {
		assert.False(t, r.Match(diffGoal(t, "x**2", "x", 1), rc))
		assert.True(t, r.Match(plainGoal(t, "2*x"), rc))
	})

	t.Run("applies trig identities", func(t *testing.T) {
		app, err := r.Apply(plainGoal(t, "sin(x)**2 + cos(x)**2"), rc)
		require.NoError(t, err)
		assert.Equal(t, "1", goalText(t, app.Goal))
		assert.False(t, app.Noop)
		assert.Equal(t, "Apply trigonometric identities to simplify.", app.Explanation.Concise)
	})

	t.Run("reports a no-op on canonical input", func(t *testing.T) {
		app, err := r.Apply(plainGoal(t, "2*x"), rc)
		require.NoError(t, err)
		assert.True(t, app.Noop)
		assert.Equal(t, true, app.Metadata[domain.MetaNoop])
		assert.Equal(t, "No further simplification.", app.Explanation.Concise)
	})
}

func TestExpandExpressionRule(t *testing.T) {
	r := findRule(t, "expand_expression")
	rc := domain.RuleContext{Operation: domain.OpExpand}

	app, err := r.Apply(plainGoal(t, "(x + 1)**2"), rc)
	require.NoError(t, err)
	assert.Equal(t, "x**2 + 2*x + 1", goalText(t, app.Goal))
	assert.False(t, app.Noop)

	t.Run("noop when already expanded", func(t *testing.T) {
		// The parse tree's nested associativity must not read as an expansion.
		app, err := r.Apply(plainGoal(t, "x**2 + 2*x + 1"), rc)
		require.NoError(t, err)
		assert.True(t, app.Noop)
		assert.Equal(t, "Expression is already expanded.", app.Explanation.Concise)
		assert.Equal(t, "x**2 + 2*x + 1", goalText(t, app.Goal),
			"a no-op still hands back the canonical form")
	})
}

func TestFactorExpressionRule(t *testing.T) {
	r := findRule(t, "factor_expression")
	rc := domain.RuleContext{Operation: domain.OpFactor}

	app, err := r.Apply(plainGoal(t, "x**2 + 2*x + 1"), rc)
	require.NoError(t, err)
	assert.Equal(t, "(x + 1)**2", goalText(t, app.Goal))

	t.Run("noop when irreducible", func(t *testing.T) {
		app, err := r.Apply(plainGoal(t, "x**2 + 1"), rc)
		require.NoError(t, err)
		assert.True(t, app.Noop)
		assert.Equal(t, "Expression cannot be factored further.", app.Explanation.Concise)
	})

	t.Run("noop when irreducible with nested sums", func(t *testing.T) {
		app, err := r.Apply(plainGoal(t, "x**2 + x + 1"), rc)
		require.NoError(t, err)
		assert.True(t, app.Noop)
		assert.Equal(t, "x**2 + x + 1", goalText(t, app.Goal))
	})

	t.Run("difference of squares", func(t *testing.T) {
		app, err := r.Apply(plainGoal(t, "x**2 - 1"), rc)
		require.NoError(t, err)
		assert.False(t, app.Noop)
		assert.Equal(t, "(x + 1)*(x - 1)", goalText(t, app.Goal))
	})
}

func TestSimplifyTrigRule(t *testing.T) {
	r := findRule(t, "simplify_trig")
	rc := domain.RuleContext{Operation: domain.OpSimplify}

	t.Run("trig identity", func(t *testing.T) {
		app, err := r.Apply(plainGoal(t, "sin(x)**2 + cos(x)**2"), rc)
		require.NoError(t, err)
		assert.Equal(t, "1", goalText(t, app.Goal))
		assert.Equal(t, "Apply trigonometric identities (sin²+cos²=1, double angles, etc.).", app.Explanation.Concise)
	})

	t.Run("plain algebra is not reported as trig", func(t *testing.T) {
		app, err := r.Apply(plainGoal(t, "x + x"), rc)
		require.NoError(t, err)
		assert.Equal(t, "2*x", goalText(t, app.Goal))
		assert.Equal(t, "Simplify algebraically.", app.Explanation.Concise)
	})

	t.Run("noop on canonical input", func(t *testing.T) {
		app, err := r.Apply(plainGoal(t, "2*x"), rc)
		require.NoError(t, err)
		assert.True(t, app.Noop)
		assert.Equal(t, "Expression is already simplified.", app.Explanation.Concise)
	})
}

func TestAlgebraOperationsViaRegistry(t *testing.T) {
	reg := registry.New()
	reg.RegisterRules(Rules()...)

	for op, want := range map[domain.Operation]string{
		domain.OpExpand:   "expand_expression",
		domain.OpFactor:   "factor_expression",
		domain.OpSimplify: "simplify_trig",
	} {
		rc := domain.RuleContext{Operation: op}
		rule, ok := reg.Select(op, plainGoal(t, "(x + 1)**2"), rc)
		require.True(t, ok, "no rule for %s", op)
		assert.Equal(t, want, rule.Name)
	}
}

func TestExplanationFallbacks(t *testing.T) {
	r := findRule(t, "product_rule")
	rc := domain.RuleContext{Operation: domain.OpDifferentiate, Variable: "x", Order: 1}
	app, err := r.Apply(diffGoal(t, "x*sin(x)", "x", 1), rc)
	require.NoError(t, err)

	e := app.Explanation
	assert.Equal(t, e.Concise, e.At(domain.VerbosityDetailed), "detailed falls back to concise")
	assert.NotEmpty(t, e.Teacher)
	assert.Equal(t, e.Teacher, e.At(domain.VerbosityTeacher))
}
