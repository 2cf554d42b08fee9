package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/pkg/domain"
)

func mustAppend(t *testing.T, g *domain.StepGraph, nodes ...domain.StepNode) {
	t.Helper()
	for _, n := range nodes {
		require.NoError(t, g.Append(n))
	}
}

// threeStepResult models a d/dx (x**2 + sin(x)) run.
func threeStepResult(t *testing.T) *domain.EngineResult {
	t.Helper()
	g := domain.NewStepGraph()
	mustAppend(t, g,
		domain.StepNode{
			ID: "step_001", Operation: domain.OpDifferentiate, Rule: "sum_rule",
			Input:  "Derivative(x**2 + sin(x), x)",
			Output: "Derivative(x**2, x) + Derivative(sin(x), x)",
			Explanation: domain.Explanation{
				Concise:  "Differentiate each term separately.",
				Detailed: "The derivative of a sum is the sum of the derivatives.",
				Teacher:  "Differentiation is linear, so every term of the sum can be handled on its own.",
			},
		},
		domain.StepNode{
			ID: "step_002", Operation: domain.OpDifferentiate, Rule: "power_rule",
			Input:     "Derivative(x**2, x) + Derivative(sin(x), x)",
			Output:    "2*x + Derivative(sin(x), x)",
			DependsOn: []string{"step_001"},
			Explanation: domain.Explanation{
				Concise:  "Apply the power rule.",
				Detailed: "Bring the exponent down and reduce it by one: d/dx x^2 = 2x.",
			},
		},
		domain.StepNode{
			ID: "step_003", Operation: domain.OpDifferentiate, Rule: "sine_rule",
			Input:     "2*x + Derivative(sin(x), x)",
			Output:    "2*x + cos(x)",
			DependsOn: []string{"step_002"},
			Explanation: domain.Explanation{
				Concise: "The derivative of sin(x) is cos(x).",
			},
		},
	)
	return &domain.EngineResult{
		Operation: domain.OpDifferentiate,
		Input:     "x**2 + sin(x)",
		Output:    "2*x + cos(x)",
		Graph:     g,
	}
}

// absentVariableResult models a d/dx y**2 run whose step carries metadata.
func absentVariableResult(t *testing.T) *domain.EngineResult {
	t.Helper()
	g := domain.NewStepGraph()
	mustAppend(t, g, domain.StepNode{
		ID: "step_001", Operation: domain.OpDifferentiate, Rule: "constant_rule",
		Input:  "Derivative(y**2, x)",
		Output: "0",
		Explanation: domain.Explanation{
			Concise: "The expression does not depend on x, so its derivative is 0.",
		},
		Metadata: map[string]any{domain.MetaVariableAbsent: true},
	})
	return &domain.EngineResult{
		Operation: domain.OpDifferentiate,
		Input:     "y**2",
		Output:    "0",
		Graph:     g,
		Warnings:  []string{"Expression 'y**2' does not contain variable 'x'. The derivative will be 0 or a constant."},
		Metadata:  map[string]any{domain.MetaVariableAbsent: true},
	}
}

func emptyResult() *domain.EngineResult {
	return &domain.EngineResult{
		Operation: domain.OpExpand,
		Input:     "x + 1",
		Output:    "x + 1",
		Graph:     domain.NewStepGraph(),
	}
}

func TestTextRendererConcise(t *testing.T) {
	out, err := Text{}.Render(threeStepResult(t), domain.VerbosityConcise)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Operation: differentiate",
		"Input: x**2 + sin(x)",
		"Output: 2*x + cos(x)",
		"",
		"Steps:",
		"- Derivative(x**2 + sin(x), x) -> Derivative(x**2, x) + Derivative(sin(x), x)",
		"- Derivative(x**2, x) + Derivative(sin(x), x) -> 2*x + Derivative(sin(x), x)",
		"- 2*x + Derivative(sin(x), x) -> 2*x + cos(x)",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestTextRendererDetailed(t *testing.T) {
	out, err := Text{}.Render(threeStepResult(t), domain.VerbosityDetailed)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Operation: differentiate",
		"Input: x**2 + sin(x)",
		"Output: 2*x + cos(x)",
		"",
		"Steps:",
		"- [sum_rule] Derivative(x**2 + sin(x), x) -> Derivative(x**2, x) + Derivative(sin(x), x)",
		"  The derivative of a sum is the sum of the derivatives.",
		"- [power_rule] Derivative(x**2, x) + Derivative(sin(x), x) -> 2*x + Derivative(sin(x), x)",
		"  Bring the exponent down and reduce it by one: d/dx x^2 = 2x.",
		"- [sine_rule] 2*x + Derivative(sin(x), x) -> 2*x + cos(x)",
		"  The derivative of sin(x) is cos(x).",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestTextRendererTeacher(t *testing.T) {
	out, err := Text{}.Render(absentVariableResult(t), domain.VerbosityTeacher)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Operation: differentiate",
		"Input: y**2",
		"Output: 0",
		"",
		"Steps:",
		"- [constant_rule] Derivative(y**2, x) -> 0",
		"  Explanation: The expression does not depend on x, so its derivative is 0.",
		`  Notes: {"variable_absent":true}`,
	}, "\n")
	assert.Equal(t, want, out)
}

func TestTextRendererEmptyGraph(t *testing.T) {
	out, err := Text{}.Render(emptyResult(), domain.VerbosityConcise)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Operation: expand",
		"Input: x + 1",
		"Output: x + 1",
		"",
		"(no steps)",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestTextRendererDoesNotMutateResult(t *testing.T) {
	res := threeStepResult(t)
	before := res.Graph.Nodes()

	_, err := Text{}.Render(res, domain.VerbosityTeacher)
	require.NoError(t, err)
	_, err = Mermaid{}.Render(res, domain.VerbosityTeacher)
	require.NoError(t, err)

	assert.Equal(t, before, res.Graph.Nodes())
	assert.NoError(t, res.Graph.Validate())
}

func TestJSONRenderer(t *testing.T) {
	res := threeStepResult(t)

	out, err := JSON{}.Render(res, domain.VerbosityConcise)
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(out)))
	assert.True(t, strings.HasPrefix(out, "{\n  \"operation\": \"differentiate\""))
	assert.Contains(t, out, `"nodes": [`)
	assert.Contains(t, out, `"dependencies": [`)

	// Verbosity never changes the canonical payload.
	again, err := JSON{}.Render(res, domain.VerbosityTeacher)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	var decoded domain.EngineResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, res.Output, decoded.Output)
	assert.Equal(t, res.Graph.Len(), decoded.Graph.Len())
}

func TestMermaidRenderer(t *testing.T) {
	t.Run("detailed labels carry rule names", func(t *testing.T) {
		out, err := Mermaid{}.Render(threeStepResult(t), domain.VerbosityDetailed)
		require.NoError(t, err)

		for _, want := range []string{
			"graph TD",
			`input(("x**2 + sin(x)"))`,
			`step_001["sum_rule<br/>Derivative(x**2, x) + Derivative(sin(x), x)"]`,
			"input --> step_001",
			"step_001 --> step_002",
			"step_002 --> step_003",
			`output[["2*x + cos(x)"]]`,
			"step_003 --> output",
			"class input,output io;",
		} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("concise labels are outputs only", func(t *testing.T) {
		out, err := Mermaid{}.Render(threeStepResult(t), domain.VerbosityConcise)
		require.NoError(t, err)
		assert.Contains(t, out, `step_002["2*x + Derivative(sin(x), x)"]`)
		assert.NotContains(t, out, "<br/>")
	})

	t.Run("empty graph links input to output", func(t *testing.T) {
		out, err := Mermaid{}.Render(emptyResult(), domain.VerbosityConcise)
		require.NoError(t, err)
		assert.Contains(t, out, "input --> output")
		assert.NotContains(t, out, "step_")
	})

	t.Run("quotes in labels are neutralized", func(t *testing.T) {
		res := emptyResult()
		res.Output = `x + "1"`
		out, err := Mermaid{}.Render(res, domain.VerbosityConcise)
		require.NoError(t, err)
		assert.Contains(t, out, `output[["x + '1'"]]`)
	})
}

func TestBuiltinCoversAllFormats(t *testing.T) {
	formats := make([]string, 0, 3)
	for _, r := range Builtin() {
		formats = append(formats, r.Format())
	}
	assert.Equal(t, []string{"text", "json", "mermaid"}, formats)
}
