package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Text renders a result as plain lines for terminals and logs. Verbosity
// scales the per-step detail; the header is always the same three lines.
type Text struct{}

// Format returns "text".
func (Text) Format() string { return "text" }

// Render produces the plain-text trail.
func (Text) Render(result *domain.EngineResult, verbosity domain.Verbosity) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Operation: %s\n", result.Operation)
	fmt.Fprintf(&sb, "Input: %s\n", result.Input)
	fmt.Fprintf(&sb, "Output: %s\n", result.Output)
	sb.WriteString("\n")

	var nodes []domain.StepNode
	if result.Graph != nil {
		nodes = result.Graph.Nodes()
	}
	if len(nodes) == 0 {
		sb.WriteString("(no steps)")
		return sb.String(), nil
	}

	sb.WriteString("Steps:")
	for _, n := range nodes {
		switch verbosity {
		case domain.VerbosityDetailed:
			fmt.Fprintf(&sb, "\n- [%s] %s -> %s", n.Rule, n.Input, n.Output)
			fmt.Fprintf(&sb, "\n  %s", n.Explanation.At(verbosity))
		case domain.VerbosityTeacher:
			fmt.Fprintf(&sb, "\n- [%s] %s -> %s", n.Rule, n.Input, n.Output)
			fmt.Fprintf(&sb, "\n  Explanation: %s", n.Explanation.At(verbosity))
			if len(n.Metadata) > 0 {
				notes, err := json.Marshal(n.Metadata)
				if err != nil {
					return "", fmt.Errorf("render step notes: %w", err)
				}
				fmt.Fprintf(&sb, "\n  Notes: %s", notes)
			}
		default:
			fmt.Fprintf(&sb, "\n- %s -> %s", n.Input, n.Output)
		}
	}
	return sb.String(), nil
}
