package render

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Mermaid renders the step graph as a flowchart definition, suitable for
// embedding in Markdown or pasting into mermaid.live. Shapes carry semantics:
// the input is a ((circle)), steps are [rectangles], the final output is a
// [[subroutine]]. Dependencies become edges, so parallel branches of a
// cofactor expansion or an elimination sequence are visible at a glance.
type Mermaid struct{}

// Format returns "mermaid".
func (Mermaid) Format() string { return "mermaid" }

// Render produces the flowchart. Concise labels show each step's output only;
// detailed and teacher labels prepend the rule name.
func (Mermaid) Render(result *domain.EngineResult, verbosity domain.Verbosity) (string, error) {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    input((\"%s\"))\n", escapeMermaidLabel(result.Input))

	var nodes []domain.StepNode
	if result.Graph != nil {
		nodes = result.Graph.Nodes()
	}

	for _, n := range nodes {
		safeID := sanitizeMermaidID(n.ID)
		label := escapeMermaidLabel(n.Output)
		if verbosity != domain.VerbosityConcise {
			label = fmt.Sprintf("%s<br/>%s", sanitizeMermaidID(n.Rule), label)
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", safeID, label)

		if len(n.DependsOn) == 0 {
			fmt.Fprintf(&sb, "    input --> %s\n", safeID)
			continue
		}
		for _, dep := range n.DependsOn {
			fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(dep), safeID)
		}
	}

	fmt.Fprintf(&sb, "    output[[\"%s\"]]\n", escapeMermaidLabel(result.Output))
	if len(nodes) == 0 {
		sb.WriteString("    input --> output\n")
	} else {
		fmt.Fprintf(&sb, "    %s --> output\n", sanitizeMermaidID(nodes[len(nodes)-1].ID))
	}

	sb.WriteString("\n    classDef io fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    class input,output io;\n")
	return sb.String(), nil
}

// sanitizeMermaidID strips characters Mermaid treats as syntax from node ids.
func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// escapeMermaidLabel keeps expression text from breaking out of a quoted label.
func escapeMermaidLabel(text string) string {
	return strings.ReplaceAll(text, "\"", "'")
}
