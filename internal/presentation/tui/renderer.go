// Package tui dresses engine results up for interactive terminals. Plain
// renderer output stays the source of truth; this layer only adds markdown
// styling when stdout is a capable terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/aretw0/stepwise/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// Falls back to the input text when the terminal profile carries no color.
func NewRenderer() func(string) (string, error) {
	if termenv.ColorProfile() == termenv.Ascii {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Markdown lays an engine result out as a markdown document for glamour.
func Markdown(result *domain.EngineResult, verbosity domain.Verbosity) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", result.Operation)
	fmt.Fprintf(&sb, "**Input:** `%s`\n\n", result.Input)
	fmt.Fprintf(&sb, "**Output:** `%s`\n\n", result.Output)

	for _, w := range result.Warnings {
		fmt.Fprintf(&sb, "> ⚠ %s\n\n", w)
	}

	var nodes []domain.StepNode
	if result.Graph != nil {
		nodes = result.Graph.Nodes()
	}
	if len(nodes) == 0 {
		sb.WriteString("_No steps recorded._\n")
		return sb.String()
	}

	sb.WriteString("## Steps\n\n")
	for i, n := range nodes {
		fmt.Fprintf(&sb, "%d. **%s**: `%s` → `%s`\n", i+1, n.Rule, n.Input, n.Output)
		if text := n.Explanation.At(verbosity); text != "" {
			fmt.Fprintf(&sb, "   %s\n", text)
		}
	}
	return sb.String()
}
