package domain

// StepNode is one recorded rewrite step. Created exactly once, immutable after
// creation, owned exclusively by its StepGraph.
type StepNode struct {
	ID          string         `json:"id"`
	Operation   Operation      `json:"operation"`
	Rule        string         `json:"rule"`
	Input       string         `json:"input"`
	Output      string         `json:"output"`
	Explanation Explanation    `json:"explanation"`
	DependsOn   []string       `json:"dependencies"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// clone returns a deep enough copy for hand-out: slices and maps are copied so
// callers cannot reach back into graph-owned state.
func (n StepNode) clone() StepNode {
	out := n
	if n.DependsOn != nil {
		out.DependsOn = make([]string, len(n.DependsOn))
		copy(out.DependsOn, n.DependsOn)
	}
	if n.Metadata != nil {
		out.Metadata = make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
