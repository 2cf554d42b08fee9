package domain

// Request describes one engine invocation. Expression carries the primary
// operand; MatrixB carries the right-hand operand of matrix_multiply.
type Request struct {
	Operation  Operation `json:"operation"`
	Expression string    `json:"expression"`
	Variable   string    `json:"variable,omitempty"`
	Order      int       `json:"order,omitempty"`
	MatrixB    string    `json:"matrix_b,omitempty"`
}

// EngineResult is the terminal value of one successful run. It owns its
// StepGraph exclusively.
type EngineResult struct {
	Operation Operation      `json:"operation"`
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	Graph     *StepGraph     `json:"graph"`
	Warnings  []string       `json:"warnings,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
