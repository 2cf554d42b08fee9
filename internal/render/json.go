package render

import (
	"encoding/json"

	"github.com/aretw0/stepwise/pkg/domain"
)

// JSON renders the canonical machine-readable form. Verbosity is ignored:
// every explanation level ships in the payload and the field order is stable,
// so two identical runs serialize byte-identically.
type JSON struct{}

// Format returns "json".
func (JSON) Format() string { return "json" }

// Render serializes the full result, graph included, with two-space indent.
func (JSON) Render(result *domain.EngineResult, _ domain.Verbosity) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
