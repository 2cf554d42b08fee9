package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/internal/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	tests.RunResultStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	g := domain.NewStepGraph()
	require.NoError(t, g.Append(domain.StepNode{
		ID: "step_001", Operation: domain.OpExpand, Rule: "expand_expression",
		Input: "(x + 1)**2", Output: "x**2 + 2*x + 1",
		Explanation: domain.Explanation{Concise: "Expand the square."},
	}))
	saved := &domain.EngineResult{
		Operation: domain.OpExpand,
		Input:     "(x + 1)**2",
		Output:    "x**2 + 2*x + 1",
		Graph:     g,
	}
	require.NoError(t, store.Save(ctx, "run-1", saved))

	// Mutating what went in or what comes out must not change the store.
	saved.Output = "tampered"
	first, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	first.Output = "also tampered"

	second, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "x**2 + 2*x + 1", second.Output)
	assert.Equal(t, 1, second.Graph.Len())
}
