package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// sampleResult builds a small but structurally valid EngineResult for contract runs.
func sampleResult(t *testing.T) *domain.EngineResult {
	t.Helper()

	graph := domain.NewStepGraph()
	require.NoError(t, graph.Append(domain.StepNode{
		ID:        "step_001",
		Operation: domain.OpDifferentiate,
		Rule:      "power_rule",
		Input:     "Derivative(x**2, x)",
		Output:    "2*x",
		Explanation: domain.Explanation{
			Concise: "Apply the power rule",
		},
	}))

	return &domain.EngineResult{
		Operation: domain.OpDifferentiate,
		Input:     "x**2",
		Output:    "2*x",
		Graph:     graph,
	}
}

// RunResultStoreContract verifies that a ResultStore implementation adheres to
// the interface contract. Adapters embed this in their own test files.
func RunResultStoreContract(t *testing.T, store ports.ResultStore) {
	ctx := context.Background()
	id := "contract-result-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		result := sampleResult(t)

		err := store.Save(ctx, id, result)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, result.Operation, loaded.Operation)
		assert.Equal(t, result.Input, loaded.Input)
		assert.Equal(t, result.Output, loaded.Output)
		require.NotNil(t, loaded.Graph)
		assert.Equal(t, result.Graph.Len(), loaded.Graph.Len())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrResultNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, id, sampleResult(t))
		require.NoError(t, err)

		err = store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrResultNotFound, "Load after Delete should return ErrResultNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		_ = store.Save(ctx, id1, sampleResult(t))
		_ = store.Save(ctx, id2, sampleResult(t))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
