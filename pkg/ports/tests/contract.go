// Package tests holds reusable contract suites for port implementations.
package tests

import (
	"context"
	"slices"
	"testing"

	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GraphLoaderContractTest verifies that loader serves exactly the graphs in want,
// keyed by graph ID, byte for byte.
func GraphLoaderContractTest(t *testing.T, loader ports.GraphLoader, want map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadGraph", func(t *testing.T) {
		for id, content := range want {
			got, err := loader.LoadGraph(ctx, id)
			require.NoError(t, err, id)
			assert.Equal(t, string(content), string(got), id)
		}
	})

	t.Run("LoadGraph unknown ID", func(t *testing.T) {
		_, err := loader.LoadGraph(ctx, "non-existent-graph")
		assert.ErrorIs(t, err, ports.ErrGraphNotFound)
	})

	t.Run("ListGraphs", func(t *testing.T) {
		ids, err := loader.ListGraphs(ctx)
		require.NoError(t, err)
		assert.True(t, slices.IsSorted(ids), "IDs are listed in order")

		wantIDs := make([]string, 0, len(want))
		for id := range want {
			wantIDs = append(wantIDs, id)
		}
		assert.ElementsMatch(t, wantIDs, ids)
	})
}
