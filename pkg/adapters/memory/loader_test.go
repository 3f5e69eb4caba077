package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/dialoguetree/pkg/adapters/memory"
	"github.com/aretw0/dialoguetree/pkg/dsl"
	"github.com/aretw0/dialoguetree/pkg/ports"
	contract "github.com/aretw0/dialoguetree/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"greeting": "id: greeting\nnodes:\n  - id: entry\n    kind: entry\n",
		"farewell": "id: farewell\nnodes:\n  - id: entry\n    kind: entry\n",
	}

	bytesData := make(map[string][]byte)
	for k, v := range data {
		bytesData[k] = []byte(v)
	}

	loader := memory.NewLoader(data)

	contract.GraphLoaderContractTest(t, loader, bytesData)
}

func TestInMemoryLoader_NotFound(t *testing.T) {
	loader := memory.NewLoader(nil)
	_, err := loader.LoadGraph(context.Background(), "ghost")
	assert.ErrorIs(t, err, ports.ErrGraphNotFound)
}

func TestNewFromGraphs(t *testing.T) {
	b := dsl.New("greeting")
	b.Add("entry").Entry().Go("hello")
	b.Add("hello").Speech("NPC", "Hello.")
	g, err := b.Build()
	require.NoError(t, err)

	loader, err := memory.NewFromGraphs(g)
	require.NoError(t, err)

	ids, err := loader.ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"greeting"}, ids)

	raw, err := loader.LoadGraph(context.Background(), "greeting")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Hello.")

	_, err = memory.NewFromGraphs(&dsl.Graph{})
	assert.Error(t, err)
}

func TestNewFromGraphs_RejectsDuplicates(t *testing.T) {
	g, err := dsl.New("twice").Build()
	require.NoError(t, err)

	_, err = memory.NewFromGraphs(g, g)
	assert.ErrorContains(t, err, "duplicate graph twice")
}
