package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/dialoguetree/internal/compiler"
	"github.com/aretw0/dialoguetree/internal/testutils"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/ports/tests"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const gateYAML = `id: gate
roles: [Guard, Player]
nodes:
  - id: entry
    kind: entry
    children: [halt]
  - id: halt
    kind: speech
    speech:
      role: Guard
      variations:
        - text: Halt!
`

const cellarMarkdown = `---
id: cellar
nodes:
  - id: entry
    kind: entry
    children: [creak]
  - id: creak
    kind: speech
    speech:
      role: NPC
      variations:
        - text: Who's down there?
---
# Cellar

Plays when the player opens the trapdoor.
`

func seed(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}
	return New(loam.NewTypedRepository[GraphDocument](repo))
}

func encoded(t *testing.T, content string) []byte {
	t.Helper()
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(content), &doc))
	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	return out
}

func TestLoader_Contract(t *testing.T) {
	loader := seed(t, map[string]string{"gate.yaml": gateYAML})

	tests.GraphLoaderContractTest(t, loader, map[string][]byte{
		"gate": encoded(t, gateYAML),
	})
}

func TestLoader_LoadGraph_Compiles(t *testing.T) {
	loader := seed(t, map[string]string{
		"gate.yaml": gateYAML,
		"cellar.md": cellarMarkdown,
	})
	ctx := context.Background()

	for id, speech := range map[string]string{"gate": "Halt!", "cellar": "Who's down there?"} {
		data, err := loader.LoadGraph(ctx, id)
		require.NoError(t, err, id)

		g, err := compiler.NewParser().Parse(data)
		require.NoError(t, err, id)
		assert.Equal(t, id, g.ID)

		dlg, err := compiler.New().Build(g)
		require.NoError(t, err, id)
		root, ok := dlg.RootNode()
		require.True(t, ok)
		next, ok := dlg.Node(root.Children[0])
		require.True(t, ok)
		assert.Equal(t, speech, next.Speech.Variations[0].Text)
	}
}

func TestLoader_LoadGraph_DefaultsIDToFileName(t *testing.T) {
	loader := seed(t, map[string]string{
		"implicit.json": `{"nodes": [{"id": "entry", "kind": "entry"}]}`,
	})

	data, err := loader.LoadGraph(context.Background(), "implicit")
	require.NoError(t, err)

	g, err := compiler.NewParser().Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "implicit", g.ID)
	assert.Equal(t, []string{domain.RoleNPC, domain.RolePlayer}, g.Roles)
}

func TestLoader_LoadGraph_NotFound(t *testing.T) {
	loader := seed(t, map[string]string{"gate.yaml": gateYAML})

	_, err := loader.LoadGraph(context.Background(), "ghost")
	assert.ErrorIs(t, err, ports.ErrGraphNotFound)
}

func TestLoader_ListGraphs_NormalizesIDs(t *testing.T) {
	loader := seed(t, map[string]string{
		"gate.yaml":     gateYAML,
		"cellar.md":     cellarMarkdown,
		"implicit.json": `{"nodes": []}`,
	})

	ids, err := loader.ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cellar", "gate", "implicit"}, ids)
}

func TestLoader_ListGraphs_DetectsCollisions(t *testing.T) {
	loader := seed(t, map[string]string{
		"gate.yaml": gateYAML,
		"gate.json": `{"id": "gate", "nodes": []}`,
	})

	_, err := loader.ListGraphs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "gate")
}
