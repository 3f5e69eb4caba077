package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/dialoguetree/internal/cli"
	"github.com/aretw0/dialoguetree/internal/logging"
	"github.com/stretchr/testify/require"
)

const marketYAML = `id: market
roles: [Merchant, Player]
nodes:
  - {id: entry, kind: entry, children: [hello]}
  - id: hello
    kind: speech
    transition: input
    speech:
      role: Merchant
      variations: [{text: "Buying?"}]
    children: [buy, leave]
  - id: buy
    kind: option_lock
    lock:
      message: Costs 5 gold
      conditions:
        - {type: int, query: gold, op: ">=", value: 5}
    children: [buy_line]
  - id: buy_line
    kind: speech
    speech:
      role: Player
      title: Buy a sword
      variations: [{text: "One sword."}]
    children: [pay]
  - id: pay
    kind: event
    events: [{name: pay}]
  - id: leave
    kind: speech
    speech:
      role: Player
      title: Leave
      variations: [{text: "Bye."}]
`

const brokenYAML = `id: broken
roles: [NPC]
nodes:
  - {id: entry, kind: entry, children: [boo]}
  - id: boo
    kind: speech
    speech: {role: Ghost, variations: [{text: "Boo."}]}
`

const stateYAML = `ints: {gold: 10}
events:
  pay:
    set: {gold: 5}
    say: You pay five gold.
`

// project writes files into a fresh graph directory and opens it with saves kept
// in a separate directory.
func project(t *testing.T, files map[string]string) *cli.Project {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	cfg := cli.Config{Dir: dir, Store: cli.StoreFile, SaveDir: t.TempDir()}
	p, err := cli.OpenProject(cfg, logging.NewNop())
	require.NoError(t, err)
	return p
}

func writeState(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
