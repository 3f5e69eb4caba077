/*
Package dialoguetree compiles branching dialogue graphs and plays them against a game-side presentation layer.

Authors describe a conversation as a graph of typed nodes: speeches, branches on game state, fired events,
option locks, jumps and jump-backs. The compiler validates that graph into an immutable Dialogue. A Director
then plays it: it binds speakers to roles, hands speech lines and choice menus to a Controller and remembers
which nodes every speaker has already seen.

# Concept

The library never draws anything and never reads input. The host implements ports.Controller and
ports.Speaker, and feeds player actions back through the Director (SelectOption, Skip, Continue).
Game state reaches conditions and events through a registry.Registry of named queries and handlers.
This Hexagonal Architecture lets the same dialogue run inside a game loop, a terminal or a test.

# Key Features

  - Validated graphs: every structural problem is reported with the node it concerns.
  - Pluggable transitions: speeches advance automatically, wait for a choice or wait for a signal.
  - Live conditions: branches and option locks query game state each time they are evaluated.
  - Persistent memory: visitation records and resume points survive saves through ports.HistoryStore.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/dialoguetree"
		"github.com/aretw0/dialoguetree/pkg/dsl"
		"github.com/aretw0/dialoguetree/pkg/ports"
	)

	func main() {
		b := dsl.New("greeting")
		b.Add("entry").Entry().Go("hello")
		b.Add("hello").Speech("NPC", "Welcome, traveller.").Gated()

		dlg, err := dialoguetree.Compile(b, nil)
		if err != nil {
			log.Fatal(err)
		}

		// controller, npc and player are implemented by the game.
		director := dialoguetree.New(controller)
		ctx := context.Background()
		if err := director.Start(ctx, dlg, []ports.Speaker{npc, player}, true); err != nil {
			log.Fatal(err)
		}

		// Later, when the speech finished playing:
		_ = director.Continue(ctx)
	}
*/
package dialoguetree
