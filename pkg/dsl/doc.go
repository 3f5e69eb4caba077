/*
Package dsl provides the editable, author-time model of a dialogue graph and a fluent builder for it.

A Graph is what an editor manipulates and what graph files (YAML or JSON) decode into. It enforces
the connection rules of each node kind while editing; the compiler then turns it into an immutable
domain.Dialogue.

Example usage:

	b := dsl.New("tavern")

	b.Add("entry").Entry().Go("greet")

	b.Add("greet").
		Speech("NPC", "Welcome, traveller.").
		Input().
		Go("rumours").
		Go("leave")

	b.Add("rumours").Speech("Player", "Heard any rumours?").Go("gossip")
	b.Add("gossip").Speech("NPC", "Wolves in the north.")
	b.Add("leave").Speech("Player", "Goodbye.")

	graph, err := b.Build()
	// ... pass graph to compiler.Compile
*/
package dsl
