// Package transition implements the strategies that decide how a speech node hands off control.
//
// A strategy never enters nodes itself. Every method returns a Result that the traversal loop
// acts upon, so chains of auto-advancing speeches do not grow the call stack.
//
// Strategies are created per speech entry through the factory registry, which means any state
// they keep (such as "an option was already selected") lasts exactly one visit.
package transition
