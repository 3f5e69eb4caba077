/*
Package ports defines the interfaces between the dialogue core and the host game.

These interfaces decouple traversal from presentation, persistence, and graph sources,
so the same compiled dialogue can be played in a console, a test, or an engine integration.

# Key Interfaces

  - Controller: the presentation surface (open/close display, show speech and options).
  - Speaker: a participant bound to a role for the duration of a session.
  - EventDispatcher: executes the side effects requested by event nodes.
  - HistoryStore: persists visitation history per save slot.
  - GraphLoader: retrieves raw graph files (e.g. from Loam or memory).
  - DistributedLocker: coordinates concurrent access to one save slot across instances.
*/
package ports
