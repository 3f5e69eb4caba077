/*
Package domain contains the compiled dialogue model shared by the compiler, the runtime and the adapters.

It is kept free of I/O and persistence. Every node lives in a flat arena owned by a Dialogue and refers
to other nodes by NodeID only, so a compiled dialogue serializes as plain data and jump cycles never
create ownership cycles.

# Key Entities

  - Node: one unit of control flow, a closed variant over the Kind constants.
  - Dialogue: the compiled asset (node arena, root, declared speaker roles, compile status).
  - SpeechDetails: the content bundle of a speech node (speaker role, variations, tags, gestures).
  - Option: a selectable entry of a choice menu, possibly locked.
  - Histories: persisted per-dialogue, per-speaker visitation records.
*/
package domain
