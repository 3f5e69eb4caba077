/*
Package session serializes access to save slots.

Saves may be written from a different goroutine (or process) than the one playing dialogues.
Manager wraps a ports.HistoryStore with per-slot locks, optionally backed by a
ports.DistributedLocker when several processes share one store, and offers a
read-modify-write Update for merging records into an existing slot.
*/
package session
