package domain

import "errors"

var (
	// ErrNotCompiled is returned when a dialogue that is not in the Compiled state is played.
	ErrNotCompiled = errors.New("dialogue is not compiled")

	// ErrNoController is returned when a session is opened without a presentation controller.
	ErrNoController = errors.New("no valid controller provided")

	// ErrNoRoot is returned when a compiled dialogue has no entry node.
	ErrNoRoot = errors.New("entry node does not exist")

	// ErrNodeNotFound is returned when a node ID does not resolve in the dialogue arena.
	ErrNodeNotFound = errors.New("node not found")

	// ErrMissingSpeaker is returned when a speech node's role has no bound speaker.
	ErrMissingSpeaker = errors.New("speaker not bound to role")

	// ErrDisplayUnavailable is returned when the controller refuses to open its display.
	ErrDisplayUnavailable = errors.New("display could not be opened")

	// ErrNoSpeakers is returned when a dialogue is started without participants.
	ErrNoSpeakers = errors.New("no speakers provided")

	// ErrInvalidSpeaker is returned for nil speakers or speakers without a dialogue name.
	ErrInvalidSpeaker = errors.New("invalid speaker provided")

	// ErrDuplicateSpeaker is returned when two speakers claim the same role.
	ErrDuplicateSpeaker = errors.New("multiple speakers share a role")

	// ErrSessionClosed is returned when input is forwarded to a session that is not playing.
	ErrSessionClosed = errors.New("dialogue session is not playing")

	// ErrSessionActive is returned when a session is opened while it is already playing.
	ErrSessionActive = errors.New("dialogue session is already playing")

	// ErrStepLimit is returned when traversal exceeds its step budget without needing input.
	ErrStepLimit = errors.New("traversal step limit exceeded")

	// ErrHistoryNotFound is returned when a history save slot cannot be found in the store.
	ErrHistoryNotFound = errors.New("history not found")
)
