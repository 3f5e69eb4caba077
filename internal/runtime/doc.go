// Package runtime walks a compiled dialogue.
//
// A Session owns the active-node cursor of one play-through. Entering a node returns a
// transition.Result instead of entering the successor directly; the session loops over those
// results until a node needs external input (an option menu, a gated speech) or the dialogue
// ends. Input arriving later (SelectOption, Skip, Continue) resumes the same loop.
package runtime
