//go:build !debug

package runtime

import "log/slog"

// invariantViolation reports state the compiler should have ruled out. Release builds
// log it and let the caller end the dialogue.
func invariantViolation(logger *slog.Logger, msg string, args ...any) {
	logger.Error("invariant violation: "+msg, args...)
}
