//go:build debug

package runtime

import (
	"fmt"
	"log/slog"
)

// invariantViolation panics in debug builds.
func invariantViolation(logger *slog.Logger, msg string, args ...any) {
	logger.Error("invariant violation: "+msg, args...)
	panic(fmt.Sprint("dialoguetree: invariant violation: ", msg, " ", args))
}
