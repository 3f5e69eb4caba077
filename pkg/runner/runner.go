package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/dialoguetree"
	"github.com/aretw0/dialoguetree/internal/logging"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/session"
)

// Runner reads player commands and forwards them to a Director until the dialogue ends.
//
// Commands:
//
//	<n>      select option n (1-based)
//	<empty>  continue past the current speech
//	s, skip  skip the current speech
//	r        re-check conditions (refreshes option locks)
//	q, quit  end the dialogue
type Runner struct {
	Console *Console

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Sessions persists records after the dialogue ends. Optional.
	Sessions *session.Manager
	Slot     string
}

// New creates a Runner reading through console's handler.
func New(console *Console, opts ...Option) *Runner {
	r := &Runner{
		Console: console,
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loops until director stops playing. End of input and context cancellation end the
// dialogue; cancellation is returned, end of input is not.
func (r *Runner) Run(ctx context.Context, director *dialoguetree.Director) error {
	handler := r.Console.Handler()

	for director.IsPlaying() {
		if err := r.Console.Err(); err != nil {
			director.End(ctx)
			return fmt.Errorf("output error: %w", err)
		}

		input, err := handler.Input(ctx)
		if err != nil {
			director.End(ctx)
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		if err := r.dispatch(ctx, director, input); err != nil {
			return err
		}
	}

	if err := r.Console.Err(); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return r.persist(ctx, director)
}

func (r *Runner) dispatch(ctx context.Context, director *dialoguetree.Director, input string) error {
	handler := r.Console.Handler()
	cmd := strings.ToLower(strings.TrimSpace(input))
	r.Logger.Debug("command", "input", cmd, "node_id", director.ActiveNode())

	switch cmd {
	case "q", "quit":
		director.End(ctx)
		return nil
	case "s", "skip":
		if !r.Console.CanSkip() {
			return handler.SystemOutput(ctx, "this line cannot be skipped")
		}
		return ignoreClosed(director.Skip(ctx))
	case "r":
		return ignoreClosed(director.CheckConditions(ctx))
	case "":
		if len(r.Console.Options()) > 0 {
			return handler.SystemOutput(ctx, "choose an option by number")
		}
		return ignoreClosed(director.Continue(ctx))
	}

	options := r.Console.Options()
	n, err := strconv.Atoi(cmd)
	if err != nil || n < 1 || n > len(options) {
		return handler.SystemOutput(ctx, fmt.Sprintf("unknown command %q", input))
	}
	if opt := options[n-1]; opt.Locked {
		msg := "that option is locked"
		if opt.Message != "" {
			msg += ": " + opt.Message
		}
		return handler.SystemOutput(ctx, msg)
	}
	return ignoreClosed(director.SelectOption(ctx, n-1))
}

func (r *Runner) persist(ctx context.Context, director *dialoguetree.Director) error {
	if r.Sessions == nil || r.Slot == "" {
		return nil
	}
	if err := r.Sessions.Merge(ctx, r.Slot, director.Records()); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", r.Slot, err)
	}
	r.Logger.Info("records saved", "slot", r.Slot)
	return nil
}

// ignoreClosed drops ErrSessionClosed: a callback may end the dialogue between commands.
func ignoreClosed(err error) error {
	if errors.Is(err, domain.ErrSessionClosed) {
		return nil
	}
	return err
}
