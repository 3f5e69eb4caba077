package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/dialoguetree/internal/presentation/tui"
	"github.com/muesli/termenv"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader *bufio.Reader
	Writer io.Writer

	styles    *tui.Styles
	termOpts  []termenv.OutputOption
	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerProfile forces a color profile instead of detecting one from the writer.
func WithTextHandlerProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.termOpts = append(h.termOpts, termenv.WithProfile(p))
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.styles = tui.NewStyles(w, h.termOpts...)
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can give up on a cancelled context.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, frame Frame) error {
	var err error
	switch frame.Type {
	case FrameSpeech:
		if frame.Text == "" {
			return nil
		}
		_, err = fmt.Fprintf(h.Writer, "%s: %s\n", h.styles.Speaker(frame.Speaker), strings.TrimSpace(frame.Text))
	case FrameOptions:
		for _, opt := range frame.Options {
			line := fmt.Sprintf("  %d) %s", opt.Number, opt.Label)
			if opt.Locked {
				if opt.Message != "" {
					line += " [" + opt.Message + "]"
				}
				line = h.styles.Locked(line)
			}
			if _, err = fmt.Fprintln(h.Writer, line); err != nil {
				return err
			}
		}
	case FrameGesture:
		_, err = fmt.Fprintln(h.Writer, h.styles.Gesture(fmt.Sprintf("  *%s %s*", frame.Speaker, frame.Clip)))
	case FrameMissingSpeaker:
		return h.SystemOutput(ctx, fmt.Sprintf("nobody plays %s", frame.Role))
	case FrameClose:
		_, err = fmt.Fprintln(h.Writer, h.styles.System("[end]"))
	}
	return err
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(h.Writer, h.styles.System("[system] "+msg))
	return err
}
