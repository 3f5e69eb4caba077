package tui

import (
	"hash/fnv"
	"io"

	"github.com/muesli/termenv"
)

// speakerPalette colors speaker names. A name always maps to the same color.
var speakerPalette = []string{"#818cf8", "#f472b6", "#34d399", "#fbbf24", "#60a5fa", "#fb7185"}

// Styles renders dialogue text for one output.
type Styles struct {
	out *termenv.Output
}

// NewStyles detects the color profile of w. Writers that are not terminals get plain text.
func NewStyles(w io.Writer, opts ...termenv.OutputOption) *Styles {
	return &Styles{out: termenv.NewOutput(w, opts...)}
}

// Speaker styles a speaker name.
func (s *Styles) Speaker(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	color := speakerPalette[int(h.Sum32()%uint32(len(speakerPalette)))]
	return s.out.String(name).Bold().Foreground(s.out.Color(color)).String()
}

// Locked styles an option that cannot be selected.
func (s *Styles) Locked(text string) string {
	return s.out.String(text).Faint().String()
}

// Gesture styles a stage direction.
func (s *Styles) Gesture(text string) string {
	return s.out.String(text).Italic().String()
}

// System styles meta-messages.
func (s *Styles) System(text string) string {
	return s.out.String(text).Foreground(s.out.Color("#fbbf24")).String()
}
