// Package tui holds the terminal styling shared by the console runner and the CLI.
package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the dialoguetree banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct{ text, color string }{
		{`     _ _       _                       _`, "#818cf8"},
		{`  __| (_) __ _| | ___   __ _ _   _  __| |_ _ __ ___  ___`, "#a78bfa"},
		{` / _' | |/ _' | |/ _ \ / _' | | | |/ _ \ __| '__/ _ \/ _ \`, "#c084fc"},
		{`| (_| | | (_| | | (_) | (_| | |_| |  __/ |_| | |  __/  __/`, "#e879f9"},
		{` \__,_|_|\__,_|_|\___/ \__, |\__,_|\___|\__|_|  \___|\___|`, "#f472b6"},
		{`                       |___/`, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
