package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the weave banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{` __      _____  __ ___   _____ `, "#818cf8"},
		{` \ \ /\ / / _ \/ _' \ \ / / _ \`, "#a78bfa"},
		{`  \ V  V /  __/ (_| |\ V /  __/`, "#c084fc"},
		{`   \_/\_/ \___|\__,_| \_/ \___|`, "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
