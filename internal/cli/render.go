package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown is swapped for the identity in tests.
var renderMarkdown = func(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(w io.Writer, md string) {
	out, err := renderMarkdown(md)
	if err != nil {
		out = md
	}
	fmt.Fprint(w, out)
}
