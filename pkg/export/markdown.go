package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/vanderheijden86/laneboard/pkg/model"
)

// Markdown renders the board as one section per lane with a task list.
func Markdown(s model.BoardState) string {
	var sb strings.Builder
	sb.WriteString("# Board\n\n")
	fmt.Fprintf(&sb, "%d cards\n", s.TotalCards())
	for _, lane := range model.Lanes {
		cards := s.Lane(lane)
		fmt.Fprintf(&sb, "\n## %s (%d)\n\n", lane.Title(), len(cards))
		if len(cards) == 0 {
			sb.WriteString("_empty_\n")
			continue
		}
		check := " "
		if lane == model.LaneDone {
			check = "x"
		}
		for _, c := range cards {
			fmt.Fprintf(&sb, "- [%s] %s `%s`\n", check, escapeMarkdown(c.Text), c.ID)
		}
	}
	return sb.String()
}

// escapeMarkdown keeps card text on one list line and stops it from being
// read as markup.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
		"[", "\\[",
		"]", "\\]",
		"<", "&lt;",
		">", "&gt;",
		"\n", " ",
		"\r", "",
	)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, replacer.Replace(text))
}

// RenderTerminal prints the Markdown view of s to w. When w is a terminal it
// goes through glamour with the named style ("" means auto); otherwise the
// raw Markdown is written.
func RenderTerminal(w io.Writer, s model.BoardState, style string, width int) error {
	md := Markdown(s)
	if !isTerminal(w) {
		_, err := io.WriteString(w, md)
		return err
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
