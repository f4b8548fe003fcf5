package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/laneboard/pkg/model"
)

// TermProfile holds the detected terminal color profile, computed once at
// package init.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and ANSI white
// for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Lanes
	Todo       lipgloss.AdaptiveColor
	InProgress lipgloss.AdaptiveColor
	Done       lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	// Styles
	Base        lipgloss.Style
	Title       lipgloss.Style
	Header      lipgloss.Style
	Card        lipgloss.Style
	Separator   lipgloss.Style
	MutedText   lipgloss.Style
	StatusText  lipgloss.Style
	StatusError lipgloss.Style
	Trash       lipgloss.Style
	TrashActive lipgloss.Style
	DropMarker  lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,

		Todo:       lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green
		InProgress: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
		Done:       lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: ColorBgHighlight,
		Muted:     ColorMuted,
		Danger:    ColorDanger,
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Title = r.NewStyle().
		Background(ThemeBg("#282A36")).
		Foreground(t.Primary).
		Bold(true)

	t.Header = r.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Card = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.Separator = r.NewStyle().Foreground(t.Border)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.StatusText = r.NewStyle().Foreground(ColorInfo)
	t.StatusError = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Trash = r.NewStyle().Foreground(t.Muted).Align(lipgloss.Center)
	t.TrashActive = r.NewStyle().Foreground(ThemeFg("#FF5555")).Bold(true).Align(lipgloss.Center)
	t.DropMarker = r.NewStyle().Foreground(ColorWarning).Bold(true)

	return t
}

// LaneColor returns the accent used for a lane's header.
func (t Theme) LaneColor(id model.LaneID) lipgloss.AdaptiveColor {
	switch id {
	case model.LaneTodo:
		return t.Todo
	case model.LaneInProgress:
		return t.InProgress
	case model.LaneDone:
		return t.Done
	default:
		return t.Subtext
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
