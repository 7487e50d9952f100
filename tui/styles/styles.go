package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nachoal/parts-agent-go/session"
)

// Theme represents a color theme
type Theme struct {
	Name    string
	Primary lipgloss.AdaptiveColor
	Accent  lipgloss.AdaptiveColor
	Surface lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	TextDim lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
}

// DefaultTheme uses WhatsApp-like greens
var DefaultTheme = Theme{
	Name:    "default",
	Primary: lipgloss.AdaptiveColor{Light: "#128C7E", Dark: "#25D366"},
	Accent:  lipgloss.AdaptiveColor{Light: "#075E54", Dark: "#34B7F1"},
	Surface: lipgloss.AdaptiveColor{Light: "#F0F0F0", Dark: "#2D2D2D"},
	Text:    lipgloss.AdaptiveColor{Light: "#1E1E1E", Dark: "#E0E0E0"},
	TextDim: lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"},
	Border:  lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#404040"},
	Success: lipgloss.AdaptiveColor{Light: "#4CAF50", Dark: "#66BB6A"},
	Warning: lipgloss.AdaptiveColor{Light: "#FF9800", Dark: "#FFA726"},
	Error:   lipgloss.AdaptiveColor{Light: "#F44336", Dark: "#EF5350"},
}

// NordTheme is a muted alternative
var NordTheme = Theme{
	Name:    "nord",
	Primary: lipgloss.AdaptiveColor{Light: "#5E81AC", Dark: "#81A1C1"},
	Accent:  lipgloss.AdaptiveColor{Light: "#88C0D0", Dark: "#88C0D0"},
	Surface: lipgloss.AdaptiveColor{Light: "#3B4252", Dark: "#3B4252"},
	Text:    lipgloss.AdaptiveColor{Light: "#ECEFF4", Dark: "#D8DEE9"},
	TextDim: lipgloss.AdaptiveColor{Light: "#4C566A", Dark: "#4C566A"},
	Border:  lipgloss.AdaptiveColor{Light: "#4C566A", Dark: "#4C566A"},
	Success: lipgloss.AdaptiveColor{Light: "#A3BE8C", Dark: "#A3BE8C"},
	Warning: lipgloss.AdaptiveColor{Light: "#EBCB8B", Dark: "#EBCB8B"},
	Error:   lipgloss.AdaptiveColor{Light: "#BF616A", Dark: "#BF616A"},
}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	if name == "nord" {
		return NordTheme
	}
	return DefaultTheme
}

// Styles holds the styles of the operator console
type Styles struct {
	Theme Theme

	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Divider   lipgloss.Style

	Customer lipgloss.Style
	Agent    lipgloss.Style
	System   lipgloss.Style
	Function lipgloss.Style
	Error    lipgloss.Style

	Label   lipgloss.Style
	Help    lipgloss.Style
	Spinner lipgloss.Style

	statusDone    lipgloss.Style
	statusPending lipgloss.Style
}

// NewStyles creates a new styles instance with the given theme
func NewStyles(theme Theme) *Styles {
	s := &Styles{Theme: theme}

	s.Header = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	s.StatusBar = lipgloss.NewStyle().
		Background(theme.Surface).
		Foreground(theme.Text).
		Padding(0, 1)

	s.Divider = lipgloss.NewStyle().
		Foreground(theme.Border)

	s.Customer = lipgloss.NewStyle().
		Foreground(theme.Primary).
		PaddingLeft(1)

	s.Agent = lipgloss.NewStyle().
		Foreground(theme.Text).
		PaddingLeft(1)

	s.System = lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true).
		PaddingLeft(1)

	s.Function = lipgloss.NewStyle().
		Foreground(theme.Accent).
		PaddingLeft(1)

	s.Error = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true).
		PaddingLeft(1)

	s.Label = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.Help = lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true)

	s.Spinner = lipgloss.NewStyle().
		Foreground(theme.Primary)

	s.statusDone = lipgloss.NewStyle().
		Foreground(theme.Success).
		Bold(true)

	s.statusPending = lipgloss.NewStyle().
		Foreground(theme.Warning)

	return s
}

// RenderRole returns a styled role prefix
func (s *Styles) RenderRole(role string) string {
	switch role {
	case "user":
		return s.Customer.Copy().Bold(true).Render("Cliente:")
	case "assistant":
		return s.Agent.Copy().Bold(true).Render("Agente:")
	case "function":
		return s.Function.Copy().Bold(true).Render("ƒ")
	case "error":
		return s.Error.Render("Error:")
	default:
		return s.System.Copy().Bold(true).Render("Sistema:")
	}
}

// RenderStatus returns a styled conversation status badge
func (s *Styles) RenderStatus(status session.Status) string {
	switch status {
	case session.StatusDataComplete, session.StatusGeneratingQuote:
		return s.statusDone.Render("● " + string(status))
	default:
		return s.statusPending.Render("◌ " + string(status))
	}
}
