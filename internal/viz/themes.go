package viz

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name   string
	E      lipgloss.Color
	MP     lipgloss.Color
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Border lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:   "classic",
		E:      lipgloss.Color("#ffd700"),
		MP:     lipgloss.Color("#ff3030"),
		Accent: lipgloss.Color("#00ccff"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888899"),
		Border: lipgloss.Color("#444466"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		E:      lipgloss.Color("#88ff88"),
		MP:     lipgloss.Color("#00cc00"),
		Accent: lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
		Border: lipgloss.Color("#003300"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		E:      lipgloss.Color("#ffd700"),
		MP:     lipgloss.Color("#00a8cc"),
		Accent: lipgloss.Color("#0077be"),
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
		Border: lipgloss.Color("#001a33"),
	}

	Themes = []Theme{ThemeClassic, ThemeRetro, ThemeOcean}
)

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// NextTheme cycles through Themes.
func NextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
