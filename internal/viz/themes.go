package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view. Particles are tinted along
// the Cold to Hot ramp by temperature.
type Theme struct {
	Name   string
	Cold   lipgloss.Color
	Hot    lipgloss.Color
	Frame  lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeEmber = Theme{
		Name:   "ember",
		Cold:   lipgloss.Color("#3a6ea5"),
		Hot:    lipgloss.Color("#ff5a1f"),
		Frame:  lipgloss.Color("#555566"),
		Accent: lipgloss.Color("#ffcc00"),
		Muted:  lipgloss.Color("#666688"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Cold:   lipgloss.Color("#005500"),
		Hot:    lipgloss.Color("#88ff88"),
		Frame:  lipgloss.Color("#00cc00"),
		Accent: lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Cold:   lipgloss.Color("#888888"),
		Hot:    lipgloss.Color("#ffffff"),
		Frame:  lipgloss.Color("#cccccc"),
		Accent: lipgloss.Color("#0088ff"),
		Muted:  lipgloss.Color("#888888"),
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Cold:   lipgloss.Color("#0077be"),
		Hot:    lipgloss.Color("#ffd700"),
		Frame:  lipgloss.Color("#4488aa"),
		Accent: lipgloss.Color("#00a8cc"),
		Muted:  lipgloss.Color("#4488aa"),
	}

	Themes = []Theme{
		ThemeEmber,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to ember.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeEmber
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(cur Theme) Theme {
	for i, t := range Themes {
		if t.Name == cur.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
