package theme

// Palette holds the colors used for charts and exported documents.
type Palette struct {
	Colors        []string
	Primary       string
	Secondary     string
	Text          string
	MutedText     string
	Grid          string
	Background    string
	Border        string
	TooltipBG     string
	TooltipBorder string
}

var (
	lightPalette = Palette{
		Colors: []string{
			"#4f46e5", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6",
			"#ec4899", "#06b6d4", "#84cc16", "#f97316", "#6366f1",
		},
		Primary:       "#4f46e5",
		Secondary:     "#10b981",
		Text:          "#1f2937",
		MutedText:     "#6b7280",
		Grid:          "#e5e7eb",
		Background:    "#ffffff",
		Border:        "rgba(0, 0, 0, 0.05)",
		TooltipBG:     "rgba(255, 255, 255, 0.95)",
		TooltipBorder: "rgba(0, 0, 0, 0.1)",
	}
	darkPalette = Palette{
		Colors: []string{
			"#818cf8", "#34d399", "#fbbf24", "#f87171", "#a78bfa",
			"#f472b6", "#22d3ee", "#a3e635", "#fb923c", "#a78bfa",
		},
		Primary:       "#818cf8",
		Secondary:     "#34d399",
		Text:          "#f1f5f9",
		MutedText:     "#94a3b8",
		Grid:          "#334155",
		Background:    "#1e293b",
		Border:        "rgba(255, 255, 255, 0.1)",
		TooltipBG:     "rgba(31, 41, 55, 0.95)",
		TooltipBorder: "rgba(255, 255, 255, 0.2)",
	}
)

func (t Theme) Palette() Palette {
	p := lightPalette
	if t == Dark {
		p = darkPalette
	}
	p.Colors = append([]string(nil), p.Colors...)
	return p
}

// Color returns the i-th series color, cycling.
func (p Palette) Color(i int) string {
	return p.Colors[i%len(p.Colors)]
}

// RGB splits a #rrggbb color.
func RGB(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	parse := func(s string) int {
		v := 0
		for _, c := range s {
			v <<= 4
			switch {
			case c >= '0' && c <= '9':
				v += int(c - '0')
			case c >= 'a' && c <= 'f':
				v += int(c-'a') + 10
			case c >= 'A' && c <= 'F':
				v += int(c-'A') + 10
			}
		}
		return v
	}
	return parse(hex[1:3]), parse(hex[3:5]), parse(hex[5:7])
}
