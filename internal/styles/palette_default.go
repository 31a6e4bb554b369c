package styles

// DefaultTheme is the baseline palette.
var DefaultTheme = Theme{
	Name: "default",
	Tokens: ThemeTokens{
		Text:      "#E6EDF3",
		TextMuted: "#8B9AAE",
		Border:    "#223043",
		Accent:    "#5B8DEF",
		Bar:       "#58A6FF",
		Overdrive: "#D29922",
		Inverted:  "#BC8CFF",
		Success:   "#3FB950",
		Warning:   "#D29922",
		Error:     "#F85149",
	},
}
