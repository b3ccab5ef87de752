package subtitle

// Style is a named formatting profile from the [V4+ Styles] section.
// Events reference styles by name.
type Style struct {
	Name         string
	FontName     string
	FontSize     float64
	PrimaryColor string
	OutlineColor string
	BackColor    string
	Bold         bool
	Italic       bool
	Underline    bool
	StrikeOut    bool
	BorderStyle  int
	Outline      float64
	Shadow       float64
	Alignment    int
}

// Event is one timed caption instruction from the [Events] section
type Event struct {
	Start     float64
	End       float64
	Duration  float64
	StyleName string
	Text      string
}

// DefaultStyle returns the built-in fallback used when neither the named
// style nor a "Default" style exists in the file
func DefaultStyle() Style {
	return Style{
		Name:         "Default",
		FontName:     "Arial",
		FontSize:     40,
		PrimaryColor: "&H00FFFFFF",
		OutlineColor: "&H00000000",
		BackColor:    "&H00000000",
		BorderStyle:  1,
		Alignment:    2,
	}
}

// Resolve looks up an event's style by name, falling back to the "Default"
// style and finally to the built-in defaults
func Resolve(styles map[string]Style, name string) Style {
	if s, ok := styles[name]; ok {
		return s
	}
	if s, ok := styles["Default"]; ok {
		return s
	}
	return DefaultStyle()
}
