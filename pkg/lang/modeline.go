package lang

import (
	"strconv"
	"strings"
)

// Settings are the per-file parsing overrides a modeline can set. The zero
// value is not useful; start from DefaultSettings.
type Settings struct {
	Enabled          bool
	Admonitions      bool
	InlinePrototypes bool
	NumberedLists    bool
	BulletLists      bool
	DefinitionLists  bool
	Leveling         bool
	StrictInlineCode bool
	IndentWidth      int // 0 means auto-detect from the language default
	Language         string
	AutoPublish      bool
}

// DefaultSettings returns the settings in effect when a file carries no
// modeline.
func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		Admonitions:      true,
		InlinePrototypes: true,
		NumberedLists:    true,
		BulletLists:      true,
		DefinitionLists:  true,
		Leveling:         true,
		StrictInlineCode: true,
	}
}

// modelineTag introduces an override directive inside a comment line.
const modelineTag = "ndplus:"

// modelineWindow is how many lines at each end of a file are searched.
const modelineWindow = 10

// ScanModelines searches the top and bottom of a raw source file for
// override directives and applies them to a copy of base. Unknown keys are
// ignored so old files keep parsing under newer versions.
func ScanModelines(source string, base Settings) Settings {
	lines := strings.Split(source, "\n")

	scan := func(from, to int) {
		for i := from; i < to && i < len(lines); i++ {
			idx := strings.Index(lines[i], modelineTag)
			if idx < 0 {
				continue
			}
			applyModeline(lines[i][idx+len(modelineTag):], &base)
		}
	}

	scan(0, modelineWindow)
	bottom := len(lines) - modelineWindow
	if bottom < modelineWindow {
		bottom = modelineWindow
	}
	scan(bottom, len(lines))

	return base
}

func applyModeline(directives string, s *Settings) {
	for _, field := range strings.Fields(directives) {
		key, value := field, ""
		if eq := strings.IndexByte(field, '='); eq >= 0 {
			key, value = field[:eq], field[eq+1:]
		}
		on := value == "" || value == "on" || value == "yes" || value == "true"

		switch strings.ToLower(key) {
		case "off":
			s.Enabled = false
		case "on":
			s.Enabled = true
		case "admonitions":
			s.Admonitions = on
		case "prototypes":
			s.InlinePrototypes = on
		case "numbered":
			s.NumberedLists = on
		case "bullets":
			s.BulletLists = on
		case "definitions":
			s.DefinitionLists = on
		case "leveling":
			s.Leveling = on
		case "inlinecode":
			s.StrictInlineCode = value != "relaxed"
		case "indent":
			if n, err := strconv.Atoi(value); err == nil && n >= 2 {
				s.IndentWidth = n
			}
		case "language":
			s.Language = value
		case "publish":
			s.AutoPublish = value == "auto" || on
		}
	}
}
