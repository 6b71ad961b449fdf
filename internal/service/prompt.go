package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/domain"
)

var titleCaser = cases.Title(language.English)

// PresetLookup resolves a preset ID against the built-in set and the catalog.
type PresetLookup func(id string) (domain.Preset, bool)

// ComposePrompt folds the selected presets into the user's prompt. Unknown or
// empty preset IDs are skipped; the prompt alone is always enough to generate.
func ComposePrompt(cfg domain.GenerationConfig, lookup PresetLookup) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(cfg.Prompt))

	appendPreset := func(label, id string) {
		if strings.TrimSpace(id) == "" || lookup == nil {
			return
		}
		preset, ok := lookup(id)
		if !ok {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(titleCaser.String(strings.TrimSpace(preset.Name)))
		if fragment := strings.TrimSpace(preset.Fragment); fragment != "" {
			b.WriteString(", ")
			b.WriteString(fragment)
		}
		if len(preset.Colors) > 0 {
			b.WriteString(" (")
			b.WriteString(strings.Join(preset.Colors, ", "))
			b.WriteString(")")
		}
	}

	appendPreset("Graphic type", cfg.GraphicTypeID)
	appendPreset("Visual style", cfg.VisualStyleID)
	appendPreset("Color palette", cfg.ColorSchemeID)

	if b.Len() == 0 {
		return "Create a graphic"
	}
	return b.String()
}
