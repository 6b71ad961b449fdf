package domain

import (
	"strings"
	"time"
)

// PresetKind enumerates the reusable preset categories users can publish.
type PresetKind string

const (
	PresetKindStyle   PresetKind = "style"
	PresetKindPalette PresetKind = "palette"
	PresetKindType    PresetKind = "type"
)

// PresetScope controls catalog visibility.
type PresetScope string

const (
	PresetScopePrivate PresetScope = "private"
	PresetScopePublic  PresetScope = "public"
)

// Preset is a shareable studio building block: a visual style, a color
// palette, or a graphic type. Public presets form the community catalog.
type Preset struct {
	ID        string
	Kind      PresetKind
	Name      string
	Fragment  string // prompt fragment injected into the composed prompt
	Colors    []string
	Scope     PresetScope
	OwnerID   string
	Votes     int
	Voters    []string
	CreatedAt time.Time
}

// VotedBy reports whether the given user already voted for the preset.
func (p Preset) VotedBy(userID string) bool {
	for _, v := range p.Voters {
		if v == userID {
			return true
		}
	}
	return false
}

// NormalizePresetKind validates free-form kind input.
func NormalizePresetKind(kind string) (PresetKind, bool) {
	switch PresetKind(strings.ToLower(strings.TrimSpace(kind))) {
	case PresetKindStyle:
		return PresetKindStyle, true
	case PresetKindPalette:
		return PresetKindPalette, true
	case PresetKindType:
		return PresetKindType, true
	default:
		return "", false
	}
}

// BuiltinPresets are the presets the studio ships with. They are addressable
// by ID without a catalog round trip and seeded into the store by
// cmd/seedcatalog so they appear in the public catalog as well.
func BuiltinPresets() []Preset {
	return []Preset{
		{ID: "style-flat", Kind: PresetKindStyle, Name: "Flat Design", Fragment: "flat design, crisp vector shapes, no gradients", Scope: PresetScopePublic},
		{ID: "style-watercolor", Kind: PresetKindStyle, Name: "Watercolor", Fragment: "soft watercolor wash, organic paper texture", Scope: PresetScopePublic},
		{ID: "style-neon", Kind: PresetKindStyle, Name: "Neon Glow", Fragment: "neon glow, dark background, vibrant light trails", Scope: PresetScopePublic},
		{ID: "style-isometric", Kind: PresetKindStyle, Name: "Isometric", Fragment: "isometric 3d illustration, clean geometry", Scope: PresetScopePublic},
		{ID: "palette-sunset", Kind: PresetKindPalette, Name: "Sunset", Fragment: "warm sunset palette", Colors: []string{"#FF6B35", "#F7C59F", "#004E89"}, Scope: PresetScopePublic},
		{ID: "palette-forest", Kind: PresetKindPalette, Name: "Forest", Fragment: "muted forest greens", Colors: []string{"#2D6A4F", "#95D5B2", "#081C15"}, Scope: PresetScopePublic},
		{ID: "palette-mono", Kind: PresetKindPalette, Name: "Monochrome", Fragment: "monochrome grayscale palette", Colors: []string{"#111111", "#888888", "#F2F2F2"}, Scope: PresetScopePublic},
		{ID: "type-logo", Kind: PresetKindType, Name: "Logo", Fragment: "a standalone logo mark, centered, plain background", Scope: PresetScopePublic},
		{ID: "type-poster", Kind: PresetKindType, Name: "Poster", Fragment: "a promotional poster layout with strong focal point", Scope: PresetScopePublic},
		{ID: "type-banner", Kind: PresetKindType, Name: "Social Banner", Fragment: "a wide social media banner composition", Scope: PresetScopePublic},
		{ID: "type-icon", Kind: PresetKindType, Name: "App Icon", Fragment: "a single app icon, simple silhouette, high contrast", Scope: PresetScopePublic},
	}
}

// FindBuiltinPreset looks up a shipped preset by ID.
func FindBuiltinPreset(id string) (Preset, bool) {
	for _, p := range BuiltinPresets() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}
