package domain

import (
	"strings"
	"time"
)

// GenerationConfig captures the user-selected request parameters. It is
// immutable for the lifetime of a generation and fully owned by the caller.
type GenerationConfig struct {
	Prompt        string `json:"prompt"`
	GraphicTypeID string `json:"graphic_type_id"`
	VisualStyleID string `json:"visual_style_id"`
	ColorSchemeID string `json:"color_scheme_id"`
	AspectRatio   string `json:"aspect_ratio"`
	Model         string `json:"model"`
}

// Graphic is a persisted generation or refinement result. Image holds the raw
// provider payload as a JSON document; older records may carry it in one of
// several legacy shapes, which is why refinement goes through the resolver.
type Graphic struct {
	ID        string
	UserID    string
	ParentID  string
	Config    GenerationConfig
	Image     []byte
	Provider  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeAspectRatio clamps free-form input to a supported ratio.
func NormalizeAspectRatio(aspect string) string {
	switch strings.TrimSpace(aspect) {
	case "16:9", "9:16", "4:3", "3:4":
		return strings.TrimSpace(aspect)
	default:
		return "1:1"
	}
}
