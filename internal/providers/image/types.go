package image

import (
	"context"
	"fmt"
	"strings"

	"studio/internal/imaging"
)

// Request is the normalized generation request passed to any adapter. APIKey
// is the caller's own credential; there is no platform fallback key.
type Request struct {
	Prompt      string
	Model       string
	AspectRatio string
	APIKey      string
	RequestID   string
}

// RefineRequest carries a follow-up instruction plus the resolved prior
// image. Adapters that cannot condition on an image still receive the payload
// so resolution failures surface uniformly upstream of the provider choice.
type RefineRequest struct {
	Request
	Instruction string
	Image       imaging.CanonicalPayload
}

// Provider is implemented by every hosted image-generation adapter.
type Provider interface {
	Generate(ctx context.Context, req Request) (*imaging.ImageSource, error)
	Refine(ctx context.Context, req RefineRequest) (*imaging.ImageSource, error)
	Describe() Description
}

// Description identifies an adapter and its default model for the UI.
type Description struct {
	Tag     string   `json:"tag"`
	Model   string   `json:"model"`
	Models  []string `json:"models"`
	Summary string   `json:"summary"`
}

// Registry resolves a model identifier to the adapter serving it. Dispatch is
// by model-name prefix so new model revisions route without code changes.
type Registry struct {
	providers  map[string]Provider
	prefixes   map[string]string
	defaultTag string
}

// NewRegistry constructs an empty registry; the first registered adapter
// becomes the default.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		prefixes:  make(map[string]string),
	}
}

// Register adds an adapter under a tag with the model-name prefixes it serves.
func (r *Registry) Register(tag string, provider Provider, prefixes ...string) {
	r.providers[tag] = provider
	for _, p := range prefixes {
		r.prefixes[strings.ToLower(p)] = tag
	}
	if r.defaultTag == "" {
		r.defaultTag = tag
	}
}

// ForModel returns the adapter and tag serving the given model. An empty
// model resolves to the default adapter.
func (r *Registry) ForModel(model string) (Provider, string, error) {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		if p, ok := r.providers[r.defaultTag]; ok {
			return p, r.defaultTag, nil
		}
		return nil, "", fmt.Errorf("image: no providers registered")
	}
	for prefix, tag := range r.prefixes {
		if strings.HasPrefix(model, prefix) {
			return r.providers[tag], tag, nil
		}
	}
	return nil, "", fmt.Errorf("image: no provider serves model %q", model)
}

// Describe lists all registered adapters.
func (r *Registry) Describe() []Description {
	out := make([]Description, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p.Describe())
	}
	return out
}
