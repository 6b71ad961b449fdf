package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/imaging"
	"studio/internal/providers/image"
)

type memGraphicRepo struct {
	mu       sync.Mutex
	graphics map[string]domain.Graphic
}

func newMemGraphicRepo() *memGraphicRepo {
	return &memGraphicRepo{graphics: make(map[string]domain.Graphic)}
}

func (r *memGraphicRepo) Create(_ context.Context, g *domain.Graphic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphics[g.ID] = *g
	return nil
}

func (r *memGraphicRepo) GetByID(_ context.Context, id string) (*domain.Graphic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.graphics[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (r *memGraphicRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.Graphic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Graphic
	for _, g := range r.graphics {
		if g.UserID == userID && len(out) < limit {
			out = append(out, g)
		}
	}
	return out, nil
}

type memUserRepo struct {
	settings map[string]domain.Settings
}

func (r *memUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (r *memUserRepo) UpdatePhotoKey(context.Context, string, string) error { return nil }
func (r *memUserRepo) GetSettings(_ context.Context, userID string) (*domain.Settings, error) {
	s, ok := r.settings[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}
func (r *memUserRepo) UpsertSettings(_ context.Context, s *domain.Settings) error {
	r.settings[s.UserID] = *s
	return nil
}

type fakeProvider struct {
	mu        sync.Mutex
	generated int
	refined   int
	lastReq   image.Request
	lastRef   image.RefineRequest
	result    *imaging.ImageSource
	err       error
}

func (p *fakeProvider) Generate(_ context.Context, req image.Request) (*imaging.ImageSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generated++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func (p *fakeProvider) Refine(_ context.Context, req image.RefineRequest) (*imaging.ImageSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refined++
	p.lastRef = req
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func (p *fakeProvider) Describe() image.Description {
	return image.Description{Tag: "fake", Model: "fake-1"}
}

func newTestStudio(provider image.Provider, users *memUserRepo) (*Studio, *memGraphicRepo) {
	registry := image.NewRegistry()
	registry.Register("fake", provider, "fake")
	graphics := newMemGraphicRepo()
	resolver := imaging.NewResolver(http.DefaultClient, zerolog.New(io.Discard))
	studio := NewStudio(graphics, nil, users, registry, resolver, zerolog.New(io.Discard))
	return studio, graphics
}

func TestGeneratePersistsVariants(t *testing.T) {
	provider := &fakeProvider{result: &imaging.ImageSource{Base64Data: "QUJD", MimeType: "image/png"}}
	users := &memUserRepo{settings: map[string]domain.Settings{
		"u1": {UserID: "u1", GeminiAPIKey: "key", DefaultModel: "fake-1"},
	}}
	studio, graphics := newTestStudio(provider, users)

	got, err := studio.Generate(context.Background(), "u1", domain.GenerationConfig{
		Prompt:        "a fox",
		VisualStyleID: "style-neon",
		AspectRatio:   "16:9",
		Model:         "fake-1",
	}, 3)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(got) != 3 || provider.generated != 3 {
		t.Fatalf("expected 3 variants, got %d records %d calls", len(got), provider.generated)
	}
	if len(graphics.graphics) != 3 {
		t.Fatalf("expected 3 persisted graphics, got %d", len(graphics.graphics))
	}
	for _, g := range got {
		var src imaging.ImageSource
		if err := json.Unmarshal(g.Image, &src); err != nil {
			t.Fatalf("persisted image not json: %v", err)
		}
		if src.Base64Data != "QUJD" {
			t.Fatalf("payload lost on persist: %+v", src)
		}
		if g.Config.AspectRatio != "16:9" || g.Provider != "fake" {
			t.Fatalf("unexpected record: %+v", g)
		}
	}
}

func TestGenerateComposesPromptFromPresets(t *testing.T) {
	provider := &fakeProvider{result: &imaging.ImageSource{Base64Data: "QUJD"}}
	users := &memUserRepo{settings: map[string]domain.Settings{"u1": {UserID: "u1"}}}
	studio, _ := newTestStudio(provider, users)

	_, err := studio.Generate(context.Background(), "u1", domain.GenerationConfig{
		Prompt:        "company mascot",
		GraphicTypeID: "type-logo",
		ColorSchemeID: "palette-sunset",
		Model:         "fake-1",
	}, 1)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	prompt := provider.lastReq.Prompt
	for _, want := range []string{"company mascot", "Logo", "#FF6B35"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q: %q", want, prompt)
		}
	}
}

func TestGenerateProviderErrorPropagates(t *testing.T) {
	provider := &fakeProvider{err: image.ErrCredentialMissing}
	users := &memUserRepo{settings: map[string]domain.Settings{}}
	studio, graphics := newTestStudio(provider, users)

	_, err := studio.Generate(context.Background(), "u1", domain.GenerationConfig{Prompt: "x", Model: "fake-1"}, 2)
	if !errors.Is(err, image.ErrCredentialMissing) {
		t.Fatalf("expected credential error, got %v", err)
	}
	if len(graphics.graphics) != 0 {
		t.Fatalf("failed generation must not persist records")
	}
}

func TestRefineRepairsLegacyRecord(t *testing.T) {
	provider := &fakeProvider{result: &imaging.ImageSource{Base64Data: "REVG", MimeType: "image/png"}}
	users := &memUserRepo{settings: map[string]domain.Settings{"u1": {UserID: "u1"}}}
	studio, graphics := newTestStudio(provider, users)

	// Legacy shape: full data URL stored in base64Data with a wrong sibling mime.
	legacy, _ := json.Marshal(imaging.ImageSource{Base64Data: "data:image/jpeg;base64,QUJD", MimeType: "image/png"})
	parent := domain.Graphic{
		ID:     "g1",
		UserID: "u1",
		Config: domain.GenerationConfig{Prompt: "a fox", Model: "fake-1"},
		Image:  legacy,
	}
	graphics.graphics[parent.ID] = parent

	child, err := studio.Refine(context.Background(), "u1", "g1", "make it blue")
	if err != nil {
		t.Fatalf("Refine error: %v", err)
	}
	if provider.lastRef.Image.MimeType != "image/jpeg" || provider.lastRef.Image.Base64Data != "QUJD" {
		t.Fatalf("resolver output not passed through: %+v", provider.lastRef.Image)
	}
	if provider.lastRef.Instruction != "make it blue" {
		t.Fatalf("instruction lost: %q", provider.lastRef.Instruction)
	}
	if child.ParentID != "g1" {
		t.Fatalf("lineage missing: %+v", child)
	}
}

func TestRefineWithoutUsableSourceFails(t *testing.T) {
	provider := &fakeProvider{result: &imaging.ImageSource{Base64Data: "REVG"}}
	users := &memUserRepo{settings: map[string]domain.Settings{}}
	studio, graphics := newTestStudio(provider, users)

	graphics.graphics["g1"] = domain.Graphic{
		ID:     "g1",
		UserID: "u1",
		Config: domain.GenerationConfig{Model: "fake-1"},
		Image:  []byte(`{}`),
	}

	_, err := studio.Refine(context.Background(), "u1", "g1", "make it blue")
	var unavailable *imaging.SourceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected SourceUnavailableError, got %v", err)
	}
	if provider.refined != 0 {
		t.Fatalf("provider must not be called without a source")
	}
}

func TestRefineOtherUsersGraphicHidden(t *testing.T) {
	provider := &fakeProvider{result: &imaging.ImageSource{Base64Data: "REVG"}}
	users := &memUserRepo{settings: map[string]domain.Settings{}}
	studio, graphics := newTestStudio(provider, users)

	graphics.graphics["g1"] = domain.Graphic{ID: "g1", UserID: "owner", Config: domain.GenerationConfig{Model: "fake-1"}}

	if _, err := studio.Refine(context.Background(), "intruder", "g1", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign graphic, got %v", err)
	}
}
