package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"studio/internal/domain"
	"studio/internal/imaging"
	"studio/internal/providers/image"
)

const maxVariants = 4

// Studio orchestrates generation and refinement: preset lookup, provider
// dispatch, source resolution and persistence.
type Studio struct {
	graphics domain.GraphicRepository
	presets  domain.PresetRepository
	users    domain.UserRepository
	registry *image.Registry
	resolver *imaging.Resolver
	logger   zerolog.Logger
}

// NewStudio wires the orchestrator.
func NewStudio(
	graphics domain.GraphicRepository,
	presets domain.PresetRepository,
	users domain.UserRepository,
	registry *image.Registry,
	resolver *imaging.Resolver,
	logger zerolog.Logger,
) *Studio {
	return &Studio{
		graphics: graphics,
		presets:  presets,
		users:    users,
		registry: registry,
		resolver: resolver,
		logger:   logger,
	}
}

// Generate produces quantity variants of the configured graphic and persists
// each as an independent record. Variants are fetched concurrently; the first
// provider error cancels the remaining calls.
func (s *Studio) Generate(ctx context.Context, userID string, cfg domain.GenerationConfig, quantity int) ([]domain.Graphic, error) {
	settings := s.settingsFor(ctx, userID)
	cfg = s.applyDefaults(cfg, settings)

	provider, tag, err := s.registry.ForModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	apiKey := settings.KeyForProvider(tag)
	prompt := ComposePrompt(cfg, s.lookupPreset(ctx))

	if quantity <= 0 {
		quantity = 1
	}
	if quantity > maxVariants {
		quantity = maxVariants
	}

	results := make([]*imaging.ImageSource, quantity)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < quantity; i++ {
		i := i
		g.Go(func() error {
			src, err := provider.Generate(gctx, image.Request{
				Prompt:      prompt,
				Model:       cfg.Model,
				AspectRatio: cfg.AspectRatio,
				APIKey:      apiKey,
				RequestID:   uuid.NewString(),
			})
			if err != nil {
				return err
			}
			results[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graphics := make([]domain.Graphic, 0, quantity)
	for _, src := range results {
		graphic, err := s.persist(ctx, userID, "", cfg, tag, src)
		if err != nil {
			return nil, err
		}
		graphics = append(graphics, *graphic)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("provider", tag).
		Int("quantity", quantity).
		Msg("studio: generated graphics")

	return graphics, nil
}

// Refine applies a follow-up instruction to an existing graphic. The stored
// image record is repaired into a canonical payload first, fetching the
// remote image when the record lost its inline fields.
func (s *Studio) Refine(ctx context.Context, userID, graphicID, instruction string) (*domain.Graphic, error) {
	parent, err := s.graphics.GetByID(ctx, graphicID)
	if err != nil {
		return nil, err
	}
	if parent.UserID != userID {
		return nil, domain.ErrNotFound
	}

	var source imaging.ImageSource
	if len(parent.Image) > 0 {
		// Legacy records may not unmarshal cleanly; the resolver decides
		// whether anything usable remains.
		if err := json.Unmarshal(parent.Image, &source); err != nil {
			s.logger.Warn().Err(err).Str("graphic_id", graphicID).Msg("studio: stored image record is malformed")
		}
	}
	payload, err := s.resolver.Resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	settings := s.settingsFor(ctx, userID)
	cfg := s.applyDefaults(parent.Config, settings)
	provider, tag, err := s.registry.ForModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	src, err := provider.Refine(ctx, image.RefineRequest{
		Request: image.Request{
			Prompt:      ComposePrompt(cfg, s.lookupPreset(ctx)),
			Model:       cfg.Model,
			AspectRatio: cfg.AspectRatio,
			APIKey:      settings.KeyForProvider(tag),
			RequestID:   uuid.NewString(),
		},
		Instruction: instruction,
		Image:       payload,
	})
	if err != nil {
		return nil, err
	}

	graphic, err := s.persist(ctx, userID, parent.ID, cfg, tag, src)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("parent_id", parent.ID).
		Str("provider", tag).
		Msg("studio: refined graphic")

	return graphic, nil
}

// Graphic returns a single owner-scoped record.
func (s *Studio) Graphic(ctx context.Context, userID, graphicID string) (*domain.Graphic, error) {
	graphic, err := s.graphics.GetByID(ctx, graphicID)
	if err != nil {
		return nil, err
	}
	if graphic.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return graphic, nil
}

// Graphics lists the user's recent records.
func (s *Studio) Graphics(ctx context.Context, userID string, limit int) ([]domain.Graphic, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.graphics.ListByUser(ctx, userID, limit)
}

func (s *Studio) persist(ctx context.Context, userID, parentID string, cfg domain.GenerationConfig, tag string, src *imaging.ImageSource) (*domain.Graphic, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("studio: marshal image source: %w", err)
	}
	now := time.Now().UTC()
	graphic := &domain.Graphic{
		ID:        uuid.NewString(),
		UserID:    userID,
		ParentID:  parentID,
		Config:    cfg,
		Image:     raw,
		Provider:  tag,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.graphics.Create(ctx, graphic); err != nil {
		return nil, err
	}
	return graphic, nil
}

// settingsFor loads settings, treating an absent row as empty defaults.
func (s *Studio) settingsFor(ctx context.Context, userID string) domain.Settings {
	settings, err := s.users.GetSettings(ctx, userID)
	if err != nil || settings == nil {
		return domain.Settings{UserID: userID}
	}
	return *settings
}

func (s *Studio) applyDefaults(cfg domain.GenerationConfig, settings domain.Settings) domain.GenerationConfig {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = settings.DefaultModel
	}
	if strings.TrimSpace(cfg.AspectRatio) == "" {
		cfg.AspectRatio = settings.DefaultAspectRatio
	}
	cfg.AspectRatio = domain.NormalizeAspectRatio(cfg.AspectRatio)
	return cfg
}

func (s *Studio) lookupPreset(ctx context.Context) PresetLookup {
	return func(id string) (domain.Preset, bool) {
		if preset, ok := domain.FindBuiltinPreset(id); ok {
			return preset, true
		}
		if s.presets == nil {
			return domain.Preset{}, false
		}
		preset, err := s.presets.GetByID(ctx, id)
		if err != nil || preset == nil {
			return domain.Preset{}, false
		}
		return *preset, true
	}
}
