package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// GraphicRepositoryPG implements domain.GraphicRepository using PostgreSQL.
type GraphicRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGraphicRepository constructs a new graphic repository instance.
func NewGraphicRepository(pool *pgxpool.Pool) *GraphicRepositoryPG {
	return &GraphicRepositoryPG{pool: pool}
}

// Create persists a generation record.
func (r *GraphicRepositoryPG) Create(ctx context.Context, g *domain.Graphic) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO graphics (id, user_id, parent_id, prompt, graphic_type_id, visual_style_id, color_scheme_id, aspect_ratio, model, provider, image, created_at, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`, g.ID, g.UserID, g.ParentID, g.Config.Prompt, g.Config.GraphicTypeID, g.Config.VisualStyleID, g.Config.ColorSchemeID, g.Config.AspectRatio, g.Config.Model, g.Provider, g.Image, g.CreatedAt, g.UpdatedAt)
	return err
}

// GetByID loads a single record.
func (r *GraphicRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Graphic, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, user_id, COALESCE(parent_id, ''), prompt, graphic_type_id, visual_style_id, color_scheme_id, aspect_ratio, model, provider, image, created_at, updated_at
FROM graphics
WHERE id = $1;
`, id)
	var g domain.Graphic
	if err := row.Scan(&g.ID, &g.UserID, &g.ParentID, &g.Config.Prompt, &g.Config.GraphicTypeID, &g.Config.VisualStyleID, &g.Config.ColorSchemeID, &g.Config.AspectRatio, &g.Config.Model, &g.Provider, &g.Image, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListByUser returns the user's most recent records.
func (r *GraphicRepositoryPG) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Graphic, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, COALESCE(parent_id, ''), prompt, graphic_type_id, visual_style_id, color_scheme_id, aspect_ratio, model, provider, image, created_at, updated_at
FROM graphics
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2;
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var graphics []domain.Graphic
	for rows.Next() {
		var g domain.Graphic
		if err := rows.Scan(&g.ID, &g.UserID, &g.ParentID, &g.Config.Prompt, &g.Config.GraphicTypeID, &g.Config.VisualStyleID, &g.Config.ColorSchemeID, &g.Config.AspectRatio, &g.Config.Model, &g.Provider, &g.Image, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		graphics = append(graphics, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return graphics, nil
}

var _ domain.GraphicRepository = (*GraphicRepositoryPG)(nil)
