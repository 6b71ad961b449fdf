package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository using PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a new user repository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// GetByID loads an account.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, email, name, locale, COALESCE(photo_key, ''), created_at, updated_at
FROM users
WHERE id = $1;
`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Locale, &u.PhotoKey, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePhotoKey records the storage key of the user's profile photo.
func (r *UserRepositoryPG) UpdatePhotoKey(ctx context.Context, userID, key string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET photo_key = $2, updated_at = now() WHERE id = $1;
`, userID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetSettings loads per-user preferences including BYOK provider keys.
func (r *UserRepositoryPG) GetSettings(ctx context.Context, userID string) (*domain.Settings, error) {
	row := r.pool.QueryRow(ctx, `
SELECT user_id, COALESCE(openai_api_key, ''), COALESCE(gemini_api_key, ''), COALESCE(default_model, ''), COALESCE(default_aspect_ratio, ''), COALESCE(locale, ''), updated_at
FROM user_settings
WHERE user_id = $1;
`, userID)
	var s domain.Settings
	if err := row.Scan(&s.UserID, &s.OpenAIAPIKey, &s.GeminiAPIKey, &s.DefaultModel, &s.DefaultAspectRatio, &s.Locale, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpsertSettings writes the full settings row for the user.
func (r *UserRepositoryPG) UpsertSettings(ctx context.Context, s *domain.Settings) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO user_settings (user_id, openai_api_key, gemini_api_key, default_model, default_aspect_ratio, locale, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
    openai_api_key = EXCLUDED.openai_api_key,
    gemini_api_key = EXCLUDED.gemini_api_key,
    default_model = EXCLUDED.default_model,
    default_aspect_ratio = EXCLUDED.default_aspect_ratio,
    locale = EXCLUDED.locale,
    updated_at = EXCLUDED.updated_at;
`, s.UserID, s.OpenAIAPIKey, s.GeminiAPIKey, s.DefaultModel, s.DefaultAspectRatio, s.Locale, s.UpdatedAt)
	return err
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
