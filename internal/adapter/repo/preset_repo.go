package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// PresetRepositoryPG implements domain.PresetRepository using PostgreSQL.
type PresetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPresetRepository constructs a new preset repository instance.
func NewPresetRepository(pool *pgxpool.Pool) *PresetRepositoryPG {
	return &PresetRepositoryPG{pool: pool}
}

// Create publishes a preset.
func (r *PresetRepositoryPG) Create(ctx context.Context, p *domain.Preset) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO presets (id, kind, name, fragment, colors, scope, owner_id, votes, voters, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, fragment = EXCLUDED.fragment, colors = EXCLUDED.colors, scope = EXCLUDED.scope;
`, p.ID, p.Kind, p.Name, p.Fragment, p.Colors, p.Scope, p.OwnerID, p.Votes, p.Voters, p.CreatedAt)
	return err
}

// GetByID loads a preset.
func (r *PresetRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Preset, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, kind, name, fragment, COALESCE(colors, '{}'), scope, owner_id, votes, COALESCE(voters, '{}'), created_at
FROM presets
WHERE id = $1;
`, id)
	return scanPreset(row)
}

// ListPublic returns public presets ordered by vote count descending. An
// empty kind returns every kind.
func (r *PresetRepositoryPG) ListPublic(ctx context.Context, kind domain.PresetKind, limit int) ([]domain.Preset, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, kind, name, fragment, COALESCE(colors, '{}'), scope, owner_id, votes, COALESCE(voters, '{}'), created_at
FROM presets
WHERE scope = 'public' AND ($1 = '' OR kind = $1)
ORDER BY votes DESC, created_at DESC
LIMIT $2;
`, string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []domain.Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return presets, nil
}

// Vote increments the counter and records the voter in one guarded statement,
// so a user racing against themselves cannot vote twice.
func (r *PresetRepositoryPG) Vote(ctx context.Context, presetID, userID string) (int, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE presets
SET votes = votes + 1, voters = array_append(voters, $2)
WHERE id = $1 AND NOT (COALESCE(voters, '{}') @> ARRAY[$2]::text[])
RETURNING votes;
`, presetID, userID)
	var votes int
	if err := row.Scan(&votes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyVoteMiss(ctx, presetID)
		}
		return 0, err
	}
	return votes, nil
}

// Unvote reverses a standing vote.
func (r *PresetRepositoryPG) Unvote(ctx context.Context, presetID, userID string) (int, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE presets
SET votes = GREATEST(votes - 1, 0), voters = array_remove(voters, $2)
WHERE id = $1 AND COALESCE(voters, '{}') @> ARRAY[$2]::text[]
RETURNING votes;
`, presetID, userID)
	var votes int
	if err := row.Scan(&votes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyVoteMiss(ctx, presetID)
		}
		return 0, err
	}
	return votes, nil
}

// classifyVoteMiss distinguishes "preset gone" from "guard rejected".
func (r *PresetRepositoryPG) classifyVoteMiss(ctx context.Context, presetID string) (int, error) {
	row := r.pool.QueryRow(ctx, `SELECT votes FROM presets WHERE id = $1;`, presetID)
	var votes int
	if err := row.Scan(&votes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return votes, domain.ErrDuplicateOperation
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (*domain.Preset, error) {
	var p domain.Preset
	if err := row.Scan(&p.ID, &p.Kind, &p.Name, &p.Fragment, &p.Colors, &p.Scope, &p.OwnerID, &p.Votes, &p.Voters, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ domain.PresetRepository = (*PresetRepositoryPG)(nil)
