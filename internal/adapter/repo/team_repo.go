package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// TeamRepositoryPG implements domain.TeamRepository using PostgreSQL.
type TeamRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs a new team repository instance.
func NewTeamRepository(pool *pgxpool.Pool) *TeamRepositoryPG {
	return &TeamRepositoryPG{pool: pool}
}

// Create persists a team and enrolls the owner as its first member.
func (r *TeamRepositoryPG) Create(ctx context.Context, team *domain.Team) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO teams (id, name, owner_id, created_at) VALUES ($1, $2, $3, $4);
`, team.ID, team.Name, team.OwnerID, team.CreatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4);
`, team.ID, team.OwnerID, domain.TeamRoleOwner, team.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListByUser returns every team the user belongs to.
func (r *TeamRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, `
SELECT t.id, t.name, t.owner_id, t.created_at
FROM teams t
JOIN team_members m ON m.team_id = t.id
WHERE m.user_id = $1
ORDER BY t.created_at ASC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember enrolls a user; re-adding an existing member is a conflict.
func (r *TeamRepositoryPG) AddMember(ctx context.Context, m *domain.TeamMember) error {
	tag, err := r.pool.Exec(ctx, `
INSERT INTO team_members (team_id, user_id, role, joined_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (team_id, user_id) DO NOTHING;
`, m.TeamID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateOperation
	}
	return nil
}

// RemoveMember drops a membership.
func (r *TeamRepositoryPG) RemoveMember(ctx context.Context, teamID, userID string) error {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM team_members WHERE team_id = $1 AND user_id = $2;
`, teamID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetMember loads a single membership row.
func (r *TeamRepositoryPG) GetMember(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	row := r.pool.QueryRow(ctx, `
SELECT team_id, user_id, role, joined_at FROM team_members WHERE team_id = $1 AND user_id = $2;
`, teamID, userID)
	var m domain.TeamMember
	if err := row.Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

var _ domain.TeamRepository = (*TeamRepositoryPG)(nil)
