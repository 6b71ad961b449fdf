package domain

import "context"

// GraphicRepository persists generation results and their refinement lineage.
type GraphicRepository interface {
	Create(ctx context.Context, graphic *Graphic) error
	GetByID(ctx context.Context, id string) (*Graphic, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Graphic, error)
}

// PresetRepository backs the community catalog.
type PresetRepository interface {
	Create(ctx context.Context, preset *Preset) error
	GetByID(ctx context.Context, id string) (*Preset, error)
	// ListPublic returns public presets ordered by vote count descending,
	// capped at limit.
	ListPublic(ctx context.Context, kind PresetKind, limit int) ([]Preset, error)
	// Vote atomically increments the counter and records the voter. It
	// returns ErrDuplicateOperation when the user already voted.
	Vote(ctx context.Context, presetID, userID string) (int, error)
	// Unvote atomically decrements the counter and removes the voter. It
	// returns ErrDuplicateOperation when the user has no standing vote.
	Unvote(ctx context.Context, presetID, userID string) (int, error)
}

// UserRepository provides account and settings access.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	UpdatePhotoKey(ctx context.Context, userID, key string) error
	GetSettings(ctx context.Context, userID string) (*Settings, error)
	UpsertSettings(ctx context.Context, settings *Settings) error
}

// TeamRepository handles team membership CRUD.
type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	ListByUser(ctx context.Context, userID string) ([]Team, error)
	AddMember(ctx context.Context, member *TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	GetMember(ctx context.Context, teamID, userID string) (*TeamMember, error)
}
