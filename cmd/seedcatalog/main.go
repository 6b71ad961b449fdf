package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"studio/internal/adapter/repo"
	"studio/internal/domain"
	"studio/internal/infra"
)

// seedcatalog upserts the built-in presets into the public catalog so they
// are listable and votable alongside user-published ones. Safe to re-run.
func main() {
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "seedcatalog").Logger()
	presets := repo.NewPresetRepository(pool)

	for _, preset := range domain.BuiltinPresets() {
		p := preset
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 5*time.Second)
		err := presets.Create(seedCtx, &p)
		cancelSeed()
		if err != nil {
			exitWithError(fmt.Errorf("failed to seed preset %s: %w", p.ID, err))
		}
		logger.Info().Str("id", p.ID).Str("kind", string(p.Kind)).Msg("seeded preset")
	}

	logger.Info().Int("count", len(domain.BuiltinPresets())).Msg("catalog seed complete")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "seedcatalog:", err)
	os.Exit(1)
}
