package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/festifind/festifind/internal/model"
	"github.com/festifind/festifind/internal/repository"
)

//go:embed schema.sql
var schema string

// Migrate creates the festivals table and its indexes if they do not exist.
func Migrate(ctx context.Context, db repository.DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Seed inserts festivals that are not already present and returns how many
// rows were written.
func Seed(ctx context.Context, repo *repository.FestivalRepository, festivals []model.FestivalWithPreferences) (int, error) {
	n := 0
	for _, f := range festivals {
		inserted, err := repo.Insert(ctx, f)
		if err != nil {
			return n, fmt.Errorf("seed %s: %w", f.ID, err)
		}
		if inserted {
			n++
		}
	}
	return n, nil
}
