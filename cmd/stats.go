package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"imagehound/internal/repositories"
	"imagehound/internal/shared"
)

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show record and user counts for the local store",
		Action: r.Stats,
	}
}

// Stats prints store totals.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewImageRepository(db)

	records, err := repo.CountRecords()
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	users, err := repo.CountUsers()
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	r.writePlain("Records: %d\n", records)
	r.writePlain("Users:   %d\n", users)
	return nil
}
