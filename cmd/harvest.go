package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"imagehound/internal/dedup"
	"imagehound/internal/repositories"
	"imagehound/internal/services"
	"imagehound/internal/shared"
	"imagehound/internal/tasks"
	"imagehound/internal/ui"
)

func harvestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run the ingestion loop until interrupted or the duplicate streak terminates it",
		Action: r.Harvest,
	}
}

// Harvest wires the pipeline together and runs the controller. An operator
// interrupt (SIGINT/SIGTERM) unwinds gracefully; the summary with final
// counts is rendered on every exit path.
func (r *Runner) Harvest(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewImageRepository(db)

	keys, err := repo.LoadDedupKeys()
	if err != nil {
		return fmt.Errorf("failed to load existing entries: %w", err)
	}
	engine := dedup.NewEngine(repo, keys)
	r.logger.Info("loaded existing entries", "count", engine.Len())

	extractor, err := services.NewBrowserExtractor(r.config.Browser, r.logger)
	if err != nil {
		return fmt.Errorf("failed to start rendering session: %w", err)
	}
	defer extractor.Close()

	harvester := tasks.NewHarvester(tasks.HarvesterOpts{
		Config:   r.config.Harvest,
		Lister:   services.NewGalleryService(r.config.API, r.httpClient),
		Comments: services.NewContentService(r.httpClient, r.logger),
		Tags:     extractor,
		Store:    repo,
		Dedup:    engine,
		Logger:   r.logger,
	})

	r.logger.Info("image harvesting started, press Ctrl+C to stop")

	hctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := harvester.Run(hctx)
	r.writePlain("%s", ui.RenderSummary(summary))

	if err != nil {
		if errors.Is(err, context.Canceled) {
			r.logger.Info("process stopped",
				"processed", summary.Processed, "skipped", summary.Skipped)
			return nil
		}
		return fmt.Errorf("harvest run failed: %w", err)
	}

	return nil
}
