package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"imagehound/internal/formatter"
	"imagehound/internal/repositories"
	"imagehound/internal/shared"
)

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Dump harvested records to CSV or JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: csv or json",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (defaults to stdout)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of records, newest first (0 for all)",
			},
		},
		Action: r.Export,
	}
}

// Export reads back stored records and writes them in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if format != "csv" && format != "json" {
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewImageRepository(db)
	records, err := repo.List(int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	var data []byte
	switch format {
	case "csv":
		data, err = formatter.ExportToCSV(records)
	case "json":
		data, err = formatter.ExportToJSON(records, true)
	}
	if err != nil {
		return fmt.Errorf("failed to format records: %w", err)
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}
		r.logger.Info("export written", "path", path, "records", len(records))
		return nil
	}

	return r.writePlain("%s\n", data)
}
