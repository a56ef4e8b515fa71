// Copyright 2026 Halcyard Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/halcyard/visimil"
	"github.com/halcyard/visimil/ingestion"
	"github.com/halcyard/visimil/reindex"
	"github.com/halcyard/visimil/vision"
)

func main() {
	// Load .env file if it exists (for service hosts and models)
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "visimil",
		Usage: "Local multi-signal image similarity engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				EnvVars: []string{"VISIMIL_DB"},
				Value:   "visimil.db",
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"VISIMIL_EMBEDDING_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"VISIMIL_EMBEDDING_MODEL"},
				Value:   "clip-vit-base-patch32",
			},
			&cli.StringFlag{
				Name:    "ocr-host",
				Usage:   "OCR service host URL (defaults to embedding-host)",
				EnvVars: []string{"VISIMIL_OCR_HOST"},
			},
			&cli.StringFlag{
				Name:    "ocr-model",
				Usage:   "OCR vision model name",
				EnvVars: []string{"VISIMIL_OCR_MODEL"},
				Value:   "llava",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest image files into the database",
				ArgsUsage: "<image file> [image file ...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "thorough-ocr",
						Usage: "Use the thorough recognition pass during ingestion",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent ingestion workers",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Rank stored images by similarity to a query image",
				ArgsUsage: "<image file>",
				Action:    searchCommand,
			},
			{
				Name:   "list",
				Usage:  "List the most recently captured records",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records to list",
						Value: 20,
					},
				},
			},
			{
				Name:   "clear",
				Usage:  "Remove all records from the database",
				Action: clearCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-derive all stored signals from the source images",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openEngine builds the engine from the global flags.
func openEngine(c *cli.Context) (*visimil.Engine, error) {
	ocrHost := c.String("ocr-host")
	if ocrHost == "" {
		ocrHost = c.String("embedding-host")
	}

	config := vision.NewConfig(
		vision.WithEmbeddingHost(c.String("embedding-host")),
		vision.WithEmbeddingModel(c.String("embedding-model")),
		vision.WithOCRHost(ocrHost),
		vision.WithOCRModel(c.String("ocr-model")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vision configuration: %w", err)
	}

	engine, err := visimil.NewEngine(c.String("db"), visimil.WithVisionConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return engine, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one image file is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var opts []ingestion.Option
	if c.Bool("thorough-ocr") {
		opts = append(opts, ingestion.WithOCRMode(vision.OCRModeThorough))
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}

	pipeline, err := engine.NewPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	inputs := make([]ingestion.ImageInput, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		timestamp := time.Now().UTC()
		if info, statErr := os.Stat(path); statErr == nil {
			timestamp = info.ModTime().UTC()
		}

		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			abs = path
		}

		inputs = append(inputs, ingestion.ImageInput{
			Data:      data,
			Source:    abs,
			Timestamp: timestamp,
		})
	}

	records, err := pipeline.IngestBatch(context.Background(), inputs)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested %d of %d images\n", len(records), len(inputs))
	for _, record := range records {
		fmt.Printf("  %d  %s\n", record.Id, record.Source)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one query image is required")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read query image: %w", err)
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.SearchImage(context.Background(), data)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No similar images found")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%2d. %.4f  %d  %s\n", i+1, r.Similarity, r.Record.Id, r.Record.Source)
		fmt.Printf("    cosine=%.3f euclidean=%.3f manhattan=%.3f color=%.3f visual=%.3f text=%.3f\n",
			r.Metrics.Cosine, r.Metrics.Euclidean, r.Metrics.Manhattan,
			r.Metrics.Color, r.Metrics.VisualProps, r.Metrics.Text)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	records, err := engine.Store().Recent(context.Background(), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No records")
		return nil
	}

	for _, record := range records {
		text := ""
		if record.OCR != nil && record.OCR.Text != "" {
			text = fmt.Sprintf("  %q", truncate(record.OCR.Text, 40))
		}
		fmt.Printf("%d  %s  %s%s\n",
			record.Id, record.Timestamp.Format(time.RFC3339), record.Source, text)
	}
	return nil
}

func clearCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	count, err := engine.Store().Count(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if err := engine.Store().Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}

	fmt.Printf("Removed %d records\n", count)
	return nil
}

func reindexCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		OCRMode:        vision.OCRModeThorough,
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer := engine.NewReindexer(config, os.Stderr)

	if err := reindexer.Run(context.Background()); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
