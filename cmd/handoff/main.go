// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/handoff/ai"
	"github.com/poiesic/handoff/ai/openrouter"
	"github.com/poiesic/handoff/batch"
	"github.com/poiesic/handoff/config"
	"github.com/poiesic/handoff/core"
	"github.com/poiesic/handoff/detect"
	"github.com/poiesic/handoff/index"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "handoff",
		Usage:  "Extract and index handoff documents from session transcripts",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "batch",
				Usage:  "Process new session transcripts into handoff documents",
				Action: batchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report what would be processed without calling the extraction service",
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Minimum interval between extraction calls",
						Value: 2 * time.Second,
					},
					&cli.IntFlag{
						Name:  "max",
						Usage: "Process at most N sessions",
					},
					&cli.BoolFlag{
						Name:  "reindex",
						Usage: "Process sessions even when already indexed",
					},
					&cli.IntFlag{
						Name:    "concurrency",
						Aliases: []string{"c"},
						Usage:   "Number of sessions processed in parallel (1-20)",
						Value:   batch.DefaultConcurrency,
					},
					&cli.StringFlag{
						Name:  "sessions",
						Usage: "Override the sessions directory",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Override the handoffs output directory",
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Override the index file path",
					},
				},
			},
			{
				Name:   "rebuild",
				Usage:  "Rebuild the index from the handoff documents on disk",
				Action: rebuildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "Override the handoffs directory to scan",
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Override the index file path",
					},
				},
			},
			{
				Name:   "query",
				Usage:  "Look up indexed sessions by project and/or keyword",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "project",
						Usage: "Match sessions tagged with this project",
					},
					&cli.StringFlag{
						Name:  "keyword",
						Usage: "Match sessions tagged with this keyword",
					},
					&cli.StringFlag{
						Name:  "index",
						Usage: "Override the index file path",
					},
				},
			},
			{
				Name:   "detect",
				Usage:  "Print the transcript path of the active session",
				Action: detectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session-id",
						Usage: "Explicit session UUID to look up",
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return cli.Exit(fmt.Sprintf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level")), 2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func resolveConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.FromEnv()
	if v := c.String("sessions"); v != "" {
		cfg.SessionsDir = v
	}
	if v := c.String("output"); v != "" {
		cfg.HandoffsDir = v
	}
	if v := c.String("index"); v != "" {
		cfg.IndexPath = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func batchCommand(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	delay := c.Duration("delay")
	if delay < 0 {
		return cli.Exit("delay must be >= 0", 2)
	}
	if c.IsSet("max") && c.Int("max") < 1 {
		return cli.Exit("max must be >= 1", 2)
	}
	concurrency := c.Int("concurrency")
	if concurrency < batch.MinConcurrency || concurrency > batch.MaxConcurrency {
		return cli.Exit(fmt.Sprintf("concurrency must be between %d and %d", batch.MinConcurrency, batch.MaxConcurrency), 2)
	}

	units, err := batch.Discover(cfg.SessionsDir, batch.DiscoverOptions{
		IndexPath: cfg.IndexPath,
		Reindex:   c.Bool("reindex"),
		Max:       c.Int("max"),
	})
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if len(units) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to do")
		return nil
	}

	// Credentials are only needed once there is something to process.
	dryRun := c.Bool("dry-run")
	extractor, err := newExtractor(cfg, dryRun)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	pipeline, err := batch.NewPipeline(extractor, index.NewStore(cfg.IndexPath), cfg.HandoffsDir,
		batch.WithGate(batch.NewGate(delay)),
		batch.WithDryRun(dryRun),
	)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	runner, err := batch.NewRunner(pipeline, batch.WithConcurrency(concurrency))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer runner.Release()

	fmt.Fprintf(os.Stderr, "Processing %d sessions | dry run: %v | delay: %s | concurrency: %d | output: %s\n",
		len(units), dryRun, delay, concurrency, cfg.HandoffsDir)

	summary := runner.Run(context.Background(), units)
	if summary.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d sessions failed", summary.Failed, summary.Total()), 1)
	}
	return nil
}

func rebuildCommand(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	idx, err := index.NewStore(cfg.IndexPath).Rebuild(cfg.HandoffsDir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("rebuild failed: %v", err), 1)
	}

	fmt.Printf("indexed %d documents from %s\n", idx.Meta.DocumentCount, cfg.HandoffsDir)
	return nil
}

func queryCommand(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	project := c.String("project")
	keyword := c.String("keyword")
	if project == "" && keyword == "" {
		return cli.Exit("at least one of --project or --keyword is required", 2)
	}

	idx, err := index.Load(cfg.IndexPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("could not read index: %v", err), 1)
	}

	ids := idx.Lookup(project, keyword)
	if len(ids) == 0 {
		fmt.Println("no matching sessions")
		return nil
	}

	for _, id := range ids {
		doc := idx.Documents[id]
		fmt.Printf("%s  %s  %s\n", id, doc.Date, doc.Headline)
	}
	return nil
}

func detectCommand(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	path, err := detect.Active(detect.Options{
		SessionsDir: cfg.SessionsDir,
		TasksDir:    cfg.TasksDir,
		SessionID:   c.String("session-id"),
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Println(path)
	return nil
}

// newExtractor builds the extraction client, honoring prompt and schema
// override files. A dry run never talks to the service, so it gets a
// stub and skips the credential check.
func newExtractor(cfg *config.Config, dryRun bool) (ai.HandoffExtractor, error) {
	if dryRun {
		return noExtraction{}, nil
	}

	var configOpts []ai.ConfigOption
	if cfg.BaseURL != "" {
		configOpts = append(configOpts, ai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		configOpts = append(configOpts, ai.WithModel(cfg.Model))
	}
	configOpts = append(configOpts, ai.WithAPIKey(cfg.APIKey))

	var opts []openrouter.Option
	if cfg.InstructionsFile != "" {
		data, err := os.ReadFile(cfg.InstructionsFile)
		if err != nil {
			return nil, fmt.Errorf("read instructions override: %w", err)
		}
		opts = append(opts, openrouter.WithInstructions(string(data)))
	}
	if cfg.SchemaFile != "" {
		data, err := os.ReadFile(cfg.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("read schema override: %w", err)
		}
		opts = append(opts, openrouter.WithSchema(string(data)))
	}

	return openrouter.NewExtractor(ai.NewConfig(configOpts...), opts...)
}

// noExtraction satisfies the extractor interface for dry runs, which
// stop before the extraction stage.
type noExtraction struct{}

func (noExtraction) ExtractHandoff(context.Context, string) (*core.Handoff, error) {
	return nil, errors.New("extraction disabled in dry run")
}
