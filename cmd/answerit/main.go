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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/answerit"
	"github.com/poiesic/answerit/ai"
	"github.com/poiesic/answerit/ai/openai"
	"github.com/poiesic/answerit/ingestion"
	"github.com/poiesic/answerit/reindex"
	"github.com/poiesic/answerit/routing"
	"github.com/poiesic/answerit/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "answerit",
		Usage: "Hybrid retrieval question answering over documentation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest documentation chunks from a JSONL file",
				Action:    ingestCommand,
				ArgsUsage: "FILE",
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"ANSWERIT_DB"},
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Embedding worker pool size (0 uses the default)",
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the ingested corpus",
				Action:    askCommand,
				ArgsUsage: "QUERY",
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"ANSWERIT_DB"},
					},
					&cli.BoolFlag{
						Name:  "sources",
						Usage: "Print the retrieved source passages",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show corpus, query log, and cache statistics",
				Action: statsCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"ANSWERIT_DB"},
					},
					&cli.IntFlag{
						Name:  "recent",
						Usage: "Also show the N most recent queries",
					},
				),
			},
			{
				Name:      "route",
				Usage:     "Show the complexity routing decision for a query",
				Action:    routeCommand,
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "simple-model",
						Usage:   "Generation model for simple queries",
						Value:   "llama-3.1-8b-instant",
						EnvVars: []string{"ANSWERIT_SIMPLE_MODEL"},
					},
					&cli.StringFlag{
						Name:    "complex-model",
						Usage:   "Generation model for complex queries",
						Value:   "llama-3.3-70b-versatile",
						EnvVars: []string{"ANSWERIT_COMPLEX_MODEL"},
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed the whole corpus with a new embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"ANSWERIT_DB"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"ANSWERIT_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
						EnvVars:  []string{"ANSWERIT_EMBEDDING_MODEL"},
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
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

// aiFlags are the flags shared by every command that constructs a provider.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "OpenAI-compatible service host URL for embedding and generation",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"ANSWERIT_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"ANSWERIT_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "simple-model",
			Usage:   "Generation model for simple queries",
			Value:   "llama-3.1-8b-instant",
			EnvVars: []string{"ANSWERIT_SIMPLE_MODEL"},
		},
		&cli.StringFlag{
			Name:    "complex-model",
			Usage:   "Generation model for complex queries",
			Value:   "llama-3.3-70b-versatile",
			EnvVars: []string{"ANSWERIT_COMPLEX_MODEL"},
		},
		&cli.StringFlag{
			Name:    "rerank-model",
			Usage:   "Rerank scoring model (empty disables reranking)",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"ANSWERIT_RERANK_MODEL"},
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithSimpleModel(c.String("simple-model")),
		ai.WithComplexModel(c.String("complex-model")),
		ai.WithRerankModel(c.String("rerank-model")),
	)
}

func openEngine(c *cli.Context) (*answerit.Engine, error) {
	cfg := aiConfigFromFlags(c)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return answerit.NewEngine(c.String("db"), answerit.WithAIConfig(cfg))
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one chunk file argument")
	}

	chunks, err := readChunkFile(c.Args().First())
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks found in %s", c.Args().First())
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var opts []ingestion.Option
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingestion.WithPoolSize(size))
	}
	pipeline, err := engine.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	added, err := pipeline.Ingest(context.Background(), chunks)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Persisted %d chunks, embedding...\n", len(added))
	pipeline.Wait()
	fmt.Fprintf(os.Stderr, "Done.\n")
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected a query argument")
	}
	query := strings.Join(c.Args().Slice(), " ")

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	response, err := engine.Ask(context.Background(), query, nil)
	if err != nil {
		return err
	}

	fmt.Println(response.Answer)
	fmt.Println()
	fmt.Printf("route=%s model=%s confidence=%.2f avg_similarity=%.3f cached=%t\n",
		response.Route.Classification, response.Route.Model,
		response.Confidence, response.AvgSimilarity, response.Cached)
	if len(response.Flags) > 0 {
		fmt.Printf("flags=%s\n", strings.Join(response.Flags, ","))
	}

	if c.Bool("sources") {
		for i, passage := range response.Passages {
			fmt.Printf("\n[%d] %s", i+1, passage.Chunk.DocID)
			if passage.Chunk.SectionTitle != "" {
				fmt.Printf(" - %s", passage.Chunk.SectionTitle)
			}
			fmt.Printf(" (similarity %.3f)\n%s\n", passage.Similarity, passage.Chunk.Text)
		}
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	stats, err := engine.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Chunks:          %d\n", stats.Chunks)
	fmt.Printf("Indexed rows:    %d\n", stats.IndexedRows)
	fmt.Printf("Logged queries:  %d\n", stats.LoggedQueries)
	fmt.Printf("Cache:           %d/%d entries\n", stats.Cache.Size, stats.Cache.MaxSize)

	if limit := c.Int("recent"); limit > 0 {
		entries, err := engine.RecentQueries(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Println()
		for _, entry := range entries {
			fmt.Printf("%s  [%s/%s]  conf=%.2f  %dms  cached=%t  %q\n",
				entry.Timestamp.Format(time.RFC3339),
				entry.Classification, entry.Model,
				entry.Confidence, entry.LatencyMillis, entry.Cached, entry.Query)
		}
	}
	return nil
}

func routeCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected a query argument")
	}
	query := strings.Join(c.Args().Slice(), " ")

	router := routing.NewRouter(c.String("simple-model"), c.String("complex-model"))
	decision := router.Route(query)

	fmt.Printf("classification=%s score=%d model=%s\n",
		decision.Classification, decision.Score, decision.Model)
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	checkpoints := badger.NewCheckpointRepository(backend)

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
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

	reindexer := reindex.NewReindexer(repo, checkpoints, embedder, config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("re-embedding failed: %w", err)
	}
	return nil
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
