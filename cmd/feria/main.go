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
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/feria"
	"github.com/poiesic/feria/ai"
	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/featured"
	"github.com/poiesic/feria/listing"
	"github.com/poiesic/feria/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "feria",
		Usage: "Marketplace semantic search and listing tool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "paraphrase-multilingual-minilm",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Create a new listing",
				Action: addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true, Usage: "Listing title"},
					&cli.StringFlag{Name: "description", Required: true, Usage: "Listing description"},
					&cli.Float64Flag{Name: "price", Required: true, Usage: "Asking price"},
					&cli.StringSliceFlag{Name: "category", Usage: "Category (repeatable)"},
					&cli.StringFlag{Name: "condition", Value: "Usado", Usage: "Condition (Nuevo or Usado)"},
					&cli.StringFlag{Name: "locality", Usage: "Locality name"},
					&cli.StringFlag{Name: "seller-name", Required: true, Usage: "Seller display name"},
					&cli.StringFlag{Name: "seller-contact", Required: true, Usage: "Seller contact handle"},
					&cli.IntFlag{Name: "expires-days", Value: 30, Usage: "Days until the listing expires"},
				},
			},
			{
				Name:      "search",
				Usage:     "Search listings",
				ArgsUsage: "[query]",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "Filter by category"},
					&cli.StringFlag{Name: "condition", Usage: "Filter by condition (Nuevo or Usado)"},
					&cli.StringFlag{Name: "province", Usage: "Filter by province name"},
					&cli.StringFlag{Name: "locality", Usage: "Filter by locality name"},
					&cli.Float64Flag{Name: "price-min", Usage: "Minimum price"},
					&cli.Float64Flag{Name: "price-max", Usage: "Maximum price"},
					&cli.StringFlag{Name: "expires-in", Usage: "Expiry window (30+, 7+, 1, 0)"},
					&cli.IntFlag{Name: "page", Value: 1, Usage: "Result page"},
					&cli.IntFlag{Name: "page-size", Value: search.DefaultPageSize, Usage: "Results per page"},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Autocomplete suggestions for a partial query",
				ArgsUsage: "<prefix>",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "Restrict title suggestions to a category"},
				},
			},
			{
				Name:   "featured",
				Usage:  "Run the featured ranking loop until interrupted",
				Action: featuredCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Value: featured.DefaultInterval,
						Usage: "Re-evaluation period",
					},
					&cli.IntFlag{
						Name:  "top",
						Value: featured.DefaultTopN,
						Usage: "Featured set size",
					},
				},
			},
			{
				Name:   "sync",
				Usage:  "Rebuild the vector index from stored embeddings",
				Action: syncCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openMarketplace(c *cli.Context) (*feria.Marketplace, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return feria.NewMarketplace(c.String("db"), feria.WithAIConfig(aiConfig))
}

func addCommand(c *cli.Context) error {
	ctx := context.Background()

	condition, err := core.ParseCondition(c.String("condition"))
	if err != nil {
		return err
	}

	m, err := openMarketplace(c)
	if err != nil {
		return fmt.Errorf("failed to open marketplace: %w", err)
	}
	defer m.Close()

	var localityId core.ID
	if name := c.String("locality"); name != "" {
		locality, err := m.GeoRepository().FindLocalityByName(ctx, name)
		if err != nil {
			return fmt.Errorf("unknown locality %q: %w", name, err)
		}
		localityId = locality.Id
	}

	service, err := m.NewListingService()
	if err != nil {
		return err
	}

	item, err := service.CreateItem(ctx, &listing.Draft{
		Title:         c.String("title"),
		Description:   c.String("description"),
		Price:         c.Float64("price"),
		Categories:    c.StringSlice("category"),
		Condition:     condition,
		LocalityId:    localityId,
		SellerName:    c.String("seller-name"),
		SellerContact: c.String("seller-contact"),
		ExpiresAt:     time.Now().UTC().AddDate(0, 0, c.Int("expires-days")),
	})
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	fmt.Printf("Created listing %d: %s\n", item.Id, item.Title)
	return nil
}

func searchCommand(c *cli.Context) error {
	m, err := openMarketplace(c)
	if err != nil {
		return fmt.Errorf("failed to open marketplace: %w", err)
	}
	defer m.Close()

	processor, err := m.NewSearchProcessor()
	if err != nil {
		return err
	}

	req := &search.Request{
		Query:     strings.Join(c.Args().Slice(), " "),
		Category:  c.String("category"),
		Condition: c.String("condition"),
		Province:  c.String("province"),
		Locality:  c.String("locality"),
		ExpiresIn: c.String("expires-in"),
		Page:      c.Int("page"),
		PageSize:  c.Int("page-size"),
	}
	if c.IsSet("price-min") {
		priceMin := c.Float64("price-min")
		req.PriceMin = &priceMin
	}
	if c.IsSet("price-max") {
		priceMax := c.Float64("price-max")
		req.PriceMax = &priceMax
	}

	resp, err := processor.Search(context.Background(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if resp.Suggestion != "" {
		fmt.Printf("Showing results for %q\n\n", resp.Suggestion)
	}
	for _, item := range resp.Items {
		location := item.LocalityName
		if item.ProvinceName != "" {
			location += ", " + item.ProvinceName
		}
		fmt.Printf("[%d] %s — $%.2f (%s) %s — %s <%s>\n",
			item.Id, item.Title, item.Price, item.Condition, location,
			item.SellerName, item.Contact)
	}
	fmt.Printf("\nPage %d of %d results\n", resp.Page, resp.Total)
	return nil
}

func suggestCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("prefix argument is required")
	}

	m, err := openMarketplace(c)
	if err != nil {
		return fmt.Errorf("failed to open marketplace: %w", err)
	}
	defer m.Close()

	processor, err := m.NewSearchProcessor()
	if err != nil {
		return err
	}

	suggestions, err := processor.Suggest(context.Background(), c.Args().First(), c.String("category"))
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	for _, s := range suggestions {
		fmt.Println(s)
	}
	return nil
}

func featuredCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := openMarketplace(c)
	if err != nil {
		return fmt.Errorf("failed to open marketplace: %w", err)
	}
	defer m.Close()

	ranker, err := m.NewRanker(
		featured.WithInterval(c.Duration("interval")),
		featured.WithTopN(c.Int("top")),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Featured ranker running (interval %s, top %d)\n",
		c.Duration("interval"), c.Int("top"))

	if err := ranker.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("featured ranker failed: %w", err)
	}
	return nil
}

func syncCommand(c *cli.Context) error {
	m, err := openMarketplace(c)
	if err != nil {
		return fmt.Errorf("failed to open marketplace: %w", err)
	}
	defer m.Close()

	// The marketplace rebuilds the index on open; report its size.
	fmt.Printf("Index rebuilt: %d vectors\n", m.Index().Len())
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
