package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gamebuddy-app/internal/auth"
	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/postgres"
	"github.com/gamebuddy-app/internal/seed"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	demo := flag.Bool("demo", false, "Also create demo gamers and print their tokens")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := seed.Load(ctx, repo); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	fmt.Printf("✓ Catalog: %d achievements, %d avatars, %d games, %d keywords\n",
		len(seed.Achievements), len(seed.Avatars), len(seed.Games), len(seed.Keywords))

	if !*demo {
		return
	}

	if err := seed.LoadDemoGamers(ctx, repo); err != nil {
		log.Fatalf("Failed to seed gamers: %v", err)
	}

	tokens := auth.NewService(&cfg.Auth)
	fmt.Println()
	fmt.Println("Demo gamers:")
	for _, g := range seed.DemoGamers() {
		token, err := tokens.IssueToken(g.Email)
		if err != nil {
			log.Fatalf("Failed to issue token for %s: %v", g.Email, err)
		}
		fmt.Printf("  %-8s %-24s %s\n", g.Username, g.Email, token)
	}
}
