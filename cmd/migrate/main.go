package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"

	"pollroom/internal/config"
	"pollroom/internal/repository"
)

// Applies the .sql files in migrations/ in lexical order.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := repository.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("Failed to read migrations directory: %v", err)
	}

	var names []string
	for _, f := range files {
		if filepath.Ext(f.Name()) == ".sql" {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Fatalf("Failed to read migration %s: %v", name, err)
		}
		log.Printf("Applying migration: %s", name)
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			log.Fatalf("Failed to execute migration %s: %v", name, err)
		}
	}

	log.Printf("Applied %d migrations", len(names))
}
