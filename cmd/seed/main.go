// Command seed fills the database with demo accounts, listings and interests.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"propmatch/internal/config"
	"propmatch/internal/database"
	"propmatch/internal/seed"
)

func main() {
	fixtures := flag.String("fixtures", "", "YAML fixture file (default: built-in demo set)")
	seekers := flag.Int("seekers", 10, "Number of generated seekers")
	properties := flag.Int("properties", 5, "Number of generated listings")
	randSeed := flag.Int64("rand-seed", 0, "Seed for generated data (0 = random)")
	shouldClean := flag.Bool("clean", true, "Clear all tables before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	fx, err := loadFixtures(*fixtures)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx, fx, seed.Options{
		ExtraSeekers:    *seekers,
		ExtraProperties: *properties,
		RandSeed:        *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d properties, %d interests", sum.Users, sum.Properties, sum.Interests)
	log.Printf("All seeded accounts use the password: %s", fx.Password)
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.DefaultFixtures()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return seed.LoadFixtures(f)
}
