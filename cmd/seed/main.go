package main

import (
	"flag"
	"os"

	"github.com/flixsy/backend/internal/database"
	"github.com/flixsy/backend/internal/logger"
	"github.com/flixsy/backend/internal/seed"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	users := flag.Int("users", 50, "number of users to create")
	posts := flag.Int("posts", 200, "number of posts to create")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), "seed.log"); err != nil {
		panic(err)
	}
	defer logger.Close()

	db, err := database.Initialize()
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := seed.NewSeeder(db).SeedDev(*users, *posts); err != nil {
		logger.Log.Fatal("seeding failed", zap.Error(err))
	}
}
