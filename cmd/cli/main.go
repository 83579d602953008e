package main

import (
	"fmt"
	"os"

	"github.com/flixsy/backend/internal/database"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var db *gorm.DB

var rootCmd = &cobra.Command{
	Use:   "flixsy",
	Short: "Flixsy CLI - operational tooling for the Flixsy backend",
	Long: `Flixsy CLI talks directly to the database for operations that should
not go through the public API: promoting admins, banning accounts and
inspecting the leaderboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		db, err = database.Initialize()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteAdminCmd)
	rootCmd.AddCommand(banCmd)
	rootCmd.AddCommand(unbanCmd)
	rootCmd.AddCommand(leaderboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
