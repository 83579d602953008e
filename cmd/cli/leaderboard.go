package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/flixsy/backend/internal/gamification"
	"github.com/spf13/cobra"
)

var (
	leaderboardSector string
	leaderboardLimit  int
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the XP leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := gamification.NewService(db).
			GetLeaderboard(cmd.Context(), leaderboardSector, leaderboardLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tUSERNAME\tSECTOR\tXP\tLEVEL\tFOLLOWERS")
		for i, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n",
				i+1, e.Username, e.Sector, e.XP, e.Level, e.FollowersCount)
		}
		return w.Flush()
	},
}

func init() {
	leaderboardCmd.Flags().StringVar(&leaderboardSector, "sector", "all", "filter by sector")
	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 25, "number of rows")
}
