package main

import (
	"fmt"
	"log"

	"github.com/fortuna/nbastats/internal/ingest/bbref"
	"github.com/fortuna/nbastats/internal/ingest/statsnba"
	"github.com/fortuna/nbastats/internal/publisher"
	"github.com/fortuna/nbastats/internal/season"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [SEASON]",
	Short: "Ingest teams, players and games for one season (default current)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := season.Current(0)
		if len(args) == 1 {
			label = args[0]
		}

		db, cfg, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		var pub statsnba.Publisher
		if rp, err := publisher.NewRedisPublisher(cfg.RedisURL); err != nil {
			log.Printf("⚠️  publishing disabled: %v", err)
		} else {
			defer rp.Close()
			pub = rp
		}

		ing := statsnba.NewIngester(db, statsnba.New(cfg.StatsAPIBase), pub)
		res, err := ing.IngestSeason(cmd.Context(), label)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d teams, %d players, %d games (%d new)\n",
			res.Season, res.Teams, res.Players, res.Games, res.NewGames)
		return nil
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings [SEASON]",
	Short: "Assign teams to divisions from the season's standings page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := season.Current(0)
		if len(args) == 1 {
			label = args[0]
		}

		db, cfg, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		client := bbref.NewClient(cfg.StandingsBase)
		defer client.Close()

		n, err := bbref.NewIngester(db, client).SyncHierarchy(cmd.Context(), label)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d teams placed in divisions\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd, standingsCmd)
}
