package main

import (
	"fmt"
	"log"

	"github.com/fortuna/nbastats/internal/fixtures"
	"github.com/fortuna/nbastats/internal/publisher"
	"github.com/spf13/cobra"
)

var loaddataCmd = &cobra.Command{
	Use:   "loaddata FIXTURE...",
	Short: "Install fixture files (.json or .json.gz) into the database",
	Long: "Install Django-style fixture files. Each FIXTURE is a path or a label\n" +
		"searched for in the --dir directories. Every object is force-updated.",
	Args: cobra.MinimumNArgs(1),
	RunE: runLoaddata,
}

func init() {
	loaddataCmd.Flags().StringSlice("dir", []string{"fixtures"}, "directories searched for fixture labels")
	loaddataCmd.Flags().Bool("ignorenonexistent", false, "ignore fields that no longer exist on the model")
	loaddataCmd.Flags().Bool("publish", true, "publish a load event to the ingest stream")
	rootCmd.AddCommand(loaddataCmd)
}

func runLoaddata(cmd *cobra.Command, args []string) error {
	dirs, _ := cmd.Flags().GetStringSlice("dir")
	ignore, _ := cmd.Flags().GetBool("ignorenonexistent")
	publish, _ := cmd.Flags().GetBool("publish")

	db, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sink := fixtures.NewStoreSink(db)
	sink.IgnoreNonexistent = ignore

	loader := fixtures.NewLoader(sink, dirs, log.New(cmd.ErrOrStderr(), "", 0))
	res, err := loader.Load(cmd.Context(), args...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %d object(s) from %d fixture(s)\n", res.Objects, res.Fixtures)

	if publish {
		pub, err := publisher.NewRedisPublisher(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  skipping load event: %v", err)
			return nil
		}
		defer pub.Close()
		if err := pub.PublishIngestEvent(cmd.Context(), publisher.IngestEvent{
			Source:  "fixtures",
			Objects: res.Objects,
		}); err != nil {
			log.Printf("⚠️  publish load event: %v", err)
		}
	}
	return nil
}
