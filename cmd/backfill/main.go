package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fortuna/nbastats/internal/backfill"
	"github.com/fortuna/nbastats/internal/config"
	"github.com/fortuna/nbastats/internal/ingest/statsnba"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
)

const (
	appName    = "nbastats-backfill"
	appVersion = "1.0.0"
)

func main() {
	log.Printf("=== %s v%s ===", appName, appVersion)

	if err := config.Init(os.Getenv("NBASTATS_CONFIG")); err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		dsn      = flag.String("dsn", cfg.DatabaseDSN, "Postgres DSN")
		statsURL = flag.String("stats-url", cfg.StatsAPIBase, "stats API base URL")
		season   = flag.String("season", "", "Season to backfill (e.g., 2014-15, 2015, 15)")
		from     = flag.String("from", "", "First season of a range")
		to       = flag.String("to", "", "End of a range (exclusive for a positive step)")
		step     = flag.Int("step", 1, "Years between seasons in a range")
		games    = flag.String("games", "", "Comma-separated game ids to backfill")
		dryRun   = flag.Bool("dry-run", false, "Dry run (do not write to DB)")
	)
	flag.Parse()

	req := backfill.Request{
		Season: *season,
		From:   *from,
		To:     *to,
		Step:   *step,
		DryRun: *dryRun,
	}
	if *games != "" {
		req.GameIDs = strings.Split(*games, ",")
	}

	job, err := backfill.NewJob(req)
	if err != nil {
		log.Fatalf("Specify --season, --from/--to, or --games: %v", err)
	}
	spec, err := backfill.BuildSpec(job)
	if err != nil {
		log.Fatalf("build spec: %v", err)
	}

	db, err := store.NewDatabase(*dsn)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	ingester := statsnba.NewIngester(db, statsnba.New(*statsURL), nil)
	runner := backfill.NewRunner(ingester, repository.NewGameRepository(db))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx, spec, &consoleReporter{dryRun: *dryRun}); err != nil {
		log.Fatalf("backfill failed: %v", err)
	}

	log.Println("✓ Backfill completed successfully")
}

type consoleReporter struct {
	dryRun bool
}

func (c *consoleReporter) OnJobStart(spec backfill.JobSpec) {
	log.Printf("Starting %s job for %s (dry_run=%v)", spec.Type, strings.Join(spec.Seasons, ", "), c.dryRun)
}

func (c *consoleReporter) OnSeasonStart(label string, index int, total int) {
	log.Printf("[%d/%d] %s", index+1, total, label)
}

func (c *consoleReporter) OnGameProcessed(gameID string) {
	log.Printf("Processed game %s", gameID)
}

func (c *consoleReporter) OnProgress(message string, current int, total int) {
	log.Printf("Progress: %s (%d/%d)", message, current, total)
}

func (c *consoleReporter) OnJobComplete() {
	log.Println("Job complete")
}

func (c *consoleReporter) OnJobError(err error) {
	log.Printf("Job error: %v", err)
}
