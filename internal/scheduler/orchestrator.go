package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/nbastats/internal/config"
	"github.com/fortuna/nbastats/internal/ingest/statsnba"
	"github.com/fortuna/nbastats/internal/season"
)

// SeasonIngester refreshes one season from the stats API
type SeasonIngester interface {
	IngestSeason(ctx context.Context, seasonText string) (*statsnba.Result, error)
}

// HierarchySyncer assigns teams to divisions from the standings page
type HierarchySyncer interface {
	SyncHierarchy(ctx context.Context, seasonText string) (int, error)
}

// Orchestrator manages scheduled tasks for data ingestion
type Orchestrator struct {
	config    *Config
	ingester  SeasonIngester
	standings HierarchySyncer
	cancel    context.CancelFunc
	now       func() time.Time
}

// Config holds scheduler configuration
type Config struct {
	DailyIngestionHour   int           // Default: 3 (3 AM)
	CurrentSeason        string        // empty follows season.Current(0)
	EnableDailyIngestion bool          // Default: true
	EnableStandings      bool          // Default: true
	StandingsWeekday     time.Weekday  // Default: Monday
	MaxRetries           int           // Default: 3
	RetryDelay           time.Duration // Default: 30s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DailyIngestionHour:   3,
		EnableDailyIngestion: true,
		EnableStandings:      true,
		StandingsWeekday:     time.Monday,
		MaxRetries:           3,
		RetryDelay:           30 * time.Second,
	}
}

// ConfigFrom builds a scheduler config from the service configuration
func ConfigFrom(cfg config.Config) *Config {
	c := DefaultConfig()
	c.CurrentSeason = cfg.CurrentSeason
	c.DailyIngestionHour = cfg.Scheduler.DailyIngestionHour
	c.EnableDailyIngestion = cfg.Scheduler.EnableDailyIngestion
	c.EnableStandings = cfg.Scheduler.EnableStandings
	if cfg.Scheduler.MaxRetries > 0 {
		c.MaxRetries = cfg.Scheduler.MaxRetries
	}
	return c
}

// NewOrchestrator creates a new scheduler orchestrator. standings may be nil.
func NewOrchestrator(ingester SeasonIngester, standings HierarchySyncer, cfg *Config) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Orchestrator{
		config:    cfg,
		ingester:  ingester,
		standings: standings,
		now:       time.Now,
	}
}

// Season returns the season the scheduled jobs refresh
func (o *Orchestrator) Season() string {
	if o.config.CurrentSeason != "" {
		if label, err := season.Normalize(o.config.CurrentSeason); err == nil {
			return label
		}
		log.Printf("[scheduler] ignoring invalid current_season %q", o.config.CurrentSeason)
	}
	return season.Current(0)
}

// Start runs the scheduled tasks until ctx is cancelled or Stop is called
func (o *Orchestrator) Start(ctx context.Context) {
	log.Printf("[scheduler] daily ingestion: %v (at %02d:00)", o.config.EnableDailyIngestion, o.config.DailyIngestionHour)
	log.Printf("[scheduler] standings refresh: %v (%s)", o.config.EnableStandings && o.standings != nil, o.config.StandingsWeekday)
	log.Printf("[scheduler] season: %s", o.Season())

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableDailyIngestion {
		go o.runAt(ctx, "daily ingestion", func(now time.Time) time.Time {
			return NextDaily(now, o.config.DailyIngestionHour)
		}, o.RunDailyIngestion)
	}
	if o.config.EnableStandings && o.standings != nil {
		go o.runAt(ctx, "standings refresh", func(now time.Time) time.Time {
			return NextWeekly(now, o.config.StandingsWeekday, o.config.DailyIngestionHour)
		}, o.RunStandingsRefresh)
	}

	<-ctx.Done()
	log.Println("[scheduler] stopping...")
}

// runAt calls task each time next says it is due
func (o *Orchestrator) runAt(ctx context.Context, name string, next func(time.Time) time.Time, task func(context.Context) error) {
	for {
		now := o.now()
		at := next(now)
		wait := at.Sub(now)
		log.Printf("[scheduler] next %s: %s (in %v)", name, at.Format("2006-01-02 15:04:05"), wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("[scheduler] %s stopped", name)
			return
		case <-timer.C:
			start := time.Now()
			if err := task(ctx); err != nil {
				log.Printf("[scheduler] ❌ %s failed: %v", name, err)
				continue
			}
			log.Printf("[scheduler] ✓ %s complete in %v", name, time.Since(start).Round(time.Second))
		}
	}
}

// RunDailyIngestion refreshes the current season, retrying on failure
func (o *Orchestrator) RunDailyIngestion(ctx context.Context) error {
	label := o.Season()
	return o.withRetry(ctx, "ingest "+label, func() error {
		res, err := o.ingester.IngestSeason(ctx, label)
		if err != nil {
			return err
		}
		log.Printf("[scheduler] %s: %d games (%d new), %d players", label, res.Games, res.NewGames, res.Players)
		return nil
	})
}

// RunStandingsRefresh reassigns teams to divisions for the current season
func (o *Orchestrator) RunStandingsRefresh(ctx context.Context) error {
	if o.standings == nil {
		return fmt.Errorf("standings refresh is not configured")
	}
	label := o.Season()
	return o.withRetry(ctx, "standings "+label, func() error {
		n, err := o.standings.SyncHierarchy(ctx, label)
		if err != nil {
			return err
		}
		log.Printf("[scheduler] %s: %d teams placed in divisions", label, n)
		return nil
	})
}

func (o *Orchestrator) withRetry(ctx context.Context, what string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Printf("[scheduler] ⚠️  %s attempt %d/%d failed: %v", what, attempt, o.config.MaxRetries, err)

		if attempt < o.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.config.RetryDelay):
			}
		}
	}
	return fmt.Errorf("%s: %d attempts failed: %w", what, o.config.MaxRetries, err)
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	log.Println("[scheduler] ✓ stopped")
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"daily_ingestion_enabled": o.config.EnableDailyIngestion,
		"daily_ingestion_hour":    o.config.DailyIngestionHour,
		"standings_enabled":       o.config.EnableStandings && o.standings != nil,
		"standings_weekday":       o.config.StandingsWeekday.String(),
		"current_season":          o.Season(),
	}
}

// NextDaily returns the next time at hour:00 strictly after now
func NextDaily(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeekly returns the next weekday at hour:00 strictly after now
func NextWeekly(now time.Time, day time.Weekday, hour int) time.Time {
	next := NextDaily(now, hour)
	for next.Weekday() != day {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
