package backfill

import (
	"context"
	"fmt"
	"strings"

	"github.com/fortuna/nbastats/internal/ingest/statsnba"
	"github.com/fortuna/nbastats/internal/season"
)

// SeasonIngester loads one season of data
type SeasonIngester interface {
	IngestSeason(ctx context.Context, seasonText string) (*statsnba.Result, error)
}

// GameLookup reports which game ids are stored
type GameLookup interface {
	ExistingNBAIDs(ctx context.Context, ids []string) ([]string, error)
}

// Runner executes backfill specs season by season.
type Runner struct {
	ingester SeasonIngester
	games    GameLookup
}

// NewRunner constructs a runner.
func NewRunner(ingester SeasonIngester, games GameLookup) *Runner {
	return &Runner{ingester: ingester, games: games}
}

// Run executes the job spec, reporting progress via the Reporter if provided.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) error {
	if reporter != nil {
		reporter.OnJobStart(spec)
	}

	if spec.DryRun {
		if reporter != nil {
			reporter.OnProgress(fmt.Sprintf("Dry-run mode: would ingest %s", strings.Join(spec.Seasons, ", ")), 0, 0)
			reporter.OnJobComplete()
		}
		return nil
	}

	switch spec.Type {
	case JobTypeSeason, JobTypeSeasonRange:
		if err := r.ingestSeasons(ctx, spec.Seasons, reporter); err != nil {
			return err
		}
	case JobTypeGame:
		if len(spec.GameIDs) == 0 {
			return fmt.Errorf("no game IDs provided for job type 'game'")
		}
		seasons, err := SeasonsForGames(spec.GameIDs)
		if err != nil {
			return err
		}
		if err := r.ingestSeasons(ctx, seasons, reporter); err != nil {
			return err
		}
		if err := r.checkGames(ctx, spec.GameIDs, reporter); err != nil {
			if reporter != nil {
				reporter.OnJobError(err)
			}
			return err
		}
	default:
		return fmt.Errorf("unsupported job type %s", spec.Type)
	}

	if reporter != nil {
		reporter.OnJobComplete()
	}
	return nil
}

func (r *Runner) ingestSeasons(ctx context.Context, seasons []string, reporter Reporter) error {
	if len(seasons) == 0 {
		if reporter != nil {
			reporter.OnProgress("No seasons to process", 0, 0)
		}
		return nil
	}

	total := len(seasons)
	for idx, label := range seasons {
		if err := ctx.Err(); err != nil {
			return err
		}
		if reporter != nil {
			reporter.OnSeasonStart(label, idx, total)
		}

		res, err := r.ingester.IngestSeason(ctx, label)
		if err != nil {
			err = fmt.Errorf("season %s: %w", label, err)
			if reporter != nil {
				reporter.OnJobError(err)
			}
			return err
		}

		if reporter != nil {
			reporter.OnProgress(fmt.Sprintf("✓ Season %s: %d games, %d players", label, res.Games, res.Players), idx+1, total)
		}
	}
	return nil
}

func (r *Runner) checkGames(ctx context.Context, ids []string, reporter Reporter) error {
	stored, err := r.games.ExistingNBAIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[string]bool, len(stored))
	for _, id := range stored {
		found[id] = true
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
			continue
		}
		if reporter != nil {
			reporter.OnGameProcessed(id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("games not found after ingest: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SeasonForGameID derives the season label from a stats API game id such
// as "0021400001", whose fourth and fifth digits are the season's start
// year.
func SeasonForGameID(id string) (string, error) {
	if len(id) != 10 {
		return "", fmt.Errorf("game id %q: want 10 digits", id)
	}
	start, err := season.ParseYear(id[3:5])
	if err != nil {
		return "", fmt.Errorf("game id %q: %w", id, err)
	}
	return season.Label(start + 1), nil
}

// SeasonsForGames returns the distinct seasons of ids in first-seen order
func SeasonsForGames(ids []string) ([]string, error) {
	var seasons []string
	seen := make(map[string]bool)
	for _, id := range ids {
		label, err := SeasonForGameID(id)
		if err != nil {
			return nil, err
		}
		if !seen[label] {
			seen[label] = true
			seasons = append(seasons, label)
		}
	}
	return seasons, nil
}
