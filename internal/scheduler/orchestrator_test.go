package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortuna/nbastats/internal/config"
	"github.com/fortuna/nbastats/internal/ingest/statsnba"
	"github.com/fortuna/nbastats/internal/season"
)

func TestNextDaily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before hour", time.Date(2015, 1, 10, 1, 30, 0, 0, time.UTC), time.Date(2015, 1, 10, 3, 0, 0, 0, time.UTC)},
		{"after hour", time.Date(2015, 1, 10, 4, 0, 0, 0, time.UTC), time.Date(2015, 1, 11, 3, 0, 0, 0, time.UTC)},
		{"exactly on hour", time.Date(2015, 1, 10, 3, 0, 0, 0, time.UTC), time.Date(2015, 1, 11, 3, 0, 0, 0, time.UTC)},
		{"month end", time.Date(2015, 1, 31, 23, 0, 0, 0, time.UTC), time.Date(2015, 2, 1, 3, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NextDaily(tt.now, 3); !got.Equal(tt.want) {
				t.Errorf("NextDaily(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNextWeekly(t *testing.T) {
	t.Parallel()

	// 2015-01-10 is a Saturday
	sat := time.Date(2015, 1, 10, 12, 0, 0, 0, time.UTC)
	if got, want := NextWeekly(sat, time.Monday, 3), time.Date(2015, 1, 12, 3, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("NextWeekly = %v, want %v", got, want)
	}

	mon := time.Date(2015, 1, 12, 4, 0, 0, 0, time.UTC)
	if got, want := NextWeekly(mon, time.Monday, 3), time.Date(2015, 1, 19, 3, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("NextWeekly after hour = %v, want %v", got, want)
	}
}

type flakyIngester struct {
	failures int
	calls    []string
}

func (f *flakyIngester) IngestSeason(_ context.Context, label string) (*statsnba.Result, error) {
	f.calls = append(f.calls, label)
	if len(f.calls) <= f.failures {
		return nil, errors.New("timeout")
	}
	return &statsnba.Result{Season: label}, nil
}

type fakeStandings struct{ seasons []string }

func (f *fakeStandings) SyncHierarchy(_ context.Context, label string) (int, error) {
	f.seasons = append(f.seasons, label)
	return 30, nil
}

func testConfig(retries int) *Config {
	cfg := DefaultConfig()
	cfg.CurrentSeason = "2015"
	cfg.MaxRetries = retries
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestRunDailyIngestionRetries(t *testing.T) {
	t.Parallel()

	ing := &flakyIngester{failures: 2}
	o := NewOrchestrator(ing, nil, testConfig(3))
	if err := o.RunDailyIngestion(context.Background()); err != nil {
		t.Fatalf("RunDailyIngestion: %v", err)
	}
	if len(ing.calls) != 3 || ing.calls[0] != "2014-15" {
		t.Errorf("calls = %v", ing.calls)
	}

	failing := &flakyIngester{failures: 5}
	o = NewOrchestrator(failing, nil, testConfig(2))
	if err := o.RunDailyIngestion(context.Background()); err == nil {
		t.Error("expected error after retries are exhausted")
	}
	if len(failing.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(failing.calls))
	}
}

func TestRunStandingsRefresh(t *testing.T) {
	t.Parallel()

	st := &fakeStandings{}
	o := NewOrchestrator(&flakyIngester{}, st, testConfig(1))
	if err := o.RunStandingsRefresh(context.Background()); err != nil {
		t.Fatalf("RunStandingsRefresh: %v", err)
	}
	if len(st.seasons) != 1 || st.seasons[0] != "2014-15" {
		t.Errorf("seasons = %v", st.seasons)
	}

	if err := NewOrchestrator(&flakyIngester{}, nil, nil).RunStandingsRefresh(context.Background()); err == nil {
		t.Error("expected error without a standings syncer")
	}
}

func TestSeasonDefaultsToCurrent(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(&flakyIngester{}, nil, nil)
	if got, want := o.Season(), season.Current(0); got != want {
		t.Errorf("Season = %s, want %s", got, want)
	}

	cfg := DefaultConfig()
	cfg.CurrentSeason = "not a season"
	if got, want := NewOrchestrator(&flakyIngester{}, nil, cfg).Season(), season.Current(0); got != want {
		t.Errorf("invalid season fallback = %s, want %s", got, want)
	}
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := ConfigFrom(config.Config{
		CurrentSeason: "2013-14",
		Scheduler: config.SchedulerConfig{
			EnableDailyIngestion: true,
			DailyIngestionHour:   5,
			MaxRetries:           0,
		},
	})
	if cfg.CurrentSeason != "2013-14" || cfg.DailyIngestionHour != 5 || cfg.EnableStandings || cfg.MaxRetries != 3 {
		t.Errorf("config = %+v", cfg)
	}
}
