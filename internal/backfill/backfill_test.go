package backfill

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fortuna/nbastats/internal/ingest/statsnba"
	"github.com/fortuna/nbastats/internal/season"
	"github.com/google/go-cmp/cmp"
)

func TestRequestDeriveType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
		want JobType
	}{
		{"season", Request{Season: "2014-15"}, JobTypeSeason},
		{"range", Request{From: "2010", To: "2015"}, JobTypeSeasonRange},
		{"games win", Request{Season: "2014-15", GameIDs: []string{"0021400001"}}, JobTypeGame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.req.DeriveType()
			if err != nil {
				t.Fatalf("DeriveType: %v", err)
			}
			if got != tt.want {
				t.Errorf("DeriveType = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := (Request{}).DeriveType(); err == nil {
		t.Error("expected error for empty request")
	}
}

func TestRequestSeasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{"normalizes single season", Request{Season: "14-2015"}, []string{"2014-15"}},
		{"range defaults to step 1", Request{From: "2012", To: "2015"}, []string{"2011-12", "2012-13", "2013-14"}},
		{"descending range", Request{From: "2015-16", To: "2012-13", Step: -1}, []string{"2015-16", "2014-15", "2013-14", "2012-13"}},
		{"games map to seasons", Request{GameIDs: []string{"0021400001", "0021400002", "0029800010"}}, []string{"2014-15", "1998-99"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.req.Seasons()
			if err != nil {
				t.Fatalf("Seasons: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Seasons mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequestSeasonsErrors(t *testing.T) {
	t.Parallel()

	if _, err := (Request{Season: "rubbish"}).Seasons(); !errors.Is(err, season.ErrInvalidFormat) {
		t.Errorf("bad season error = %v", err)
	}
	if _, err := (Request{From: "2015", To: "2010"}).Seasons(); !errors.Is(err, ErrEmptyRange) {
		t.Errorf("empty range error = %v", err)
	}
	if _, err := (Request{From: "2015"}).Seasons(); err == nil {
		t.Error("expected error for missing range end")
	}
	if _, err := (Request{From: "1999-01", To: "2005"}).Seasons(); !errors.Is(err, season.ErrInvalidSeasonRange) {
		t.Errorf("non-consecutive season error = %v", err)
	}
}

func TestSeasonForGameID(t *testing.T) {
	t.Parallel()

	for id, want := range map[string]string{
		"0021400001": "2014-15",
		"0029900001": "1999-00",
		"0040000101": "2000-01",
	} {
		got, err := SeasonForGameID(id)
		if err != nil {
			t.Fatalf("SeasonForGameID(%s): %v", id, err)
		}
		if got != want {
			t.Errorf("SeasonForGameID(%s) = %s, want %s", id, got, want)
		}
	}

	for _, bad := range []string{"", "00214", "002xx00001"} {
		if _, err := SeasonForGameID(bad); err == nil {
			t.Errorf("SeasonForGameID(%q) expected error", bad)
		}
	}
}

func TestNewJobAndBuildSpec(t *testing.T) {
	t.Parallel()

	job, err := NewJob(Request{From: "2013", To: "2015", DryRun: true})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.JobType != JobTypeSeasonRange || job.ProgressTotal != 2 || !job.DryRun {
		t.Errorf("job = %+v", job)
	}

	spec, err := BuildSpec(job)
	if err != nil {
		t.Fatalf("BuildSpec: %v", err)
	}
	want := JobSpec{Type: JobTypeSeasonRange, Seasons: []string{"2012-13", "2013-14"}, DryRun: true}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("spec mismatch (-want +got):\n%s", diff)
	}

	if _, err := BuildSpec(&Job{JobType: JobTypeGame}); err == nil {
		t.Error("expected error for game job without ids")
	}
	if _, err := BuildSpec(&Job{JobType: "date_range", Seasons: []string{"2014-15"}}); err == nil {
		t.Error("expected error for unknown job type")
	}
}

type fakeIngester struct {
	seasons []string
	failOn  string
}

func (f *fakeIngester) IngestSeason(_ context.Context, label string) (*statsnba.Result, error) {
	if label == f.failOn {
		return nil, errors.New("stats api unavailable")
	}
	f.seasons = append(f.seasons, label)
	return &statsnba.Result{Season: label, Games: 1230, Players: 450}, nil
}

type fakeGames struct{ stored []string }

func (f fakeGames) ExistingNBAIDs(_ context.Context, _ []string) ([]string, error) {
	return f.stored, nil
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) OnJobStart(JobSpec) { r.events = append(r.events, "start") }
func (r *recordingReporter) OnSeasonStart(l string, _, _ int) { r.events = append(r.events, "season "+l) }
func (r *recordingReporter) OnGameProcessed(id string) { r.events = append(r.events, "game "+id) }
func (r *recordingReporter) OnProgress(string, int, int) {}
func (r *recordingReporter) OnJobComplete() { r.events = append(r.events, "complete") }
func (r *recordingReporter) OnJobError(err error) { r.events = append(r.events, "error") }

func TestRunnerSeasons(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{}
	rep := &recordingReporter{}
	r := NewRunner(ing, fakeGames{})

	spec := JobSpec{Type: JobTypeSeasonRange, Seasons: []string{"2012-13", "2013-14"}}
	if err := r.Run(context.Background(), spec, rep); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]string{"2012-13", "2013-14"}, ing.seasons); diff != "" {
		t.Errorf("ingested seasons mismatch (-want +got):\n%s", diff)
	}
	want := []string{"start", "season 2012-13", "season 2013-14", "complete"}
	if diff := cmp.Diff(want, rep.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestRunnerDryRun(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{}
	r := NewRunner(ing, fakeGames{})
	if err := r.Run(context.Background(), JobSpec{Type: JobTypeSeason, Seasons: []string{"2014-15"}, DryRun: true}, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ing.seasons) != 0 {
		t.Errorf("dry run ingested %v", ing.seasons)
	}
}

func TestRunnerStopsOnError(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{failOn: "2013-14"}
	rep := &recordingReporter{}
	r := NewRunner(ing, fakeGames{})

	spec := JobSpec{Type: JobTypeSeasonRange, Seasons: []string{"2012-13", "2013-14", "2014-15"}}
	err := r.Run(context.Background(), spec, rep)
	if err == nil || !strings.Contains(err.Error(), "season 2013-14") {
		t.Fatalf("Run error = %v", err)
	}
	if len(ing.seasons) != 1 {
		t.Errorf("ingested %v, want only 2012-13", ing.seasons)
	}
	if rep.events[len(rep.events)-1] != "error" {
		t.Errorf("last event = %s, want error", rep.events[len(rep.events)-1])
	}
}

func TestRunnerGames(t *testing.T) {
	t.Parallel()

	ing := &fakeIngester{}
	rep := &recordingReporter{}
	r := NewRunner(ing, fakeGames{stored: []string{"0021400001"}})

	spec := JobSpec{Type: JobTypeGame, GameIDs: []string{"0021400001"}}
	if err := r.Run(context.Background(), spec, rep); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"start", "season 2014-15", "game 0021400001", "complete"}
	if diff := cmp.Diff(want, rep.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	missing := NewRunner(&fakeIngester{}, fakeGames{})
	if err := missing.Run(context.Background(), spec, nil); err == nil {
		t.Error("expected error when the game is still missing after ingest")
	}
}

func TestRunnerCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(&fakeIngester{}, fakeGames{})
	err := r.Run(ctx, JobSpec{Type: JobTypeSeason, Seasons: []string{"2014-15"}}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}
