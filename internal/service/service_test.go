package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/google/go-cmp/cmp"
)

func TestSeasonLabels(t *testing.T) {
	orig := season.Now
	t.Cleanup(func() { season.Now = orig })
	season.Now = func() time.Time { return time.Date(2015, 2, 1, 0, 0, 0, 0, time.UTC) }

	got, err := SeasonLabels("2012-13", "", 0)
	if err != nil {
		t.Fatalf("SeasonLabels: %v", err)
	}
	if diff := cmp.Diff([]string{"2012-13", "2013-14", "2014-15"}, got); diff != "" {
		t.Errorf("open-ended range mismatch (-want +got):\n%s", diff)
	}

	got, err = SeasonLabels("2016-17", "", -1)
	if err != nil {
		t.Fatalf("SeasonLabels: %v", err)
	}
	if diff := cmp.Diff([]string{"2016-17", "2015-16", "2014-15"}, got); diff != "" {
		t.Errorf("descending open-ended range mismatch (-want +got):\n%s", diff)
	}

	got, err = SeasonLabels("2002", "2005", 1)
	if err != nil {
		t.Fatalf("SeasonLabels: %v", err)
	}
	if diff := cmp.Diff([]string{"2001-02", "2002-03", "2003-04"}, got); diff != "" {
		t.Errorf("bounded range mismatch (-want +got):\n%s", diff)
	}

	if _, err := SeasonLabels("nope", "2005", 1); err == nil {
		t.Error("expected error for malformed start")
	}
}

func TestPageBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page                    int
		limit, offset, wantPage int
	}{
		{0, 50, 0, 1},
		{1, 50, 0, 1},
		{3, 50, 100, 3},
		{-4, 50, 0, 1},
	}
	for _, tt := range tests {
		limit, offset, page := pageBounds(tt.page)
		if limit != tt.limit || offset != tt.offset || page != tt.wantPage {
			t.Errorf("pageBounds(%d) = %d, %d, %d", tt.page, limit, offset, page)
		}
	}
}

func TestBuildOrganizationTree(t *testing.T) {
	t.Parallel()

	leagues := []*store.League{{LeagueID: 1, Name: "NBA"}}
	conferences := []*store.Conference{
		{ConferenceID: 10, LeagueID: sql.NullInt32{Int32: 1, Valid: true}, Name: "Western"},
		{ConferenceID: 11, Name: "Exhibition"},
	}
	divisions := []*store.Division{
		{DivisionID: 100, ConferenceID: 10, Name: "Pacific"},
		{DivisionID: 101, ConferenceID: 10, Name: "Southwest"},
	}
	teams := []*store.Team{
		{TeamID: 1, Abbreviation: "GSW", DivisionID: sql.NullInt32{Int32: 100, Valid: true}},
		{TeamID: 2, Abbreviation: "LAL", DivisionID: sql.NullInt32{Int32: 100, Valid: true}},
		{TeamID: 3, Abbreviation: "SAS", DivisionID: sql.NullInt32{Int32: 101, Valid: true}},
		{TeamID: 4, Abbreviation: "XXX"},
	}

	tree := buildOrganizationTree(leagues, conferences, divisions, teams)
	if len(tree.Leagues) != 2 {
		t.Fatalf("leagues = %d, want 2 (NBA plus orphans)", len(tree.Leagues))
	}

	nba := tree.Leagues[0]
	if len(nba.Conferences) != 1 || nba.Conferences[0].Conference.Name != "Western" {
		t.Fatalf("NBA conferences = %+v", nba.Conferences)
	}
	pacific := nba.Conferences[0].Divisions[0]
	if pacific.Division.Name != "Pacific" || len(pacific.Teams) != 2 {
		t.Errorf("Pacific = %s with %d teams", pacific.Division.Name, len(pacific.Teams))
	}

	orphans := tree.Leagues[1]
	if orphans.League != nil || len(orphans.Conferences) != 1 {
		t.Errorf("orphan node = %+v", orphans)
	}
	if divs := orphans.Conferences[0].Divisions; divs == nil || len(divs) != 0 {
		t.Errorf("empty conference divisions = %#v, want empty slice", divs)
	}
}
