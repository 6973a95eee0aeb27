package bbref

import (
	"testing"

	"github.com/fortuna/nbastats/internal/store"
	"github.com/google/go-cmp/cmp"
)

const eastTable = `
<table id="divs_standings_E">
  <thead>
    <tr><th>Eastern Conference</th><th>W</th><th>L</th><th>W/L%</th><th>GB</th></tr>
  </thead>
  <tbody>
    <tr class="thead"><th colspan="5">Atlantic Division</th></tr>
    <tr><th><a href="/teams/TOR/2015.html">Toronto Raptors</a>*</th><td>49</td><td>33</td><td>.598</td><td>—</td></tr>
    <tr><th><a href="/teams/BRK/2015.html">Brooklyn Nets</a>*</th><td>38</td><td>44</td><td>.463</td><td>11.0</td></tr>
    <tr class="thead"><th colspan="5">Central Division</th></tr>
    <tr><th><a href="/teams/CLE/2015.html">Cleveland Cavaliers</a>*</th><td>53</td><td>29</td><td>.646</td><td>—</td></tr>
  </tbody>
</table>`

const westTable = `
<table id="divs_standings_W">
  <thead>
    <tr><th>Western Conference</th><th>W</th><th>L</th><th>W/L%</th><th>GB</th></tr>
  </thead>
  <tbody>
    <tr class="thead"><th colspan="5">Pacific Division</th></tr>
    <tr><th><a href="/teams/GSW/2015.html">Golden State Warriors</a>*</th><td>67</td><td>15</td><td>.817</td><td>—</td></tr>
    <tr><th><a href="/teams/LAL/2015.html">Los Angeles Lakers</a></th><td>21</td><td>61</td><td>.256</td><td>46.0</td></tr>
  </tbody>
</table>`

func TestParseStandings(t *testing.T) {
	t.Parallel()

	doc, err := ParseHTML(`<html><body><div id="content">` + eastTable + westTable + `</div></body></html>`)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	got, err := ParseStandings(doc)
	if err != nil {
		t.Fatalf("ParseStandings: %v", err)
	}

	want := []Standing{
		{Conference: "Eastern", Division: "Atlantic", Team: "Toronto Raptors", Abbreviation: "TOR", Wins: 49, Losses: 33, Playoffs: true},
		{Conference: "Eastern", Division: "Atlantic", Team: "Brooklyn Nets", Abbreviation: "BRK", Wins: 38, Losses: 44, Playoffs: true},
		{Conference: "Eastern", Division: "Central", Team: "Cleveland Cavaliers", Abbreviation: "CLE", Wins: 53, Losses: 29, Playoffs: true},
		{Conference: "Western", Division: "Pacific", Team: "Golden State Warriors", Abbreviation: "GSW", Wins: 67, Losses: 15, Playoffs: true},
		{Conference: "Western", Division: "Pacific", Team: "Los Angeles Lakers", Abbreviation: "LAL", Wins: 21, Losses: 61},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStandingsCommentedTable(t *testing.T) {
	t.Parallel()

	page := `<html><body><div id="content">` + eastTable +
		`<div id="all_divs_standings_W"><!--` + westTable + `--></div></div></body></html>`
	doc, err := ParseHTML(page)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	got, err := ParseStandings(doc)
	if err != nil {
		t.Fatalf("ParseStandings: %v", err)
	}
	if len(got) != 5 || got[4].Team != "Los Angeles Lakers" {
		t.Errorf("standings = %+v", got)
	}
}

func TestParseStandingsMissingTable(t *testing.T) {
	t.Parallel()

	doc, err := ParseHTML(`<html><body>` + eastTable + `</body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseStandings(doc); err == nil {
		t.Error("expected error when the western table is missing")
	}
}

func TestIndexTeams(t *testing.T) {
	t.Parallel()

	teams := []*store.Team{
		{TeamID: 1, City: "Golden State", Nickname: "Warriors"},
		{TeamID: 2, City: "Portland", Nickname: "Trail  Blazers"},
	}
	idx := IndexTeams(teams)
	if idx[normalizeName("Golden State Warriors")].TeamID != 1 {
		t.Error("Golden State Warriors not indexed")
	}
	if idx[normalizeName("Portland Trail Blazers")].TeamID != 2 {
		t.Error("Portland Trail Blazers not indexed with collapsed whitespace")
	}
}

func TestStandingsURL(t *testing.T) {
	t.Parallel()

	c := &Client{baseURL: BaseURL}
	if got, want := c.StandingsURL(2015), "https://www.basketball-reference.com/leagues/NBA_2015_standings.html"; got != want {
		t.Errorf("StandingsURL = %q, want %q", got, want)
	}
}
