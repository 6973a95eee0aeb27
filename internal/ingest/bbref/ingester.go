package bbref

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
)

// LeagueName is the league standings conferences are attached to
const LeagueName = "National Basketball Association"

// Fetcher returns the standings page HTML for a season
type Fetcher interface {
	FetchStandings(ctx context.Context, endYear int) (string, error)
}

// Ingester keeps the conference/division/team hierarchy in line with the
// published standings.
type Ingester struct {
	fetcher  Fetcher
	orgRepo  *repository.OrganizationRepository
	teamRepo *repository.TeamRepository
}

// NewIngester creates a standings ingester
func NewIngester(db *store.Database, fetcher Fetcher) *Ingester {
	return &Ingester{
		fetcher:  fetcher,
		orgRepo:  repository.NewOrganizationRepository(db),
		teamRepo: repository.NewTeamRepository(db),
	}
}

// SyncHierarchy moves every known team into the division the standings
// list it under and returns how many teams were placed.
func (i *Ingester) SyncHierarchy(ctx context.Context, seasonText string) (int, error) {
	sn, err := season.Of(season.FromString(seasonText))
	if err != nil {
		return 0, err
	}

	page, err := i.fetcher.FetchStandings(ctx, sn.EndYear())
	if err != nil {
		return 0, fmt.Errorf("fetch standings %s: %w", sn, err)
	}
	doc, err := ParseHTML(page)
	if err != nil {
		return 0, err
	}
	standings, err := ParseStandings(doc)
	if err != nil {
		return 0, fmt.Errorf("parse standings %s: %w", sn, err)
	}

	teams, err := i.teamRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	byName := IndexTeams(teams)

	league, err := i.orgRepo.UpsertLeague(ctx, LeagueName)
	if err != nil {
		return 0, err
	}

	placed := 0
	divisions := make(map[string]*store.Division)
	for _, st := range standings {
		team, ok := byName[normalizeName(st.Team)]
		if !ok {
			log.Printf("[standings] No stored team matches %q (%s), skipping", st.Team, st.Abbreviation)
			continue
		}

		div, ok := divisions[st.Division]
		if !ok {
			conf, err := i.orgRepo.UpsertConference(ctx, store.NullInt32(league.LeagueID, true), st.Conference)
			if err != nil {
				return placed, err
			}
			if div, err = i.orgRepo.UpsertDivision(ctx, conf.ConferenceID, st.Division); err != nil {
				return placed, err
			}
			divisions[st.Division] = div
		}

		if team.DivisionID.Valid && int(team.DivisionID.Int32) == div.DivisionID {
			placed++
			continue
		}
		if err := i.teamRepo.SetDivision(ctx, team.TeamID, div.DivisionID); err != nil {
			return placed, err
		}
		placed++
	}

	log.Printf("[standings] ✓ Placed %d/%d teams for %s", placed, len(standings), sn)
	return placed, nil
}

// IndexTeams keys teams by normalized "City Nickname"
func IndexTeams(teams []*store.Team) map[string]*store.Team {
	out := make(map[string]*store.Team, len(teams))
	for _, t := range teams {
		out[normalizeName(t.Name())] = t
	}
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
