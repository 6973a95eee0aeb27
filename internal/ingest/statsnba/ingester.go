package statsnba

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/nbastats/internal/publisher"
	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
)

// LeagueName is the league every ingested conference belongs to
const LeagueName = "National Basketball Association"

// Publisher receives events for ingested games and finished runs
type Publisher interface {
	PublishGameUpdate(ctx context.Context, update publisher.GameUpdate) error
	PublishIngestEvent(ctx context.Context, event publisher.IngestEvent) error
}

// Result counts what one season ingestion stored
type Result struct {
	Season   string
	Teams    int
	Players  int
	Games    int
	NewGames int
}

// Ingester loads seasons from the stats API into the database
type Ingester struct {
	client    *Client
	publisher Publisher

	seasonRepo     *repository.SeasonRepository
	teamRepo       *repository.TeamRepository
	playerRepo     *repository.PlayerRepository
	membershipRepo *repository.MembershipRepository
	gameRepo       *repository.GameRepository
	orgRepo        *repository.OrganizationRepository
	venueRepo      *repository.VenueRepository
}

// NewIngester creates an ingester. pub may be nil.
func NewIngester(db *store.Database, client *Client, pub Publisher) *Ingester {
	if client == nil {
		client = NewClient()
	}
	return &Ingester{
		client:         client,
		publisher:      pub,
		seasonRepo:     repository.NewSeasonRepository(db),
		teamRepo:       repository.NewTeamRepository(db),
		playerRepo:     repository.NewPlayerRepository(db),
		membershipRepo: repository.NewMembershipRepository(db),
		gameRepo:       repository.NewGameRepository(db),
		orgRepo:        repository.NewOrganizationRepository(db),
		venueRepo:      repository.NewVenueRepository(db),
	}
}

// IngestSeason stores the season row, its teams, rosters and games. Any
// identifier accepted by season.Normalize works as seasonText.
func (i *Ingester) IngestSeason(ctx context.Context, seasonText string) (*Result, error) {
	sn, err := season.Of(season.FromString(seasonText))
	if err != nil {
		return nil, err
	}
	label := sn.String()
	log.Printf("[ingest] Ingesting season %s", label)

	stored, err := i.seasonRepo.Ensure(ctx, sn)
	if err != nil {
		return nil, err
	}

	payload, err := i.client.FetchLeagueGameLog(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("fetch game log: %w", err)
	}
	rows, err := ParseResultSet(payload, ResultSetGameLog)
	if err != nil {
		return nil, err
	}
	games, err := ParseGameLog(rows)
	if err != nil {
		return nil, fmt.Errorf("parse game log: %w", err)
	}
	games, stray := InSeason(games, sn)
	for id, other := range stray {
		log.Printf("[ingest] ⚠️  Skipping game %s: dated in season %s, not %s", id, other, label)
	}

	result := &Result{Season: label}

	teamIDs := make(map[int64]*store.Team)
	for _, ref := range Teams(games) {
		team, err := i.ensureTeam(ctx, ref, label)
		if err != nil {
			return nil, err
		}
		teamIDs[ref.NBAID] = team
		result.Teams++

		n, err := i.ingestRoster(ctx, team, sn, stored)
		if err != nil {
			log.Printf("[ingest] Error ingesting roster for %s %s: %v", team.Abbreviation, label, err)
			continue
		}
		result.Players += n
	}

	ids := make([]string, len(games))
	for idx, g := range games {
		ids[idx] = g.NBAID
	}
	existing, err := i.gameRepo.ExistingNBAIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	for _, g := range games {
		home, away := teamIDs[g.Home.NBAID], teamIDs[g.Away.NBAID]
		game := &store.Game{
			NBAID:      g.NBAID,
			SeasonID:   stored.SeasonID,
			GameDate:   g.GameDate,
			HomeTeamID: home.TeamID,
			AwayTeamID: away.TeamID,
			HomeScore:  nullScore(g.HomeScore),
			AwayScore:  nullScore(g.AwayScore),
			Status:     g.Status,
		}
		if _, err := i.gameRepo.Upsert(ctx, game); err != nil {
			log.Printf("[ingest] Error upserting game %s: %v", g.NBAID, err)
			continue
		}
		result.Games++

		if !known[g.NBAID] {
			result.NewGames++
			i.publishGame(ctx, g, label)
		}
	}

	log.Printf("[ingest] ✓ Season %s: %d teams, %d players, %d games (%d new)",
		label, result.Teams, result.Players, result.Games, result.NewGames)

	if i.publisher != nil {
		event := publisher.IngestEvent{
			Source:  "statsnba",
			Season:  label,
			Teams:   result.Teams,
			Players: result.Players,
			Games:   result.Games,
			At:      time.Now().UTC(),
		}
		if err := i.publisher.PublishIngestEvent(ctx, event); err != nil {
			log.Printf("[ingest] Failed to publish ingest event: %v", err)
		}
	}

	return result, nil
}

// ensureTeam returns the stored team, fetching its details and placing it
// in the hierarchy the first time it is seen.
func (i *Ingester) ensureTeam(ctx context.Context, ref TeamRef, label string) (*store.Team, error) {
	if team, err := i.teamRepo.GetByNBAID(ctx, ref.NBAID); err == nil && team.DivisionID.Valid {
		return team, nil
	}

	payload, err := i.client.FetchTeamInfo(ctx, ref.NBAID, label)
	if err != nil {
		return nil, fmt.Errorf("fetch team info %s: %w", ref.Abbreviation, err)
	}
	rows, err := ParseResultSet(payload, ResultSetTeamInfo)
	if err != nil {
		return nil, err
	}
	info, err := ParseTeamInfo(rows)
	if err != nil {
		return nil, err
	}

	team := &store.Team{
		NBAID:        info.NBAID,
		NBACode:      store.NullString(info.Code),
		Abbreviation: info.Abbreviation,
		City:         info.City,
		Nickname:     info.Nickname,
	}
	if info.Division != "" {
		division, err := i.ensureDivision(ctx, info.Conference, info.Division)
		if err != nil {
			return nil, err
		}
		team.DivisionID = store.NullInt32(division.DivisionID, true)
	}
	return i.teamRepo.Upsert(ctx, team)
}

func (i *Ingester) ensureDivision(ctx context.Context, conference, division string) (*store.Division, error) {
	league, err := i.orgRepo.UpsertLeague(ctx, LeagueName)
	if err != nil {
		return nil, err
	}
	conf, err := i.orgRepo.UpsertConference(ctx, store.NullInt32(league.LeagueID, true), ConferenceName(conference))
	if err != nil {
		return nil, err
	}
	return i.orgRepo.UpsertDivision(ctx, conf.ConferenceID, division)
}

func (i *Ingester) ingestRoster(ctx context.Context, team *store.Team, sn season.Season, stored *store.Season) (int, error) {
	payload, err := i.client.FetchTeamRoster(ctx, team.NBAID, sn.String())
	if err != nil {
		return 0, err
	}
	rows, err := ParseResultSet(payload, ResultSetRoster)
	if err != nil {
		return 0, err
	}
	entries, err := ParseRoster(rows)
	if err != nil {
		return 0, err
	}

	start, end := sn.Window()
	count := 0
	for _, e := range entries {
		player := &store.Player{
			NBAID:     e.NBAID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
		}
		if e.BirthDate != nil {
			player.BirthDate = sql.NullTime{Time: *e.BirthDate, Valid: true}
		}
		if e.School != "" {
			school, err := i.venueRepo.UpsertSchool(ctx, e.School)
			if err != nil {
				return count, err
			}
			player.SchoolID = store.NullInt32(school.SchoolID, true)
		}

		saved, err := i.playerRepo.Upsert(ctx, player)
		if err != nil {
			return count, err
		}

		membership := &store.PlayerMembership{
			PlayerID:     saved.PlayerID,
			TeamID:       team.TeamID,
			SeasonID:     stored.SeasonID,
			JerseyNumber: store.NullString(e.Jersey),
			StartDate:    start,
			EndDate:      sql.NullTime{Time: end, Valid: !end.After(time.Now())},
		}
		if _, err := i.membershipRepo.Upsert(ctx, membership); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (i *Ingester) publishGame(ctx context.Context, g ParsedGame, label string) {
	if i.publisher == nil {
		return
	}
	update := publisher.GameUpdate{
		NBAID:     g.NBAID,
		Season:    label,
		GameDate:  g.GameDate.Format("2006-01-02"),
		Home:      g.Home.Abbreviation,
		Away:      g.Away.Abbreviation,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Status:    g.Status,
	}
	if err := i.publisher.PublishGameUpdate(ctx, update); err != nil {
		log.Printf("[ingest] Failed to publish game %s: %v", g.NBAID, err)
	}
}

// ConferenceName maps the API's "East"/"West" to stored conference names
func ConferenceName(s string) string {
	switch s {
	case "East":
		return "Eastern"
	case "West":
		return "Western"
	}
	return s
}

func nullScore(p *int) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return store.NullInt32(*p, true)
}
