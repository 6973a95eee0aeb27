package service

import (
	"context"
	"fmt"

	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
)

// TeamService handles teams, rosters and the organizational hierarchy
type TeamService struct {
	teamRepo   *repository.TeamRepository
	playerRepo *repository.PlayerRepository
	orgRepo    *repository.OrganizationRepository
	venueRepo  *repository.VenueRepository
	seasons    *SeasonService
}

// NewTeamService creates a new team service
func NewTeamService(db *store.Database, seasons *SeasonService) *TeamService {
	return &TeamService{
		teamRepo:   repository.NewTeamRepository(db),
		playerRepo: repository.NewPlayerRepository(db),
		orgRepo:    repository.NewOrganizationRepository(db),
		venueRepo:  repository.NewVenueRepository(db),
		seasons:    seasons,
	}
}

// GetTeams returns all teams
func (s *TeamService) GetTeams(ctx context.Context) ([]*store.Team, error) {
	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	if teams == nil {
		teams = []*store.Team{}
	}
	return teams, nil
}

// GetTeam returns a team with division, conference and arena
func (s *TeamService) GetTeam(ctx context.Context, teamID int) (*TeamDetail, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("fetching team: %w", err)
	}

	detail := &TeamDetail{Team: team, Name: team.Name()}
	if team.DivisionID.Valid {
		div, conf, err := s.orgRepo.GetDivision(ctx, int(team.DivisionID.Int32))
		if err != nil {
			return nil, fmt.Errorf("fetching division: %w", err)
		}
		detail.Division = div
		detail.Conference = conf
	}
	if team.ArenaID.Valid {
		arena, err := s.venueRepo.GetArena(ctx, int(team.ArenaID.Int32))
		if err != nil {
			return nil, fmt.Errorf("fetching arena: %w", err)
		}
		detail.Arena = arena
	}
	return detail, nil
}

// GetRoster returns the players under contract with a team in a season.
// An empty seasonText means the current season.
func (s *TeamService) GetRoster(ctx context.Context, teamID int, seasonText string) (*Roster, error) {
	if seasonText == "" {
		seasonText = s.seasons.Current(0)
	}
	sn, err := s.seasons.Get(ctx, seasonText)
	if err != nil {
		return nil, fmt.Errorf("resolving season: %w", err)
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("fetching team: %w", err)
	}

	players, err := s.playerRepo.GetByTeamSeason(ctx, teamID, sn.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}
	if players == nil {
		players = []*store.Player{}
	}

	return &Roster{Team: team, Season: sn.Label, Players: players}, nil
}

// GetOrganization returns the league/conference/division/team tree
func (s *TeamService) GetOrganization(ctx context.Context) (*OrganizationTree, error) {
	leagues, err := s.orgRepo.ListLeagues(ctx)
	if err != nil {
		return nil, err
	}
	conferences, err := s.orgRepo.ListConferences(ctx)
	if err != nil {
		return nil, err
	}
	divisions, err := s.orgRepo.ListDivisions(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildOrganizationTree(leagues, conferences, divisions, teams), nil
}
