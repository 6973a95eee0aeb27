package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
)

// GameService handles game-related business logic
type GameService struct {
	gameRepo *repository.GameRepository
	teamRepo *repository.TeamRepository
	seasons  *SeasonService
}

// NewGameService creates a new game service
func NewGameService(db *store.Database, seasons *SeasonService) *GameService {
	return &GameService{
		gameRepo: repository.NewGameRepository(db),
		teamRepo: repository.NewTeamRepository(db),
		seasons:  seasons,
	}
}

// GetGame retrieves a game by ID with team details
func (s *GameService) GetGame(ctx context.Context, gameID int) (*GameSummary, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching game: %w", err)
	}

	summaries, err := s.enrichGamesWithTeams(ctx, []*store.Game{game})
	if err != nil {
		return nil, err
	}
	return summaries[0], nil
}

// GetGamesByDate retrieves all games on a specific date
func (s *GameService) GetGamesByDate(ctx context.Context, date time.Time) ([]*GameSummary, error) {
	games, err := s.gameRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetching games by date: %w", err)
	}

	return s.enrichGamesWithTeams(ctx, games)
}

// GetTeamSchedule retrieves a team's games for a season. An empty
// seasonText means the current season.
func (s *GameService) GetTeamSchedule(ctx context.Context, teamID int, seasonText string, limit int) ([]*GameSummary, error) {
	if seasonText == "" {
		seasonText = s.seasons.Current(0)
	}
	sn, err := s.seasons.Get(ctx, seasonText)
	if err != nil {
		return nil, fmt.Errorf("resolving season: %w", err)
	}

	games, err := s.gameRepo.GetTeamSchedule(ctx, teamID, sn.SeasonID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching team schedule: %w", err)
	}

	return s.enrichGamesWithTeams(ctx, games)
}

// enrichGamesWithTeams adds team details to games
func (s *GameService) enrichGamesWithTeams(ctx context.Context, games []*store.Game) ([]*GameSummary, error) {
	summaries := make([]*GameSummary, 0, len(games))
	teams := make(map[int]*store.Team)

	lookup := func(id int) (*store.Team, error) {
		if t, ok := teams[id]; ok {
			return t, nil
		}
		t, err := s.teamRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		teams[id] = t
		return t, nil
	}

	for _, game := range games {
		homeTeam, err := lookup(game.HomeTeamID)
		if err != nil {
			return nil, fmt.Errorf("fetching home team for game %d: %w", game.GameID, err)
		}

		awayTeam, err := lookup(game.AwayTeamID)
		if err != nil {
			return nil, fmt.Errorf("fetching away team for game %d: %w", game.GameID, err)
		}

		summaries = append(summaries, &GameSummary{
			Game:     game,
			HomeTeam: homeTeam,
			AwayTeam: awayTeam,
		})
	}

	return summaries, nil
}
