package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/nbastats/internal/store"
	"github.com/lib/pq"
)

const gameColumns = `
	game_id, nba_id, nba_code, season_id, game_date, home_team_id, away_team_id,
	home_score, away_score, attendance, arena_id, status, created_at, updated_at`

// GameRepository handles game data access
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

// GetByID finds a game by its database ID
func (r *GameRepository) GetByID(ctx context.Context, gameID int) (*store.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE game_id = $1`

	game, err := scanGame(r.db.DB().QueryRowContext(ctx, query, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %d: %w", gameID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}
	return game, nil
}

// GetByNBAID finds a game by its stats API id
func (r *GameRepository) GetByNBAID(ctx context.Context, nbaID string) (*store.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE nba_id = $1`

	game, err := scanGame(r.db.DB().QueryRowContext(ctx, query, nbaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", nbaID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}
	return game, nil
}

// GetByDate returns all games on a calendar date
func (r *GameRepository) GetByDate(ctx context.Context, date time.Time) ([]*store.Game, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	query := `SELECT` + gameColumns + ` FROM games WHERE game_date = $1 ORDER BY game_id`

	rows, err := r.db.DB().QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetBySeason returns every game of a season in date order
func (r *GameRepository) GetBySeason(ctx context.Context, seasonID int) ([]*store.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE season_id = $1 ORDER BY game_date, game_id`

	rows, err := r.db.DB().QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetTeamSchedule returns a team's games for a season, home and away
func (r *GameRepository) GetTeamSchedule(ctx context.Context, teamID, seasonID, limit int) ([]*store.Game, error) {
	query := `SELECT` + gameColumns + `
		FROM games
		WHERE season_id = $2 AND (home_team_id = $1 OR away_team_id = $1)
		ORDER BY game_date
		LIMIT $3`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, seasonID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying schedule: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// ExistingNBAIDs returns the subset of ids already stored
func (r *GameRepository) ExistingNBAIDs(ctx context.Context, ids []string) ([]string, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT nba_id FROM games WHERE nba_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("querying game ids: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning game id: %w", err)
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

// Upsert inserts or updates a game keyed by nba_id
func (r *GameRepository) Upsert(ctx context.Context, game *store.Game) (*store.Game, error) {
	if game.Status == "" {
		game.Status = store.GameStatusScheduled
	}
	query := `
		INSERT INTO games (nba_id, nba_code, season_id, game_date, home_team_id, away_team_id,
			home_score, away_score, attendance, arena_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (nba_id) DO UPDATE SET
			nba_code = COALESCE(EXCLUDED.nba_code, games.nba_code),
			season_id = EXCLUDED.season_id,
			game_date = EXCLUDED.game_date,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_score = COALESCE(EXCLUDED.home_score, games.home_score),
			away_score = COALESCE(EXCLUDED.away_score, games.away_score),
			attendance = COALESCE(EXCLUDED.attendance, games.attendance),
			arena_id = COALESCE(EXCLUDED.arena_id, games.arena_id),
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING` + gameColumns

	stored, err := scanGame(r.db.DB().QueryRowContext(ctx, query,
		game.NBAID, game.NBACode, game.SeasonID, game.GameDate, game.HomeTeamID, game.AwayTeamID,
		game.HomeScore, game.AwayScore, game.Attendance, game.ArenaID, game.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("upserting game %s: %w", game.NBAID, err)
	}
	return stored, nil
}

func scanGame(row rowScanner) (*store.Game, error) {
	game := &store.Game{}
	err := row.Scan(
		&game.GameID, &game.NBAID, &game.NBACode, &game.SeasonID, &game.GameDate,
		&game.HomeTeamID, &game.AwayTeamID, &game.HomeScore, &game.AwayScore,
		&game.Attendance, &game.ArenaID, &game.Status, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

func scanGames(rows *sql.Rows) ([]*store.Game, error) {
	var games []*store.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}
