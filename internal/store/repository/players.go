package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/nbastats/internal/store"
)

const playerColumns = `
	player_id, nba_id, nba_code, first_name, last_name, birth_date,
	school_id, photo_url, created_at, updated_at`

// PlayerRepository handles player data access
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// GetByID finds a player by ID
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int) (*store.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE player_id = $1`

	player, err := scanPlayer(r.db.DB().QueryRowContext(ctx, query, playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", playerID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return player, nil
}

// GetByNBAID finds a player by stats API person id
func (r *PlayerRepository) GetByNBAID(ctx context.Context, nbaID int64) (*store.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players WHERE nba_id = $1`

	player, err := scanPlayer(r.db.DB().QueryRowContext(ctx, query, nbaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player with nba id %d: %w", nbaID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return player, nil
}

// Search matches players by name (case-insensitive partial match)
func (r *PlayerRepository) Search(ctx context.Context, name string, limit int) ([]*store.Player, error) {
	query := `SELECT` + playerColumns + `
		FROM players
		WHERE (first_name || ' ' || last_name) ILIKE $1
		ORDER BY last_name, first_name
		LIMIT $2`

	rows, err := r.db.DB().QueryContext(ctx, query, "%"+name+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// List returns one page of players ordered by name plus the total count
func (r *PlayerRepository) List(ctx context.Context, limit, offset int) ([]*store.Player, int, error) {
	var total int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting players: %w", err)
	}

	query := `SELECT` + playerColumns + `
		FROM players
		ORDER BY last_name, first_name, player_id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.DB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	players, err := scanPlayers(rows)
	return players, total, err
}

// GetByTeamSeason returns the players with a membership on a team for a season
func (r *PlayerRepository) GetByTeamSeason(ctx context.Context, teamID, seasonID int) ([]*store.Player, error) {
	query := `
		SELECT p.player_id, p.nba_id, p.nba_code, p.first_name, p.last_name, p.birth_date,
			p.school_id, p.photo_url, p.created_at, p.updated_at
		FROM players p
		JOIN player_memberships m ON m.player_id = p.player_id
		WHERE m.team_id = $1 AND m.season_id = $2
		ORDER BY p.last_name, p.first_name`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("querying roster: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

// Upsert inserts or updates a player keyed by nba_id
func (r *PlayerRepository) Upsert(ctx context.Context, player *store.Player) (*store.Player, error) {
	query := `
		INSERT INTO players (nba_id, nba_code, first_name, last_name, birth_date, school_id, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (nba_id) DO UPDATE SET
			nba_code = COALESCE(EXCLUDED.nba_code, players.nba_code),
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			birth_date = COALESCE(EXCLUDED.birth_date, players.birth_date),
			school_id = COALESCE(EXCLUDED.school_id, players.school_id),
			photo_url = COALESCE(EXCLUDED.photo_url, players.photo_url),
			updated_at = NOW()
		RETURNING` + playerColumns

	stored, err := scanPlayer(r.db.DB().QueryRowContext(ctx, query,
		player.NBAID, player.NBACode, player.FirstName, player.LastName,
		player.BirthDate, player.SchoolID, player.PhotoURL,
	))
	if err != nil {
		return nil, fmt.Errorf("upserting player %d: %w", player.NBAID, err)
	}
	return stored, nil
}

func scanPlayer(row rowScanner) (*store.Player, error) {
	player := &store.Player{}
	err := row.Scan(
		&player.PlayerID, &player.NBAID, &player.NBACode, &player.FirstName,
		&player.LastName, &player.BirthDate, &player.SchoolID, &player.PhotoURL,
		&player.CreatedAt, &player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return player, nil
}

func scanPlayers(rows *sql.Rows) ([]*store.Player, error) {
	var players []*store.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}
