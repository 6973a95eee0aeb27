package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/nbastats/internal/store"
)

const teamColumns = `
	team_id, nba_id, nba_code, abbreviation, city, nickname,
	division_id, arena_id, logo_url, created_at, updated_at`

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetAll returns all teams ordered by abbreviation
func (r *TeamRepository) GetAll(ctx context.Context) ([]*store.Team, error) {
	query := `SELECT` + teamColumns + ` FROM teams ORDER BY abbreviation`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	return scanTeams(rows)
}

// GetByID finds a team by ID
func (r *TeamRepository) GetByID(ctx context.Context, teamID int) (*store.Team, error) {
	query := `SELECT` + teamColumns + ` FROM teams WHERE team_id = $1`

	team, err := scanTeam(r.db.DB().QueryRowContext(ctx, query, teamID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %d: %w", teamID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return team, nil
}

// GetByNBAID finds a team by its stats API id (the natural key)
func (r *TeamRepository) GetByNBAID(ctx context.Context, nbaID int64) (*store.Team, error) {
	query := `SELECT` + teamColumns + ` FROM teams WHERE nba_id = $1`

	team, err := scanTeam(r.db.DB().QueryRowContext(ctx, query, nbaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team with nba id %d: %w", nbaID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return team, nil
}

// GetByAbbreviation finds a team by abbreviation (e.g., "LAL", "BOS")
func (r *TeamRepository) GetByAbbreviation(ctx context.Context, abbr string) (*store.Team, error) {
	query := `SELECT` + teamColumns + ` FROM teams WHERE abbreviation = UPPER($1)`

	team, err := scanTeam(r.db.DB().QueryRowContext(ctx, query, abbr))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", abbr, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return team, nil
}

// GetByDivision returns all teams in a division
func (r *TeamRepository) GetByDivision(ctx context.Context, divisionID int) ([]*store.Team, error) {
	query := `SELECT` + teamColumns + ` FROM teams WHERE division_id = $1 ORDER BY city`

	rows, err := r.db.DB().QueryContext(ctx, query, divisionID)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	return scanTeams(rows)
}

// Upsert inserts or updates a team keyed by nba_id and returns the stored row
func (r *TeamRepository) Upsert(ctx context.Context, team *store.Team) (*store.Team, error) {
	query := `
		INSERT INTO teams (nba_id, nba_code, abbreviation, city, nickname, division_id, arena_id, logo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (nba_id) DO UPDATE SET
			nba_code = COALESCE(EXCLUDED.nba_code, teams.nba_code),
			abbreviation = EXCLUDED.abbreviation,
			city = EXCLUDED.city,
			nickname = EXCLUDED.nickname,
			division_id = COALESCE(EXCLUDED.division_id, teams.division_id),
			arena_id = COALESCE(EXCLUDED.arena_id, teams.arena_id),
			logo_url = COALESCE(EXCLUDED.logo_url, teams.logo_url),
			updated_at = NOW()
		RETURNING` + teamColumns

	stored, err := scanTeam(r.db.DB().QueryRowContext(ctx, query,
		team.NBAID, team.NBACode, team.Abbreviation, team.City, team.Nickname,
		team.DivisionID, team.ArenaID, team.LogoURL,
	))
	if err != nil {
		return nil, fmt.Errorf("upserting team %s: %w", team.Abbreviation, err)
	}
	return stored, nil
}

// SetDivision moves a team into a division
func (r *TeamRepository) SetDivision(ctx context.Context, teamID, divisionID int) error {
	res, err := r.db.DB().ExecContext(ctx,
		`UPDATE teams SET division_id = $2, updated_at = NOW() WHERE team_id = $1`, teamID, divisionID)
	if err != nil {
		return fmt.Errorf("updating team division: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("team %d: %w", teamID, store.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (*store.Team, error) {
	team := &store.Team{}
	err := row.Scan(
		&team.TeamID, &team.NBAID, &team.NBACode, &team.Abbreviation,
		&team.City, &team.Nickname, &team.DivisionID, &team.ArenaID,
		&team.LogoURL, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return team, nil
}

func scanTeams(rows *sql.Rows) ([]*store.Team, error) {
	var teams []*store.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
