package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
)

const seasonColumns = `
	season_id, label, start_year, end_year, start_date, end_date, created_at`

// SeasonRepository handles season data access
type SeasonRepository struct {
	db *store.Database
}

// NewSeasonRepository creates a new season repository
func NewSeasonRepository(db *store.Database) *SeasonRepository {
	return &SeasonRepository{db: db}
}

// GetByLabel finds a season by its canonical "YYYY-YY" label
func (r *SeasonRepository) GetByLabel(ctx context.Context, label string) (*store.Season, error) {
	query := `SELECT` + seasonColumns + ` FROM seasons WHERE label = $1`

	s, err := scanSeason(r.db.DB().QueryRowContext(ctx, query, label))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("season %s: %w", label, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying season: %w", err)
	}
	return s, nil
}

// GetByID finds a season by ID
func (r *SeasonRepository) GetByID(ctx context.Context, seasonID int) (*store.Season, error) {
	query := `SELECT` + seasonColumns + ` FROM seasons WHERE season_id = $1`

	s, err := scanSeason(r.db.DB().QueryRowContext(ctx, query, seasonID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("season %d: %w", seasonID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying season: %w", err)
	}
	return s, nil
}

// List returns all stored seasons, most recent first
func (r *SeasonRepository) List(ctx context.Context) ([]*store.Season, error) {
	query := `SELECT` + seasonColumns + ` FROM seasons ORDER BY end_year DESC`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	var seasons []*store.Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// Ensure returns the stored row for s, creating it with its calendar
// window when missing.
func (r *SeasonRepository) Ensure(ctx context.Context, s season.Season) (*store.Season, error) {
	start, end := s.Window()
	query := `
		INSERT INTO seasons (label, start_year, end_year, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
		RETURNING` + seasonColumns

	stored, err := scanSeason(r.db.DB().QueryRowContext(ctx, query,
		s.String(), s.StartYear(), s.EndYear(), start, end,
	))
	if err != nil {
		return nil, fmt.Errorf("ensuring season %s: %w", s, err)
	}
	return stored, nil
}

func scanSeason(row rowScanner) (*store.Season, error) {
	s := &store.Season{}
	err := row.Scan(
		&s.SeasonID, &s.Label, &s.StartYear, &s.EndYear,
		&s.StartDate, &s.EndDate, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
