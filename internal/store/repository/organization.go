package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/nbastats/internal/store"
)

// OrganizationRepository handles leagues, conferences and divisions
type OrganizationRepository struct {
	db *store.Database
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *store.Database) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// UpsertLeague returns the league named name, creating it if needed
func (r *OrganizationRepository) UpsertLeague(ctx context.Context, name string) (*store.League, error) {
	l := &store.League{}
	err := r.db.DB().QueryRowContext(ctx, `
		INSERT INTO leagues (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING league_id, name, created_at`, name,
	).Scan(&l.LeagueID, &l.Name, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting league %s: %w", name, err)
	}
	return l, nil
}

// UpsertConference returns the conference named name, creating it under
// leagueID if needed
func (r *OrganizationRepository) UpsertConference(ctx context.Context, leagueID sql.NullInt32, name string) (*store.Conference, error) {
	c := &store.Conference{}
	err := r.db.DB().QueryRowContext(ctx, `
		INSERT INTO conferences (league_id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET league_id = COALESCE(EXCLUDED.league_id, conferences.league_id)
		RETURNING conference_id, league_id, name, created_at`, leagueID, name,
	).Scan(&c.ConferenceID, &c.LeagueID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting conference %s: %w", name, err)
	}
	return c, nil
}

// UpsertDivision returns the division named name, moving it to
// conferenceID if it exists elsewhere
func (r *OrganizationRepository) UpsertDivision(ctx context.Context, conferenceID int, name string) (*store.Division, error) {
	d := &store.Division{}
	err := r.db.DB().QueryRowContext(ctx, `
		INSERT INTO divisions (conference_id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET conference_id = EXCLUDED.conference_id
		RETURNING division_id, conference_id, name, created_at`, conferenceID, name,
	).Scan(&d.DivisionID, &d.ConferenceID, &d.Name, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting division %s: %w", name, err)
	}
	return d, nil
}

// ListLeagues returns all leagues
func (r *OrganizationRepository) ListLeagues(ctx context.Context) ([]*store.League, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT league_id, name, created_at FROM leagues ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying leagues: %w", err)
	}
	defer rows.Close()

	var leagues []*store.League
	for rows.Next() {
		l := &store.League{}
		if err := rows.Scan(&l.LeagueID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning league: %w", err)
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

// ListConferences returns all conferences
func (r *OrganizationRepository) ListConferences(ctx context.Context) ([]*store.Conference, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT conference_id, league_id, name, created_at FROM conferences ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying conferences: %w", err)
	}
	defer rows.Close()

	var conferences []*store.Conference
	for rows.Next() {
		c := &store.Conference{}
		if err := rows.Scan(&c.ConferenceID, &c.LeagueID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning conference: %w", err)
		}
		conferences = append(conferences, c)
	}
	return conferences, rows.Err()
}

// ListDivisions returns all divisions
func (r *OrganizationRepository) ListDivisions(ctx context.Context) ([]*store.Division, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT division_id, conference_id, name, created_at FROM divisions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying divisions: %w", err)
	}
	defer rows.Close()

	var divisions []*store.Division
	for rows.Next() {
		d := &store.Division{}
		if err := rows.Scan(&d.DivisionID, &d.ConferenceID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning division: %w", err)
		}
		divisions = append(divisions, d)
	}
	return divisions, rows.Err()
}

// GetDivision finds a division with its conference
func (r *OrganizationRepository) GetDivision(ctx context.Context, divisionID int) (*store.Division, *store.Conference, error) {
	d := &store.Division{}
	c := &store.Conference{}
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT d.division_id, d.conference_id, d.name, d.created_at,
			c.conference_id, c.league_id, c.name, c.created_at
		FROM divisions d
		JOIN conferences c ON c.conference_id = d.conference_id
		WHERE d.division_id = $1`, divisionID,
	).Scan(&d.DivisionID, &d.ConferenceID, &d.Name, &d.CreatedAt,
		&c.ConferenceID, &c.LeagueID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("division %d: %w", divisionID, store.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying division: %w", err)
	}
	return d, c, nil
}
