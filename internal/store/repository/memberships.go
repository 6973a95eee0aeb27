package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/nbastats/internal/store"
)

const membershipColumns = `
	membership_id, player_id, team_id, season_id, jersey_number, salary,
	start_date, end_date, created_at`

// MembershipRepository handles player contracts
type MembershipRepository struct {
	db *store.Database
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *store.Database) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Upsert inserts or updates the membership for (player, team, season)
func (r *MembershipRepository) Upsert(ctx context.Context, m *store.PlayerMembership) (*store.PlayerMembership, error) {
	query := `
		INSERT INTO player_memberships (player_id, team_id, season_id, jersey_number, salary, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player_id, team_id, season_id) DO UPDATE SET
			jersey_number = COALESCE(EXCLUDED.jersey_number, player_memberships.jersey_number),
			salary = COALESCE(EXCLUDED.salary, player_memberships.salary),
			end_date = COALESCE(EXCLUDED.end_date, player_memberships.end_date)
		RETURNING` + membershipColumns

	stored := &store.PlayerMembership{}
	err := r.db.DB().QueryRowContext(ctx, query,
		m.PlayerID, m.TeamID, m.SeasonID, m.JerseyNumber, m.Salary, m.StartDate, m.EndDate,
	).Scan(
		&stored.MembershipID, &stored.PlayerID, &stored.TeamID, &stored.SeasonID,
		&stored.JerseyNumber, &stored.Salary, &stored.StartDate, &stored.EndDate, &stored.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting membership for player %d: %w", m.PlayerID, err)
	}
	return stored, nil
}

// GetByPlayer returns a player's memberships, most recent season first
func (r *MembershipRepository) GetByPlayer(ctx context.Context, playerID int) ([]*store.PlayerMembership, error) {
	query := `
		SELECT m.membership_id, m.player_id, m.team_id, m.season_id, m.jersey_number, m.salary,
			m.start_date, m.end_date, m.created_at
		FROM player_memberships m
		JOIN seasons s ON s.season_id = m.season_id
		WHERE m.player_id = $1
		ORDER BY s.end_year DESC, m.start_date DESC`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying memberships: %w", err)
	}
	defer rows.Close()

	var out []*store.PlayerMembership
	for rows.Next() {
		m := &store.PlayerMembership{}
		if err := rows.Scan(
			&m.MembershipID, &m.PlayerID, &m.TeamID, &m.SeasonID, &m.JerseyNumber,
			&m.Salary, &m.StartDate, &m.EndDate, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
