package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/nbastats/internal/store"
)

// VenueRepository handles arenas and schools
type VenueRepository struct {
	db *store.Database
}

// NewVenueRepository creates a new venue repository
func NewVenueRepository(db *store.Database) *VenueRepository {
	return &VenueRepository{db: db}
}

// UpsertArena returns the arena named name, updating capacity when given
func (r *VenueRepository) UpsertArena(ctx context.Context, name string, capacity sql.NullInt32) (*store.Arena, error) {
	a := &store.Arena{}
	err := r.db.DB().QueryRowContext(ctx, `
		INSERT INTO arenas (name, capacity) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET capacity = COALESCE(EXCLUDED.capacity, arenas.capacity)
		RETURNING arena_id, name, capacity, created_at`, name, capacity,
	).Scan(&a.ArenaID, &a.Name, &a.Capacity, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting arena %s: %w", name, err)
	}
	return a, nil
}

// GetArena finds an arena by ID
func (r *VenueRepository) GetArena(ctx context.Context, arenaID int) (*store.Arena, error) {
	a := &store.Arena{}
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT arena_id, name, capacity, created_at FROM arenas WHERE arena_id = $1`, arenaID,
	).Scan(&a.ArenaID, &a.Name, &a.Capacity, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("arena %d: %w", arenaID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying arena: %w", err)
	}
	return a, nil
}

// UpsertSchool returns the school named name, creating it if needed
func (r *VenueRepository) UpsertSchool(ctx context.Context, name string) (*store.School, error) {
	s := &store.School{}
	err := r.db.DB().QueryRowContext(ctx, `
		INSERT INTO schools (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING school_id, name, created_at`, name,
	).Scan(&s.SchoolID, &s.Name, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting school %s: %w", name, err)
	}
	return s, nil
}

// GetSchool finds a school by ID
func (r *VenueRepository) GetSchool(ctx context.Context, schoolID int) (*store.School, error) {
	s := &store.School{}
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT school_id, name, created_at FROM schools WHERE school_id = $1`, schoolID,
	).Scan(&s.SchoolID, &s.Name, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("school %d: %w", schoolID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying school: %w", err)
	}
	return s, nil
}
