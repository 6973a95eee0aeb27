package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
)

// PlayerService handles player-related business logic
type PlayerService struct {
	playerRepo     *repository.PlayerRepository
	membershipRepo *repository.MembershipRepository
	seasonRepo     *repository.SeasonRepository
	teamRepo       *repository.TeamRepository
	venueRepo      *repository.VenueRepository
}

// NewPlayerService creates a new player service
func NewPlayerService(db *store.Database) *PlayerService {
	return &PlayerService{
		playerRepo:     repository.NewPlayerRepository(db),
		membershipRepo: repository.NewMembershipRepository(db),
		seasonRepo:     repository.NewSeasonRepository(db),
		teamRepo:       repository.NewTeamRepository(db),
		venueRepo:      repository.NewVenueRepository(db),
	}
}

// GetPlayer retrieves a player with school, current team and memberships
func (s *PlayerService) GetPlayer(ctx context.Context, playerID int) (*PlayerProfile, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching player: %w", err)
	}

	profile := &PlayerProfile{
		Player:      player,
		FullName:    player.FullName(),
		Memberships: []*MembershipDetail{},
	}
	if age, ok := player.Age(time.Now()); ok {
		profile.Age = &age
	}
	if player.SchoolID.Valid {
		if school, err := s.venueRepo.GetSchool(ctx, int(player.SchoolID.Int32)); err == nil {
			profile.School = school
		}
	}

	memberships, err := s.membershipRepo.GetByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetching memberships: %w", err)
	}

	teams := make(map[int]*store.Team)
	labels := make(map[int]string)
	for _, m := range memberships {
		team, ok := teams[m.TeamID]
		if !ok {
			if team, err = s.teamRepo.GetByID(ctx, m.TeamID); err != nil {
				return nil, fmt.Errorf("fetching team for membership %d: %w", m.MembershipID, err)
			}
			teams[m.TeamID] = team
		}
		label, ok := labels[m.SeasonID]
		if !ok {
			sn, err := s.seasonRepo.GetByID(ctx, m.SeasonID)
			if err != nil {
				return nil, fmt.Errorf("fetching season for membership %d: %w", m.MembershipID, err)
			}
			label = sn.Label
			labels[m.SeasonID] = label
		}
		profile.Memberships = append(profile.Memberships, &MembershipDetail{
			Membership: m,
			Team:       team,
			Season:     label,
		})
	}

	// Memberships are ordered most recent first; an open contract there is
	// the current team.
	if len(memberships) > 0 && !memberships[0].EndDate.Valid {
		profile.Team = teams[memberships[0].TeamID]
	}

	return profile, nil
}

// ListPlayers returns one page of players
func (s *PlayerService) ListPlayers(ctx context.Context, page int) (*PlayerPage, error) {
	limit, offset, page := pageBounds(page)

	players, total, err := s.playerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	if players == nil {
		players = []*store.Player{}
	}

	pages := (total + limit - 1) / limit
	return &PlayerPage{
		Players:  players,
		Page:     page,
		PageSize: limit,
		Total:    total,
		Pages:    pages,
		HasNext:  page < pages,
	}, nil
}

// SearchPlayers searches for players by name
func (s *PlayerService) SearchPlayers(ctx context.Context, name string) ([]*store.Player, error) {
	players, err := s.playerRepo.Search(ctx, name, PlayersPerPage)
	if err != nil {
		return nil, fmt.Errorf("searching players: %w", err)
	}
	if players == nil {
		players = []*store.Player{}
	}
	return players, nil
}
