package service

import "github.com/fortuna/nbastats/internal/store"

// PlayersPerPage matches the player list page size
const PlayersPerPage = 50

// PlayerProfile is a player with school, current team and contract history
type PlayerProfile struct {
	Player      *store.Player       `json:"player"`
	FullName    string              `json:"full_name"`
	Age         *int                `json:"age,omitempty"`
	School      *store.School       `json:"school,omitempty"`
	Team        *store.Team         `json:"team,omitempty"`
	Memberships []*MembershipDetail `json:"memberships"`
}

// MembershipDetail is a membership with its team and season resolved
type MembershipDetail struct {
	Membership *store.PlayerMembership `json:"membership"`
	Team       *store.Team             `json:"team"`
	Season     string                  `json:"season"`
}

// PlayerPage is one page of the player list
type PlayerPage struct {
	Players  []*store.Player `json:"players"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int             `json:"total"`
	Pages    int             `json:"pages"`
	HasNext  bool            `json:"has_next"`
}

// TeamDetail is a team with its division, conference and arena
type TeamDetail struct {
	Team       *store.Team       `json:"team"`
	Name       string            `json:"name"`
	Division   *store.Division   `json:"division,omitempty"`
	Conference *store.Conference `json:"conference,omitempty"`
	Arena      *store.Arena      `json:"arena,omitempty"`
}

// Roster lists a team's players for one season
type Roster struct {
	Team    *store.Team     `json:"team"`
	Season  string          `json:"season"`
	Players []*store.Player `json:"players"`
}

// GameSummary contains game details with team information
type GameSummary struct {
	Game     *store.Game `json:"game"`
	HomeTeam *store.Team `json:"home_team"`
	AwayTeam *store.Team `json:"away_team"`
}

// OrganizationTree is league -> conference -> division -> teams
type OrganizationTree struct {
	Leagues []*LeagueNode `json:"leagues"`
}

type LeagueNode struct {
	League      *store.League     `json:"league"`
	Conferences []*ConferenceNode `json:"conferences"`
}

type ConferenceNode struct {
	Conference *store.Conference `json:"conference"`
	Divisions  []*DivisionNode   `json:"divisions"`
}

type DivisionNode struct {
	Division *store.Division `json:"division"`
	Teams    []*store.Team   `json:"teams"`
}

// pageBounds converts a 1-based page number into limit/offset
func pageBounds(page int) (limit, offset, normalized int) {
	if page < 1 {
		page = 1
	}
	return PlayersPerPage, (page - 1) * PlayersPerPage, page
}

// buildOrganizationTree nests divisions and teams under their parents.
// Conferences without a league are grouped under a nil league node.
func buildOrganizationTree(leagues []*store.League, conferences []*store.Conference, divisions []*store.Division, teams []*store.Team) *OrganizationTree {
	teamsByDivision := make(map[int][]*store.Team)
	for _, t := range teams {
		if t.DivisionID.Valid {
			id := int(t.DivisionID.Int32)
			teamsByDivision[id] = append(teamsByDivision[id], t)
		}
	}

	divisionsByConference := make(map[int][]*DivisionNode)
	for _, d := range divisions {
		teams := teamsByDivision[d.DivisionID]
		if teams == nil {
			teams = []*store.Team{}
		}
		divisionsByConference[d.ConferenceID] = append(divisionsByConference[d.ConferenceID],
			&DivisionNode{Division: d, Teams: teams})
	}

	nodes := make(map[int]*LeagueNode, len(leagues))
	tree := &OrganizationTree{Leagues: make([]*LeagueNode, 0, len(leagues))}
	for _, l := range leagues {
		node := &LeagueNode{League: l, Conferences: []*ConferenceNode{}}
		nodes[l.LeagueID] = node
		tree.Leagues = append(tree.Leagues, node)
	}

	var orphans *LeagueNode
	for _, c := range conferences {
		divs := divisionsByConference[c.ConferenceID]
		if divs == nil {
			divs = []*DivisionNode{}
		}
		cn := &ConferenceNode{Conference: c, Divisions: divs}

		node, ok := nodes[int(c.LeagueID.Int32)]
		if !c.LeagueID.Valid || !ok {
			if orphans == nil {
				orphans = &LeagueNode{Conferences: []*ConferenceNode{}}
				tree.Leagues = append(tree.Leagues, orphans)
			}
			node = orphans
		}
		node.Conferences = append(node.Conferences, cn)
	}
	return tree
}
