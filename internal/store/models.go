package store

import (
	"database/sql"
	"strings"
	"time"
)

// Game status values
const (
	GameStatusScheduled = "scheduled"
	GameStatusFinal     = "final"
	GameStatusPostponed = "postponed"
)

// League is the top of the organizational hierarchy
type League struct {
	LeagueID  int       `json:"league_id" db:"league_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Conference belongs to a league
type Conference struct {
	ConferenceID int           `json:"conference_id" db:"conference_id"`
	LeagueID     sql.NullInt32 `json:"league_id,omitempty" db:"league_id"`
	Name         string        `json:"name" db:"name"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// Division belongs to a conference
type Division struct {
	DivisionID   int       `json:"division_id" db:"division_id"`
	ConferenceID int       `json:"conference_id" db:"conference_id"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Arena is a venue games are played in
type Arena struct {
	ArenaID   int           `json:"arena_id" db:"arena_id"`
	Name      string        `json:"name" db:"name"`
	Capacity  sql.NullInt32 `json:"capacity,omitempty" db:"capacity"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// School is the college or high school a player came from
type School struct {
	SchoolID  int       `json:"school_id" db:"school_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Team represents an NBA franchise. NBAID is the stats API team id.
type Team struct {
	TeamID       int            `json:"team_id" db:"team_id"`
	NBAID        int64          `json:"nba_id" db:"nba_id"`
	NBACode      sql.NullString `json:"nba_code,omitempty" db:"nba_code"`
	Abbreviation string         `json:"abbreviation" db:"abbreviation"`
	City         string         `json:"city" db:"city"`
	Nickname     string         `json:"nickname" db:"nickname"`
	DivisionID   sql.NullInt32  `json:"division_id,omitempty" db:"division_id"`
	ArenaID      sql.NullInt32  `json:"arena_id,omitempty" db:"arena_id"`
	LogoURL      sql.NullString `json:"logo_url,omitempty" db:"logo_url"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// Name returns "City Nickname", e.g. "Golden State Warriors".
func (t *Team) Name() string {
	return strings.TrimSpace(t.City + " " + t.Nickname)
}

// Player represents a player. NBAID is the stats API person id.
type Player struct {
	PlayerID  int            `json:"player_id" db:"player_id"`
	NBAID     int64          `json:"nba_id" db:"nba_id"`
	NBACode   sql.NullString `json:"nba_code,omitempty" db:"nba_code"`
	FirstName string         `json:"first_name" db:"first_name"`
	LastName  string         `json:"last_name" db:"last_name"`
	BirthDate sql.NullTime   `json:"birth_date,omitempty" db:"birth_date"`
	SchoolID  sql.NullInt32  `json:"school_id,omitempty" db:"school_id"`
	PhotoURL  sql.NullString `json:"photo_url,omitempty" db:"photo_url"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name, skipping an empty first name.
func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Age returns the player's age in whole years at now. ok is false when the
// birth date is unknown.
func (p *Player) Age(now time.Time) (age int, ok bool) {
	if !p.BirthDate.Valid {
		return 0, false
	}
	born := p.BirthDate.Time
	age = now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, true
}

// Season is a stored NBA season. Label is the canonical "YYYY-YY" form.
type Season struct {
	SeasonID  int       `json:"season_id" db:"season_id"`
	Label     string    `json:"label" db:"label"`
	StartYear int       `json:"start_year" db:"start_year"`
	EndYear   int       `json:"end_year" db:"end_year"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PlayerMembership is a player's contract with a team for one season
type PlayerMembership struct {
	MembershipID int            `json:"membership_id" db:"membership_id"`
	PlayerID     int            `json:"player_id" db:"player_id"`
	TeamID       int            `json:"team_id" db:"team_id"`
	SeasonID     int            `json:"season_id" db:"season_id"`
	JerseyNumber sql.NullString `json:"jersey_number,omitempty" db:"jersey_number"`
	Salary       sql.NullInt64  `json:"salary,omitempty" db:"salary"`
	StartDate    time.Time      `json:"start_date" db:"start_date"`
	EndDate      sql.NullTime   `json:"end_date,omitempty" db:"end_date"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// Game represents an NBA game. NBAID is the stats API game id ("0021400001").
type Game struct {
	GameID     int            `json:"game_id" db:"game_id"`
	NBAID      string         `json:"nba_id" db:"nba_id"`
	NBACode    sql.NullString `json:"nba_code,omitempty" db:"nba_code"`
	SeasonID   int            `json:"season_id" db:"season_id"`
	GameDate   time.Time      `json:"game_date" db:"game_date"`
	HomeTeamID int            `json:"home_team_id" db:"home_team_id"`
	AwayTeamID int            `json:"away_team_id" db:"away_team_id"`
	HomeScore  sql.NullInt32  `json:"home_score,omitempty" db:"home_score"`
	AwayScore  sql.NullInt32  `json:"away_score,omitempty" db:"away_score"`
	Attendance sql.NullInt32  `json:"attendance,omitempty" db:"attendance"`
	ArenaID    sql.NullInt32  `json:"arena_id,omitempty" db:"arena_id"`
	Status     string         `json:"status" db:"status"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// Winner returns the winning team id of a final game.
func (g *Game) Winner() (int, bool) {
	if g.Status != GameStatusFinal || !g.HomeScore.Valid || !g.AwayScore.Valid {
		return 0, false
	}
	switch {
	case g.HomeScore.Int32 > g.AwayScore.Int32:
		return g.HomeTeamID, true
	case g.AwayScore.Int32 > g.HomeScore.Int32:
		return g.AwayTeamID, true
	}
	return 0, false
}

// NullString wraps s as a valid sql.NullString unless it is empty.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullInt32 wraps n as a valid sql.NullInt32 unless ok is false.
func NullInt32(n int, ok bool) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(n), Valid: ok}
}
