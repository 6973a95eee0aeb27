package statsnba

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/tabular"
)

// Result set names used by the endpoints we call
const (
	ResultSetGameLog    = "LeagueGameLog"
	ResultSetTeamInfo   = "TeamInfoCommon"
	ResultSetRoster     = "CommonTeamRoster"
	ResultSetAllPlayers = "CommonAllPlayers"
)

// ErrResultSetNotFound is returned when a payload lacks the named result set
var ErrResultSetNotFound = errors.New("result set not found")

// ParseResultSet extracts the named result set from a stats API payload
// as one map per row. Payloads carry either a "resultSets" list or a
// single "resultSet" object.
func ParseResultSet(payload map[string]any, name string) ([]tabular.Row, error) {
	var sets []any
	switch v := payload["resultSets"].(type) {
	case []any:
		sets = v
	case map[string]any:
		sets = []any{v}
	}
	if single, ok := payload["resultSet"].(map[string]any); ok {
		sets = append(sets, single)
	}

	for _, s := range sets {
		set, ok := s.(map[string]any)
		if !ok || set["name"] != name {
			continue
		}
		rows, err := tabular.SplitMapToMaps(set, "rowSet", "headers")
		if err != nil {
			return nil, fmt.Errorf("result set %s: %w", name, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrResultSetNotFound, name)
}

// TeamRef identifies a team by its stats API id
type TeamRef struct {
	NBAID        int64
	Abbreviation string
	Name         string
}

// ParsedGame is one game assembled from its home and away log rows
type ParsedGame struct {
	NBAID     string
	GameDate  time.Time
	Home      TeamRef
	Away      TeamRef
	HomeScore *int
	AwayScore *int
	Status    string
}

// ParseGameLog collapses the two-rows-per-game team log into one game per
// GAME_ID. A MATCHUP of "GSW vs. LAC" is the home row and "GSW @ LAC" the
// away row. Games missing either side are skipped.
func ParseGameLog(rows []tabular.Row) ([]ParsedGame, error) {
	var home, away []tabular.Row
	var order []string
	seen := make(map[string]bool)

	for i, row := range rows {
		id, ok := row["GAME_ID"].(string)
		if !ok {
			return nil, fmt.Errorf("row %d: GAME_ID is %T", i, row["GAME_ID"])
		}
		matchup, _ := row["MATCHUP"].(string)
		switch {
		case strings.Contains(matchup, " vs. "):
			home = append(home, row)
		case strings.Contains(matchup, " @ "):
			away = append(away, row)
		default:
			return nil, fmt.Errorf("row %d: unrecognized matchup %q", i, matchup)
		}
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}

	homeByGame, err := tabular.RowsToKeyedMap(home, "GAME_ID")
	if err != nil {
		return nil, err
	}
	awayByGame, err := tabular.RowsToKeyedMap(away, "GAME_ID")
	if err != nil {
		return nil, err
	}

	games := make([]ParsedGame, 0, len(order))
	for _, id := range order {
		h, okH := homeByGame[id]
		a, okA := awayByGame[id]
		if !okH || !okA {
			continue
		}

		date, err := time.Parse("2006-01-02", asString(h["GAME_DATE"]))
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", id, err)
		}

		game := ParsedGame{
			NBAID:    id,
			GameDate: date,
			Home:     teamRef(h),
			Away:     teamRef(a),
			Status:   store.GameStatusScheduled,
		}
		if asString(h["WL"]) != "" {
			game.Status = store.GameStatusFinal
			game.HomeScore = asIntPtr(h["PTS"])
			game.AwayScore = asIntPtr(a["PTS"])
		}
		games = append(games, game)
	}
	return games, nil
}

// InSeason splits games into those played inside sn's window and the rest.
// Each stray game is reported with the season its date belongs to.
func InSeason(games []ParsedGame, sn season.Season) (kept []ParsedGame, stray map[string]season.Season) {
	kept = make([]ParsedGame, 0, len(games))
	for _, g := range games {
		if sn.Contains(g.GameDate) {
			kept = append(kept, g)
			continue
		}
		if stray == nil {
			stray = make(map[string]season.Season)
		}
		stray[g.NBAID] = season.ForGameDate(g.GameDate)
	}
	return kept, stray
}

// Teams returns the distinct teams appearing in games, in first-seen order
func Teams(games []ParsedGame) []TeamRef {
	var teams []TeamRef
	seen := make(map[int64]bool)
	for _, g := range games {
		for _, t := range []TeamRef{g.Home, g.Away} {
			if !seen[t.NBAID] {
				seen[t.NBAID] = true
				teams = append(teams, t)
			}
		}
	}
	return teams
}

// TeamInfo is a team's identity plus its place in the hierarchy
type TeamInfo struct {
	NBAID        int64
	Abbreviation string
	City         string
	Nickname     string
	Conference   string
	Division     string
	Code         string
}

// ParseTeamInfo reads the first row of a TeamInfoCommon result set
func ParseTeamInfo(rows []tabular.Row) (TeamInfo, error) {
	if len(rows) == 0 {
		return TeamInfo{}, fmt.Errorf("%w: empty %s", ErrResultSetNotFound, ResultSetTeamInfo)
	}
	r := rows[0]
	id, ok := asInt64(r["TEAM_ID"])
	if !ok {
		return TeamInfo{}, fmt.Errorf("team info: TEAM_ID is %T", r["TEAM_ID"])
	}
	return TeamInfo{
		NBAID:        id,
		Abbreviation: asString(r["TEAM_ABBREVIATION"]),
		City:         asString(r["TEAM_CITY"]),
		Nickname:     asString(r["TEAM_NAME"]),
		Conference:   asString(r["TEAM_CONFERENCE"]),
		Division:     asString(r["TEAM_DIVISION"]),
		Code:         asString(r["TEAM_CODE"]),
	}, nil
}

// RosterEntry is one player on a team's season roster
type RosterEntry struct {
	NBAID     int64
	FirstName string
	LastName  string
	Jersey    string
	BirthDate *time.Time
	School    string
}

// ParseRoster reads a CommonTeamRoster result set
func ParseRoster(rows []tabular.Row) ([]RosterEntry, error) {
	entries := make([]RosterEntry, 0, len(rows))
	for i, r := range rows {
		id, ok := asInt64(r["PLAYER_ID"])
		if !ok {
			return nil, fmt.Errorf("roster row %d: PLAYER_ID is %T", i, r["PLAYER_ID"])
		}
		first, last := splitName(asString(r["PLAYER"]))
		entry := RosterEntry{
			NBAID:     id,
			FirstName: first,
			LastName:  last,
			Jersey:    asString(r["NUM"]),
			School:    strings.TrimSpace(asString(r["SCHOOL"])),
		}
		if born, err := time.Parse("Jan 2, 2006", titleMonth(asString(r["BIRTH_DATE"]))); err == nil {
			entry.BirthDate = &born
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// splitName splits "Stephen Curry" at the first space. A single name is a
// last name.
func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if i := strings.IndexByte(full, ' '); i >= 0 {
		return full[:i], strings.TrimSpace(full[i+1:])
	}
	return "", full
}

// titleMonth turns "MAR 14, 1988" into "Mar 14, 1988"
func titleMonth(s string) string {
	if len(s) < 3 {
		return s
	}
	return s[:1] + strings.ToLower(s[1:3]) + s[3:]
}

func teamRef(row tabular.Row) TeamRef {
	id, _ := asInt64(row["TEAM_ID"])
	return TeamRef{
		NBAID:        id,
		Abbreviation: asString(row["TEAM_ABBREVIATION"]),
		Name:         asString(row["TEAM_NAME"]),
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func asIntPtr(v any) *int {
	n, ok := asInt64(v)
	if !ok {
		return nil
	}
	i := int(n)
	return &i
}
