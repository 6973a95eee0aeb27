package fixtures

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/fortuna/nbastats/internal/store/repository"
	"github.com/fortuna/nbastats/internal/tabular"
)

// modelFields lists the fields each model accepts
var modelFields = map[string][]string{
	"nba.league":           {"name"},
	"nba.conference":       {"name", "league"},
	"nba.division":         {"name", "conference"},
	"nba.arena":            {"name", "capacity"},
	"nba.school":           {"name"},
	"nba.team":             {"nba_id", "nba_code", "abbr", "city", "nickname", "logo", "division", "arena"},
	"nba.player":           {"nba_id", "nba_code", "first_name", "last_name", "birth_date", "school", "photo"},
	"nba.season":           {"label"},
	"nba.playermembership": {"player", "team", "season", "jersey_number", "salary", "start_date", "end_date"},
	"nba.game":             {"nba_id", "nba_code", "season", "game_date", "home_team", "away_team", "home_score", "away_score", "attendance", "arena", "status"},
}

// Models returns the model names a StoreSink accepts, sorted
func Models() []string {
	names := make([]string, 0, len(modelFields))
	for m := range modelFields {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// StoreSink installs objects through the repositories. Foreign keys may be
// the pk of an object installed earlier in the same run, a stored id, or a
// natural key list like ["1610612744"].
type StoreSink struct {
	IgnoreNonexistent bool

	orgRepo        *repository.OrganizationRepository
	venueRepo      *repository.VenueRepository
	teamRepo       *repository.TeamRepository
	playerRepo     *repository.PlayerRepository
	seasonRepo     *repository.SeasonRepository
	membershipRepo *repository.MembershipRepository
	gameRepo       *repository.GameRepository

	// model -> fixture pk -> stored id
	ids map[string]map[string]int
}

// NewStoreSink creates a sink writing to db
func NewStoreSink(db *store.Database) *StoreSink {
	return &StoreSink{
		orgRepo:        repository.NewOrganizationRepository(db),
		venueRepo:      repository.NewVenueRepository(db),
		teamRepo:       repository.NewTeamRepository(db),
		playerRepo:     repository.NewPlayerRepository(db),
		seasonRepo:     repository.NewSeasonRepository(db),
		membershipRepo: repository.NewMembershipRepository(db),
		gameRepo:       repository.NewGameRepository(db),
		ids:            make(map[string]map[string]int),
	}
}

// Install upserts one object
func (s *StoreSink) Install(ctx context.Context, obj Object) error {
	f, err := checkFields(obj, s.IgnoreNonexistent)
	if err != nil {
		return err
	}

	var id int
	switch obj.Model {
	case "nba.league":
		l, err := s.orgRepo.UpsertLeague(ctx, f.str("name"))
		if err != nil {
			return err
		}
		id = l.LeagueID
	case "nba.conference":
		league, err := s.optionalRef(ctx, "nba.league", f["league"])
		if err != nil {
			return err
		}
		c, err := s.orgRepo.UpsertConference(ctx, league, f.str("name"))
		if err != nil {
			return err
		}
		id = c.ConferenceID
	case "nba.division":
		conf, err := s.ref(ctx, "nba.conference", f["conference"])
		if err != nil {
			return err
		}
		d, err := s.orgRepo.UpsertDivision(ctx, conf, f.str("name"))
		if err != nil {
			return err
		}
		id = d.DivisionID
	case "nba.arena":
		capacity, err := f.nullInt("capacity")
		if err != nil {
			return err
		}
		a, err := s.venueRepo.UpsertArena(ctx, f.str("name"), capacity)
		if err != nil {
			return err
		}
		id = a.ArenaID
	case "nba.school":
		sc, err := s.venueRepo.UpsertSchool(ctx, f.str("name"))
		if err != nil {
			return err
		}
		id = sc.SchoolID
	case "nba.team":
		id, err = s.installTeam(ctx, f)
	case "nba.player":
		id, err = s.installPlayer(ctx, f)
	case "nba.season":
		sn, perr := season.Of(season.FromString(f.str("label")))
		if perr != nil {
			return perr
		}
		stored, perr := s.seasonRepo.Ensure(ctx, sn)
		if perr != nil {
			return perr
		}
		id = stored.SeasonID
	case "nba.playermembership":
		id, err = s.installMembership(ctx, f)
	case "nba.game":
		id, err = s.installGame(ctx, f)
	}
	if err != nil {
		return err
	}

	s.remember(obj.Model, obj.PK, id)
	return nil
}

func (s *StoreSink) installTeam(ctx context.Context, f fields) (int, error) {
	nbaID, err := f.integer("nba_id")
	if err != nil {
		return 0, err
	}
	division, err := s.optionalRef(ctx, "nba.division", f["division"])
	if err != nil {
		return 0, err
	}
	arena, err := s.optionalRef(ctx, "nba.arena", f["arena"])
	if err != nil {
		return 0, err
	}
	t, err := s.teamRepo.Upsert(ctx, &store.Team{
		NBAID:        nbaID,
		NBACode:      store.NullString(f.str("nba_code")),
		Abbreviation: f.str("abbr"),
		City:         f.str("city"),
		Nickname:     f.str("nickname"),
		DivisionID:   division,
		ArenaID:      arena,
		LogoURL:      store.NullString(f.str("logo")),
	})
	if err != nil {
		return 0, err
	}
	return t.TeamID, nil
}

func (s *StoreSink) installPlayer(ctx context.Context, f fields) (int, error) {
	nbaID, err := f.integer("nba_id")
	if err != nil {
		return 0, err
	}
	born, err := f.date("birth_date")
	if err != nil {
		return 0, err
	}
	school, err := s.optionalRef(ctx, "nba.school", f["school"])
	if err != nil {
		return 0, err
	}
	p, err := s.playerRepo.Upsert(ctx, &store.Player{
		NBAID:     nbaID,
		NBACode:   store.NullString(f.str("nba_code")),
		FirstName: f.str("first_name"),
		LastName:  f.str("last_name"),
		BirthDate: born,
		SchoolID:  school,
		PhotoURL:  store.NullString(f.str("photo")),
	})
	if err != nil {
		return 0, err
	}
	return p.PlayerID, nil
}

func (s *StoreSink) installMembership(ctx context.Context, f fields) (int, error) {
	player, err := s.ref(ctx, "nba.player", f["player"])
	if err != nil {
		return 0, err
	}
	team, err := s.ref(ctx, "nba.team", f["team"])
	if err != nil {
		return 0, err
	}
	seasonID, err := s.ref(ctx, "nba.season", f["season"])
	if err != nil {
		return 0, err
	}
	start, err := f.date("start_date")
	if err != nil {
		return 0, err
	}
	end, err := f.date("end_date")
	if err != nil {
		return 0, err
	}
	salary, err := f.nullInt("salary")
	if err != nil {
		return 0, err
	}
	m, err := s.membershipRepo.Upsert(ctx, &store.PlayerMembership{
		PlayerID:     player,
		TeamID:       team,
		SeasonID:     seasonID,
		JerseyNumber: store.NullString(f.str("jersey_number")),
		Salary:       sql.NullInt64{Int64: int64(salary.Int32), Valid: salary.Valid},
		StartDate:    start.Time,
		EndDate:      end,
	})
	if err != nil {
		return 0, err
	}
	return m.MembershipID, nil
}

func (s *StoreSink) installGame(ctx context.Context, f fields) (int, error) {
	seasonID, err := s.ref(ctx, "nba.season", f["season"])
	if err != nil {
		return 0, err
	}
	home, err := s.ref(ctx, "nba.team", f["home_team"])
	if err != nil {
		return 0, err
	}
	away, err := s.ref(ctx, "nba.team", f["away_team"])
	if err != nil {
		return 0, err
	}
	arena, err := s.optionalRef(ctx, "nba.arena", f["arena"])
	if err != nil {
		return 0, err
	}
	date, err := f.date("game_date")
	if err != nil {
		return 0, err
	}
	homeScore, err := f.nullInt("home_score")
	if err != nil {
		return 0, err
	}
	awayScore, err := f.nullInt("away_score")
	if err != nil {
		return 0, err
	}
	attendance, err := f.nullInt("attendance")
	if err != nil {
		return 0, err
	}
	status := f.str("status")
	if status == "" {
		status = store.GameStatusScheduled
		if homeScore.Valid && awayScore.Valid {
			status = store.GameStatusFinal
		}
	}
	g, err := s.gameRepo.Upsert(ctx, &store.Game{
		NBAID:      f.str("nba_id"),
		NBACode:    store.NullString(f.str("nba_code")),
		SeasonID:   seasonID,
		GameDate:   date.Time,
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		Attendance: attendance,
		ArenaID:    arena,
		Status:     status,
	})
	if err != nil {
		return 0, err
	}
	return g.GameID, nil
}

func (s *StoreSink) remember(model string, pk any, id int) {
	if pk == nil {
		return
	}
	if s.ids[model] == nil {
		s.ids[model] = make(map[string]int)
	}
	s.ids[model][pkKey(pk)] = id
}

// ref resolves a required foreign key
func (s *StoreSink) ref(ctx context.Context, model string, v any) (int, error) {
	id, err := s.optionalRef(ctx, model, v)
	if err != nil {
		return 0, err
	}
	if !id.Valid {
		return 0, fmt.Errorf("missing required reference to %s", model)
	}
	return int(id.Int32), nil
}

func (s *StoreSink) optionalRef(ctx context.Context, model string, v any) (sql.NullInt32, error) {
	switch key := v.(type) {
	case nil:
		return sql.NullInt32{}, nil
	case []any:
		id, err := s.naturalKey(ctx, model, key)
		if err != nil {
			return sql.NullInt32{}, err
		}
		return store.NullInt32(id, true), nil
	}

	if id, ok := s.ids[model][pkKey(v)]; ok {
		return store.NullInt32(id, true), nil
	}
	n, err := toInt64(v)
	if err != nil {
		return sql.NullInt32{}, fmt.Errorf("reference to %s: %w", model, err)
	}
	return store.NullInt32(int(n), true), nil
}

// naturalKey looks up an nba_id natural key, or a season label
func (s *StoreSink) naturalKey(ctx context.Context, model string, key []any) (int, error) {
	if len(key) != 1 {
		return 0, fmt.Errorf("natural key for %s must have one element, got %d", model, len(key))
	}
	switch model {
	case "nba.team":
		n, err := toInt64(key[0])
		if err != nil {
			return 0, err
		}
		t, err := s.teamRepo.GetByNBAID(ctx, n)
		if err != nil {
			return 0, err
		}
		return t.TeamID, nil
	case "nba.player":
		n, err := toInt64(key[0])
		if err != nil {
			return 0, err
		}
		p, err := s.playerRepo.GetByNBAID(ctx, n)
		if err != nil {
			return 0, err
		}
		return p.PlayerID, nil
	case "nba.season":
		label, err := season.Normalize(fmt.Sprint(key[0]))
		if err != nil {
			return 0, err
		}
		sn, err := s.seasonRepo.GetByLabel(ctx, label)
		if err != nil {
			return 0, err
		}
		return sn.SeasonID, nil
	}
	return 0, fmt.Errorf("%s has no natural key", model)
}

// fields is an object's field map restricted to its model's known fields
type fields map[string]any

func checkFields(obj Object, ignoreNonexistent bool) (fields, error) {
	known, ok := modelFields[obj.Model]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModel, obj.Model)
	}
	if extra := tabular.MapMinus(obj.Fields, known...); len(extra) > 0 && !ignoreNonexistent {
		names := make([]string, 0, len(extra))
		for k := range extra {
			names = append(names, k)
		}
		slices.Sort(names)
		return nil, fmt.Errorf("%w(s) %v on %s", ErrUnknownField, names, obj.Model)
	}
	return fields(tabular.MapSubset(obj.Fields, known, false, nil)), nil
}

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (f fields) integer(key string) (int64, error) {
	n, err := toInt64(f[key])
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	return n, nil
}

func (f fields) nullInt(key string) (sql.NullInt32, error) {
	if f[key] == nil {
		return sql.NullInt32{}, nil
	}
	n, err := f.integer(key)
	if err != nil {
		return sql.NullInt32{}, err
	}
	return store.NullInt32(int(n), true), nil
}

func (f fields) date(key string) (sql.NullTime, error) {
	s := f.str(key)
	if s == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("field %s: %w", key, err)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func pkKey(pk any) string {
	return fmt.Sprint(formatPK(pk))
}
