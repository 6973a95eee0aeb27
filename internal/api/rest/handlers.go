package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db      HealthChecker
	seasons SeasonService
	teams   TeamService
	players PlayerService
	games   GameService
}

// NewHandler creates a new handler
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		db:      deps.DB,
		seasons: deps.Seasons,
		teams:   deps.Teams,
		players: deps.Players,
		games:   deps.Games,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status":  "healthy",
		"service": "nbastats",
		"season":  h.seasons.Current(0),
	}
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			payload["status"] = "degraded"
			payload["database"] = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, payload)
			return
		}
	}
	respondJSON(w, http.StatusOK, payload)
}

// GetSeasons lists seasons. With from (and optionally to and step) it returns
// the computed labels; otherwise it returns the stored seasons.
func (h *Handler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := q.Get("from")
	if from == "" {
		stored, err := h.seasons.List(r.Context())
		if err != nil {
			respondError(w, statusFor(err), "Failed to fetch seasons", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"seasons": stored})
		return
	}

	step := 1
	if s := q.Get("step"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n == 0 {
			respondError(w, http.StatusBadRequest, "Invalid step (non-zero integer)", err)
			return
		}
		step = n
	}

	labels, err := h.seasons.Range(from, q.Get("to"), step)
	if err != nil {
		respondError(w, statusFor(err), "Invalid season range", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"seasons": labels,
		"count":   len(labels),
	})
}

// GetCurrentSeason returns the current season label, shifted by ?offset=
func (h *Handler) GetCurrentSeason(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid offset", err)
			return
		}
		offset = n
	}
	respondJSON(w, http.StatusOK, map[string]string{"season": h.seasons.Current(offset)})
}

// GetSeason returns a stored season by any accepted identifier
func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	text := mux.Vars(r)["season"]
	stored, err := h.seasons.Get(r.Context(), text)
	if err != nil {
		respondError(w, statusFor(err), "Season not found", err)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

// GetOrganization returns the league hierarchy with teams
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	tree, err := h.teams.GetOrganization(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch organization", err)
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

// GetTeams returns all teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.GetTeams(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch teams", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// GetTeam returns a specific team by ID
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, ok := intVar(w, r, "teamID", "Invalid team ID")
	if !ok {
		return
	}

	team, err := h.teams.GetTeam(r.Context(), teamID)
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch team", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"team": team})
}

// GetTeamRoster returns a team's roster for ?season= (default current)
func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	teamID, ok := intVar(w, r, "teamID", "Invalid team ID")
	if !ok {
		return
	}

	roster, err := h.teams.GetRoster(r.Context(), teamID, r.URL.Query().Get("season"))
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch team roster", err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// GetTeamSchedule returns a team's schedule
func (h *Handler) GetTeamSchedule(w http.ResponseWriter, r *http.Request) {
	teamID, ok := intVar(w, r, "teamID", "Invalid team ID")
	if !ok {
		return
	}

	limit := queryLimit(r, 100, 1230)
	schedule, err := h.games.GetTeamSchedule(r.Context(), teamID, r.URL.Query().Get("season"), limit)
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch team schedule", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": schedule,
		"count": len(schedule),
	})
}

// ListPlayers returns one page of players
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	page := 1
	if s := r.URL.Query().Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid page", err)
			return
		}
		page = n
	}

	result, err := h.players.ListPlayers(r.Context(), page)
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch players", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetPlayer returns a player by ID
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, ok := intVar(w, r, "playerID", "Invalid player ID")
	if !ok {
		return
	}

	player, err := h.players.GetPlayer(r.Context(), playerID)
	if err != nil {
		respondError(w, statusFor(err), "Player not found", err)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

// SearchPlayers searches for players by name
func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'q'", nil)
		return
	}

	players, err := h.players.SearchPlayers(r.Context(), query)
	if err != nil {
		respondError(w, statusFor(err), "Failed to search players", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"players": players})
}

// GetGamesByDate returns all games on ?date= (default today)
func (h *Handler) GetGamesByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	games, err := h.games.GetGamesByDate(r.Context(), date)
	if err != nil {
		respondError(w, statusFor(err), "Failed to fetch games", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":  dateStr,
		"games": games,
		"count": len(games),
	})
}

// GetGame returns a specific game by ID
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := intVar(w, r, "gameID", "Invalid game ID")
	if !ok {
		return
	}

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		respondError(w, statusFor(err), "Game not found", err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func intVar(w http.ResponseWriter, r *http.Request, name, message string) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		respondError(w, http.StatusBadRequest, message, err)
		return 0, false
	}
	return n, true
}

func queryLimit(r *http.Request, def, max int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= max {
			limit = l
		}
	}
	return limit
}
