package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fortuna/nbastats/internal/backfill"
	"github.com/fortuna/nbastats/internal/service"
	"github.com/fortuna/nbastats/internal/store"
	"github.com/gorilla/mux"
)

// SeasonService resolves and lists seasons
type SeasonService interface {
	Range(from, to string, step int) ([]string, error)
	Current(offset int) string
	Get(ctx context.Context, text string) (*store.Season, error)
	List(ctx context.Context) ([]*store.Season, error)
}

// TeamService serves teams, rosters and the hierarchy
type TeamService interface {
	GetTeams(ctx context.Context) ([]*store.Team, error)
	GetTeam(ctx context.Context, teamID int) (*service.TeamDetail, error)
	GetRoster(ctx context.Context, teamID int, seasonText string) (*service.Roster, error)
	GetOrganization(ctx context.Context) (*service.OrganizationTree, error)
}

// PlayerService serves player lookups
type PlayerService interface {
	GetPlayer(ctx context.Context, playerID int) (*service.PlayerProfile, error)
	ListPlayers(ctx context.Context, page int) (*service.PlayerPage, error)
	SearchPlayers(ctx context.Context, name string) ([]*store.Player, error)
}

// GameService serves games and schedules
type GameService interface {
	GetGame(ctx context.Context, gameID int) (*service.GameSummary, error)
	GetGamesByDate(ctx context.Context, date time.Time) ([]*service.GameSummary, error)
	GetTeamSchedule(ctx context.Context, teamID int, seasonText string, limit int) ([]*service.GameSummary, error)
}

// BackfillService queues and reports backfill jobs
type BackfillService interface {
	Enqueue(ctx context.Context, req backfill.Request) (*backfill.Job, error)
	GetStatus(ctx context.Context) (*backfill.StatusSummary, error)
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck() error
}

// Dependencies are the services the API is built on
type Dependencies struct {
	DB       HealthChecker
	Seasons  SeasonService
	Teams    TeamService
	Players  PlayerService
	Games    GameService
	Backfill BackfillService
}

// NewDependencies wires the database-backed services
func NewDependencies(db *store.Database, seasons *service.SeasonService, backfillSvc *backfill.Service) Dependencies {
	deps := Dependencies{
		DB:      db,
		Seasons: seasons,
		Teams:   service.NewTeamService(db, seasons),
		Players: service.NewPlayerService(db),
		Games:   service.NewGameService(db, seasons),
	}
	if backfillSvc != nil {
		deps.Backfill = backfillSvc
	}
	return deps
}

// Server represents the REST API server
type Server struct {
	port   string
	server *http.Server
}

// NewServer creates a new REST API server
func NewServer(port string, deps Dependencies) *Server {
	return &Server{
		port: port,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the API routes
func NewRouter(deps Dependencies) *mux.Router {
	handler := NewHandler(deps)
	backfillHandler := NewBackfillHandler(deps.Backfill)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Seasons
	api.HandleFunc("/seasons", handler.GetSeasons).Methods("GET")
	api.HandleFunc("/seasons/current", handler.GetCurrentSeason).Methods("GET")
	api.HandleFunc("/seasons/{season}", handler.GetSeason).Methods("GET")

	// Organization
	api.HandleFunc("/organization", handler.GetOrganization).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{teamID:[0-9]+}", handler.GetTeam).Methods("GET")
	api.HandleFunc("/teams/{teamID:[0-9]+}/roster", handler.GetTeamRoster).Methods("GET")
	api.HandleFunc("/teams/{teamID:[0-9]+}/schedule", handler.GetTeamSchedule).Methods("GET")

	// Players
	api.HandleFunc("/players", handler.ListPlayers).Methods("GET")
	api.HandleFunc("/players/search", handler.SearchPlayers).Methods("GET")
	api.HandleFunc("/players/{playerID:[0-9]+}", handler.GetPlayer).Methods("GET")

	// Games
	api.HandleFunc("/games", handler.GetGamesByDate).Methods("GET")
	api.HandleFunc("/games/{gameID:[0-9]+}", handler.GetGame).Methods("GET")

	// Backfill operations
	if deps.Backfill != nil {
		api.HandleFunc("/backfill", backfillHandler.HandleBackfillRequest).Methods("POST")
		api.HandleFunc("/backfill/status", backfillHandler.HandleBackfillStatus).Methods("GET")
	}

	return router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
