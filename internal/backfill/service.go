package backfill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/nbastats/internal/season"
	"github.com/fortuna/nbastats/internal/store"
)

// ErrEmptyRange is returned when a season range yields no seasons
var ErrEmptyRange = errors.New("season range is empty")

// Request represents a backfill invocation request.
type Request struct {
	Season  string
	From    string
	To      string
	Step    int
	GameIDs []string
	DryRun  bool
}

// DeriveType infers the job type based on populated fields.
func (r Request) DeriveType() (JobType, error) {
	if len(r.GameIDs) > 0 {
		return JobTypeGame, nil
	}
	if r.From != "" || r.To != "" {
		return JobTypeSeasonRange, nil
	}
	if r.Season != "" {
		return JobTypeSeason, nil
	}
	return "", fmt.Errorf("unable to determine job type from request")
}

// Seasons resolves the request into canonical season labels. Ranges follow
// season.SeasonRange and a zero Step means 1.
func (r Request) Seasons() ([]string, error) {
	jobType, err := r.DeriveType()
	if err != nil {
		return nil, err
	}

	switch jobType {
	case JobTypeSeason:
		label, err := season.Normalize(r.Season)
		if err != nil {
			return nil, err
		}
		return []string{label}, nil
	case JobTypeSeasonRange:
		if r.From == "" || r.To == "" {
			return nil, fmt.Errorf("season range requires from and to")
		}
		step := r.Step
		if step == 0 {
			step = 1
		}
		labels, err := season.Seasons(season.FromString(r.From), season.FromString(r.To), step)
		if err != nil {
			return nil, err
		}
		if len(labels) == 0 {
			return nil, fmt.Errorf("%w: %s to %s step %d", ErrEmptyRange, r.From, r.To, step)
		}
		return labels, nil
	case JobTypeGame:
		return SeasonsForGames(r.GameIDs)
	}
	return nil, fmt.Errorf("unknown job type %s", jobType)
}

// Service coordinates job persistence, execution, and status reporting.
type Service struct {
	repo   *Repository
	runner *Runner

	historyLimit int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewService constructs a Service. Call Start to launch workers.
func NewService(db *store.Database, runner *Runner, logger *log.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	if logger == nil {
		logger = log.New(log.Writer(), "[backfill] ", log.LstdFlags)
	}

	return &Service{
		repo:         NewRepository(db),
		runner:       runner,
		historyLimit: 10,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
	}
}

// Start launches the background worker loop.
func (s *Service) Start() {
	if err := s.repo.ResetStuckJobs(s.ctx); err != nil {
		s.logger.Printf("failed to reset jobs: %v", err)
	}

	s.wg.Add(1)
	go s.worker()
}

// Shutdown stops workers and waits for completion.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue creates a new job from the provided request.
func (s *Service) Enqueue(ctx context.Context, req Request) (*Job, error) {
	job, err := NewJob(req)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.CreateJob(ctx, job)
	if err != nil {
		return nil, err
	}

	_ = s.repo.AppendEvent(ctx, stored.JobID, "queued",
		fmt.Sprintf("Job queued for %s", strings.Join(stored.Seasons, ", ")), nil, nil)

	return stored, nil
}

// NewJob validates req and builds the queued job row for it.
func NewJob(req Request) (*Job, error) {
	jobType, err := req.DeriveType()
	if err != nil {
		return nil, err
	}
	seasons, err := req.Seasons()
	if err != nil {
		return nil, err
	}

	job := &Job{
		JobType:       jobType,
		Seasons:       seasons,
		Status:        JobStatusQueued,
		StatusMessage: sql.NullString{String: "Queued", Valid: true},
		ProgressTotal: len(seasons),
	}
	if jobType == JobTypeGame {
		job.GameIDs = req.GameIDs
	}
	if req.DryRun {
		job.DryRun = true
		job.StatusMessage.String = "Queued (dry run)"
	}
	return job, nil
}

// GetStatus returns the currently running job plus recent history.
func (s *Service) GetStatus(ctx context.Context) (*StatusSummary, error) {
	active, err := s.repo.GetActiveJob(ctx)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListRecentJobs(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}

	return &StatusSummary{
		ActiveJob: active,
		History:   history,
	}, nil
}

func (s *Service) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			job, err := s.repo.MarkNextJobRunning(s.ctx)
			if err != nil {
				s.logger.Printf("claim job error: %v", err)
				time.Sleep(time.Second)
				continue
			}
			if job == nil {
				select {
				case <-s.ctx.Done():
					return
				case <-ticker.C:
					continue
				}
			}

			s.executeJob(job)
		}
	}
}

func (s *Service) executeJob(job *Job) {
	spec, err := BuildSpec(job)
	if err != nil {
		s.logger.Printf("invalid job spec %s: %v", job.JobID, err)
		_ = s.repo.UpdateStatus(s.ctx, job.JobID, JobStatusFailed, "Invalid job specification", err)
		return
	}

	reporter := &jobReporter{
		ctx:   s.ctx,
		repo:  s.repo,
		jobID: job.JobID,
		total: len(spec.Seasons),
	}

	if err := s.runner.Run(s.ctx, spec, reporter); err != nil {
		s.logger.Printf("job %s failed: %v", job.JobID, err)
		_ = s.repo.UpdateStatus(s.ctx, job.JobID, JobStatusFailed, "Job failed", err)
		return
	}

	s.logger.Printf("✓ job %s completed (%s)", job.JobID, strings.Join(spec.Seasons, ", "))
	_ = s.repo.UpdateStatus(s.ctx, job.JobID, JobStatusCompleted, "Job completed", nil)
}

// BuildSpec turns a stored job back into a runner spec.
func BuildSpec(job *Job) (JobSpec, error) {
	spec := JobSpec{
		Type:    job.JobType,
		Seasons: job.Seasons,
		DryRun:  job.DryRun,
	}

	switch job.JobType {
	case JobTypeGame:
		if len(job.GameIDs) == 0 {
			return spec, fmt.Errorf("game job missing game_ids")
		}
		spec.GameIDs = job.GameIDs
	case JobTypeSeason, JobTypeSeasonRange:
		if len(job.Seasons) == 0 {
			return spec, fmt.Errorf("job missing seasons")
		}
	default:
		return spec, fmt.Errorf("unknown job type %s", job.JobType)
	}

	return spec, nil
}

type jobReporter struct {
	ctx   context.Context
	repo  *Repository
	jobID string
	total int
}

func (r *jobReporter) OnJobStart(spec JobSpec) {
	if r.total == 0 {
		r.total = len(spec.Seasons)
	}
	_ = r.repo.UpdateProgress(r.ctx, r.jobID, 0, r.total, "Job starting")
}

func (r *jobReporter) OnSeasonStart(label string, index int, total int) {
	msg := fmt.Sprintf("Processing season %s (%d/%d)", label, index+1, total)
	_ = r.repo.UpdateProgress(r.ctx, r.jobID, index, valueOr(total, r.total), msg)
}

func (r *jobReporter) OnGameProcessed(gameID string) {
	_ = r.repo.AppendEvent(r.ctx, r.jobID, "game", fmt.Sprintf("Game %s processed", gameID), nil, nil)
}

func (r *jobReporter) OnProgress(message string, current int, total int) {
	_ = r.repo.UpdateProgress(r.ctx, r.jobID, current, valueOr(total, r.total), message)
}

func (r *jobReporter) OnJobComplete() {
	_ = r.repo.UpdateProgress(r.ctx, r.jobID, r.total, r.total, "Job complete")
}

func (r *jobReporter) OnJobError(err error) {
	_ = r.repo.AppendEvent(r.ctx, r.jobID, "error", err.Error(), nil, nil)
}

func valueOr(val, fallback int) int {
	if val > 0 {
		return val
	}
	return fallback
}
