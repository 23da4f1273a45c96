package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang-market-alert/internal/entity"
	"golang-market-alert/internal/monitor/repository"
	"golang-market-alert/internal/monitor/strategy"
	"golang-market-alert/pkg/logger"
	"golang-market-alert/pkg/telegram"
	"golang-market-alert/pkg/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

var (
	// ErrJobNotFound is returned when no job has the requested name.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobRunning is returned when a job is triggered while its previous run is in progress.
	ErrJobRunning = errors.New("job is already running")
)

// SchedulerService runs configured jobs on their cron schedules.
type SchedulerService interface {
	Start(ctx context.Context)
	ProcessJobs(ctx context.Context)
	RunJob(ctx context.Context, name string, params map[string]any) (*entity.JobExecution, error)
	Jobs() []JobStatus
	Wait()
}

// JobStatus describes a scheduled job.
type JobStatus struct {
	Name          string         `json:"name"`
	Type          entity.JobType `json:"type"`
	Schedule      string         `json:"schedule"`
	Enabled       bool           `json:"enabled"`
	Running       bool           `json:"running"`
	NextExecution *time.Time     `json:"next_execution,omitempty"`
	LastExecution *time.Time     `json:"last_execution,omitempty"`
}

type scheduledJob struct {
	job      entity.Job
	schedule cron.Schedule
	next     time.Time
	last     time.Time
	running  bool
}

type schedulerService struct {
	mu              sync.Mutex
	wg              sync.WaitGroup
	jobs            map[string]*scheduledJob
	strategies      map[entity.JobType]strategy.JobExecutionStrategy
	results         repository.ResultRepository
	notifier        telegram.Notifier
	logger          *logger.Logger
	pollingInterval time.Duration
	location        *time.Location
	now             func() time.Time
}

// Option customizes the scheduler.
type Option func(*schedulerService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *schedulerService) { s.now = now }
}

// NewSchedulerService creates a scheduler for jobs. Disabled jobs can still be run with RunJob.
func NewSchedulerService(
	jobs []entity.Job,
	strategies []strategy.JobExecutionStrategy,
	results repository.ResultRepository,
	notifier telegram.Notifier,
	log *logger.Logger,
	pollingInterval time.Duration,
	location *time.Location,
	opts ...Option,
) (SchedulerService, error) {
	if pollingInterval <= 0 {
		pollingInterval = 30 * time.Second
	}
	if location == nil {
		location = time.UTC
	}
	s := &schedulerService{
		jobs:            make(map[string]*scheduledJob, len(jobs)),
		strategies:      make(map[entity.JobType]strategy.JobExecutionStrategy, len(strategies)),
		results:         results,
		notifier:        notifier,
		logger:          log,
		pollingInterval: pollingInterval,
		location:        location,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, st := range strategies {
		s.strategies[st.GetType()] = st
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	now := s.now().In(location)
	for _, job := range jobs {
		if _, ok := s.strategies[job.Type]; !ok {
			return nil, fmt.Errorf("job %q: no strategy for type %q", job.Name, job.Type)
		}
		sj := &scheduledJob{job: job}
		if job.Enabled {
			schedule, err := parser.Parse(job.Schedule)
			if err != nil {
				return nil, fmt.Errorf("job %q: invalid schedule %q: %w", job.Name, job.Schedule, err)
			}
			sj.schedule = schedule
			sj.next = schedule.Next(now)
		}
		s.jobs[job.Name] = sj
	}
	return s, nil
}

// Start begins the periodic job processing loop.
func (s *schedulerService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler service stopping")
			return
		case <-ticker.C:
			s.ProcessJobs(ctx)
		}
	}
}

// ProcessJobs starts every due job that is not already running.
func (s *schedulerService) ProcessJobs(ctx context.Context) {
	now := s.now().In(s.location)

	s.mu.Lock()
	var due []*scheduledJob
	for _, sj := range s.jobs {
		if sj.schedule == nil || sj.running || now.Before(sj.next) {
			continue
		}
		sj.running = true
		sj.last = now
		sj.next = sj.schedule.Next(now)
		due = append(due, sj)
	}
	s.mu.Unlock()

	for _, sj := range due {
		job := sj.job
		s.wg.Add(1)
		utils.GoSafe(s.logger, func() {
			defer s.wg.Done()
			defer s.finish(job.Name)
			_, _ = s.execute(ctx, job)
		})
	}
}

// RunJob runs the named job now and waits for it. params, when set, replace the job's params.
func (s *schedulerService) RunJob(ctx context.Context, name string, params map[string]any) (*entity.JobExecution, error) {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if sj.running {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	sj.running = true
	sj.last = s.now().In(s.location)
	job := sj.job
	s.mu.Unlock()
	defer s.finish(name)

	if params != nil {
		job.Params = params
		job.Payload = nil
	}
	return s.execute(ctx, job)
}

// Jobs lists the configured jobs sorted by name.
func (s *schedulerService) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, sj := range s.jobs {
		st := JobStatus{
			Name:     sj.job.Name,
			Type:     sj.job.Type,
			Schedule: sj.job.Schedule,
			Enabled:  sj.job.Enabled,
			Running:  sj.running,
		}
		if !sj.next.IsZero() {
			st.NextExecution = utils.ToPointer(sj.next)
		}
		if !sj.last.IsZero() {
			st.LastExecution = utils.ToPointer(sj.last)
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Wait blocks until every job started by ProcessJobs has returned.
func (s *schedulerService) Wait() {
	s.wg.Wait()
}

func (s *schedulerService) finish(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sj, ok := s.jobs[name]; ok {
		sj.running = false
	}
}

func (s *schedulerService) execute(ctx context.Context, job entity.Job) (*entity.JobExecution, error) {
	exec := &entity.JobExecution{
		RunID:     uuid.NewString(),
		JobName:   job.Name,
		JobType:   job.Type,
		Status:    entity.StatusRunning,
		StartedAt: s.now().In(s.location),
	}
	ctx = context.WithValue(ctx, logger.RunIDKey, exec.RunID)
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	s.logger.InfoContext(ctx, "Job started", logger.StringField("job", job.Name), logger.StringField("type", string(job.Type)))

	output, err := s.strategies[job.Type].Execute(ctx, &job)
	exec.CompletedAt = s.now().In(s.location)
	if output != "" {
		if json.Valid([]byte(output)) {
			exec.Result = json.RawMessage(output)
		} else {
			exec.Result, _ = json.Marshal(output)
		}
	}

	switch {
	case err == nil:
		exec.Status = entity.StatusCompleted
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		exec.Status = entity.StatusTimeout
		exec.Error = err.Error()
	default:
		exec.Status = entity.StatusFailed
		exec.Error = err.Error()
	}

	s.logger.InfoContext(ctx, "Job finished",
		logger.StringField("job", job.Name),
		logger.StringField("status", string(exec.Status)),
		logger.DurationField("duration", exec.CompletedAt.Sub(exec.StartedAt)))

	if path, saveErr := s.results.Save(context.WithoutCancel(ctx), exec); saveErr != nil {
		s.logger.ErrorContext(ctx, "Failed to save job result", logger.StringField("job", job.Name), logger.ErrorField(saveErr))
	} else {
		s.logger.DebugContext(ctx, "Job result saved", logger.StringField("path", path))
	}

	if err != nil {
		if notifyErr := s.notifier.SendMessage(telegram.FormatError(job.Name, err, exec.CompletedAt)); notifyErr != nil {
			s.logger.WarnContext(ctx, "Failed to send job failure alert", logger.ErrorField(notifyErr))
		}
	}
	return exec, err
}
