package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OldStager01/agro-advisor/internal/logger"
	"github.com/OldStager01/agro-advisor/internal/metrics"
	"github.com/OldStager01/agro-advisor/pkg/models"
)

// Runner executes one analysis. Satisfied by the orchestrator.
type Runner interface {
	RunAnalysis(ctx context.Context, req *models.AnalysisRequest) (*models.Advisory, error)
}

type Config struct {
	Clock          clockwork.Clock
	Interval       time.Duration
	ColdStartDelay time.Duration
	ItemDelay      time.Duration
	Locations      []string
	HorizonDays    int
	Runner         Runner
	Metrics        *metrics.Metrics
}

// LastRun captures the outcome of the most recent completed cycle
type LastRun struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

// Scheduler periodically runs analyses for a fixed list of locations.
// A tick that arrives while the previous cycle is still in flight is
// skipped, never queued.
type Scheduler struct {
	clock          clockwork.Clock
	interval       time.Duration
	coldStartDelay time.Duration
	itemDelay      time.Duration
	locations      []string
	horizonDays    int
	runner         Runner
	metrics        *metrics.Metrics

	inProgress bool
	lastRun    *LastRun
	running    bool
	mu         sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 7
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		clock:          cfg.Clock,
		interval:       cfg.Interval,
		coldStartDelay: cfg.ColdStartDelay,
		itemDelay:      cfg.ItemDelay,
		locations:      cfg.Locations,
		horizonDays:    cfg.HorizonDays,
		runner:         cfg.Runner,
		metrics:        cfg.Metrics,
		ctx:            ctx,
		cancel:         cancel,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()

	logger.Infof("Scheduler started: %d locations every %s", len(s.locations), s.interval)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	logger.Info("Scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Cold start delay lets the provider and database settle before
	// the first cycle.
	if s.coldStartDelay > 0 {
		select {
		case <-s.ctx.Done():
			return
		case <-s.clock.After(s.coldStartDelay):
		}
	}

	s.tick()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.Chan():
			s.tick()
		}
	}
}

// tick starts a cycle unless one is already running
func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		logger.Warn("Scheduler cycle still in progress, skipping tick")
		if s.metrics != nil {
			s.metrics.SchedulerSkips.Inc()
		}
		return
	}
	s.inProgress = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runCycle()

		s.mu.Lock()
		s.inProgress = false
		s.mu.Unlock()
	}()
}

// runCycle analyzes every configured location in order. A failed
// location is logged and counted; the cycle always continues to the
// next one.
func (s *Scheduler) runCycle() {
	run := LastRun{StartedAt: s.clock.Now()}

	if s.metrics != nil {
		s.metrics.SchedulerRuns.Inc()
		s.metrics.SchedulerRunning.Set(1)
		defer s.metrics.SchedulerRunning.Set(0)
	}

	for i, locationID := range s.locations {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if i > 0 && s.itemDelay > 0 {
			select {
			case <-s.ctx.Done():
				return
			case <-s.clock.After(s.itemDelay):
			}
		}

		req := &models.AnalysisRequest{
			LocationID:  locationID,
			HorizonDays: s.horizonDays,
		}

		if _, err := s.runner.RunAnalysis(s.ctx, req); err != nil {
			logger.WithLocation(locationID).Errorf("Scheduled analysis failed: %v", err)
			run.Failed++
			continue
		}
		run.Succeeded++
	}

	run.FinishedAt = s.clock.Now()

	s.mu.Lock()
	s.lastRun = &run
	s.mu.Unlock()

	logger.Infof("Scheduler cycle complete: %d succeeded, %d failed", run.Succeeded, run.Failed)
}

// LastRun returns the most recent completed cycle, or false before
// the first one finishes.
func (s *Scheduler) LastRun() (LastRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return LastRun{}, false
	}
	return *s.lastRun, true
}

func (s *Scheduler) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgress
}

func (s *Scheduler) Locations() []string {
	out := make([]string, len(s.locations))
	copy(out, s.locations)
	return out
}
