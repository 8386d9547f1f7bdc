// Package simulator projects season outcomes by playing many independent,
// seeded copies of the same league concurrently.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/club-sim/internal/club"
	"github.com/stitts-dev/club-sim/internal/league"
	"github.com/stitts-dev/club-sim/internal/random"
)

// ProgressUpdate reports how far a projection has got
type ProgressUpdate struct {
	Type        string    `json:"type"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message"`
	CurrentStep string    `json:"current_step"`
	TotalSteps  int       `json:"total_steps"`
	Timestamp   time.Time `json:"timestamp"`
}

// Config describes the league to project
type Config struct {
	Division  string
	Clubs     []league.ClubSpec
	Rivalries []league.Rivalry
	UserClub  string
	Cadence   int
	Runs      int
	Workers   int
	// BaseSeed seeds run i with BaseSeed+i
	BaseSeed int64
}

// SeasonRun is the outcome of one simulated season
type SeasonRun struct {
	Run       int
	Positions map[string]int
	Points    map[string]int
	Trust     float64
	Ultimatum bool
	Dismissal bool
	Err       error
}

// ClubProjection summarises one club across every run
type ClubProjection struct {
	Club             string  `json:"club"`
	TitleOdds        float64 `json:"title_odds"`
	TopFourOdds      float64 `json:"top_four_odds"`
	MeanPoints       float64 `json:"mean_points"`
	StdDevPoints     float64 `json:"stddev_points"`
	PointsP10        float64 `json:"points_p10"`
	PointsMedian     float64 `json:"points_median"`
	PointsP90        float64 `json:"points_p90"`
	MeanPosition     float64 `json:"mean_position"`
	StdDevPosition   float64 `json:"stddev_position"`
	ExpectedPosition int     `json:"expected_position"`
}

// UserProjection summarises the managed club's board dynamics
type UserProjection struct {
	Club          string  `json:"club"`
	MeanTrust     float64 `json:"mean_trust"`
	StdDevTrust   float64 `json:"stddev_trust"`
	UltimatumRate float64 `json:"ultimatum_rate"`
	DismissalRate float64 `json:"dismissal_rate"`
}

// ProjectionResult is the aggregate of all runs
type ProjectionResult struct {
	Runs          int              `json:"runs"`
	Failed        int              `json:"failed"`
	Clubs         []ClubProjection `json:"clubs"`
	User          UserProjection   `json:"user"`
	ExecutionTime time.Duration    `json:"execution_time"`
}

// ProjectionSimulator runs Monte Carlo season projections
type ProjectionSimulator struct {
	cfg    Config
	logger *logrus.Logger
	// seasons log at debug through this logger
	seasonLogger *logrus.Logger
}

// NewProjectionSimulator validates the configuration
func NewProjectionSimulator(cfg Config, logger *logrus.Logger) (*ProjectionSimulator, error) {
	if len(cfg.Clubs) < 2 {
		return nil, fmt.Errorf("projection needs at least two clubs")
	}
	if cfg.Runs <= 0 {
		return nil, fmt.Errorf("simulation count must be positive")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Workers > cfg.Runs {
		cfg.Workers = cfg.Runs
	}
	if cfg.Division == "" {
		cfg.Division = league.DefaultDivision
	}
	if cfg.UserClub == "" {
		cfg.UserClub = cfg.Clubs[0].Name
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	if logger.IsLevelEnabled(logrus.TraceLevel) {
		quiet = logger
	}

	return &ProjectionSimulator{cfg: cfg, logger: logger, seasonLogger: quiet}, nil
}

// Run plays every season and aggregates the results. progressChan may be nil;
// when set it must be drained by the caller.
func (p *ProjectionSimulator) Run(ctx context.Context, progressChan chan<- ProgressUpdate) (*ProjectionResult, error) {
	startTime := time.Now()
	total := p.cfg.Runs
	log := p.logger.WithFields(logrus.Fields{
		"runs":    total,
		"workers": p.cfg.Workers,
		"user":    p.cfg.UserClub,
	})
	log.Info("Starting season projection")

	send(progressChan, ProgressUpdate{
		Type:        "projection",
		Progress:    0,
		Message:     "Initializing projection...",
		CurrentStep: "initialization",
		TotalSteps:  total,
		Timestamp:   time.Now(),
	})

	runsChan := make(chan int, total)
	resultsChan := make(chan SeasonRun, total)

	var wg sync.WaitGroup
	for w := 0; w < p.cfg.Workers; w++ {
		wg.Add(1)
		go p.seasonWorker(ctx, runsChan, resultsChan, &wg)
	}

	for i := 0; i < total; i++ {
		runsChan <- i
	}
	close(runsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	runs := make([]SeasonRun, 0, total)
	for r := range resultsChan {
		runs = append(runs, r)
		if progressChan != nil && (len(runs)%progressEvery(total) == 0 || len(runs) == total) {
			send(progressChan, ProgressUpdate{
				Type:        "projection",
				Progress:    float64(len(runs)) / float64(total),
				Message:     fmt.Sprintf("Simulated season %d/%d", len(runs), total),
				CurrentStep: "simulation",
				TotalSteps:  total,
				Timestamp:   time.Now(),
			})
		}
	}

	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("Projection cancelled")
		return nil, err
	}

	// results arrive in completion order
	sort.Slice(runs, func(i, j int) bool { return runs[i].Run < runs[j].Run })

	result, err := p.aggregate(runs)
	if err != nil {
		return nil, err
	}
	result.ExecutionTime = time.Since(startTime)

	send(progressChan, ProgressUpdate{
		Type:        "projection",
		Progress:    1,
		Message:     "Projection completed",
		CurrentStep: "completed",
		TotalSteps:  total,
		Timestamp:   time.Now(),
	})

	log.WithFields(logrus.Fields{
		"failed":         result.Failed,
		"execution_time": result.ExecutionTime,
	}).Info("Season projection completed")
	return result, nil
}

func (p *ProjectionSimulator) seasonWorker(ctx context.Context, runsChan <-chan int, resultsChan chan<- SeasonRun, wg *sync.WaitGroup) {
	defer wg.Done()

	for run := range runsChan {
		if ctx.Err() != nil {
			// drain so the producer never blocks
			continue
		}
		resultsChan <- p.playSeason(ctx, run)
	}
}

func (p *ProjectionSimulator) playSeason(ctx context.Context, run int) SeasonRun {
	out := SeasonRun{Run: run}
	rng := random.New(p.cfg.BaseSeed + int64(run))

	season, err := league.NewSeasonFromSpecs(p.cfg.Division, p.cfg.Clubs, p.cfg.Rivalries, p.cfg.UserClub, p.cfg.Cadence, rng, p.seasonLogger)
	if err != nil {
		out.Err = err
		return out
	}
	if _, err := season.PlayAll(ctx); err != nil {
		out.Err = err
		return out
	}

	standings := season.League.Standings()
	out.Positions = make(map[string]int, len(standings))
	out.Points = make(map[string]int, len(standings))
	for i, e := range standings {
		out.Positions[e.Club] = i + 1
		out.Points[e.Club] = e.Points
	}

	user := season.UserClub
	out.Trust = user.BoardTrust
	for _, e := range user.Events() {
		switch e.Kind {
		case club.EventUltimatumIssued:
			out.Ultimatum = true
		case club.EventDismissalConsidered, club.EventUltimatumFailed:
			out.Dismissal = true
		}
	}
	return out
}

func (p *ProjectionSimulator) aggregate(runs []SeasonRun) (*ProjectionResult, error) {
	result := &ProjectionResult{Runs: len(runs)}

	var ok []SeasonRun
	for _, r := range runs {
		if r.Err != nil {
			result.Failed++
			p.logger.WithError(r.Err).WithField("run", r.Run).Warn("Projection run failed")
			continue
		}
		ok = append(ok, r)
	}
	if len(ok) == 0 {
		return nil, fmt.Errorf("all %d projection runs failed", len(runs))
	}
	n := float64(len(ok))

	for _, spec := range p.cfg.Clubs {
		points := make([]float64, 0, len(ok))
		positions := make([]float64, 0, len(ok))
		titles, topFour := 0, 0
		for _, r := range ok {
			points = append(points, float64(r.Points[spec.Name]))
			pos := r.Positions[spec.Name]
			positions = append(positions, float64(pos))
			if pos == 1 {
				titles++
			}
			if pos <= 4 {
				topFour++
			}
		}

		meanPos, sdPos := meanStdDev(positions)
		meanPts, sdPts := meanStdDev(points)
		sort.Float64s(points)
		sort.Float64s(positions)

		result.Clubs = append(result.Clubs, ClubProjection{
			Club:             spec.Name,
			TitleOdds:        float64(titles) / n,
			TopFourOdds:      float64(topFour) / n,
			MeanPoints:       meanPts,
			StdDevPoints:     sdPts,
			PointsP10:        stat.Quantile(0.10, stat.Empirical, points, nil),
			PointsMedian:     stat.Quantile(0.50, stat.Empirical, points, nil),
			PointsP90:        stat.Quantile(0.90, stat.Empirical, points, nil),
			MeanPosition:     meanPos,
			StdDevPosition:   sdPos,
			ExpectedPosition: int(stat.Quantile(0.50, stat.Empirical, positions, nil)),
		})
	}

	sort.SliceStable(result.Clubs, func(i, j int) bool {
		return result.Clubs[i].MeanPosition < result.Clubs[j].MeanPosition
	})

	trust := make([]float64, 0, len(ok))
	ultimatums, dismissals := 0, 0
	for _, r := range ok {
		trust = append(trust, r.Trust)
		if r.Ultimatum {
			ultimatums++
		}
		if r.Dismissal {
			dismissals++
		}
	}
	meanTrust, sdTrust := meanStdDev(trust)
	result.User = UserProjection{
		Club:          p.cfg.UserClub,
		MeanTrust:     meanTrust,
		StdDevTrust:   sdTrust,
		UltimatumRate: float64(ultimatums) / n,
		DismissalRate: float64(dismissals) / n,
	}
	return result, nil
}

// meanStdDev returns a zero deviation for a single sample instead of NaN
func meanStdDev(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}

func progressEvery(total int) int {
	if total < 20 {
		return 1
	}
	return total / 20
}

func send(ch chan<- ProgressUpdate, u ProgressUpdate) {
	if ch != nil {
		ch <- u
	}
}
