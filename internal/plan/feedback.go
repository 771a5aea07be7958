package plan

import (
	"log/slog"
	"math"

	"github.com/asocio/deskplan/internal/config"
	"github.com/asocio/deskplan/internal/mip"
	"github.com/samber/lo"
)

// Controller drives the iterative refinement loop: weekly schedule solve,
// parallel daily assignment solves, quality scoring, conflict diagnosis and
// cut injection, bounded by a maximum iteration count with a best-solution
// fallback.
type Controller struct {
	instance Instance
	cfg      config.Config
	logger   *slog.Logger

	profiles map[string]RiskProfile
	anchors  map[string]string

	schedule *ScheduleSolver
	daily    *DailyAssigner

	cuts []Cut
}

// NewController runs the risk and anchor pre-passes once; their outputs are
// read-only for every subsequent iteration.
func NewController(in Instance, cfg config.Config, solver mip.Solver, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	profiles := AnalyzeRisk(in)
	anchors := AssignAnchors(in, profiles)
	return &Controller{
		instance: in,
		cfg:      cfg,
		logger:   logger,
		profiles: profiles,
		anchors:  anchors,
		schedule: NewScheduleSolver(in, profiles, cfg, solver),
		daily:    NewDailyAssigner(in, anchors, cfg, solver),
	}
}

func (c *Controller) Profiles() map[string]RiskProfile { return c.profiles }
func (c *Controller) Anchors() map[string]string       { return c.anchors }
func (c *Controller) Cuts() []Cut                      { return append([]Cut(nil), c.cuts...) }

// Run executes the loop and returns the accepted solution, or the best
// fallback when the iteration budget runs out. The per-iteration stats are
// returned for diagnostics even on failure.
func (c *Controller) Run() (Solution, []IterationStats, error) {
	var stats []IterationStats
	var best *Solution

	for iteration := 1; iteration <= c.cfg.MaxIterations; iteration++ {
		schedule, err := c.schedule.Solve(c.cuts)
		if err != nil {
			return Solution{}, stats, err
		}

		scheduledDays := lo.Filter(c.instance.Days, func(day string, _ int) bool {
			return len(schedule.Attendance[day]) > 0
		})
		results := runKeyed(scheduledDays, poolSize(c.cfg.MaxWorkers), func(day string) DayResult {
			return c.daily.Solve(day, schedule.Attendance[day])
		})

		dayCosts := make(map[string]float64, len(scheduledDays))
		total := 0.0
		assignments := 0
		for _, day := range scheduledDays {
			result := results[day]
			if !result.Solved {
				dayCosts[day] = math.Inf(1)
				total = math.Inf(1)
				continue
			}
			cost := float64(IsolationCost(c.instance, result.Assignments))
			dayCosts[day] = cost
			total += cost
			assignments += len(result.Assignments)
		}

		threshold := c.cfg.FixedThreshold
		if c.cfg.DynamicThreshold {
			threshold = math.Floor(0.2 * float64(assignments))
		}
		c.logger.Info("iteration scored",
			slog.Int("iteration", iteration),
			slog.Float64("totalCost", total),
			slog.Float64("threshold", threshold),
			slog.Int("assignments", assignments),
		)

		if total <= threshold {
			solution := c.buildSolution(schedule, results, dayCosts, total, StatusAccepted, iteration)
			stats = append(stats, IterationStats{Iteration: iteration, DayCosts: dayCosts, TotalCost: total, Threshold: threshold})
			return solution, stats, nil
		}

		newCuts := 0
		for _, day := range scheduledDays {
			if dayCosts[day] <= c.cfg.DayThreshold {
				continue
			}
			core := c.diagnose(day, schedule.Attendance[day], dayCosts[day])
			if c.addCut(newCut(day, core)) {
				newCuts++
			}
		}
		stats = append(stats, IterationStats{Iteration: iteration, DayCosts: dayCosts, TotalCost: total, Threshold: threshold, NewCuts: newCuts})

		if !math.IsInf(total, 1) && (best == nil || total < best.TotalCost) {
			fallback := c.buildSolution(schedule, results, dayCosts, total, StatusFallback, iteration)
			best = &fallback
		}
	}

	if best == nil {
		return Solution{}, stats, ErrNoFeasibleSolution
	}
	c.logger.Info("iteration budget exhausted, returning best fallback",
		slog.Float64("totalCost", best.TotalCost),
		slog.Int("iteration", best.Iteration),
	)
	return *best, stats, nil
}

// diagnose finds the core conflict of a problematic day by leave-one-out
// search: each candidate's removal is re-solved in parallel, and a
// candidate is innocent when the day without them solves to a strictly
// lower isolation cost. The core is the attendee set minus the innocents;
// if everyone is individually innocent the conflict is collective and the
// whole set is kept, so the resulting cut still forces progress.
func (c *Controller) diagnose(day string, attendees []string, baseline float64) []string {
	innocent := runKeyed(attendees, poolSize(c.cfg.MaxWorkers), func(employee string) bool {
		result := c.daily.Solve(day, lo.Without(attendees, employee))
		if !result.Solved {
			return false
		}
		return float64(IsolationCost(c.instance, result.Assignments)) < baseline
	})

	core := lo.Filter(attendees, func(employee string, _ int) bool { return !innocent[employee] })
	if len(core) == 0 {
		core = attendees
	}
	c.logger.Info("conflict diagnosed",
		slog.String("day", day),
		slog.Int("attendees", len(attendees)),
		slog.Int("core", len(core)),
	)
	return core
}

// addCut appends a cut unless the exact (day, employee set) pair is already
// present. Cuts are never retracted.
func (c *Controller) addCut(cut Cut) bool {
	if lo.SomeBy(c.cuts, cut.equals) {
		return false
	}
	c.cuts = append(c.cuts, cut)
	return true
}

func (c *Controller) buildSolution(
	schedule WeeklySchedule,
	results map[string]DayResult,
	dayCosts map[string]float64,
	total float64,
	status string,
	iteration int,
) Solution {
	solution := Solution{
		MeetingDays: schedule.MeetingDays,
		Schedule:    schedule.Attendance,
		Anchors:     c.anchors,
		DayCosts:    dayCosts,
		TotalCost:   total,
		Status:      status,
		Iteration:   iteration,
	}
	for _, day := range c.instance.Days {
		result, ok := results[day]
		if !ok || !result.Solved {
			continue
		}
		solution.Assignments = append(solution.Assignments, result.Assignments...)
	}
	return solution
}
