package plan

import (
	"io"
	"log/slog"
	"testing"

	"github.com/asocio/deskplan/internal/config"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullWeek() []string { return []string{"Mon", "Tue", "Wed", "Thu", "Fri"} }

// Four teammates, two zones of two desks, shared preferences: the very
// first iteration seats pairs in zones and is accepted with zero cost.
func convergentInstance() Instance {
	all := []string{"D0", "D1", "D2", "D3"}
	return Instance{
		Employees: []string{"E0", "E1", "E2", "E3"},
		Desks:     all,
		Days:      fullWeek(),
		Groups:    []string{"G0"},
		Zones:     []string{"Z0", "Z1"},
		PreferredDays: map[string][]string{
			"E0": {"Mon", "Tue"}, "E1": {"Mon", "Tue"},
			"E2": {"Mon", "Tue"}, "E3": {"Mon", "Tue"},
		},
		CompatibleDesks: map[string][]string{
			"E0": all, "E1": all, "E2": all, "E3": all,
		},
		GroupMembers: map[string][]string{"G0": {"E0", "E1", "E2", "E3"}},
		ZoneDesks:    map[string][]string{"Z0": {"D0", "D1"}, "Z1": {"D2", "D3"}},
	}
}

// Three teammates but only two desks in Z0 and one in Z1: any day all three
// attend costs one isolation incident, so a zero threshold can never be met.
func stubbornInstance() Instance {
	all := []string{"D0", "D1", "D2"}
	return Instance{
		Employees: []string{"E0", "E1", "E2"},
		Desks:     all,
		Days:      fullWeek(),
		Groups:    []string{"G0"},
		Zones:     []string{"Z0", "Z1"},
		PreferredDays: map[string][]string{
			"E0": {"Mon", "Tue"}, "E1": {"Mon", "Tue"}, "E2": {"Mon", "Tue"},
		},
		CompatibleDesks: map[string][]string{
			"E0": all, "E1": all, "E2": all,
		},
		GroupMembers: map[string][]string{"G0": {"E0", "E1", "E2"}},
		ZoneDesks:    map[string][]string{"Z0": {"D0", "D1"}, "Z1": {"D2"}},
	}
}

func assertSolutionInvariants(t *testing.T, in Instance, solution Solution) {
	t.Helper()

	// Every employee attends 2-3 days.
	for _, employee := range in.Employees {
		attended := lo.CountBy(in.Days, func(day string) bool {
			return lo.Contains(solution.Schedule[day], employee)
		})
		assert.GreaterOrEqual(t, attended, 2, "employee %s", employee)
		assert.LessOrEqual(t, attended, 3, "employee %s", employee)
	}

	// Every group fully attends its meeting day.
	for group, day := range solution.MeetingDays {
		for _, member := range in.GroupMembers[group] {
			assert.Contains(t, solution.Schedule[day], member, "group %s on %s", group, day)
		}
	}

	// No desk double-booked; every pairing compatible; every attendee seated.
	byDay := solution.AssignmentsByDay(in.Days)
	for _, day := range in.Days {
		desks := lo.Map(byDay[day], func(a Assignment, _ int) string { return a.Desk })
		assert.Len(t, lo.Uniq(desks), len(desks), "double booking on %s", day)
		assert.Len(t, byDay[day], len(solution.Schedule[day]), "unseated attendees on %s", day)
		for _, a := range byDay[day] {
			assert.Contains(t, in.CompatibleDesks[a.Employee], a.Desk)
		}
	}
}

func TestControllerAcceptsCompliantWeek(t *testing.T) {
	in := convergentInstance()
	controller := NewController(in, config.Default(), testSolver(), quietLogger())

	solution, stats, err := controller.Run()
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, solution.Status)
	assert.Zero(t, solution.TotalCost)
	assert.Equal(t, 1, solution.Iteration)
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].NewCuts)
	assertSolutionInvariants(t, in, solution)
}

func TestControllerFallsBackWhenThresholdUnreachable(t *testing.T) {
	in := stubbornInstance()
	cfg := config.Default()
	cfg.MaxIterations = 3
	cfg.DynamicThreshold = false
	cfg.FixedThreshold = 0
	cfg.DayThreshold = 0
	controller := NewController(in, cfg, testSolver(), quietLogger())

	solution, stats, err := controller.Run()
	require.NoError(t, err)

	assert.Equal(t, StatusFallback, solution.Status)
	assert.Equal(t, 1.0, solution.TotalCost, "best week has exactly the unavoidable meeting-day incident")
	assert.Len(t, stats, 3)
	assertSolutionInvariants(t, in, solution)

	// Every rejected iteration added at least one cut, and cuts only grew.
	cuts := controller.Cuts()
	assert.GreaterOrEqual(t, len(cuts), 3)
	for _, s := range stats {
		assert.GreaterOrEqual(t, s.NewCuts, 1, "iteration %d", s.Iteration)
	}
	// Cut sizes never exceed the day's attendee count (the whole group here).
	for _, cut := range cuts {
		assert.LessOrEqual(t, len(cut.Employees), len(in.Employees))
	}
}

func TestControllerScheduleInfeasibleAborts(t *testing.T) {
	in := Instance{
		Employees:       []string{"E0", "E1", "E2"},
		Desks:           []string{"D0"},
		Days:            fullWeek(),
		CompatibleDesks: map[string][]string{"E0": {"D0"}, "E1": {"D0"}, "E2": {"D0"}},
	}
	controller := NewController(in, config.Default(), testSolver(), quietLogger())

	_, _, err := controller.Run()
	require.ErrorIs(t, err, ErrScheduleInfeasible)
}

func TestControllerNoFeasibleSolution(t *testing.T) {
	// E0 can be scheduled but never seated: every day is unsolvable, so no
	// iteration yields a returnable week.
	in := Instance{
		Employees:       []string{"E0"},
		Desks:           []string{"D0"},
		Days:            fullWeek(),
		CompatibleDesks: map[string][]string{},
	}
	cfg := config.Default()
	cfg.MaxIterations = 2
	controller := NewController(in, cfg, testSolver(), quietLogger())

	_, stats, err := controller.Run()
	require.ErrorIs(t, err, ErrNoFeasibleSolution)
	assert.Len(t, stats, 2)
}

func TestControllerCutDeduplication(t *testing.T) {
	controller := NewController(convergentInstance(), config.Default(), testSolver(), quietLogger())

	require.True(t, controller.addCut(newCut("Mon", []string{"E1", "E0"})))
	assert.False(t, controller.addCut(newCut("Mon", []string{"E0", "E1"})), "same set in another order is the same cut")
	assert.True(t, controller.addCut(newCut("Tue", []string{"E0", "E1"})), "same set on another day is a new cut")
	assert.True(t, controller.addCut(newCut("Mon", []string{"E0"})), "subset is a new cut")
	assert.Len(t, controller.Cuts(), 3)
}

func TestControllerDiagnoseFallsBackToFullSet(t *testing.T) {
	// On the stubborn instance the meeting day's baseline cost of 1 drops to
	// 0 after removing any single teammate, so everyone is innocent and the
	// core conflict degrades to the entire attendee set.
	in := stubbornInstance()
	controller := NewController(in, config.Default(), testSolver(), quietLogger())

	core := controller.diagnose("Mon", []string{"E0", "E1", "E2"}, 1)
	assert.ElementsMatch(t, []string{"E0", "E1", "E2"}, core)
}

func TestControllerPreComputesRiskAndAnchors(t *testing.T) {
	in := convergentInstance()
	controller := NewController(in, config.Default(), testSolver(), quietLogger())

	assert.Len(t, controller.Profiles(), len(in.Employees))
	assert.NotEmpty(t, controller.Anchors())
}
