package plan

import (
	"fmt"

	"github.com/asocio/deskplan/internal/config"
	"github.com/asocio/deskplan/internal/mip"
	"github.com/samber/lo"
)

// ScheduleSolver builds and solves the weekly attendance model: which
// employees come in on which days, and when each group holds its meeting.
type ScheduleSolver struct {
	instance Instance
	profiles map[string]RiskProfile
	cfg      config.Config
	solver   mip.Solver
}

func NewScheduleSolver(in Instance, profiles map[string]RiskProfile, cfg config.Config, solver mip.Solver) *ScheduleSolver {
	return &ScheduleSolver{instance: in, profiles: profiles, cfg: cfg, solver: solver}
}

// Solve produces a weekly schedule honoring the accumulated cuts. A solver
// verdict of infeasible is fatal for the whole run and surfaces as
// ErrScheduleInfeasible.
func (s *ScheduleSolver) Solve(cuts []Cut) (WeeklySchedule, error) {
	model := mip.NewModel("weekly-schedule")

	attends := make(map[string]map[string]mip.Var, len(s.instance.Employees))
	for _, employee := range s.instance.Employees {
		attends[employee] = make(map[string]mip.Var, len(s.instance.Days))
		for _, day := range s.instance.Days {
			attends[employee][day] = model.Binary(fmt.Sprintf("attends[%s,%s]", employee, day))
		}
	}
	meets := make(map[string]map[string]mip.Var, len(s.instance.Groups))
	for _, group := range s.instance.Groups {
		meets[group] = make(map[string]mip.Var, len(s.instance.Days))
		for _, day := range s.instance.Days {
			meets[group][day] = model.Binary(fmt.Sprintf("meets[%s,%s]", group, day))
		}
	}

	s.addObjective(model, attends)
	s.addAttendanceWindow(model, attends)
	s.addMeetingUniqueness(model, meets)
	s.addMeetingAttendance(model, attends, meets)
	s.addDailyCapacity(model, attends)
	s.addCuts(model, attends, cuts)

	solution, err := s.solver.Solve(model)
	if err != nil {
		return WeeklySchedule{}, fmt.Errorf("weekly schedule solve: %w", err)
	}
	if solution.Status == mip.StatusInfeasible || solution.Status == mip.StatusNoSolution {
		return WeeklySchedule{}, fmt.Errorf("%w: solver reported %v", ErrScheduleInfeasible, solution.Status)
	}

	schedule := WeeklySchedule{
		Attendance:  make(map[string][]string, len(s.instance.Days)),
		MeetingDays: make(map[string]string, len(s.instance.Groups)),
		Objective:   solution.Objective,
	}
	for _, day := range s.instance.Days {
		schedule.Attendance[day] = lo.Filter(s.instance.Employees, func(employee string, _ int) bool {
			return solution.Value(attends[employee][day])
		})
	}
	for _, group := range s.instance.Groups {
		for _, day := range s.instance.Days {
			if solution.Value(meets[group][day]) {
				schedule.MeetingDays[group] = day
				break
			}
		}
	}
	return schedule, nil
}

// Objective: reward preferred days, penalize the rest, and discount
// attendance of high-risk employees.
func (s *ScheduleSolver) addObjective(model *mip.Model, attends map[string]map[string]mip.Var) {
	terms := make([]mip.Term, 0, len(s.instance.Employees)*len(s.instance.Days))
	for _, employee := range s.instance.Employees {
		preferred := s.instance.PreferredDays[employee]
		risk := s.profiles[employee].Index
		for _, day := range s.instance.Days {
			score := -s.cfg.PreferencePenalty
			if lo.Contains(preferred, day) {
				score = 1
			}
			terms = append(terms, mip.Term{Coef: score - s.cfg.RiskWeight*risk, Var: attends[employee][day]})
		}
	}
	model.SetObjective(terms, true)
}

// Each employee attends between 2 and 3 days.
func (s *ScheduleSolver) addAttendanceWindow(model *mip.Model, attends map[string]map[string]mip.Var) {
	for _, employee := range s.instance.Employees {
		terms := lo.Map(s.instance.Days, func(day string, _ int) mip.Term {
			return mip.Term{Coef: 1, Var: attends[employee][day]}
		})
		model.AddConstraint(fmt.Sprintf("attendance-min[%s]", employee), terms, mip.GE, 2)
		model.AddConstraint(fmt.Sprintf("attendance-max[%s]", employee), terms, mip.LE, 3)
	}
}

// Each group meets exactly once.
func (s *ScheduleSolver) addMeetingUniqueness(model *mip.Model, meets map[string]map[string]mip.Var) {
	for _, group := range s.instance.Groups {
		terms := lo.Map(s.instance.Days, func(day string, _ int) mip.Term {
			return mip.Term{Coef: 1, Var: meets[group][day]}
		})
		model.AddConstraint(fmt.Sprintf("meeting-once[%s]", group), terms, mip.EQ, 1)
	}
}

// Every member attends on their group's meeting day: attends >= meets.
func (s *ScheduleSolver) addMeetingAttendance(model *mip.Model, attends, meets map[string]map[string]mip.Var) {
	for _, group := range s.instance.Groups {
		for _, member := range s.instance.GroupMembers[group] {
			for _, day := range s.instance.Days {
				model.AddConstraint(
					fmt.Sprintf("meeting-attendance[%s,%s,%s]", group, member, day),
					[]mip.Term{{Coef: 1, Var: attends[member][day]}, {Coef: -1, Var: meets[group][day]}},
					mip.GE, 0,
				)
			}
		}
	}
}

// Attendance on any day cannot exceed the desk count.
func (s *ScheduleSolver) addDailyCapacity(model *mip.Model, attends map[string]map[string]mip.Var) {
	for _, day := range s.instance.Days {
		terms := lo.Map(s.instance.Employees, func(employee string, _ int) mip.Term {
			return mip.Term{Coef: 1, Var: attends[employee][day]}
		})
		model.AddConstraint(fmt.Sprintf("capacity[%s]", day), terms, mip.LE, float64(len(s.instance.Desks)))
	}
}

// Each cut forbids its exact employee set from co-attending its day:
// the set's attendance sum stays below the set size.
func (s *ScheduleSolver) addCuts(model *mip.Model, attends map[string]map[string]mip.Var, cuts []Cut) {
	for i, cut := range cuts {
		terms := lo.Map(cut.Employees, func(employee string, _ int) mip.Term {
			return mip.Term{Coef: 1, Var: attends[employee][cut.Day]}
		})
		model.AddConstraint(fmt.Sprintf("cut-%d[%s]", i, cut.Day), terms, mip.LE, float64(len(cut.Employees)-1))
	}
}
