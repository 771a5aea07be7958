package plan

import (
	"fmt"

	"github.com/asocio/deskplan/internal/config"
	"github.com/asocio/deskplan/internal/mip"
	"github.com/samber/lo"
)

// DailyAssigner builds and solves the desk-assignment model for a single
// day. Instances are independent per day and safe to run concurrently.
type DailyAssigner struct {
	instance Instance
	anchors  map[string]string
	cfg      config.Config
	solver   mip.Solver
}

// DayResult is the outcome of one daily solve. An unsolved day carries no
// assignments and is scored as infinitely isolated by the controller.
type DayResult struct {
	Day         string
	Assignments []Assignment
	Solved      bool
	Optimal     bool
	Gap         float64
}

func NewDailyAssigner(in Instance, anchors map[string]string, cfg config.Config, solver mip.Solver) *DailyAssigner {
	return &DailyAssigner{instance: in, anchors: anchors, cfg: cfg, solver: solver}
}

// Solve assigns a desk to every attendee of one day, minimizing weighted
// isolation incidents and anchor deviations. Solver errors and infeasible
// models both degrade to an unsolved day: one bad day must not abort the
// other days' solves.
func (a *DailyAssigner) Solve(day string, attendees []string) DayResult {
	result := DayResult{Day: day}
	if len(attendees) == 0 {
		result.Solved = true
		result.Optimal = true
		return result
	}

	deskZones := a.instance.DeskZones()
	employeeGroups := a.instance.EmployeeGroups()
	attendingGroups := lo.Uniq(lo.FilterMap(attendees, func(employee string, _ int) (string, bool) {
		group, ok := employeeGroups[employee]
		return group, ok
	}))

	model := mip.NewModel(fmt.Sprintf("daily-assignment[%s]", day))

	// assign[e][d] for every compatible pair of an attendee.
	assign := make(map[string]map[string]mip.Var, len(attendees))
	for _, employee := range attendees {
		assign[employee] = make(map[string]mip.Var)
		for _, desk := range a.instance.CompatibleDesks[employee] {
			assign[employee][desk] = model.Binary(fmt.Sprintf("assign[%s,%s]", employee, desk))
		}
	}
	// isolated[g][z]: exactly one member of g sits in zone z.
	isolated := make(map[string]map[string]mip.Var, len(attendingGroups))
	for _, group := range attendingGroups {
		isolated[group] = make(map[string]mip.Var, len(a.instance.Zones))
		for _, zone := range a.instance.Zones {
			isolated[group][zone] = model.Binary(fmt.Sprintf("isolated[%s,%s]", group, zone))
		}
	}
	// deviates[e]: employee e is not on their anchor desk.
	deviates := make(map[string]mip.Var, len(attendees))
	for _, employee := range attendees {
		deviates[employee] = model.Binary(fmt.Sprintf("deviates[%s]", employee))
	}

	a.addObjective(model, attendingGroups, isolated, attendees, deviates)
	a.addAssignmentConstraints(model, attendees, assign)
	a.addIsolationLinks(model, day, attendees, attendingGroups, assign, isolated, deskZones, employeeGroups)
	a.addDeviationLinks(model, attendees, assign, deviates)

	solution, err := a.solver.Solve(model)
	if err != nil {
		return result
	}
	if solution.Status != mip.StatusOptimal && solution.Status != mip.StatusFeasible {
		return result
	}

	result.Solved = true
	result.Optimal = solution.Status == mip.StatusOptimal
	result.Gap = solution.Gap
	for _, employee := range attendees {
		for desk, v := range assign[employee] {
			if solution.Value(v) {
				result.Assignments = append(result.Assignments, Assignment{Employee: employee, Desk: desk, Day: day})
			}
		}
	}
	return result
}

func (a *DailyAssigner) addObjective(
	model *mip.Model,
	attendingGroups []string,
	isolated map[string]map[string]mip.Var,
	attendees []string,
	deviates map[string]mip.Var,
) {
	var terms []mip.Term
	for _, group := range attendingGroups {
		for _, zone := range a.instance.Zones {
			terms = append(terms, mip.Term{Coef: a.cfg.IsolationWeight, Var: isolated[group][zone]})
		}
	}
	for _, employee := range attendees {
		terms = append(terms, mip.Term{Coef: a.cfg.ConsistencyWeight, Var: deviates[employee]})
	}
	model.SetObjective(terms, false)
}

// Every attendee gets exactly one compatible desk; every desk at most one
// attendee. An attendee with no compatible desks yields an unsatisfiable
// equality, which is exactly the infeasibility the feedback loop needs to
// see for that day.
func (a *DailyAssigner) addAssignmentConstraints(model *mip.Model, attendees []string, assign map[string]map[string]mip.Var) {
	for _, employee := range attendees {
		terms := lo.Map(a.instance.CompatibleDesks[employee], func(desk string, _ int) mip.Term {
			return mip.Term{Coef: 1, Var: assign[employee][desk]}
		})
		model.AddConstraint(fmt.Sprintf("one-desk[%s]", employee), terms, mip.EQ, 1)
	}
	for _, desk := range a.instance.Desks {
		var terms []mip.Term
		for _, employee := range attendees {
			if v, ok := assign[employee][desk]; ok {
				terms = append(terms, mip.Term{Coef: 1, Var: v})
			}
		}
		if len(terms) > 1 {
			model.AddConstraint(fmt.Sprintf("one-employee[%s]", desk), terms, mip.LE, 1)
		}
	}
}

// Link isolated[g,z] to the member count of group g in zone z. With
// n = sum of assignments of g's attendees to z's desks and a helper
// many[g,z] marking n >= 2:
//
//	n >= isolated            (n = 0 forces the indicator off)
//	n + M*isolated <= M + 1  (n >= 2 forces it off)
//	n >= 2*many              (many stays off unless two or more sit there)
//	n <= 1 + M*many          (n >= 2 forces many on)
//	isolated + M*many >= n   (n = 1 with many = 0 forces the indicator on)
//
// Both directions are needed: the objective minimizes the indicators, so
// without the forcing constraint the solver would zero them all and the
// isolation term would never steer the assignment. M is the attendee
// count, the tightest bound n can reach.
func (a *DailyAssigner) addIsolationLinks(
	model *mip.Model,
	day string,
	attendees []string,
	attendingGroups []string,
	assign map[string]map[string]mip.Var,
	isolated map[string]map[string]mip.Var,
	deskZones map[string]string,
	employeeGroups map[string]string,
) {
	bigM := float64(len(attendees))
	for _, group := range attendingGroups {
		members := lo.Filter(attendees, func(employee string, _ int) bool {
			return employeeGroups[employee] == group
		})
		for _, zone := range a.instance.Zones {
			var presence []mip.Term
			for _, member := range members {
				for desk, v := range assign[member] {
					if deskZones[desk] == zone {
						presence = append(presence, mip.Term{Coef: 1, Var: v})
					}
				}
			}

			iso := isolated[group][zone]
			many := model.Binary(fmt.Sprintf("many[%s,%s]", group, zone))

			lower := append(append([]mip.Term(nil), presence...), mip.Term{Coef: -1, Var: iso})
			model.AddConstraint(fmt.Sprintf("isolation-lb[%s,%s,%s]", day, group, zone), lower, mip.GE, 0)

			upper := append(append([]mip.Term(nil), presence...), mip.Term{Coef: bigM, Var: iso})
			model.AddConstraint(fmt.Sprintf("isolation-ub[%s,%s,%s]", day, group, zone), upper, mip.LE, bigM+1)

			manyLower := append(append([]mip.Term(nil), presence...), mip.Term{Coef: -2, Var: many})
			model.AddConstraint(fmt.Sprintf("many-lb[%s,%s,%s]", day, group, zone), manyLower, mip.GE, 0)

			manyUpper := append(append([]mip.Term(nil), presence...), mip.Term{Coef: -bigM, Var: many})
			model.AddConstraint(fmt.Sprintf("many-ub[%s,%s,%s]", day, group, zone), manyUpper, mip.LE, 1)

			force := []mip.Term{{Coef: 1, Var: iso}, {Coef: bigM, Var: many}}
			for _, p := range presence {
				force = append(force, mip.Term{Coef: -p.Coef, Var: p.Var})
			}
			model.AddConstraint(fmt.Sprintf("isolation-force[%s,%s,%s]", day, group, zone), force, mip.GE, 0)
		}
	}
}

// deviates[e] >= 1 - assign[e,anchor(e)]; an attendee without a usable
// anchor deviates by definition.
func (a *DailyAssigner) addDeviationLinks(model *mip.Model, attendees []string, assign map[string]map[string]mip.Var, deviates map[string]mip.Var) {
	for _, employee := range attendees {
		anchor, ok := a.anchors[employee]
		if av, valid := assign[employee][anchor]; ok && valid {
			model.AddConstraint(
				fmt.Sprintf("deviation[%s]", employee),
				[]mip.Term{{Coef: 1, Var: deviates[employee]}, {Coef: 1, Var: av}},
				mip.GE, 1,
			)
		} else {
			model.AddConstraint(
				fmt.Sprintf("deviation-forced[%s]", employee),
				[]mip.Term{{Coef: 1, Var: deviates[employee]}},
				mip.GE, 1,
			)
		}
	}
}
