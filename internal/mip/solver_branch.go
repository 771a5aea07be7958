package mip

import (
	"math"
	"time"
)

// branchSolver is an in-process depth-first branch-and-bound over binary
// variables. It keeps the module usable on machines without cbc or glpsol
// installed and backs the test suite; the desk-planning instances it is
// meant for are small. It prunes on constraint bounds and on the incumbent
// objective, and honors the same time limit as the external backends.
type branchSolver struct {
	opts Options
}

func NewBranchSolver(opts Options) Solver {
	return &branchSolver{opts: opts}
}

type branchSearch struct {
	model    *Model
	deadline time.Time
	nodes    int

	values []float64

	// Per-constraint activity of the fixed variables plus the lowest and
	// highest contribution still achievable from the unfixed ones.
	activity []float64
	remLow   []float64
	remHigh  []float64

	objFixed   float64
	objRemGain float64 // best possible objective movement from unfixed vars

	best     []float64
	bestObj  float64
	found    bool
	timedOut bool
}

const branchEps = 1e-6

func (solver *branchSolver) Solve(model *Model) (Solution, error) {
	search := &branchSearch{
		model:    model,
		deadline: time.Now().Add(time.Duration(solver.opts.timeLimitSeconds()) * time.Second),
		values:   make([]float64, model.NumVars()),
		activity: make([]float64, len(model.constraints)),
		remLow:   make([]float64, len(model.constraints)),
		remHigh:  make([]float64, len(model.constraints)),
	}
	for i, c := range model.constraints {
		for _, t := range c.Terms {
			search.remLow[i] += math.Min(0, t.Coef)
			search.remHigh[i] += math.Max(0, t.Coef)
		}
	}
	for _, t := range model.Objective {
		if model.Maximize {
			search.objRemGain += math.Max(0, t.Coef)
		} else {
			search.objRemGain += math.Min(0, t.Coef)
		}
	}
	if model.Maximize {
		search.bestObj = math.Inf(-1)
	} else {
		search.bestObj = math.Inf(1)
	}

	search.descend(0)

	if !search.found {
		if search.timedOut {
			return Solution{Status: StatusNoSolution}, nil
		}
		return Solution{Status: StatusInfeasible}, nil
	}
	solution := Solution{
		Values:    search.best,
		Objective: model.EvalObjective(search.best),
	}
	if search.timedOut {
		solution.Status = StatusFeasible
		solution.Gap = solver.opts.Gap
	} else {
		solution.Status = StatusOptimal
	}
	return solution, nil
}

func (s *branchSearch) descend(next Var) {
	if s.timedOut {
		return
	}
	s.nodes++
	if s.nodes%1024 == 0 && time.Now().After(s.deadline) {
		s.timedOut = true
		return
	}
	if s.pruned() {
		return
	}
	if int(next) == s.model.NumVars() {
		s.record()
		return
	}

	first, second := 1.0, 0.0
	if coef := s.objCoef(next); (coef < 0) == s.model.Maximize {
		first, second = 0.0, 1.0
	}
	s.assign(next, first)
	s.descend(next + 1)
	s.unassign(next, first)
	s.assign(next, second)
	s.descend(next + 1)
	s.unassign(next, second)
}

func (s *branchSearch) pruned() bool {
	for i, c := range s.model.constraints {
		switch c.Sense {
		case LE:
			if s.activity[i]+s.remLow[i] > c.RHS+branchEps {
				return true
			}
		case GE:
			if s.activity[i]+s.remHigh[i] < c.RHS-branchEps {
				return true
			}
		case EQ:
			if s.activity[i]+s.remLow[i] > c.RHS+branchEps || s.activity[i]+s.remHigh[i] < c.RHS-branchEps {
				return true
			}
		}
	}
	if !s.found {
		return false
	}
	bound := s.objFixed + s.objRemGain
	if s.model.Maximize {
		return bound <= s.bestObj+branchEps
	}
	return bound >= s.bestObj-branchEps
}

func (s *branchSearch) record() {
	obj := s.objFixed
	better := obj > s.bestObj+branchEps
	if !s.model.Maximize {
		better = obj < s.bestObj-branchEps
	}
	if !s.found || better {
		s.best = append([]float64(nil), s.values...)
		s.bestObj = obj
		s.found = true
	}
}

func (s *branchSearch) objCoef(v Var) float64 {
	coef := 0.0
	for _, t := range s.model.Objective {
		if t.Var == v {
			coef += t.Coef
		}
	}
	return coef
}

func (s *branchSearch) assign(v Var, value float64) {
	s.values[v] = value
	for i, c := range s.model.constraints {
		for _, t := range c.Terms {
			if t.Var != v {
				continue
			}
			s.activity[i] += t.Coef * value
			s.remLow[i] -= math.Min(0, t.Coef)
			s.remHigh[i] -= math.Max(0, t.Coef)
		}
	}
	coef := s.objCoef(v)
	s.objFixed += coef * value
	if s.model.Maximize {
		s.objRemGain -= math.Max(0, coef)
	} else {
		s.objRemGain -= math.Min(0, coef)
	}
}

func (s *branchSearch) unassign(v Var, value float64) {
	s.values[v] = 0
	for i, c := range s.model.constraints {
		for _, t := range c.Terms {
			if t.Var != v {
				continue
			}
			s.activity[i] -= t.Coef * value
			s.remLow[i] += math.Min(0, t.Coef)
			s.remHigh[i] += math.Max(0, t.Coef)
		}
	}
	coef := s.objCoef(v)
	s.objFixed -= coef * value
	if s.model.Maximize {
		s.objRemGain += math.Max(0, coef)
	} else {
		s.objRemGain += math.Min(0, coef)
	}
}
