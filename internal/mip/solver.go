package mip

import "time"

// Status is the termination condition reported by a solver backend.
type Status int

const (
	StatusOptimal    Status = iota // proven optimal solution
	StatusFeasible                 // feasible incumbent, optimality not proven
	StatusInfeasible               // model proven infeasible
	StatusNoSolution               // no incumbent found before the time limit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusNoSolution:
		return "no-solution"
	}
	return "unknown"
}

// Solution is the outcome of a solve. Values is indexed by Var and only
// meaningful when Status is StatusOptimal or StatusFeasible. Gap is the
// relative optimality gap the solution is known to satisfy: 0 for proven
// optimal, otherwise the gap the backend was configured to accept.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
	Gap       float64
}

// Value reports the rounded binary value of a variable.
func (s Solution) Value(v Var) bool {
	if int(v) >= len(s.Values) {
		return false
	}
	return s.Values[v] > 0.5
}

// Solver solves a binary integer program. Implementations must be safe for
// concurrent use: the per-day assignment models are solved in parallel.
type Solver interface {
	Solve(model *Model) (Solution, error)
}

// Options bound a single solve. There is no cancellation: a backend runs
// until it finds a solution or exhausts its own time limit.
type Options struct {
	TimeLimit time.Duration
	Gap       float64 // acceptable relative optimality gap
}

func (o Options) timeLimitSeconds() int {
	if o.TimeLimit <= 0 {
		return 60
	}
	secs := int(o.TimeLimit / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
