package plan

import "errors"

var (
	// ErrInvalidInstance marks instances whose relations are inconsistent.
	ErrInvalidInstance = errors.New("plan: invalid instance")

	// ErrScheduleInfeasible means the weekly schedule model has no feasible
	// solution. Nothing can be salvaged once the weekly model fails, so the
	// controller aborts the whole run with this error.
	ErrScheduleInfeasible = errors.New("plan: weekly schedule model is infeasible")

	// ErrNoFeasibleSolution means no iteration produced an assignment for
	// every scheduled day, so there is no solution to fall back to.
	ErrNoFeasibleSolution = errors.New("plan: no feasible solution in any iteration")
)
