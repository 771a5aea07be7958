package mip

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const cbcPath = "cbc"

type cbcSolver struct {
	opts Options
}

// NewCBCSolver returns a backend that shells out to the COIN-OR cbc binary.
func NewCBCSolver(opts Options) Solver {
	return &cbcSolver{opts: opts}
}

func (solver *cbcSolver) Solve(model *Model) (Solution, error) {
	dir, err := os.MkdirTemp("", "deskplan-cbc-*")
	if err != nil {
		return Solution{}, err
	}
	defer os.RemoveAll(dir)

	lpFile := filepath.Join(dir, "model.lp")
	solFile := filepath.Join(dir, "model.sol")
	if err := os.WriteFile(lpFile, []byte(model.WriteLP()), 0666); err != nil {
		return Solution{}, err
	}

	cmd := exec.Command(cbcPath,
		lpFile,
		"seconds", strconv.Itoa(solver.opts.timeLimitSeconds()),
		"ratio", strconv.FormatFloat(solver.opts.Gap, 'g', -1, 64),
		"solve",
		"solution", solFile,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Solution{}, fmt.Errorf("cbc execution failed: %v : %v", err, stderr.String())
	}

	out, err := os.ReadFile(solFile)
	if err != nil {
		return Solution{}, fmt.Errorf("cbc produced no solution file: %v", err)
	}
	return solver.parse(model, string(out))
}

// parse reads a cbc solution file. The first line carries the termination
// condition ("Optimal - objective value ...", "Infeasible - ...", "Stopped
// on time limit - ..."); the remaining lines are "index name value cost"
// rows for the nonzero variables.
func (solver *cbcSolver) parse(model *Model, out string) (Solution, error) {
	lines := strings.Split(out, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return Solution{}, fmt.Errorf("empty cbc solution file")
	}
	header := strings.TrimSpace(lines[0])

	solution := Solution{Values: make([]float64, model.NumVars())}
	switch {
	case strings.Contains(header, "nfeasible"):
		solution.Status = StatusInfeasible
		return solution, nil
	case strings.HasPrefix(header, "Optimal"):
		solution.Status = StatusOptimal
	case strings.HasPrefix(header, "Stopped"):
		solution.Status = StatusFeasible
		solution.Gap = solver.opts.Gap
	default:
		return Solution{}, fmt.Errorf("unrecognized cbc termination: %q", header)
	}

	rows := 0
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name := fields[1]
		if !strings.HasPrefix(name, "x") {
			continue
		}
		index, err := strconv.Atoi(name[1:])
		if err != nil || index < 0 || index >= model.NumVars() {
			continue
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Solution{}, fmt.Errorf("invalid value in cbc output line %q: %v", line, err)
		}
		solution.Values[index] = value
		rows++
	}

	// A time-limited run that never found an incumbent still writes a
	// header but no meaningful assignment.
	if solution.Status == StatusFeasible && rows == 0 && !model.satisfies(solution.Values) {
		return Solution{Status: StatusNoSolution}, nil
	}
	solution.Objective = model.EvalObjective(solution.Values)
	return solution, nil
}
