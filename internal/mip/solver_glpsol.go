package mip

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const glpsolPath = "glpsol"

type glpsolSolver struct {
	opts Options
}

// NewGlpsolSolver returns a backend that shells out to the GLPK glpsol binary.
func NewGlpsolSolver(opts Options) Solver {
	return &glpsolSolver{opts: opts}
}

func (solver *glpsolSolver) Solve(model *Model) (Solution, error) {
	dir, err := os.MkdirTemp("", "deskplan-glpsol-*")
	if err != nil {
		return Solution{}, err
	}
	defer os.RemoveAll(dir)

	lpFile := filepath.Join(dir, "model.lp")
	solFile := filepath.Join(dir, "model.sol")
	if err := os.WriteFile(lpFile, []byte(model.WriteLP()), 0666); err != nil {
		return Solution{}, err
	}

	cmd := exec.Command(glpsolPath,
		"--lp", lpFile,
		"--tmlim", strconv.Itoa(solver.opts.timeLimitSeconds()),
		"--mipgap", strconv.FormatFloat(solver.opts.Gap, 'g', -1, 64),
		"-w", solFile,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Solution{}, fmt.Errorf("glpsol execution failed: %v : %v", err, stderr.String())
	}

	out, err := os.ReadFile(solFile)
	if err != nil {
		return Solution{}, fmt.Errorf("glpsol produced no solution file: %v", err)
	}
	return solver.parse(model, string(out))
}

// parse reads a GLPK MIP solution file: an "s mip ROWS COLS STAT OBJ" status
// line followed by "j COL VALUE" lines, columns numbered from 1 in the order
// the LP file declared them.
func (solver *glpsolSolver) parse(model *Model, out string) (Solution, error) {
	lines := lo.Filter(strings.Split(out, "\n"), func(line string, _ int) bool {
		return strings.HasPrefix(line, "s ") || strings.HasPrefix(line, "j ")
	})

	statusLine, ok := lo.Find(lines, func(line string) bool { return strings.HasPrefix(line, "s ") })
	if !ok {
		return Solution{}, fmt.Errorf("no status line in glpsol output")
	}
	fields := strings.Fields(statusLine)
	if len(fields) < 5 || fields[1] != "mip" {
		return Solution{}, fmt.Errorf("unrecognized glpsol status line: %q", statusLine)
	}

	solution := Solution{Values: make([]float64, model.NumVars())}
	switch fields[4] {
	case "o":
		solution.Status = StatusOptimal
	case "f":
		solution.Status = StatusFeasible
		solution.Gap = solver.opts.Gap
	case "n":
		solution.Status = StatusInfeasible
		return solution, nil
	case "u":
		solution.Status = StatusNoSolution
		return solution, nil
	default:
		return Solution{}, fmt.Errorf("unrecognized glpsol status %q", fields[4])
	}

	for _, line := range lines {
		if !strings.HasPrefix(line, "j ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return Solution{}, fmt.Errorf("invalid column line in glpsol output: %q", line)
		}
		column, err := strconv.Atoi(fields[1])
		if err != nil || column < 1 || column > model.NumVars() {
			return Solution{}, fmt.Errorf("invalid column index in glpsol output: %q", line)
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Solution{}, fmt.Errorf("invalid column value in glpsol output: %q", line)
		}
		solution.Values[column-1] = value
	}

	solution.Objective = model.EvalObjective(solution.Values)
	return solution, nil
}
