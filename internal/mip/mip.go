package mip

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sense is the relation between a constraint's left-hand side and its
// right-hand side.
type Sense int

const (
	LE Sense = iota // <=
	GE              // >=
	EQ              // =
)

// Var identifies a decision variable within a Model. Variables are numbered
// in creation order and named x0, x1, ... in the LP encoding.
type Var int

// Term is a single coefficient*variable product of a linear expression.
type Term struct {
	Coef float64
	Var  Var
}

type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a mixed-integer program restricted to binary decision variables,
// which is all the formulations in this repository need.
type Model struct {
	Name        string
	Maximize    bool
	Objective   []Term
	names       []string
	constraints []Constraint
}

func NewModel(name string) *Model {
	return &Model{Name: name}
}

// Binary adds a new binary decision variable. The name is kept for
// debugging only; the LP encoding uses positional names.
func (m *Model) Binary(name string) Var {
	m.names = append(m.names, name)
	return Var(len(m.names) - 1)
}

func (m *Model) NumVars() int { return len(m.names) }

func (m *Model) VarName(v Var) string { return m.names[v] }

func (m *Model) Constraints() []Constraint { return m.constraints }

func (m *Model) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	m.constraints = append(m.constraints, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

func (m *Model) SetObjective(terms []Term, maximize bool) {
	m.Objective = terms
	m.Maximize = maximize
}

// EvalObjective computes the objective value of a variable assignment.
// Solver backends report objectives with backend-specific sign conventions,
// so results are always re-evaluated here.
func (m *Model) EvalObjective(values []float64) float64 {
	total := 0.0
	for _, t := range m.Objective {
		total += t.Coef * values[t.Var]
	}
	return total
}

func formatCoef(c float64) string {
	if c >= 0 {
		return "+" + strconv.FormatFloat(c, 'g', -1, 64)
	}
	return strconv.FormatFloat(c, 'g', -1, 64)
}

func writeTerms(builder *strings.Builder, terms []Term) {
	for i, t := range terms {
		if i > 0 && i%8 == 0 {
			builder.WriteString("\n ")
		}
		fmt.Fprintf(builder, " %s x%d", formatCoef(t.Coef), t.Var)
	}
}

// WriteLP encodes the model in CPLEX LP text format, which both cbc and
// glpsol consume.
func (m *Model) WriteLP() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "\\ %s\n", m.Name)

	if m.Maximize {
		builder.WriteString("Maximize\n obj:")
	} else {
		builder.WriteString("Minimize\n obj:")
	}
	if len(m.Objective) == 0 {
		builder.WriteString(" +0 x0")
	} else {
		writeTerms(&builder, m.Objective)
	}
	builder.WriteString("\nSubject To\n")

	for i, c := range m.constraints {
		fmt.Fprintf(&builder, " c%d:", i)
		if len(c.Terms) == 0 {
			// A constraint with no terms still constrains: encode it with a
			// zero coefficient so the solver sees 0 (sense) RHS.
			builder.WriteString(" +0 x0")
		} else {
			writeTerms(&builder, c.Terms)
		}
		switch c.Sense {
		case LE:
			builder.WriteString(" <= ")
		case GE:
			builder.WriteString(" >= ")
		case EQ:
			builder.WriteString(" = ")
		}
		builder.WriteString(strconv.FormatFloat(c.RHS, 'g', -1, 64))
		builder.WriteString("\n")
	}

	builder.WriteString("Binary\n")
	for i := range m.names {
		if i > 0 && i%10 == 0 {
			builder.WriteString("\n")
		}
		fmt.Fprintf(&builder, " x%d", i)
	}
	builder.WriteString("\nEnd\n")
	return builder.String()
}

// satisfies reports whether the assignment meets every constraint, within a
// small tolerance. Used by backends to validate parsed solutions and by the
// in-process solver for leaf checks.
func (m *Model) satisfies(values []float64) bool {
	const eps = 1e-6
	for _, c := range m.constraints {
		lhs := 0.0
		for _, t := range c.Terms {
			lhs += t.Coef * values[t.Var]
		}
		switch c.Sense {
		case LE:
			if lhs > c.RHS+eps {
				return false
			}
		case GE:
			if lhs < c.RHS-eps {
				return false
			}
		case EQ:
			if math.Abs(lhs-c.RHS) > eps {
				return false
			}
		}
	}
	return true
}
