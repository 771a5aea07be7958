package report_test

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/asocio/deskplan/internal/plan"
	"github.com/asocio/deskplan/internal/report"
)

func reportInstance() plan.Instance {
	return plan.Instance{
		Employees: []string{"E0", "E1", "E2"},
		Desks:     []string{"D0", "D1", "D2"},
		Days:      []string{"Mon", "Tue"},
		Groups:    []string{"G0"},
		Zones:     []string{"Z0", "Z1"},
		PreferredDays: map[string][]string{
			"E0": {"Mon"}, "E1": {"Mon"}, "E2": {"Tue"},
		},
		CompatibleDesks: map[string][]string{
			"E0": {"D0", "D1", "D2"}, "E1": {"D0", "D1", "D2"}, "E2": {"D0", "D1", "D2"},
		},
		GroupMembers: map[string][]string{"G0": {"E0", "E1", "E2"}},
		ZoneDesks:    map[string][]string{"Z0": {"D0", "D1"}, "Z1": {"D2"}},
	}
}

func reportSolution() plan.Solution {
	return plan.Solution{
		Assignments: []plan.Assignment{
			{Employee: "E0", Desk: "D0", Day: "Mon"},
			{Employee: "E1", Desk: "D1", Day: "Mon"},
			{Employee: "E2", Desk: "D2", Day: "Mon"},
			{Employee: "E0", Desk: "D0", Day: "Tue"},
			{Employee: "E2", Desk: "D1", Day: "Tue"},
		},
		MeetingDays: map[string]string{"G0": "Mon"},
		Schedule: map[string][]string{
			"Mon": {"E0", "E1", "E2"},
			"Tue": {"E0", "E2"},
		},
		Anchors:   map[string]string{"E0": "D0", "E1": "D1", "E2": "D2"},
		DayCosts:  map[string]float64{"Mon": 1, "Tue": 0},
		TotalCost: 1,
		Status:    plan.StatusFallback,
		Iteration: 3,
	}
}

func TestWriteSections(t *testing.T) {
	g := NewWithT(t)

	var out strings.Builder
	report.Write(&out, reportInstance(), reportSolution())
	text := out.String()

	g.Expect(text).To(ContainSubstring("### Desk occupancy ###"))
	g.Expect(text).To(ContainSubstring("Mon: 3/3 desks assigned (100.0%)"))
	g.Expect(text).To(ContainSubstring("Tue: 2/3 desks assigned (66.7%)"))

	// E2 is seated on Mon and E0 on Tue, both against their preferences.
	g.Expect(text).To(ContainSubstring("2 assignments fall on non-preferred days"))

	g.Expect(text).To(ContainSubstring("G0 on Mon: 3/3 present, zones: Z0 (2), Z1 (1)"))
	g.Expect(text).To(ContainSubstring("G0 on Tue: 2/3 present, zones: Z0 (2)"))

	g.Expect(text).To(ContainSubstring("G0 meets on Mon: 3/3 present [FULL]"))

	// E2 sits off-anchor on Tue, everything else is anchored.
	g.Expect(text).To(ContainSubstring("4/5 assignments on the anchor desk (80.0%)"))

	g.Expect(text).To(ContainSubstring("Status: fallback (iteration 3, total isolation cost 1)"))
}

func TestWriteIncompleteMeeting(t *testing.T) {
	g := NewWithT(t)

	solution := reportSolution()
	solution.MeetingDays = map[string]string{"G0": "Tue"}

	var out strings.Builder
	report.Write(&out, reportInstance(), solution)

	g.Expect(out.String()).To(ContainSubstring("G0 meets on Tue: 2/3 present [INCOMPLETE]"))
}

func TestWriteEmptySolution(t *testing.T) {
	g := NewWithT(t)

	var out strings.Builder
	report.Write(&out, reportInstance(), plan.Solution{Status: plan.StatusAccepted})
	text := out.String()

	g.Expect(text).To(ContainSubstring("no assignments"))
	g.Expect(text).To(ContainSubstring("0 assignments fall on non-preferred days"))
}

func TestWriteDoesNotMutateSolution(t *testing.T) {
	g := NewWithT(t)

	solution := reportSolution()
	before := len(solution.Assignments)

	var out strings.Builder
	report.Write(&out, reportInstance(), solution)

	g.Expect(solution.Assignments).To(HaveLen(before))
	g.Expect(solution.Assignments[0]).To(Equal(plan.Assignment{Employee: "E0", Desk: "D0", Day: "Mon"}))
}
