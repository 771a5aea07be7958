package plan

import (
	"slices"

	"github.com/samber/lo"
)

// Cut forbids an exact employee set from all attending one day together.
// Employees are kept sorted so two cuts over the same set compare equal.
type Cut struct {
	Day       string
	Employees []string
}

func newCut(day string, employees []string) Cut {
	sorted := append([]string(nil), employees...)
	slices.Sort(sorted)
	return Cut{Day: day, Employees: sorted}
}

func (c Cut) equals(other Cut) bool {
	return c.Day == other.Day && slices.Equal(c.Employees, other.Employees)
}

// Assignment is one (employee, desk, day) record of the final plan.
type Assignment struct {
	Employee string `json:"employee"`
	Desk     string `json:"desk"`
	Day      string `json:"day"`
}

// WeeklySchedule is the outcome of one weekly solve: who attends which day
// and when each group meets.
type WeeklySchedule struct {
	Attendance  map[string][]string // day -> attending employees, input order
	MeetingDays map[string]string   // group -> meeting day
	Objective   float64
}

// Solution statuses. A fallback solution satisfies every hard constraint
// but missed the isolation quality threshold within the iteration budget.
const (
	StatusAccepted = "accepted"
	StatusFallback = "fallback"
)

// Solution is the complete output of a run.
type Solution struct {
	Assignments []Assignment        `json:"assignments"`
	MeetingDays map[string]string   `json:"meetingDays"`
	Schedule    map[string][]string `json:"schedule"`
	Anchors     map[string]string   `json:"anchors"`

	DayCosts  map[string]float64 `json:"dayCosts"`
	TotalCost float64            `json:"totalCost"`
	Status    string             `json:"status"`
	Iteration int                `json:"iteration"`
}

// IterationStats is the per-iteration diagnostic breakdown.
type IterationStats struct {
	Iteration int                `json:"iteration"`
	DayCosts  map[string]float64 `json:"dayCosts"`
	TotalCost float64            `json:"totalCost"`
	Threshold float64            `json:"threshold"`
	NewCuts   int                `json:"newCuts"`
}

// AssignmentsByDay groups the flat records chronologically.
func (s Solution) AssignmentsByDay(days []string) map[string][]Assignment {
	grouped := lo.GroupBy(s.Assignments, func(a Assignment) string { return a.Day })
	result := make(map[string][]Assignment, len(days))
	for _, day := range days {
		result[day] = grouped[day]
	}
	return result
}
