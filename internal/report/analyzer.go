// Package report renders a human-readable analysis of a planning solution.
// It is strictly read-only over the solution it receives.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/asocio/deskplan/internal/plan"
	"github.com/samber/lo"
)

// Write prints the full analysis: desk occupancy per day, preference
// mismatches, group dispersion across zones, meeting-day attendance and
// anchor adherence.
func Write(w io.Writer, in plan.Instance, solution plan.Solution) {
	byDay := solution.AssignmentsByDay(in.Days)
	writeOccupancy(w, in, byDay)
	writeMismatches(w, in, solution)
	writeDispersion(w, in, byDay)
	writeMeetingAttendance(w, in, byDay, solution)
	writeAnchorAdherence(w, solution)
	fmt.Fprintf(w, "\nStatus: %s (iteration %d, total isolation cost %.0f)\n",
		solution.Status, solution.Iteration, solution.TotalCost)
}

func writeOccupancy(w io.Writer, in plan.Instance, byDay map[string][]plan.Assignment) {
	fmt.Fprintf(w, "### Desk occupancy ###\n")
	total := len(in.Desks)
	if total == 0 {
		fmt.Fprintln(w, "no desks in instance")
		return
	}
	for _, day := range in.Days {
		assignments := byDay[day]
		if len(assignments) == 0 {
			continue
		}
		fmt.Fprintf(w, "--- %s: %d/%d desks assigned (%.1f%%) ---\n",
			day, len(assignments), total, 100*float64(len(assignments))/float64(total))
		sorted := append([]plan.Assignment(nil), assignments...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Desk < sorted[j].Desk })
		for _, a := range sorted {
			fmt.Fprintf(w, "  %s: %s\n", a.Desk, a.Employee)
		}
	}
}

func writeMismatches(w io.Writer, in plan.Instance, solution plan.Solution) {
	mismatches := lo.CountBy(solution.Assignments, func(a plan.Assignment) bool {
		return !lo.Contains(in.PreferredDays[a.Employee], a.Day)
	})
	fmt.Fprintf(w, "\n### Day preferences ###\n%d assignments fall on non-preferred days\n", mismatches)
}

func writeDispersion(w io.Writer, in plan.Instance, byDay map[string][]plan.Assignment) {
	fmt.Fprintf(w, "\n### Group dispersion across zones ###\n")
	deskZones := in.DeskZones()
	employeeGroups := in.EmployeeGroups()

	groups := append([]string(nil), in.Groups...)
	sort.Strings(groups)
	for _, group := range groups {
		size := len(in.GroupMembers[group])
		for _, day := range in.Days {
			members := lo.Filter(byDay[day], func(a plan.Assignment, _ int) bool {
				return employeeGroups[a.Employee] == group
			})
			if len(members) == 0 {
				continue
			}
			zoneCounts := lo.CountValuesBy(members, func(a plan.Assignment) string { return deskZones[a.Desk] })
			zones := lo.Keys(zoneCounts)
			sort.Strings(zones)
			distribution := strings.Join(lo.Map(zones, func(zone string, _ int) string {
				return fmt.Sprintf("%s (%d)", zone, zoneCounts[zone])
			}), ", ")
			fmt.Fprintf(w, "%s on %s: %d/%d present, zones: %s\n", group, day, len(members), size, distribution)
		}
	}
}

func writeMeetingAttendance(w io.Writer, in plan.Instance, byDay map[string][]plan.Assignment, solution plan.Solution) {
	fmt.Fprintf(w, "\n### Meeting-day attendance ###\n")
	groups := lo.Keys(solution.MeetingDays)
	sort.Strings(groups)
	for _, group := range groups {
		day := solution.MeetingDays[group]
		present := lo.CountBy(byDay[day], func(a plan.Assignment) bool {
			return lo.Contains(in.GroupMembers[group], a.Employee)
		})
		size := len(in.GroupMembers[group])
		verdict := "FULL"
		if present != size {
			verdict = "INCOMPLETE"
		}
		fmt.Fprintf(w, "%s meets on %s: %d/%d present [%s]\n", group, day, present, size, verdict)
	}
}

func writeAnchorAdherence(w io.Writer, solution plan.Solution) {
	fmt.Fprintf(w, "\n### Anchor adherence ###\n")
	anchored := lo.CountBy(solution.Assignments, func(a plan.Assignment) bool {
		return solution.Anchors[a.Employee] == a.Desk
	})
	if len(solution.Assignments) == 0 {
		fmt.Fprintln(w, "no assignments")
		return
	}
	fmt.Fprintf(w, "%d/%d assignments on the anchor desk (%.1f%%)\n",
		anchored, len(solution.Assignments), 100*float64(anchored)/float64(len(solution.Assignments)))
}
