package plan

import "github.com/samber/lo"

// IsolationCost counts the isolation incidents of one day's assignment: the
// (group, zone) pairs where exactly one member of the group sits in the
// zone. Employees without a group and desks outside every zone produce no
// incidents.
func IsolationCost(in Instance, assignments []Assignment) int {
	deskZones := in.DeskZones()
	employeeGroups := in.EmployeeGroups()

	counts := lo.CountValuesBy(
		lo.Filter(assignments, func(a Assignment, _ int) bool {
			_, grouped := employeeGroups[a.Employee]
			_, zoned := deskZones[a.Desk]
			return grouped && zoned
		}),
		func(a Assignment) [2]string {
			return [2]string{employeeGroups[a.Employee], deskZones[a.Desk]}
		},
	)
	return lo.CountBy(lo.Values(counts), func(count int) bool { return count == 1 })
}
