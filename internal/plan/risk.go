package plan

import (
	"sort"

	"github.com/samber/lo"
)

const recommendedDeskCount = 3

// RiskProfile is the result of the pre-pass heuristic for one employee: how
// likely an arbitrary desk choice is to leave them isolated from teammates,
// and a shortlist of the desks with the best cohesion potential.
type RiskProfile struct {
	Index            float64
	RecommendedDesks []string
}

// AnalyzeRisk scores every employee. It is a pure function of the instance:
// running it twice yields identical profiles.
//
// The risk of one candidate desk is 1/(1+t), where t is the number of
// teammates with at least one compatible desk in the candidate's zone. An
// employee's index is the mean risk over their compatible desks, and the
// shortlist holds the three lowest-risk desks, ties broken by input order.
func AnalyzeRisk(in Instance) map[string]RiskProfile {
	deskZones := in.DeskZones()
	employeeGroups := in.EmployeeGroups()

	profiles := make(map[string]RiskProfile, len(in.Employees))
	for _, employee := range in.Employees {
		compatible := in.CompatibleDesks[employee]
		if len(compatible) == 0 {
			profiles[employee] = RiskProfile{Index: 1.0}
			continue
		}

		group, grouped := employeeGroups[employee]
		if !grouped {
			profiles[employee] = RiskProfile{Index: 0.0, RecommendedDesks: firstDesks(compatible)}
			continue
		}
		teammates := lo.Without(in.GroupMembers[group], employee)

		type deskRisk struct {
			desk string
			risk float64
		}
		risks := make([]deskRisk, 0, len(compatible))
		for _, desk := range compatible {
			zone, ok := deskZones[desk]
			if !ok {
				// Desks outside every zone cannot isolate anyone and are not scored.
				continue
			}
			options := lo.CountBy(teammates, func(teammate string) bool {
				return lo.SomeBy(in.CompatibleDesks[teammate], func(d string) bool {
					return deskZones[d] == zone
				})
			})
			risks = append(risks, deskRisk{desk: desk, risk: 1.0 / float64(1+options)})
		}
		if len(risks) == 0 {
			profiles[employee] = RiskProfile{Index: 1.0}
			continue
		}

		// Stable sort keeps equally risky desks in compatibility-list order.
		sort.SliceStable(risks, func(i, j int) bool { return risks[i].risk < risks[j].risk })

		recommended := lo.Map(risks, func(dr deskRisk, _ int) string { return dr.desk })
		profiles[employee] = RiskProfile{
			Index:            lo.SumBy(risks, func(dr deskRisk) float64 { return dr.risk }) / float64(len(risks)),
			RecommendedDesks: firstDesks(recommended),
		}
	}
	return profiles
}

func firstDesks(desks []string) []string {
	n := min(len(desks), recommendedDeskCount)
	return append([]string(nil), desks[:n]...)
}
