package plan

import "sort"

// AssignAnchors picks one anchor desk per employee from the RiskAnalyzer
// shortlists, balancing how many employees contend for each desk.
//
// Employees are processed most-at-risk first: descending risk index, ties
// by ascending number of compatible desks, remaining ties by input order.
// Each employee takes the least-used desk from their shortlist, ties by
// shortlist order. A desk anchors at most one employee; if every shortlist
// desk is already taken the employee gets none. The greedy order matters:
// the most constrained employees pick before contention builds up, with no
// backtracking afterwards.
//
// Employees left without an anchor get no entry in the returned map.
func AssignAnchors(in Instance, profiles map[string]RiskProfile) map[string]string {
	order := append([]string(nil), in.Employees...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if profiles[a].Index != profiles[b].Index {
			return profiles[a].Index > profiles[b].Index
		}
		return len(in.CompatibleDesks[a]) < len(in.CompatibleDesks[b])
	})

	usage := make(map[string]int, len(in.Desks))
	anchors := make(map[string]string, len(order))
	for _, employee := range order {
		recommended := profiles[employee].RecommendedDesks
		if len(recommended) == 0 {
			continue
		}
		best := recommended[0]
		for _, desk := range recommended[1:] {
			if usage[desk] < usage[best] {
				best = desk
			}
		}
		if usage[best] > 0 {
			continue
		}
		anchors[employee] = best
		usage[best]++
	}
	return anchors
}
