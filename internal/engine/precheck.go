package engine

import (
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
)

// sessionUnit is one required hour of a demand.
type sessionUnit struct {
	demand int
	hour   uint64
}

// capacityFeasible checks a necessary condition before search: every required
// session hour must be matchable to a distinct (room, time) pair drawn from
// its demand's candidates. A largest matching smaller than the total hour
// count proves infeasibility without expanding a single search node.
func capacityFeasible(m *Model) bool {
	forbidden := make(map[int]bool, len(m.forbidden))
	for _, id := range m.forbidden {
		forbidden[id] = true
	}

	pairSeen := make(map[string]bool)
	pairs := make([]any, 0)
	candidates := make([]map[string]bool, len(m.byDemand))
	for demand, vars := range m.byDemand {
		candidates[demand] = make(map[string]bool)
		for _, id := range vars {
			if forbidden[id] {
				continue
			}
			variable := m.variables[id]
			pair := variable.Room.ID + "@" + variable.Slot.TimeKey()
			candidates[demand][pair] = true
			if !pairSeen[pair] {
				pairSeen[pair] = true
				pairs = append(pairs, pair)
			}
		}
	}

	units := make([]any, 0)
	for demand, d := range m.demands {
		for hour := uint64(0); hour < d.Hours; hour++ {
			units = append(units, sessionUnit{demand: demand, hour: hour})
		}
	}
	if len(units) == 0 {
		return true
	}

	neighbors := func(unitAny any, pairAny any) (bool, error) {
		unit := unitAny.(sessionUnit)
		return candidates[unit.demand][pairAny.(string)], nil
	}

	graph, err := bipartitegraph.NewBipartiteGraph(units, pairs, neighbors)
	if err != nil {
		return true
	}
	return len(graph.LargestMatching()) == len(units)
}
