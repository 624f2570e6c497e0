// Package rebalance holds the workload policy used by automatic task reassignment:
// per-member load snapshots, donor/recipient partitioning, candidate ordering and
// the recipient pool. Nothing here performs I/O.
package rebalance

import (
	"github.com/dimitrije/taskflow-api/internal/models"
)

// Load is one member's workload inside a single project.
type Load struct {
	Name     string
	Role     string
	Capacity int
	Active   int
}

func (l Load) Available() int {
	return max(0, l.Capacity-l.Active)
}

func (l Load) Excess() int {
	return max(0, l.Active-l.Capacity)
}

func (l Load) Overloaded() bool {
	return l.Active > l.Capacity
}

// Snapshot builds the loads of a team's members in member-list order. active maps an
// assignee name to its count of non-done tasks in the project; names with no member
// are ignored. A repeated member name only counts once, at its first position.
func Snapshot(members []models.Member, active map[string]int) []Load {
	loads := make([]Load, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, dup := seen[m.Name]; dup {
			continue
		}
		seen[m.Name] = struct{}{}
		loads = append(loads, Load{
			Name:     m.Name,
			Role:     m.Role,
			Capacity: m.Capacity,
			Active:   active[m.Name],
		})
	}
	return loads
}

// Partition splits loads into overloaded donors, kept in input order, and a pool of
// members with free slots.
func Partition(loads []Load) ([]Load, *Pool) {
	var overloaded []Load
	for _, l := range loads {
		if l.Overloaded() {
			overloaded = append(overloaded, l)
		}
	}
	return overloaded, NewPool(loads)
}
