package domain

import "sort"

// Reachable reports whether to can be reached from from by following edges forward.
func Reachable(from, to string, edges []Edge) bool {
	return DependentClosure(from, edges).Has(to)
}

// FindCycle returns the sorted ids of nodes that sit on or behind a cycle, or nil
// when the edges form a DAG. It uses Kahn's algorithm so it never recurses.
func FindCycle(edges []Edge) []string {
	indegree := make(map[string]int)
	outgoing := make(map[string][]string)
	for _, e := range edges {
		if _, ok := indegree[e.Source]; !ok {
			indegree[e.Source] = 0
		}
		indegree[e.Target]++
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
	}

	var queue []string
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range outgoing[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited == len(indegree) {
		return nil
	}

	var stuck []string
	for id, deg := range indegree {
		if deg > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Strings(stuck)
	return stuck
}
