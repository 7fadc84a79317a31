// Package pathfind implements a generic A* search over arbitrary node and
// cost types.
package pathfind

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoPath      = errors.New("pathfind: no path found")
	ErrSearchLimit = fmt.Errorf("%w: expansion limit reached", ErrNoPath)
	ErrNoCosts     = errors.New("pathfind: cost domain requires Add and Less")
)

// Costs describes the cost domain of a search.
type Costs[C any] struct {
	Zero     C
	Infinity C
	Add      func(a, b C) C
	Less     func(a, b C) bool
}

// IntCosts is the integer cost domain, with math.MaxInt as infinity.
// Addition saturates at infinity.
func IntCosts() Costs[int] {
	return Costs[int]{
		Zero:     0,
		Infinity: math.MaxInt,
		Add: func(a, b int) int {
			if a == math.MaxInt || b == math.MaxInt || a > math.MaxInt-b {
				return math.MaxInt
			}
			return a + b
		},
		Less: func(a, b int) bool { return a < b },
	}
}

// FloatCosts is the float64 cost domain, with +Inf as infinity.
func FloatCosts() Costs[float64] {
	return Costs[float64]{
		Zero:     0,
		Infinity: math.Inf(1),
		Add:      func(a, b float64) float64 { return a + b },
		Less:     func(a, b float64) bool { return a < b },
	}
}

// Problem is a single search query.
type Problem[N comparable, C any] struct {
	Start, Goal N

	// Neighbors lists the nodes reachable from n in one step.
	Neighbors func(n N) []N

	// Cost returns the cost of stepping from one node to the next. cameFrom
	// is the predecessor map as decided so far, so costs may depend on the
	// shape of the path. A cost not less than Infinity marks the edge as
	// impassable.
	Cost func(from, to N, cameFrom map[N]N) C

	// Heuristic estimates the remaining cost from n to goal. Leave nil for
	// a plain Dijkstra search.
	Heuristic func(n, goal N) C

	Costs Costs[C]

	// MaxExpansions bounds the number of nodes finalised. Zero means no limit.
	MaxExpansions int
}

// Result is the outcome of a search. CostSoFar and CameFrom are kept for
// diagnostics even when no path was found.
type Result[N comparable, C any] struct {
	Path      []N
	Cost      C
	Found     bool
	CostSoFar map[N]C
	CameFrom  map[N]N
	Expanded  int
}

// Unreachable reports whether the result carries no usable path.
func (r *Result[N, C]) Unreachable() bool {
	return r == nil || !r.Found
}

// Search runs A* from p.Start to p.Goal. When the goal cannot be reached the
// result has Found == false, Cost == Infinity and a nil Path, and the error
// wraps ErrNoPath.
func Search[N comparable, C any](p Problem[N, C]) (*Result[N, C], error) {
	costs := p.Costs
	if costs.Add == nil || costs.Less == nil {
		return nil, ErrNoCosts
	}

	res := &Result[N, C]{
		Cost:      costs.Infinity,
		CostSoFar: map[N]C{p.Start: costs.Zero},
		CameFrom:  make(map[N]N),
	}

	if p.Start == p.Goal {
		res.Path = []N{p.Start}
		res.Cost = costs.Zero
		res.Found = true
		return res, nil
	}

	estimate := func(n N) C {
		if p.Heuristic == nil {
			return res.CostSoFar[n]
		}
		return costs.Add(res.CostSoFar[n], p.Heuristic(n, p.Goal))
	}

	frontier := &queue[N, C]{less: costs.Less, index: make(map[N]*entry[N, C])}
	frontier.push(p.Start, estimate(p.Start))
	closed := make(map[N]bool)

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(*entry[N, C]).node
		if closed[current] {
			continue
		}
		if current == p.Goal {
			res.Found = true
			res.Cost = res.CostSoFar[current]
			res.Path = reconstruct(res.CameFrom, p.Start, current)
			return res, nil
		}

		closed[current] = true
		res.Expanded++
		if p.MaxExpansions > 0 && res.Expanded >= p.MaxExpansions {
			return res, fmt.Errorf("%w after %d nodes", ErrSearchLimit, res.Expanded)
		}

		if p.Neighbors == nil {
			continue
		}
		for _, next := range p.Neighbors(current) {
			if closed[next] {
				continue
			}
			step := p.Cost(current, next, res.CameFrom)
			if !costs.Less(step, costs.Infinity) {
				continue
			}
			candidate := costs.Add(res.CostSoFar[current], step)
			if known, ok := res.CostSoFar[next]; ok && !costs.Less(candidate, known) {
				continue
			}
			res.CostSoFar[next] = candidate
			res.CameFrom[next] = current
			frontier.update(next, estimate(next))
		}
	}

	return res, ErrNoPath
}

// reconstruct walks the predecessor map back from goal to start.
func reconstruct[N comparable](cameFrom map[N]N, start, goal N) []N {
	path := []N{goal}
	for current := goal; current != start; {
		prev, ok := cameFrom[current]
		if !ok {
			return nil
		}
		path = append(path, prev)
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
