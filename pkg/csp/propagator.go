package csp

import (
	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/samber/lo"
)

type Propagator interface {
	// Makes every arc consistent. Returns false as soon as a domain becomes empty
	Propagate(domains *Domains) bool

	// Same fixed point as Propagate when only the class's domain changed since the last fixed point
	PropagateFrom(domains *Domains, class int) bool

	// Counters accumulated over every call
	Stats() PropagationStats
}

type PropagationStats struct {
	Revisions uint64 // Arcs revised
	Pruned    uint64 // Values removed
	Failed    int    // Class whose domain was emptied by the last failing call, -1 if none
}

type arc [2]int // (Xi, Xj): revise Xi against Xj

type propagatorAC3 struct {
	problem *Problem
	stats   PropagationStats
}

func NewPropagator(problem *Problem) Propagator {
	return &propagatorAC3{
		problem: problem,
		stats:   PropagationStats{Failed: -1},
	}
}

func (propagator *propagatorAC3) Propagate(domains *Domains) bool {
	queue := make([]arc, 0)
	for xi, adjacent := range propagator.problem.Neighbors {
		for _, xj := range adjacent {
			queue = append(queue, arc{xi, xj})
		}
	}
	return propagator.run(domains, queue)
}

func (propagator *propagatorAC3) PropagateFrom(domains *Domains, class int) bool {
	queue := lo.Map(propagator.problem.Neighbors[class], func(xk int, _ int) arc { return arc{xk, class} })
	return propagator.run(domains, queue)
}

func (propagator *propagatorAC3) Stats() PropagationStats {
	return propagator.stats
}

func (propagator *propagatorAC3) run(domains *Domains, queue []arc) bool {
	queued := make(map[arc]bool, len(queue))
	for _, a := range queue {
		queued[a] = true
	}

	for head := 0; head < len(queue); head++ {
		current := queue[head]
		delete(queued, current)
		xi, xj := current[0], current[1]

		if !propagator.revise(domains, xi, xj) {
			continue
		}
		if domains.Size(xi) == 0 {
			propagator.stats.Failed = xi
			return false
		}

		// Values removed from Xi may have been the only support of its other neighbors
		for _, xk := range propagator.problem.Neighbors[xi] {
			if next := (arc{xk, xi}); xk != xj && !queued[next] {
				queued[next] = true
				queue = append(queue, next)
			}
		}
	}

	propagator.stats.Failed = -1
	return true
}

// Removes from Xi the values without support in Xj. Returns whether something was removed
func (propagator *propagatorAC3) revise(domains *Domains, xi, xj int) bool {
	propagator.stats.Revisions++
	classI, classJ := propagator.problem.Classes[xi], propagator.problem.Classes[xj]
	values, support := domains.Values(xi), domains.Values(xj)

	var kept []model.Assignment // Allocated at the first removal only
	for k, value := range values {
		supported := lo.ContainsBy(support, func(other model.Assignment) bool {
			return propagator.problem.evaluator.Consistent(classI, value, classJ, other)
		})

		if supported {
			if kept != nil {
				kept = append(kept, value)
			}
			continue
		}
		if kept == nil {
			kept = make([]model.Assignment, k, len(values))
			copy(kept, values[:k])
		}
		propagator.stats.Pruned++
	}

	if kept == nil {
		return false
	}
	domains.Replace(xi, kept)
	return true
}
