package csp

import (
	"testing"

	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropagateReachesArcConsistency(t *testing.T) {
	//** Arrange
	problem := NewProblem(loadCatalogue(t), StrictRooms)
	before := problem.Domains.Clone()
	propagator := NewPropagator(problem)

	//** Act
	consistent := propagator.Propagate(problem.Domains)

	//** Assert
	require.True(t, consistent)
	for i, class := range problem.Classes {
		for _, value := range problem.Domains.Values(i) {
			assert.True(t, before.Contains(i, value)) // Domains only shrink

			for _, j := range problem.Neighbors[i] {
				supported := lo.ContainsBy(problem.Domains.Values(j), func(other model.Assignment) bool {
					return problem.evaluator.Consistent(class, value, problem.Classes[j], other)
				})
				assert.True(t, supported, "%v has no support in %v", problem.Describe(i), problem.Describe(j))
			}
		}
	}
	assert.Equal(t, uint64(before.Total()-problem.Domains.Total()), propagator.Stats().Pruned)
	assert.Equal(t, -1, propagator.Stats().Failed)
}

func TestPropagateIsIdempotent(t *testing.T) {
	//** Arrange
	problem := NewProblem(loadCatalogue(t), StrictRooms)
	propagator := NewPropagator(problem)
	require.True(t, propagator.Propagate(problem.Domains))
	fixedPoint := problem.Domains.Clone()
	pruned := propagator.Stats().Pruned

	//** Act
	consistent := propagator.Propagate(problem.Domains)

	//** Assert
	assert.True(t, consistent)
	assert.Equal(t, pruned, propagator.Stats().Pruned)
	for i := range problem.Classes {
		assert.Equal(t, fixedPoint.Values(i), problem.Domains.Values(i))
	}
}

func TestPropagateFromMatchesPropagate(t *testing.T) {
	//** Arrange
	problem := NewProblem(loadCatalogue(t), StrictRooms)
	propagator := NewPropagator(problem)
	require.True(t, propagator.Propagate(problem.Domains))

	for class := 0; class < len(problem.Classes); class += 5 {
		for _, value := range problem.Domains.Values(class)[:1] {
			incremental, full := problem.Domains.Clone(), problem.Domains.Clone()
			incremental.Replace(class, []model.Assignment{value})
			full.Replace(class, []model.Assignment{value})

			//** Act
			incrementalConsistent := propagator.PropagateFrom(incremental, class)
			fullConsistent := propagator.Propagate(full)

			//** Assert
			require.Equal(t, fullConsistent, incrementalConsistent)
			if fullConsistent {
				for i := range problem.Classes {
					assert.Equal(t, full.Values(i), incremental.Values(i))
				}
			}
		}
	}
}

func TestPropagateDetectsWipeout(t *testing.T) {
	//** Arrange
	raw := courseSeminarCatalogue()
	raw.TimeSlots = raw.TimeSlots[:1]
	for i := range raw.Rooms {
		raw.Rooms[i].PossibleTimes = []uint64{1}
	}
	problem := newTestProblem(t, raw)
	propagator := NewPropagator(problem)

	//** Act
	consistent := propagator.Propagate(problem.Domains)

	//** Assert
	assert.False(t, consistent)
	failed := propagator.Stats().Failed
	require.GreaterOrEqual(t, failed, 0)
	assert.Zero(t, problem.Domains.Size(failed))
}

func TestPropagateOrdersCourseAndSeminar(t *testing.T) {
	//** Arrange
	problem := newTestProblem(t, courseSeminarCatalogue())
	propagator := NewPropagator(problem)

	//** Act
	consistent := propagator.Propagate(problem.Domains)

	//** Assert
	require.True(t, consistent)
	// Slot 1 (code 2) is Monday 08:00 and slot 0 (code 1) is Monday 10:00
	assert.Equal(t, []model.Assignment{{Teacher: 0, Slot: 1, Room: 0}}, problem.Domains.Values(0))
	assert.Equal(t, []model.Assignment{{Teacher: 0, Slot: 0, Room: 1}}, problem.Domains.Values(1))
}
