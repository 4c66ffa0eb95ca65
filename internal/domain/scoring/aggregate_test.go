package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfreview/internal/domain/catalog"
)

func twoMetricGroups() []catalog.PillarGroup {
	return catalog.Group([]catalog.WeightedMetric{
		{Metric: catalog.Metric{ID: "m1", Pillar: catalog.PillarKnowledge}, Weight: 30},
		{Metric: catalog.Metric{ID: "m2", Pillar: catalog.PillarBusiness}, Weight: 70},
	})
}

func TestAggregateWeightedExample(t *testing.T) {
	result := Aggregate(twoMetricGroups(), map[string]int{"m1": 4, "m2": 2})

	assert.Equal(t, 2.6, result.Final)
	assert.Equal(t, "Good", Classify(result.Final).Label)
	assert.False(t, result.Drift())
}

func TestAggregateUnsetCountsAsZero(t *testing.T) {
	// m2 stays in the denominator: an incomplete draft projects a deflated score.
	result := Aggregate(twoMetricGroups(), map[string]int{"m1": 4})

	assert.Equal(t, 1.2, result.Final)
	assert.Equal(t, "Poor", Classify(result.Final).Label)

	business := result.Pillars[3]
	require.NotNil(t, business.Score)
	assert.Equal(t, 0.0, *business.Score)
}

func TestAggregateEmptyPillarIsUndefined(t *testing.T) {
	result := Aggregate(twoMetricGroups(), map[string]int{"m1": 4, "m2": 2})

	require.Len(t, result.Pillars, 5)
	for _, pillar := range result.Pillars {
		switch pillar.Pillar {
		case catalog.PillarKnowledge:
			require.NotNil(t, pillar.Score)
			assert.Equal(t, 4.0, *pillar.Score)
		case catalog.PillarBusiness:
			require.NotNil(t, pillar.Score)
			assert.Equal(t, 2.0, *pillar.Score)
		default:
			assert.Nil(t, pillar.Score, "pillar %s", pillar.Pillar)
			assert.Zero(t, pillar.Weight)
		}
	}
}

func TestAggregateBoundaries(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	for _, role := range catalog.Roles {
		groups, err := cat.Groups(role)
		require.NoError(t, err)

		fives := map[string]int{}
		ones := map[string]int{}
		for _, group := range groups {
			for _, metric := range group.Metrics {
				fives[metric.ID] = 5
				ones[metric.ID] = 1
			}
		}

		top := Aggregate(groups, fives)
		assert.Equal(t, 5.0, top.Final, "role %s", role)
		assert.Equal(t, "Excellent", Classify(top.Final).Label)

		bottom := Aggregate(groups, ones)
		assert.Equal(t, 1.0, bottom.Final, "role %s", role)
		assert.Equal(t, "Poor", Classify(bottom.Final).Label)
	}
}

func TestAggregateIsMonotonic(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	groups, err := cat.Groups(catalog.RoleSupervisorAnalyst)
	require.NoError(t, err)

	base := map[string]int{}
	for _, group := range groups {
		for _, metric := range group.Metrics {
			base[metric.ID] = 3
		}
	}
	for id := range base {
		previous := -1.0
		for score := 0; score <= 5; score++ {
			scores := make(map[string]int, len(base))
			for k, v := range base {
				scores[k] = v
			}
			scores[id] = score
			final := Aggregate(groups, scores).Final
			assert.GreaterOrEqual(t, final, previous, "metric %s score %d", id, score)
			assert.GreaterOrEqual(t, final, 0.0)
			assert.LessOrEqual(t, final, 5.0)
			previous = final
		}
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	groups := twoMetricGroups()
	scores := map[string]int{"m1": 3, "m2": 5}

	first := Aggregate(groups, scores)
	second := Aggregate(groups, scores)
	assert.Equal(t, first, second)
}

func TestAggregateUsesActualWeightSum(t *testing.T) {
	groups := catalog.Group([]catalog.WeightedMetric{
		{Metric: catalog.Metric{ID: "a", Pillar: catalog.PillarPeople}, Weight: 40},
		{Metric: catalog.Metric{ID: "b", Pillar: catalog.PillarService}, Weight: 40},
	})

	result := Aggregate(groups, map[string]int{"a": 5, "b": 3})
	assert.True(t, result.Drift())
	assert.Equal(t, 80.0, result.TotalWeight)
	assert.Equal(t, 4.0, result.Final)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.67, Round2(11.0/3.0))
	assert.Equal(t, 2.6, Round2(2.6))
}
