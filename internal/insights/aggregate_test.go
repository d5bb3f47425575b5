package insights_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"royale-wrapped/internal/domain"
	"royale-wrapped/internal/insights"
)

var baseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// battle builds a canonical record n minutes after baseTime.
func battle(n int, won bool, mod func(*domain.BattleRecord)) domain.BattleRecord {
	rec := domain.BattleRecord{
		Timestamp:      baseTime.Add(time.Duration(n) * time.Minute),
		OwnCards:       []string{"Hog Rider", "Ice Spirit", "Skeletons", "Cannon", "Musketeer", "Fireball", "The Log", "Ice Golem"},
		OpponentTag:    "#OPP",
		OpponentName:   "Foe",
		OwnCrowns:      0,
		OpponentCrowns: 1,
	}
	if won {
		rec.OwnCrowns, rec.OpponentCrowns = 2, 1
		rec.Won = true
	}
	if mod != nil {
		mod(&rec)
	}
	return rec
}

func TestAggregate_CardCountsOncePerBattle(t *testing.T) {
	records := []domain.BattleRecord{
		battle(0, true, nil),
		battle(1, false, nil),
	}
	agg := insights.Aggregate(records)

	assert.Equal(t, 2, agg.CardUsage["Hog Rider"])
	assert.Equal(t, 1, agg.CardWins["Hog Rider"])
	assert.Equal(t, 2, agg.CardUsage["Fireball"])
	assert.Equal(t, 1, agg.TotalWins)
}

func TestAggregate_OpponentStatsFromOwnPerspective(t *testing.T) {
	records := []domain.BattleRecord{
		battle(0, true, nil),
		battle(1, false, nil),
		// Draw: counts toward total, neither wins nor losses.
		battle(2, false, func(r *domain.BattleRecord) {
			r.OwnCrowns, r.OpponentCrowns = 1, 1
		}),
		battle(3, false, func(r *domain.BattleRecord) {
			r.OpponentTag, r.OpponentName = "#OTHER", "Other"
		}),
	}
	agg := insights.Aggregate(records)
	require.Len(t, agg.Opponents, 2)

	opp := agg.Opponents["#OPP"]
	require.NotNil(t, opp)
	assert.Equal(t, "Foe", opp.Name)
	assert.Equal(t, 1, opp.Wins)
	assert.Equal(t, 1, opp.Losses)
	assert.Equal(t, 3, opp.Total)

	assert.Equal(t, 1, agg.Opponents["#OTHER"].Losses)
}

func TestAggregate_HourStats(t *testing.T) {
	records := []domain.BattleRecord{
		battle(0, true, nil),  // 09:00
		battle(30, false, nil), // 09:30
		battle(0, true, func(r *domain.BattleRecord) {
			r.Timestamp = time.Date(2024, 1, 1, 14, 5, 0, 0, time.UTC)
		}),
	}
	agg := insights.Aggregate(records)

	require.NotNil(t, agg.Hours[9])
	assert.Equal(t, 2, agg.Hours[9].Total)
	assert.Equal(t, 1, agg.Hours[9].Wins)
	require.NotNil(t, agg.Hours[14])
	assert.Equal(t, 1, agg.Hours[14].Wins)
}

func TestAggregate_TrophySeriesSkipsAbsentAndZero(t *testing.T) {
	records := []domain.BattleRecord{
		battle(0, true, func(r *domain.BattleRecord) { r.TrophyChange = 30 }),
		battle(1, false, nil), // no trophy change (non-ladder)
		battle(2, false, func(r *domain.BattleRecord) { r.TrophyChange = -28 }),
	}
	agg := insights.Aggregate(records)
	assert.Equal(t, []int{30, -28}, agg.TrophySeries)
}

func TestAggregate_EmptySequence(t *testing.T) {
	agg := insights.Aggregate(nil)
	assert.Empty(t, agg.CardUsage)
	assert.Empty(t, agg.Opponents)
	assert.Empty(t, agg.Hours)
	assert.Empty(t, agg.TrophySeries)
	assert.Zero(t, agg.TotalWins)
}
