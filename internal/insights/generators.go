package insights

import (
	"fmt"
	"math"
	"sort"

	"royale-wrapped/internal/domain"
)

const (
	topLoyalCardLimit  = 3
	rareGemMinUsage    = 2
	peakHourMinSample  = 3
	nemesisStrongAfter = 5
	recentChangesLimit = 10
)

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func topLoyalCards(agg *Aggregates) []CardCount {
	cards := make([]CardCount, 0, len(agg.CardUsage))
	for name, count := range agg.CardUsage {
		cards = append(cards, CardCount{Name: name, Count: count})
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Count != cards[j].Count {
			return cards[i].Count > cards[j].Count
		}
		return cards[i].Name < cards[j].Name
	})
	if len(cards) > topLoyalCardLimit {
		cards = cards[:topLoyalCardLimit]
	}
	return cards
}

func longestWinStreak(records []domain.BattleRecord) int {
	var current, longest int
	for _, rec := range records {
		if !rec.Won {
			// Draws break the streak too.
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}

// comebackPercentage counts wins that immediately follow a loss or
// draw. The first battle of the sequence has nothing to come back
// from, so it never counts.
func comebackPercentage(records []domain.BattleRecord) float64 {
	var comebacks, wins int
	for i, rec := range records {
		if !rec.Won {
			continue
		}
		wins++
		if i > 0 && !records[i-1].Won {
			comebacks++
		}
	}
	if wins == 0 {
		return 0
	}
	return round1(float64(comebacks) / float64(wins) * 100)
}

// rareGem picks the under-played overperformer: at least two battles
// (single-battle flukes excluded), usage strictly below the median
// across all used cards, highest win rate. Nil when nothing qualifies.
func rareGem(agg *Aggregates) *RareGem {
	if len(agg.CardUsage) == 0 {
		return nil
	}
	median := medianUsage(agg.CardUsage)

	var best *RareGem
	var bestRate float64
	for name, usage := range agg.CardUsage {
		if usage < rareGemMinUsage || float64(usage) >= median {
			continue
		}
		rate := float64(agg.CardWins[name]) / float64(usage)
		if best != nil {
			switch {
			case rate < bestRate:
				continue
			case rate == bestRate && usage > best.Usage:
				continue
			case rate == bestRate && usage == best.Usage && name >= best.Name:
				continue
			}
		}
		best = &RareGem{Name: name, WinRate: round1(rate * 100), Usage: usage}
		bestRate = rate
	}
	return best
}

func medianUsage(usage map[string]int) float64 {
	counts := make([]int, 0, len(usage))
	for _, n := range usage {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	mid := len(counts) / 2
	if len(counts)%2 == 1 {
		return float64(counts[mid])
	}
	return float64(counts[mid-1]+counts[mid]) / 2
}

// nemesis is the opponent with the most own losses; more total battles
// wins a tie, then tag order. Without any losses the neutral fallback
// is returned instead of guessing.
func nemesis(agg *Aggregates) Nemesis {
	var bestTag string
	var best *OpponentRecord
	for tag, rec := range agg.Opponents {
		if rec.Losses == 0 {
			continue
		}
		if best != nil {
			switch {
			case rec.Losses < best.Losses:
				continue
			case rec.Losses == best.Losses && rec.Total < best.Total:
				continue
			case rec.Losses == best.Losses && rec.Total == best.Total && tag >= bestTag:
				continue
			}
		}
		bestTag, best = tag, rec
	}
	if best == nil {
		return Nemesis{
			Name:    "N/A",
			Tag:     "N/A",
			Message: "No nemesis yet. Keep battling!",
		}
	}

	msg := fmt.Sprintf("You and %s have unfinished business.", best.Name)
	if best.Losses >= nemesisStrongAfter {
		msg = fmt.Sprintf("%s is your nemesis: %d losses and counting.", best.Name, best.Losses)
	}
	return Nemesis{
		Name:    best.Name,
		Tag:     bestTag,
		Wins:    best.Wins,
		Losses:  best.Losses,
		Total:   best.Total,
		Message: msg,
	}
}

// peakHours picks the hour with the best win rate among hours with at
// least peakHourMinSample battles; ties go to the busier hour, then
// the earlier one. With no qualifying hour it falls back to the most
// played hour and marks the result low-confidence.
func peakHours(agg *Aggregates) PeakHours {
	if len(agg.Hours) == 0 {
		return PeakHours{Hour: "N/A"}
	}

	bestHour := -1
	var best *HourRecord
	for hour, rec := range agg.Hours {
		if rec.Total < peakHourMinSample {
			continue
		}
		if best != nil {
			lr, rr := winRate(best), winRate(rec)
			switch {
			case rr < lr:
				continue
			case rr == lr && rec.Total < best.Total:
				continue
			case rr == lr && rec.Total == best.Total && hour >= bestHour:
				continue
			}
		}
		bestHour, best = hour, rec
	}

	lowConfidence := best == nil
	if lowConfidence {
		for hour, rec := range agg.Hours {
			if best == nil || rec.Total > best.Total ||
				(rec.Total == best.Total && hour < bestHour) {
				bestHour, best = hour, rec
			}
		}
	}

	return PeakHours{
		Hour:          fmt.Sprintf("%02d:00 - %02d:00", bestHour, (bestHour+2)%24),
		WinRate:       round1(winRate(best) * 100),
		LowConfidence: lowConfidence,
	}
}

func winRate(rec *HourRecord) float64 {
	if rec.Total == 0 {
		return 0
	}
	return float64(rec.Wins) / float64(rec.Total)
}

func trophyRollerCoaster(profile domain.PlayerProfile, series []int) TrophyRollerCoaster {
	ride := TrophyRollerCoaster{
		Current:       profile.CurrentTrophies,
		Best:          profile.BestTrophies,
		RecentChanges: make([]int, 0, recentChangesLimit),
	}
	for _, delta := range series {
		if delta > 0 && delta > ride.BiggestGain {
			ride.BiggestGain = delta
		}
		if delta < 0 && delta < ride.BiggestLoss {
			ride.BiggestLoss = delta
		}
		if delta < 0 {
			ride.TotalSwing -= delta
		} else {
			ride.TotalSwing += delta
		}
	}
	start := len(series) - recentChangesLimit
	if start < 0 {
		start = 0
	}
	ride.RecentChanges = append(ride.RecentChanges, series[start:]...)
	return ride
}
