package insights

import (
	"sort"
	"strings"

	"royale-wrapped/internal/domain"
)

// OpponentRecord counts results against one opponent from the own
// perspective: Losses are battles the player lost to them.
type OpponentRecord struct {
	Name   string
	Wins   int
	Losses int
	Total  int
}

type HourRecord struct {
	Wins  int
	Total int
}

// Aggregates is the output of the single chronological pass over the
// canonical sequence. It is built fresh per invocation and passed
// explicitly into each generator.
type Aggregates struct {
	CardUsage map[string]int
	CardWins  map[string]int
	Opponents map[string]*OpponentRecord
	Hours     map[int]*HourRecord

	// TrophySeries holds trophy deltas aligned to the canonical order,
	// restricted to battles where the delta is present and non-zero.
	TrophySeries []int

	TotalWins int

	deckCounts map[string]int
	deckCards  map[string][]string
}

const deckKeySep = "|"

// Aggregate runs the single O(n) traversal.
func Aggregate(records []domain.BattleRecord) *Aggregates {
	agg := &Aggregates{
		CardUsage:    make(map[string]int),
		CardWins:     make(map[string]int),
		Opponents:    make(map[string]*OpponentRecord),
		Hours:        make(map[int]*HourRecord),
		TrophySeries: make([]int, 0, len(records)),
		deckCounts:   make(map[string]int),
		deckCards:    make(map[string][]string),
	}

	for _, rec := range records {
		// Each card counts once per battle, regardless of level or combos.
		for _, card := range rec.OwnCards {
			agg.CardUsage[card]++
			if rec.Won {
				agg.CardWins[card]++
			}
		}

		key := deckKey(rec.OwnCards)
		agg.deckCounts[key]++
		if _, ok := agg.deckCards[key]; !ok {
			agg.deckCards[key] = rec.OwnCards
		}

		opp, ok := agg.Opponents[rec.OpponentTag]
		if !ok {
			opp = &OpponentRecord{Name: rec.OpponentName}
			agg.Opponents[rec.OpponentTag] = opp
		}
		opp.Total++
		switch {
		case rec.Won:
			opp.Wins++
		case rec.OpponentCrowns > rec.OwnCrowns:
			opp.Losses++
		}

		hour := rec.Timestamp.Hour()
		hr, ok := agg.Hours[hour]
		if !ok {
			hr = &HourRecord{}
			agg.Hours[hour] = hr
		}
		hr.Total++
		if rec.Won {
			hr.Wins++
		}

		if rec.TrophyChange != 0 {
			agg.TrophySeries = append(agg.TrophySeries, rec.TrophyChange)
		}
		if rec.Won {
			agg.TotalWins++
		}
	}
	return agg
}

// deckKey is order-insensitive so the same eight cards played in a
// different slot order still count as one deck.
func deckKey(cards []string) string {
	sorted := make([]string, len(cards))
	copy(sorted, cards)
	sort.Strings(sorted)
	return strings.Join(sorted, deckKeySep)
}
