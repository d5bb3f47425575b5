package insights

import (
	"royale-wrapped/internal/domain"
)

// Report is the assembled wrapped report. It is a plain value: once
// built it is never mutated, cached, or persisted by the engine.
type Report struct {
	TopLoyalCards          []CardCount         `json:"top_loyal_cards"`
	LongestWinStreak       int                 `json:"longest_win_streak"`
	ComebackKingPercentage float64             `json:"comeback_king_percentage"`
	DeckArchetype          string              `json:"deck_archetype"`
	RareGem                *RareGem            `json:"rare_gem"`
	Nemesis                Nemesis             `json:"nemesis"`
	PeakPerformanceHours   PeakHours           `json:"peak_performance_hours"`
	TrophyRollerCoaster    TrophyRollerCoaster `json:"trophy_roller_coaster"`
	PlayerName             string              `json:"player_name"`
	PlayerTag              string              `json:"player_tag"`
}

type CardCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type RareGem struct {
	Name    string  `json:"name"`
	WinRate float64 `json:"win_rate"`
	Usage   int     `json:"usage"`
}

type Nemesis struct {
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

type PeakHours struct {
	Hour    string  `json:"hour"`
	WinRate float64 `json:"win_rate"`

	// LowConfidence marks a fallback pick that did not meet the
	// minimum sample; the value is still returned.
	LowConfidence bool `json:"-"`
}

type TrophyRollerCoaster struct {
	Current       int   `json:"current"`
	Best          int   `json:"best"`
	BiggestGain   int   `json:"biggest_gain"`
	BiggestLoss   int   `json:"biggest_loss"`
	TotalSwing    int   `json:"total_swing"`
	RecentChanges []int `json:"recent_changes"`
}

// Analyze runs the aggregation pass once and assembles all eight
// insights plus the profile identity fields. It tolerates an empty
// sequence: every field falls back to its documented neutral value.
func Analyze(profile domain.PlayerProfile, records []domain.BattleRecord) *Report {
	agg := Aggregate(records)

	return &Report{
		TopLoyalCards:          topLoyalCards(agg),
		LongestWinStreak:       longestWinStreak(records),
		ComebackKingPercentage: comebackPercentage(records),
		DeckArchetype:          deckArchetype(agg),
		RareGem:                rareGem(agg),
		Nemesis:                nemesis(agg),
		PeakPerformanceHours:   peakHours(agg),
		TrophyRollerCoaster:    trophyRollerCoaster(profile, agg.TrophySeries),
		PlayerName:             profile.Name,
		PlayerTag:              profile.Tag,
	}
}
