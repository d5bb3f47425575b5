package insights

import (
	_ "embed"
	"encoding/json"
	"sort"
)

// Role buckets a card by its strategic function. The archetype rules
// key off roles and average elixir cost, not individual card names.
type Role string

const (
	RoleTank     Role = "tank"
	RoleSiege    Role = "siege"
	RoleBuilding Role = "building"
	RoleSwarm    Role = "swarm"
	RoleSpam     Role = "spam"
	RoleSpell    Role = "spell"
	RoleSupport  Role = "support"
)

// CardMeta is static game data: elixir cost and role per card. It is
// embedded so the rule table can be corrected without touching the
// classification control flow.
type CardMeta struct {
	Name   string `json:"name"`
	Elixir int    `json:"elixir"`
	Role   Role   `json:"role"`
}

//go:embed cards.json
var cardDataJSON []byte

var cardIndex = loadCardIndex()

func loadCardIndex() map[string]CardMeta {
	var data struct {
		Cards []CardMeta `json:"cards"`
	}
	if err := json.Unmarshal(cardDataJSON, &data); err != nil {
		panic("insights: invalid embedded card data: " + err.Error())
	}
	index := make(map[string]CardMeta, len(data.Cards))
	for _, c := range data.Cards {
		index[c.Name] = c
	}
	return index
}

const (
	cheapDeckMaxElixir     = 3.2
	expensiveDeckMinElixir = 4.0
)

// archetypeRule is one row of the classification table. A rule matches
// when every set constraint holds; rules are evaluated in order and
// the first match wins, so the slice order is the documented priority.
type archetypeRule struct {
	Label        string
	MinRoles     map[Role]int
	MinAvgElixir float64
	MaxAvgElixir float64
	MinSpells    int
}

var archetypeRules = []archetypeRule{
	{Label: "Siege", MinRoles: map[Role]int{RoleSiege: 1}},
	{Label: "Beatdown", MinRoles: map[Role]int{RoleTank: 1}},
	{Label: "Cycle", MaxAvgElixir: cheapDeckMaxElixir},
	{Label: "Bridge Spam", MinRoles: map[Role]int{RoleSpam: 2}},
	{Label: "Control", MinRoles: map[Role]int{RoleBuilding: 1}, MinSpells: 2},
	{Label: "Control", MinAvgElixir: expensiveDeckMinElixir, MinSpells: 2},
	{Label: "Balanced"},
}

type deckSignal struct {
	avgElixir  float64
	knownCards int
	roles      map[Role]int
}

func (r archetypeRule) matches(s deckSignal) bool {
	if r.MinAvgElixir > 0 && s.avgElixir < r.MinAvgElixir {
		return false
	}
	if r.MaxAvgElixir > 0 && s.avgElixir > r.MaxAvgElixir {
		return false
	}
	if s.roles[RoleSpell] < r.MinSpells {
		return false
	}
	for role, min := range r.MinRoles {
		if s.roles[role] < min {
			return false
		}
	}
	return true
}

// deckArchetype classifies the player's signature deck: the most
// common exact eight-card deck when one was played at least twice,
// otherwise the eight most-used cards overall. Cards without metadata
// contribute nothing to the signal but still count everywhere else.
func deckArchetype(agg *Aggregates) string {
	deck := signatureDeck(agg)
	if len(deck) == 0 {
		return "Unknown"
	}

	sig := deckSignal{roles: make(map[Role]int)}
	var elixirSum int
	for _, name := range deck {
		meta, ok := cardIndex[name]
		if !ok {
			continue
		}
		sig.knownCards++
		elixirSum += meta.Elixir
		sig.roles[meta.Role]++
	}
	if sig.knownCards == 0 {
		return "Balanced"
	}
	sig.avgElixir = float64(elixirSum) / float64(sig.knownCards)

	for _, rule := range archetypeRules {
		if rule.matches(sig) {
			return rule.Label
		}
	}
	return "Balanced"
}

func signatureDeck(agg *Aggregates) []string {
	var bestKey string
	var bestCount int
	for key, count := range agg.deckCounts {
		if count > bestCount || (count == bestCount && key < bestKey) {
			bestKey, bestCount = key, count
		}
	}
	if bestCount >= 2 {
		return agg.deckCards[bestKey]
	}

	// Decks vary battle to battle: fall back to the eight most-used
	// cards overall.
	top := topUsedCards(agg.CardUsage, 8)
	return top
}

func topUsedCards(usage map[string]int, limit int) []string {
	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if usage[names[i]] != usage[names[j]] {
			return usage[names[i]] > usage[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}
