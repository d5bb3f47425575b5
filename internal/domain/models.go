package domain

import (
	"time"
)

// PlayerProfile is the identity snapshot the insights engine reads.
// It is never mutated by the engine.
type PlayerProfile struct {
	Name            string
	Tag             string
	CurrentTrophies int
	BestTrophies    int
}

// BattleRecord is one finished PvP match in canonical form, immutable
// once normalized. The canonical sequence is ordered by Timestamp
// ascending.
type BattleRecord struct {
	Timestamp      time.Time
	OwnCards       []string
	OwnCrowns      int
	OpponentCrowns int
	Won            bool
	OpponentTag    string
	OpponentName   string
	TrophyChange   int
}

// Snapshot caches the raw upstream payloads for one player tag so a
// repeated request within the TTL does not hit the Clash Royale API
// again. Reports themselves are never stored.
type Snapshot struct {
	Tag           string
	PlayerJSON    []byte
	BattleLogJSON []byte
	FetchedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
