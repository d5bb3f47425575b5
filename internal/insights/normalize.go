// Package insights derives a wrapped-style report from a player's
// battle log and profile snapshot. Everything in here is a pure
// function of its inputs: no I/O, no logging, no state shared between
// invocations.
package insights

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"royale-wrapped/internal/domain"
)

// ErrMalformedBattleLog is returned when the battle log bytes are not a
// JSON array of battle objects. It is the only condition under which
// the engine refuses to produce a report; per-record defects are
// filtered during normalization instead.
var ErrMalformedBattleLog = errors.New("battle log is not a JSON array of battles")

// battleTimeLayout is the Supercell timestamp format, e.g.
// "20240101T120000.000Z". RFC 3339 is accepted as a fallback.
const battleTimeLayout = "20060102T150405.000Z"

// RawBattle mirrors one entry of the upstream battle log. Field
// presence is not guaranteed; pointer fields distinguish "absent" from
// zero so missing data is dropped rather than defaulted.
type RawBattle struct {
	BattleTime string       `json:"battleTime"`
	Team       []SidePlayer `json:"team"`
	Opponent   []SidePlayer `json:"opponent"`
}

type SidePlayer struct {
	Tag          string     `json:"tag"`
	Name         string     `json:"name"`
	Crowns       *int       `json:"crowns"`
	TrophyChange *int       `json:"trophyChange"`
	Cards        []CardName `json:"cards"`
}

// CardName accepts either a bare string or the API's card object form
// {"name": "..."}.
type CardName string

func (c *CardName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = CardName(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("card entry: %w", err)
	}
	*c = CardName(obj.Name)
	return nil
}

// ParseBattleLog decodes raw battle log bytes. Empty input yields an
// empty slice; structurally invalid input yields ErrMalformedBattleLog.
func ParseBattleLog(data []byte) ([]RawBattle, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raws []RawBattle
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBattleLog, err)
	}
	return raws, nil
}

// Normalize converts raw battle entries into the canonical sequence:
// sorted by timestamp ascending (stable, so ties keep input order),
// with defective records excluded. ownTag identifies which side of
// each two-team record is "own". An empty result is not an error;
// every generator handles the empty sequence explicitly.
func Normalize(raws []RawBattle, ownTag string) []domain.BattleRecord {
	records := make([]domain.BattleRecord, 0, len(raws))
	for _, rb := range raws {
		rec, ok := normalizeBattle(rb, ownTag)
		if ok {
			records = append(records, rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records
}

func normalizeBattle(rb RawBattle, ownTag string) (domain.BattleRecord, bool) {
	ts, err := parseBattleTime(rb.BattleTime)
	if err != nil {
		return domain.BattleRecord{}, false
	}

	own, opp := rb.Team, rb.Opponent
	ownIdx := indexOfTag(own, ownTag)
	if ownIdx < 0 {
		if j := indexOfTag(rb.Opponent, ownTag); j >= 0 {
			own, opp = rb.Opponent, rb.Team
			ownIdx = j
		} else {
			// The API puts the requested player in "team" by
			// convention; trust that when neither side matches.
			ownIdx = 0
		}
	}
	if len(own) == 0 || len(opp) == 0 {
		return domain.BattleRecord{}, false
	}

	ownP := own[ownIdx]
	oppP := opp[0]
	switch {
	case len(ownP.Cards) < 8:
		return domain.BattleRecord{}, false
	case ownP.Crowns == nil || oppP.Crowns == nil:
		return domain.BattleRecord{}, false
	case oppP.Tag == "":
		// No opponent tag means a non-PvP mode.
		return domain.BattleRecord{}, false
	}

	cards := make([]string, len(ownP.Cards))
	for i, c := range ownP.Cards {
		cards[i] = string(c)
	}

	rec := domain.BattleRecord{
		Timestamp:      ts,
		OwnCards:       cards,
		OwnCrowns:      *ownP.Crowns,
		OpponentCrowns: *oppP.Crowns,
		Won:            *ownP.Crowns > *oppP.Crowns,
		OpponentTag:    oppP.Tag,
		OpponentName:   oppP.Name,
	}
	if ownP.TrophyChange != nil {
		rec.TrophyChange = *ownP.TrophyChange
	}
	return rec, true
}

func parseBattleTime(s string) (time.Time, error) {
	if t, err := time.Parse(battleTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func indexOfTag(side []SidePlayer, tag string) int {
	for i, p := range side {
		if p.Tag != "" && p.Tag == tag {
			return i
		}
	}
	return -1
}
