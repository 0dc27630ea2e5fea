package triage

import (
	"maps"

	"scrubarr/internal/queue"
)

// Leader is the highest-scoring item seen so far for one dedup key.
type Leader struct {
	ItemID int `json:"itemId"`
	Score  int `json:"score"`
}

// Outcome describes what a Scoreboard comparison did.
type Outcome int

const (
	// Inserted means the key had no leader; the incoming item became it.
	Inserted Outcome = iota
	// Tied means the incoming score equals the leader's; nothing changed.
	Tied
	// Promoted means the incoming item displaced the previous leader.
	Promoted
	// Rejected means the incoming item lost to the current leader.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Tied:
		return "tied"
	case Promoted:
		return "promoted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Scoreboard tracks one leader per dedup key for the lifetime of a cycle.
// It is not safe for concurrent use.
type Scoreboard struct {
	leaders map[queue.DedupKey]Leader
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{leaders: make(map[queue.DedupKey]Leader)}
}

// Compare runs leader election for key with the incoming item. prev is the
// leader before the comparison; it is meaningful for Tied, Promoted, and
// Rejected.
func (s *Scoreboard) Compare(key queue.DedupKey, itemID, score int) (outcome Outcome, prev Leader) {
	existing, ok := s.leaders[key]
	switch {
	case !ok:
		s.leaders[key] = Leader{ItemID: itemID, Score: score}
		return Inserted, Leader{}
	case existing.Score == score:
		return Tied, existing
	case existing.Score < score:
		s.leaders[key] = Leader{ItemID: itemID, Score: score}
		return Promoted, existing
	default:
		return Rejected, existing
	}
}

// Leader returns the current leader for key.
func (s *Scoreboard) Leader(key queue.DedupKey) (Leader, bool) {
	leader, ok := s.leaders[key]
	return leader, ok
}

func (s *Scoreboard) Len() int {
	return len(s.leaders)
}

// Snapshot copies the current leaders.
func (s *Scoreboard) Snapshot() map[queue.DedupKey]Leader {
	return maps.Clone(s.leaders)
}
