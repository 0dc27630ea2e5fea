package triage

import "slices"

// orderedSet keeps first-insertion order and drops repeats.
type orderedSet struct {
	seen  map[int]struct{}
	items []int
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[int]struct{})}
}

// add returns false when v was already present.
func (s *orderedSet) add(v int) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet) values() []int {
	return slices.Clone(s.items)
}

// cycleState is everything one classification pass mutates. It is built at
// the start of a pass and dropped once the Plan has been extracted.
type cycleState struct {
	board     *Scoreboard
	refresh   *orderedSet
	deletes   *orderedSet
	decisions []Decision
	// position maps item id to its index in decisions.
	position map[int]int
}

func newCycleState(capacity int) *cycleState {
	return &cycleState{
		board:     NewScoreboard(),
		refresh:   newOrderedSet(),
		deletes:   newOrderedSet(),
		decisions: make([]Decision, 0, capacity),
		position:  make(map[int]int, capacity),
	}
}

func (s *cycleState) record(d Decision) {
	s.position[d.Item.ID] = len(s.decisions)
	s.decisions = append(s.decisions, d)
}

// supersede retroactively marks an earlier leader as superseded by winner.
// A refresh already queued for the displaced item is kept.
func (s *cycleState) supersede(itemID, winner int) {
	s.deletes.add(itemID)
	if idx, ok := s.position[itemID]; ok {
		s.decisions[idx].Disposition = Superseded
		s.decisions[idx].SupersededBy = winner
	}
}

func (s *cycleState) plan() Plan {
	return Plan{
		Decisions:     s.decisions,
		RefreshSeries: s.refresh.values(),
		DeleteIDs:     s.deletes.values(),
		Leaders:       s.board.Snapshot(),
	}
}
