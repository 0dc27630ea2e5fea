package triage_test

import (
	"testing"

	"scrubarr/internal/queue"
	"scrubarr/internal/triage"
)

func TestScoreboardCompare(t *testing.T) {
	key := queue.DedupKey{SeriesID: 1, EpisodeID: 2}
	tests := []struct {
		name        string
		first       int
		second      int
		wantOutcome triage.Outcome
		wantLeader  triage.Leader
	}{
		{name: "promote higher", first: 5, second: 9, wantOutcome: triage.Promoted, wantLeader: triage.Leader{ItemID: 20, Score: 9}},
		{name: "reject lower", first: 9, second: 5, wantOutcome: triage.Rejected, wantLeader: triage.Leader{ItemID: 10, Score: 9}},
		{name: "tie keeps leader", first: 7, second: 7, wantOutcome: triage.Tied, wantLeader: triage.Leader{ItemID: 10, Score: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := triage.NewScoreboard()
			if outcome, _ := board.Compare(key, 10, tt.first); outcome != triage.Inserted {
				t.Fatalf("first compare = %v, want inserted", outcome)
			}
			outcome, prev := board.Compare(key, 20, tt.second)
			if outcome != tt.wantOutcome {
				t.Fatalf("outcome = %v, want %v", outcome, tt.wantOutcome)
			}
			if prev != (triage.Leader{ItemID: 10, Score: tt.first}) {
				t.Fatalf("prev = %+v", prev)
			}
			leader, ok := board.Leader(key)
			if !ok || leader != tt.wantLeader {
				t.Fatalf("leader = %+v (%v), want %+v", leader, ok, tt.wantLeader)
			}
		})
	}
}

func TestScoreboardKeysAreIndependent(t *testing.T) {
	board := triage.NewScoreboard()
	board.Compare(queue.DedupKey{SeriesID: 1, EpisodeID: 1}, 1, 100)
	outcome, _ := board.Compare(queue.DedupKey{SeriesID: 1, EpisodeID: 2}, 2, 1)
	if outcome != triage.Inserted {
		t.Fatalf("expected distinct key to insert, got %v", outcome)
	}
	if board.Len() != 2 {
		t.Fatalf("expected two leaders, got %d", board.Len())
	}
	snapshot := board.Snapshot()
	snapshot[queue.DedupKey{SeriesID: 9, EpisodeID: 9}] = triage.Leader{}
	if board.Len() != 2 {
		t.Fatal("snapshot must not alias scoreboard state")
	}
}
