package triage

import (
	"context"
	"log/slog"

	"scrubarr/internal/logging"
	"scrubarr/internal/queue"
)

// Decision is the classification of one queue item.
type Decision struct {
	Item        queue.Item  `json:"item"`
	Disposition Disposition `json:"disposition"`
	// Rule names the status rule that matched, if any.
	Rule string `json:"rule,omitempty"`
	// SupersededBy is the winning item id when Disposition is Superseded.
	SupersededBy int `json:"supersededBy,omitempty"`
}

// Plan is the result of classifying one queue snapshot.
type Plan struct {
	Decisions []Decision `json:"decisions"`
	// RefreshSeries lists distinct series ids in first-seen order.
	RefreshSeries []int `json:"refreshSeries"`
	// DeleteIDs lists distinct item ids in the order they were marked.
	DeleteIDs []int                     `json:"deleteIds"`
	Leaders   map[queue.DedupKey]Leader `json:"-"`
}

// Counts tallies decisions by disposition.
func (p Plan) Counts() map[Disposition]int {
	counts := make(map[Disposition]int, 4)
	for _, d := range p.Decisions {
		counts[d.Disposition]++
	}
	return counts
}

// Classify runs the classifier over items in the order given. Items without a
// dedup key never touch the scoreboard. A nil rules slice uses DefaultRules.
func Classify(items []queue.Item, rules []Rule, logger *slog.Logger) Plan {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	state := newCycleState(len(items))
	for _, item := range items {
		classifyItem(state, item, rules, logger)
	}
	return state.plan()
}

func classifyItem(state *cycleState, item queue.Item, rules []Rule, logger *slog.Logger) {
	decision := Decision{Item: item, Disposition: Ignore}

	if key, ok := item.DedupKey(); ok {
		outcome, prev := state.board.Compare(key, item.ID, item.QualityScore)
		switch outcome {
		case Rejected:
			logger.Debug("queue item superseded",
				logging.String(logging.FieldEventType, "item_superseded"),
				logging.Int("item_id", item.ID),
				logging.Int("winner_id", prev.ItemID),
				logging.String("dedup_key", key.String()),
				logging.Int("score", item.QualityScore),
				logging.Int("winner_score", prev.Score),
			)
			decision.Disposition = Superseded
			decision.SupersededBy = prev.ItemID
			state.deletes.add(item.ID)
			state.record(decision)
			return
		case Promoted:
			logger.Debug("queue item superseded",
				logging.String(logging.FieldEventType, "item_superseded"),
				logging.Int("item_id", prev.ItemID),
				logging.Int("winner_id", item.ID),
				logging.String("dedup_key", key.String()),
				logging.Int("score", prev.Score),
				logging.Int("winner_score", item.QualityScore),
			)
			state.supersede(prev.ItemID, item.ID)
		}
	}

	if rule, ok := match(item.Texts, rules); ok {
		decision.Disposition = rule.Disposition
		decision.Rule = rule.Name
		switch rule.Disposition {
		case Monitor:
			if seriesID, ok := item.Series(); ok && state.refresh.add(seriesID) {
				logger.Debug("found TBA title",
					logging.String(logging.FieldEventType, "tba_detected"),
					logging.Int("series_id", seriesID),
					logging.String("series", item.DisplayTitle()),
				)
			}
		case Delete, Superseded:
			state.deletes.add(item.ID)
		}
	}

	logging.Trace(context.Background(), logger, "queue item classified",
		logging.Int("item_id", item.ID),
		logging.String("disposition", decision.Disposition.String()),
		logging.String("rule", decision.Rule),
	)
	state.record(decision)
}
