package queue

import (
	"fmt"
	"strings"
)

// StatusMessage is one status entry attached to a queue item. Title is
// optional and may be empty.
type StatusMessage struct {
	Title    string   `json:"title,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

// Item is a single entry in a backend download queue.
type Item struct {
	ID             int             `json:"id"`
	SeriesID       *int            `json:"seriesId,omitempty"`
	EpisodeID      *int            `json:"episodeId,omitempty"`
	SeriesTitle    string          `json:"seriesTitle,omitempty"`
	Title          string          `json:"title,omitempty"`
	StatusMessages []StatusMessage `json:"statusMessages,omitempty"`
	QualityScore   int             `json:"qualityScore"`
}

// DedupKey identifies the media unit a download targets.
type DedupKey struct {
	SeriesID  int
	EpisodeID int
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%d-%d", k.SeriesID, k.EpisodeID)
}

// DedupKey returns the item's (series, episode) key. ok is false when either
// identifier is missing.
func (i Item) DedupKey() (DedupKey, bool) {
	if i.SeriesID == nil || i.EpisodeID == nil {
		return DedupKey{}, false
	}
	return DedupKey{SeriesID: *i.SeriesID, EpisodeID: *i.EpisodeID}, true
}

// Series returns the series identifier when present.
func (i Item) Series() (int, bool) {
	if i.SeriesID == nil {
		return 0, false
	}
	return *i.SeriesID, true
}

// DisplayTitle picks the most readable label for logs and CLI output.
func (i Item) DisplayTitle() string {
	if title := strings.TrimSpace(i.SeriesTitle); title != "" {
		return title
	}
	if title := strings.TrimSpace(i.Title); title != "" {
		return title
	}
	return fmt.Sprintf("queue item %d", i.ID)
}

// Texts walks every status title and message in order, stopping when fn
// returns false. Empty titles are skipped.
func (i Item) Texts(fn func(entry int, text string) bool) {
	for idx, status := range i.StatusMessages {
		if status.Title != "" {
			if !fn(idx, status.Title) {
				return
			}
		}
		for _, message := range status.Messages {
			if !fn(idx, message) {
				return
			}
		}
	}
}

// IntPtr is a small helper for building optional identifiers.
func IntPtr(v int) *int {
	return &v
}
