package testsupport

import (
	"context"
	"slices"
	"sync"

	"scrubarr/internal/queue"
)

// FakeBackend is an in-memory queue backend that records every call.
type FakeBackend struct {
	mu sync.Mutex

	Items      []queue.Item
	FetchErr   error
	RefreshErr map[int]error
	DeleteErr  error

	FetchCalls   int
	Refreshed    []int
	DeleteCalls  [][]int
	RemoveClient []bool
}

// NewFakeBackend returns a backend that serves items.
func NewFakeBackend(items ...queue.Item) *FakeBackend {
	return &FakeBackend{Items: items, RefreshErr: make(map[int]error)}
}

func (f *FakeBackend) FetchQueue(ctx context.Context) ([]queue.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return slices.Clone(f.Items), nil
}

func (f *FakeBackend) RefreshSeries(_ context.Context, seriesID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Refreshed = append(f.Refreshed, seriesID)
	return f.RefreshErr[seriesID]
}

func (f *FakeBackend) DeleteQueueItems(_ context.Context, ids []int, removeFromClient bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls = append(f.DeleteCalls, slices.Clone(ids))
	f.RemoveClient = append(f.RemoveClient, removeFromClient)
	return f.DeleteErr
}

// ItemOption customizes an item built by NewItem.
type ItemOption func(*queue.Item)

// NewItem builds a queue item with the given id.
func NewItem(id int, opts ...ItemOption) queue.Item {
	item := queue.Item{ID: id}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// WithEpisode sets both series and episode ids.
func WithEpisode(seriesID, episodeID int) ItemOption {
	return func(i *queue.Item) {
		i.SeriesID = queue.IntPtr(seriesID)
		i.EpisodeID = queue.IntPtr(episodeID)
	}
}

// WithSeries sets only the series id.
func WithSeries(seriesID int) ItemOption {
	return func(i *queue.Item) {
		i.SeriesID = queue.IntPtr(seriesID)
	}
}

func WithScore(score int) ItemOption {
	return func(i *queue.Item) {
		i.QualityScore = score
	}
}

// WithStatus appends a status entry.
func WithStatus(title string, messages ...string) ItemOption {
	return func(i *queue.Item) {
		i.StatusMessages = append(i.StatusMessages, queue.StatusMessage{Title: title, Messages: messages})
	}
}

func WithTitle(title string) ItemOption {
	return func(i *queue.Item) {
		i.SeriesTitle = title
	}
}
