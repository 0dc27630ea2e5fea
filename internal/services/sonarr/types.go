package sonarr

import "scrubarr/internal/queue"

// StatusMessage mirrors Sonarr's TrackedDownloadStatusMessage.
type StatusMessage struct {
	Title    string   `json:"title"`
	Messages []string `json:"messages"`
}

// SeriesRef is the embedded series returned with includeSeries=true.
type SeriesRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// QueueRecord is one entry of GET /api/v3/queue.
type QueueRecord struct {
	ID                    int             `json:"id"`
	SeriesID              *int            `json:"seriesId"`
	EpisodeID             *int            `json:"episodeId"`
	Series                *SeriesRef      `json:"series"`
	Title                 string          `json:"title"`
	Status                string          `json:"status"`
	TrackedDownloadStatus string          `json:"trackedDownloadStatus"`
	TrackedDownloadState  string          `json:"trackedDownloadState"`
	StatusMessages        []StatusMessage `json:"statusMessages"`
	CustomFormatScore     int             `json:"customFormatScore"`
	DownloadID            string          `json:"downloadId"`
	Protocol              string          `json:"protocol"`
	DownloadClient        string          `json:"downloadClient"`
}

// QueuePage is the paging envelope around queue records.
type QueuePage struct {
	Page         int           `json:"page"`
	PageSize     int           `json:"pageSize"`
	TotalRecords int           `json:"totalRecords"`
	Records      []QueueRecord `json:"records"`
}

// SystemStatus is the subset of GET /api/v3/system/status used by ping.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

type refreshSeriesCommand struct {
	Name     string `json:"name"`
	SeriesID int    `json:"seriesId"`
}

type bulkDeleteRequest struct {
	IDs []int `json:"ids"`
}

// Item converts a wire record to the queue model. The custom format score is
// the quality score used for deduplication.
func (r QueueRecord) Item() queue.Item {
	item := queue.Item{
		ID:           r.ID,
		SeriesID:     r.SeriesID,
		EpisodeID:    r.EpisodeID,
		Title:        r.Title,
		QualityScore: r.CustomFormatScore,
	}
	if r.Series != nil {
		item.SeriesTitle = r.Series.Title
	}
	if len(r.StatusMessages) > 0 {
		item.StatusMessages = make([]queue.StatusMessage, 0, len(r.StatusMessages))
		for _, msg := range r.StatusMessages {
			item.StatusMessages = append(item.StatusMessages, queue.StatusMessage{Title: msg.Title, Messages: msg.Messages})
		}
	}
	return item
}
