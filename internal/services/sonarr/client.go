package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scrubarr/internal/config"
	"scrubarr/internal/logging"
	"scrubarr/internal/queue"
	"scrubarr/internal/services"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultPageSize = 1000
	userAgent       = "scrubarr"
	// maxErrorBody caps how much of an error response is kept in messages.
	maxErrorBody = 512
)

// HTTPDoer describes the HTTP client used by the Sonarr client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client beyond the instance settings.
type Options struct {
	HTTPClient HTTPDoer
	Logger     *slog.Logger
	// Verbose logs each request and response status at debug instead of trace.
	Verbose bool
}

// Client talks to one Sonarr instance.
type Client struct {
	name     string
	baseURL  string
	apiKey   string
	timeout  time.Duration
	pageSize int
	client   HTTPDoer
	logger   *slog.Logger
	verbose  bool
}

// New constructs a client for instance.
func New(instance config.Instance, opts Options) *Client {
	timeout := instance.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pageSize := instance.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		name:     instance.Name,
		baseURL:  strings.TrimRight(strings.TrimSpace(instance.URL), "/") + instance.BasePath,
		apiKey:   strings.TrimSpace(instance.APIKey),
		timeout:  timeout,
		pageSize: pageSize,
		client:   httpClient,
		logger:   logging.NewComponentLogger(opts.Logger, "sonarr").With(logging.String(logging.FieldInstance, instance.Name)),
		verbose:  opts.Verbose,
	}
}

// Name returns the instance label.
func (c *Client) Name() string {
	return c.name
}

// FetchQueue returns the completed queue subset with series metadata, in
// the order Sonarr returned it.
func (c *Client) FetchQueue(ctx context.Context) ([]queue.Item, error) {
	query := url.Values{}
	query.Set("page", "1")
	query.Set("pageSize", strconv.Itoa(c.pageSize))
	query.Set("includeSeries", "true")
	query.Set("status", "completed")

	var page QueuePage
	if err := c.do(ctx, http.MethodGet, "/api/v3/queue", query, nil, &page); err != nil {
		return nil, c.wrap(services.ErrFetch, "get queue", err)
	}
	if page.TotalRecords > len(page.Records) {
		logging.WarnWithContext(c.logger, "queue truncated", "queue_truncated",
			logging.Int("records", len(page.Records)),
			logging.Int("total_records", page.TotalRecords),
			logging.String(logging.FieldErrorHint, "raise page_size for this instance"),
			logging.String(logging.FieldImpact, "items past the first page are not triaged this cycle"),
		)
	}
	items := make([]queue.Item, 0, len(page.Records))
	for _, record := range page.Records {
		items = append(items, record.Item())
	}
	c.logger.Debug("queue fetched",
		logging.String(logging.FieldEventType, "queue_fetched"),
		logging.Int("items", len(items)),
	)
	return items, nil
}

// RefreshSeries queues a RefreshSeries command for seriesID.
func (c *Client) RefreshSeries(ctx context.Context, seriesID int) error {
	body := refreshSeriesCommand{Name: "RefreshSeries", SeriesID: seriesID}
	if err := c.do(ctx, http.MethodPost, "/api/v3/command", nil, body, nil); err != nil {
		return c.wrap(services.ErrAction, fmt.Sprintf("refresh series %d", seriesID), err)
	}
	return nil
}

// DeleteQueueItems removes ids from the queue in one call. With
// removeFromClient the download client drops them too.
func (c *Client) DeleteQueueItems(ctx context.Context, ids []int, removeFromClient bool) error {
	if len(ids) == 0 {
		return nil
	}
	query := url.Values{}
	query.Set("removeFromClient", strconv.FormatBool(removeFromClient))
	if err := c.do(ctx, http.MethodDelete, "/api/v3/queue/bulk", query, bulkDeleteRequest{IDs: ids}, nil); err != nil {
		return c.wrap(services.ErrAction, "bulk delete", err)
	}
	return nil
}

// SystemStatus reads the instance's application name and version.
func (c *Client) SystemStatus(ctx context.Context) (SystemStatus, error) {
	var status SystemStatus
	if err := c.do(ctx, http.MethodGet, "/api/v3/system/status", nil, nil, &status); err != nil {
		return SystemStatus{}, c.wrap(services.ErrFetch, "system status", err)
	}
	return status, nil
}

// statusError carries a non-2xx response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sonarr returned %d", e.Code)
	}
	return fmt.Sprintf("sonarr returned %d: %s", e.Code, e.Body)
}

func (c *Client) wrap(marker error, operation string, err error) error {
	var se *statusError
	if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
		return services.Wrap(marker, c.name, operation, "check api_key", fmt.Errorf("%w: %w", services.ErrAuth, err))
	}
	return services.Wrap(marker, c.name, operation, "", err)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logRequest(ctx, method, path, 0, time.Since(started))
		return err
	}
	defer resp.Body.Close()
	c.logRequest(ctx, method, path, resp.StatusCode, time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) logRequest(ctx context.Context, method, path string, status int, elapsed time.Duration) {
	level := logging.LevelTrace
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger.LogAttrs(ctx, level, "sonarr request",
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", status),
		logging.Duration("elapsed", elapsed),
	)
}
