package dicom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxErrorBody = 4096

// Client counts DICOM instances through the changefeed API.
type Client struct {
	baseURL    string
	version    string
	pageSize   int
	headers    http.Header
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a changefeed client from cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("dicom server url is required")
	}
	if _, err := url.Parse(cfg.ServerURL); err != nil {
		return nil, fmt.Errorf("invalid dicom server url: %w", err)
	}

	version := cfg.Version
	if version == "" {
		version = "v1"
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if cfg.AccessToken != "" {
		headers.Set("Authorization", "Bearer "+cfg.AccessToken)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		version:    version,
		pageSize:   pageSize,
		headers:    headers,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:     logger,
	}, nil
}

// ExpectedCount returns the number of instances created and still current.
// The resource type is ignored: the changefeed covers a single table.
func (c *Client) ExpectedCount(ctx context.Context, _ string) (int, error) {
	latest, err := c.LatestSequenceOffset(ctx)
	if err != nil {
		return 0, err
	}
	return c.CountCreatedAndCurrent(ctx, 0, latest, c.pageSize)
}

// LatestSequenceOffset returns the sequence of the newest changefeed entry.
func (c *Client) LatestSequenceOffset(ctx context.Context) (int64, error) {
	queryURL := fmt.Sprintf("%s/%s/changefeed/latest", c.baseURL, c.version)

	body, err := c.get(ctx, queryURL)
	if err != nil {
		return 0, err
	}

	sequence := gjson.GetBytes(body, "sequence")
	if !sequence.Exists() {
		return 0, fmt.Errorf("latest changefeed entry from %s has no sequence", queryURL)
	}
	return sequence.Int(), nil
}

// CountCreatedAndCurrent walks the changefeed in windows of pageSize from offsetStart
// to offsetEnd inclusive and counts entries with action Create and state Current.
func (c *Client) CountCreatedAndCurrent(ctx context.Context, offsetStart, offsetEnd int64, pageSize int) (int, error) {
	if pageSize <= 0 {
		return 0, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	count := 0
	for offset := offsetStart; offset <= offsetEnd; offset += int64(pageSize) {
		query := url.Values{}
		query.Set("offset", strconv.FormatInt(offset, 10))
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("includeMetadata", "true")
		queryURL := fmt.Sprintf("%s/%s/changefeed?%s", c.baseURL, c.version, query.Encode())

		body, err := c.get(ctx, queryURL)
		if err != nil {
			return 0, err
		}

		feed := gjson.ParseBytes(body)
		if !feed.IsArray() {
			return 0, fmt.Errorf("changefeed from %s is not an array", queryURL)
		}

		feed.ForEach(func(_, entry gjson.Result) bool {
			if entry.Get("action").String() == "Create" && entry.Get("state").String() == "Current" {
				count++
			}
			return true
		})

		c.logger.Debug("Fetched changefeed window", zap.Int64("offset", offset), zap.Int("count", count))
	}

	return count, nil
}

func (c *Client) get(ctx context.Context, queryURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = c.headers.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RemoteFetchError{URL: queryURL, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
