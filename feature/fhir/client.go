package fhir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TimeFormat is the _lastUpdated layout the search API expects.
const TimeFormat = "2006-01-02T15:04:05-00:00"

const maxErrorBody = 4096

// Client counts resources through the FHIR search API.
// It is safe for concurrent use; its headers never change after New.
type Client struct {
	baseURL    string
	pageSize   int
	cursorMode string
	maxPages   int
	since      time.Time
	headers    http.Header
	httpClient *http.Client
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a FHIR client from cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("fhir server url is required")
	}
	if _, err := url.Parse(cfg.ServerURL); err != nil {
		return nil, fmt.Errorf("invalid fhir server url: %w", err)
	}

	mode := cfg.CursorMode
	if mode == "" {
		mode = CursorQuery
	}
	switch mode {
	case CursorQuery, CursorParam, CursorLink:
	default:
		return nil, fmt.Errorf("unknown cursor mode: %s", cfg.CursorMode)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	since := time.Unix(0, 0).UTC()
	if cfg.Since != "" {
		parsed, err := time.Parse(time.RFC3339, cfg.Since)
		if err != nil {
			return nil, fmt.Errorf("invalid since timestamp: %w", err)
		}
		since = parsed
	}

	headers := http.Header{}
	headers.Set("Accept", "application/fhir+json")
	headers.Set("Prefer", "respond-async")
	if cfg.AccessToken != "" {
		headers.Set("Authorization", "Bearer "+cfg.AccessToken)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.ServerURL, "/"),
		pageSize:   pageSize,
		cursorMode: mode,
		maxPages:   cfg.MaxPages,
		since:      since,
		headers:    headers,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		now:        time.Now,
		logger:     logger,
	}, nil
}

// ExpectedCount returns the number of resources of resourceType updated between
// the configured start and now.
func (c *Client) ExpectedCount(ctx context.Context, resourceType string) (int, error) {
	entries, err := c.FetchAllEntries(ctx, resourceType, c.since, c.now())
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// FetchAllEntries pages through the search for resourceType in [since, until)
// and returns every entry in page order.
func (c *Client) FetchAllEntries(ctx context.Context, resourceType string, since, until time.Time) ([]json.RawMessage, error) {
	baseQuery := c.searchURL(resourceType, since, until)

	var result []json.RawMessage
	queryURL := baseQuery
	pages := 0

	for queryURL != "" {
		if c.maxPages > 0 && pages >= c.maxPages {
			return nil, fmt.Errorf("%w: %s after %d pages", ErrPaginationExceeded, resourceType, pages)
		}

		bundle, err := c.fetchPage(ctx, queryURL)
		if err != nil {
			return nil, err
		}
		pages++

		if !bundle.HasEntries() {
			break
		}
		result = append(result, bundle.Entry...)

		next := bundle.NextLink()
		if next == "" {
			break
		}

		queryURL, err = c.continueURL(baseQuery, next)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("Fetched search page",
			zap.String("resource_type", resourceType),
			zap.Int("page", pages),
			zap.Int("entries", len(result)))
	}

	return result, nil
}

func (c *Client) searchURL(resourceType string, since, until time.Time) string {
	query := url.Values{}
	query.Add("_lastUpdated", "ge"+since.UTC().Format(TimeFormat))
	query.Add("_lastUpdated", "lt"+until.UTC().Format(TimeFormat))
	query.Set("_sort", "_lastUpdated")
	query.Set("_count", strconv.Itoa(c.pageSize))
	return c.baseURL + "/" + url.PathEscape(resourceType) + "?" + query.Encode()
}

// continueURL re-issues the original query with the cursor of next attached.
func (c *Client) continueURL(baseQuery, next string) (string, error) {
	if c.cursorMode == CursorLink {
		base, err := url.Parse(baseQuery)
		if err != nil {
			return "", err
		}
		ref, err := url.Parse(next)
		if err != nil {
			return "", fmt.Errorf("parse next link: %w", err)
		}
		return base.ResolveReference(ref).String(), nil
	}

	token, err := ContinuationToken(next)
	if err != nil {
		return "", err
	}

	if c.cursorMode == CursorParam {
		u, err := url.Parse(baseQuery)
		if err != nil {
			return "", err
		}
		query := u.Query()
		query.Set("ct", token)
		u.RawQuery = query.Encode()
		return u.String(), nil
	}

	return baseQuery + "&ct=" + url.QueryEscape(token), nil
}

func (c *Client) fetchPage(ctx context.Context, queryURL string) (*Bundle, error) {
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

	var bundle Bundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decode bundle from %s: %w", queryURL, err)
	}
	return &bundle, nil
}
