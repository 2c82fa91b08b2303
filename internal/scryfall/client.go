// Package scryfall talks to the Scryfall bulk-data API: it resolves the
// catalog entry for a dataset and downloads the card records it points to.
package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"setsplitter/internal/config"
	"setsplitter/internal/logger"
	"setsplitter/internal/models"
	"setsplitter/pkg/utils"
)

// Client errors. Every failure returned by the client wraps either
// ErrNetwork or ErrDecode.
var (
	ErrNetwork              = errors.New("network error")
	ErrDecode               = errors.New("decode error")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrNoDefaultDataset     = errors.New("no default dataset found")
	ErrMultipleDatasets     = errors.New("more than one dataset matches")
)

// errorBodyLimit caps how much of a non-200 body is read for diagnostics.
const errorBodyLimit = 4096

// BulkDataItem is one entry of the bulk-data catalog.
type BulkDataItem struct {
	Object          string `json:"object"`
	ID              string `json:"id"`
	Type            string `json:"type"`
	Name            string `json:"name"`
	DownloadURI     string `json:"download_uri"`
	UpdatedAt       string `json:"updated_at"`
	Size            int64  `json:"size"`
	ContentType     string `json:"content_type"`
	ContentEncoding string `json:"content_encoding"`
}

// BulkDataList is the catalog document returned by the bulk-data endpoint.
type BulkDataList struct {
	Object  string         `json:"object"`
	HasMore bool           `json:"has_more"`
	Data    []BulkDataItem `json:"data"`
}

// Dataset is the resolved catalog entry the splitter works from.
type Dataset struct {
	Type        string
	DownloadURI string
	UpdatedAt   string
}

// apiError is the error object Scryfall returns with 4xx/5xx responses.
type apiError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

// Client fetches the catalog and bulk files.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
	catalogURL string
	userAgent  string
}

// NewClient creates a client from the source configuration.
func NewClient(src *config.SourceConfig, log *logger.Logger) *Client {
	limit := rate.Inf
	if interval := src.GetRequestInterval(); interval > 0 {
		limit = rate.Every(interval)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: src.GetTimeout(),
		},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     log,
		catalogURL: src.CatalogURL,
		userAgent:  src.UserAgent,
	}
}

// FetchCatalog downloads the bulk-data catalog.
func (c *Client) FetchCatalog(ctx context.Context) (*BulkDataList, error) {
	var list BulkDataList
	if err := c.getJSON(ctx, c.catalogURL, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	return &list, nil
}

// ResolveDataset returns the single catalog entry of the given type.
func (c *Client) ResolveDataset(ctx context.Context, datasetType string) (*Dataset, error) {
	list, err := c.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	return SelectDataset(list, datasetType)
}

// SelectDataset picks the entry whose type equals datasetType. Zero or
// several matches are errors, as is a match without a URI or timestamp.
func SelectDataset(list *BulkDataList, datasetType string) (*Dataset, error) {
	var match *BulkDataItem

	for i := range list.Data {
		if list.Data[i].Type != datasetType {
			continue
		}

		if match != nil {
			return nil, fmt.Errorf("%w: type %q", ErrMultipleDatasets, datasetType)
		}

		match = &list.Data[i]
	}

	if match == nil {
		return nil, fmt.Errorf("%w: type %q", ErrNoDefaultDataset, datasetType)
	}

	if match.DownloadURI == "" {
		return nil, fmt.Errorf("%w: %q entry has no download_uri", ErrDecode, datasetType)
	}

	if match.UpdatedAt == "" {
		return nil, fmt.Errorf("%w: %q entry has no updated_at", ErrDecode, datasetType)
	}

	return &Dataset{
		Type:        match.Type,
		DownloadURI: match.DownloadURI,
		UpdatedAt:   match.UpdatedAt,
	}, nil
}

// DownloadCards fetches the bulk file at uri and decodes every record.
// The whole array is held in memory.
func (c *Client) DownloadCards(ctx context.Context, uri string) ([]models.Card, error) {
	body, err := c.get(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to download cards: %w", err)
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s: expected a JSON array of cards", ErrDecode, uri)
	}

	var cards []models.Card
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, uri, err)
	}

	c.logger.Debug("cards decoded", "url", uri, "cards", len(cards))

	return cards, nil
}

func (c *Client) getJSON(ctx context.Context, url string, target any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, url, err)
	}

	return nil
}

// get returns the full body of a 200 response. A body cut short by the
// connection is a network failure, never a decode failure.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrNetwork, err)
	}

	req.Header = utils.BuildHeaders(c.userAgent)

	startTime := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(url, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrNetwork, url, err)
	}

	c.logger.Debug("response received",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(startTime),
	)

	return body, nil
}

func statusError(url string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))

	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Object == "error" && apiErr.Details != "" {
		return fmt.Errorf("%w: %w: %d from %s: %s", ErrNetwork, ErrUnexpectedStatusCode, resp.StatusCode, url, apiErr.Details)
	}

	return fmt.Errorf("%w: %w: %d from %s", ErrNetwork, ErrUnexpectedStatusCode, resp.StatusCode, url)
}
