package workshop

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Config holds configuration for the Steam Workshop API client.
type Config struct {
	// ApiURL is the GetPublishedFileDetails endpoint.
	ApiURL string `mapstructure:"api_url" default:"https://api.steampowered.com/ISteamRemoteStorage/GetPublishedFileDetails/v1/"`
	// TimeoutSeconds bounds the whole batch fetch.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}

// Client fetches published file details from the Steam Workshop API.
type Client struct {
	apiURL string
	http   *http.Client
	logger *zap.Logger
	sf     singleflight.Group
}

// NewClient creates a workshop API client with strict transport timeouts.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		apiURL: cfg.ApiURL,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
		logger: logger,
	}
}

// FetchDetails fetches details for all given workshop ids in one batch call.
//
// Identical concurrent batches are deduplicated through singleflight so two
// users uploading the same mod list do not trigger two API calls. Items the
// API does not know stay absent from the returned map; callers treat absent
// entries as "no metadata available".
func (c *Client) FetchDetails(ctx context.Context, workshopIDs []string) (map[string]FileDetails, error) {
	if len(workshopIDs) == 0 {
		return map[string]FileDetails{}, nil
	}

	sorted := make([]string, len(workshopIDs))
	copy(sorted, workshopIDs)
	sort.Strings(sorted)
	key := strings.Join(sorted, ",")

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		return c.fetch(ctx, sorted)
	})
	if err != nil {
		return nil, err
	}

	return result.(map[string]FileDetails), nil
}

func (c *Client) fetch(ctx context.Context, workshopIDs []string) (map[string]FileDetails, error) {
	form := url.Values{}
	form.Set("itemcount", strconv.Itoa(len(workshopIDs)))
	for i, id := range workshopIDs {
		form.Set(fmt.Sprintf("publishedfileids[%d]", i), id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build workshop request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workshop request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("workshop API error: %s", resp.Status)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode workshop response: %w", err)
	}

	details := make(map[string]FileDetails, len(payload.Response.PublishedFileDetails))
	for _, d := range payload.Response.PublishedFileDetails {
		details[d.PublishedFileID] = d
	}

	c.logger.Debug("Fetched workshop details",
		zap.Int("requested", len(workshopIDs)),
		zap.Int("resolved", len(details)),
	)

	return details, nil
}
