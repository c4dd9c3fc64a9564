package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/wordbook/pkg/models"
	"go.uber.org/zap"
)

// DefaultAPIURL is the public Free Dictionary API endpoint
const DefaultAPIURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

var (
	// ErrNotFound is returned when the service has no entry for the word
	ErrNotFound = errors.New("word not found")
	// ErrEmptyWord is returned for blank lookups
	ErrEmptyWord = errors.New("word is empty")
)

// Client represents a client for the dictionary lookup API
type Client struct {
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new dictionary client. An empty apiURL uses DefaultAPIURL.
func NewClient(apiURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// errorResponse is the body the service returns with a 404
type errorResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Lookup fetches the entries for a word
func (c *Client) Lookup(ctx context.Context, word string) ([]models.DictionaryEntry, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, ErrEmptyWord
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		var body errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
			c.logger.Debug("dictionary lookup miss", zap.String("word", word), zap.String("message", body.Message))
		}
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("dictionary API returned status %d", resp.StatusCode)
	}

	var entries []models.DictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	return entries, nil
}
