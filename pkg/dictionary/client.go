package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultEndpoint is the free dictionary API. The word is appended as a path
// segment.
const DefaultEndpoint = "https://api.dictionaryapi.dev/api/v2/entries/en/"

// Client fetches definitions over HTTP and caches every answer, including
// misses, for the lifetime of the client.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client

	mu    sync.RWMutex
	cache map[string]string
}

// NewClient returns a client for endpoint (DefaultEndpoint when empty).
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
		cache:      make(map[string]string),
	}
}

type apiEntry struct {
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Define returns the first definition of the first meaning of word.
func (c *Client) Define(ctx context.Context, word string) (string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "", nil
	}

	c.mu.RLock()
	def, ok := c.cache[word]
	c.mu.RUnlock()
	if ok {
		return def, nil
	}

	def, err := c.fetch(ctx, word)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.cache == nil {
		c.cache = make(map[string]string)
	}
	c.cache[word] = def
	c.mu.Unlock()
	return def, nil
}

func (c *Client) fetch(ctx context.Context, word string) (string, error) {
	endpoint := c.Endpoint
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+url.PathEscape(word), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "vocabreader-cli")
	req.Header.Set("Accept", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("define %q: %w", word, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("define %q: dictionary returned status: %s", word, resp.Status)
	}

	var entries []apiEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&entries); err != nil {
		return "", fmt.Errorf("define %q: decode response: %w", word, err)
	}
	if len(entries) == 0 || len(entries[0].Meanings) == 0 || len(entries[0].Meanings[0].Definitions) == 0 {
		return "", nil
	}
	return strings.TrimSpace(entries[0].Meanings[0].Definitions[0].Definition), nil
}
