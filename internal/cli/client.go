package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/haskel/runeconomy/internal/analysis"
)

// Client is an HTTP client for the runeconomy API
type Client struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
}

// NewClient creates a client for the server named by the global flags
func NewClient() *Client {
	return newClient(GetServerURL(), user, password)
}

func newClient(baseURL, user, password string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		user:     user,
		password: password,
	}
}

// Get performs a GET request
func (c *Client) Get(path string) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}

	return c.do(req)
}

// PostCSV posts a CSV body with the given query parameters
func (c *Client) PostCSV(path string, query url.Values, body io.Reader) ([]byte, int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodPost, u, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "text/csv")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	// Add auth if provided
	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return data, resp.StatusCode, nil
}

// Health checks if server is running
func (c *Client) Health() error {
	_, status, err := c.Get("/health")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d", status)
	}
	return nil
}

// Analyze submits a CSV export and decodes the report
func (c *Client) Analyze(body io.Reader, query url.Values) (*analysis.Report, error) {
	data, status, err := c.PostCSV("/v1/analyze", query, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("server returned status %d: %s", status, apiErr.Error)
		}
		return nil, fmt.Errorf("server returned status %d", status)
	}

	var rep analysis.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &rep, nil
}
