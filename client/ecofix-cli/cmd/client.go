package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// apiClient 调用追踪服务的 REST API。
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// apiError 是服务端返回的错误。
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *apiClient) do(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &apiError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) login(username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": username, "password": password}, &resp)
	return resp.Token, err
}

type footprint struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type activityResult struct {
	Footprint *footprint `json:"footprint"`
	RawText   string     `json:"rawText"`
	Note      string     `json:"note"`
}

func (c *apiClient) logActivity(date, transportation, diet string, energy float64) (*activityResult, error) {
	req := map[string]interface{}{
		"transportation": transportation,
		"diet":           diet,
		"energy_usage":   energy,
	}
	if date != "" {
		req["date"] = date
	}
	var out activityResult
	if err := c.do(http.MethodPost, "/api/v1/activities", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type breakdownEntry struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

type scoreReport struct {
	Score       *int             `json:"score"`
	Breakdown   []breakdownEntry `json:"breakdown"`
	Suggestions []string         `json:"suggestions"`
}

func (c *apiClient) score() (*scoreReport, error) {
	var out scoreReport
	if err := c.do(http.MethodGet, "/api/v1/sustainability", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type chartPoint struct {
	Date        string  `json:"date"`
	EnergyUsage float64 `json:"energy_usage"`
	Score       int     `json:"score"`
}

func (c *apiClient) chart() ([]chartPoint, error) {
	var out []chartPoint
	if err := c.do(http.MethodGet, "/api/v1/sustainability/chart", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
