package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scrypster/focusd/internal/config"
)

// apiClient talks to a running daemon over its HTTP API.
type apiClient struct {
	addrFlag  *string
	tokenFlag *string
	http      *http.Client
}

func newAPIClient(addrFlag, tokenFlag *string) *apiClient {
	return &apiClient{
		addrFlag:  addrFlag,
		tokenFlag: tokenFlag,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) baseURL() string {
	if *c.addrFlag != "" {
		return "http://" + *c.addrFlag
	}
	cfg, _ := config.LoadConfig()
	return fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
}

func (c *apiClient) token() string {
	if *c.tokenFlag != "" {
		return *c.tokenFlag
	}
	cfg, _ := config.LoadConfig()
	return cfg.Security.APIToken
}

// do performs a request and decodes the JSON response into out (when
// non-nil). Non-2xx responses are surfaced as errors carrying the API
// error message.
func (c *apiClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", c.baseURL(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// doRaw posts a non-JSON payload, like a YAML taxonomy file.
func (c *apiClient) doRaw(method, path string, body []byte, contentType string) error {
	req, err := http.NewRequest(method, c.baseURL()+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", c.baseURL(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	return nil
}
