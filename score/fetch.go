package score

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	webTimeout = 10 * time.Second
)

type HTTPClient interface {
	Get(string) (*http.Response, error)
}

// Shared HTTP Client
var sharedHTTPClient = &http.Client{
	Timeout: webTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	},
}

// SingleFetchWithClient handles the messy business of the HTTP connection
// and is testable with dependency injection, called by SingleFetch
func SingleFetchWithClient(url string, c HTTPClient) (int, []byte, error) {
	resp, err := c.Get(url)
	if err != nil {
		slog.Error("Fetch Error", slog.Any("Error", err))
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Close Error", slog.Any("Error", err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("Could not read body", slog.Any("Error", err))
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

// SingleFetch returns the Response Code, raw byte stream body, and error
// using the shared client so repeated loads reuse connections
func SingleFetch(url string) (int, []byte, error) {
	return SingleFetchWithClient(url, sharedHTTPClient)
}

// IsURL reports whether a score location should be fetched rather than opened.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// LoadScoreURL fetches and decodes a score file served over HTTP.
func LoadScoreURL(url string) (*ScoreFile, error) {
	return LoadScoreURLWithClient(url, sharedHTTPClient)
}

func LoadScoreURLWithClient(url string, c HTTPClient) (*ScoreFile, error) {
	status, body, err := SingleFetchWithClient(url, c)
	if err != nil {
		return nil, fmt.Errorf("fetch score: %w", err)
	}
	if status != http.StatusOK {
		slog.Error("Score fetch failed", slog.String("url", url), slog.Int("status", status))
		return nil, fmt.Errorf("fetch score: %s returned status %d", url, status)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch score: %s returned an empty body", url)
	}
	return LoadScoreConfig(bytes.NewReader(body))
}

// Load reads a score from a path or URL and builds it.
func Load(location string) (*Score, error) {
	var (
		sf  *ScoreFile
		err error
	)
	if IsURL(location) {
		sf, err = LoadScoreURL(location)
	} else {
		sf, err = LoadScoreFileName(location)
	}
	if err != nil {
		return nil, err
	}
	return sf.Build()
}
