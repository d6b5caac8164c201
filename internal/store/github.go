package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/mveron/applytrack/internal/config"
	"github.com/mveron/applytrack/internal/models"
)

// Client persists the application collection as a single CSV file in a
// GitHub repository, via the contents API. The file's blob sha is the
// revision token: Save only succeeds when the remote sha still matches
// the one handed out by the last Load or Save.
type Client struct {
	http     *http.Client
	apiURL   string
	owner    string
	repo     string
	branch   string
	filePath string
}

func NewClient(cfg config.GitHubConfig) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		http:     httpClient,
		apiURL:   cfg.APIURL,
		owner:    cfg.Owner,
		repo:     cfg.Repo,
		branch:   cfg.Branch,
		filePath: cfg.FilePath,
	}
}

func (c *Client) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.apiURL, c.owner, c.repo, url.PathEscape(c.filePath))
}

// Load fetches the current collection and its revision sha. A missing
// file is not an error: it returns an empty collection and an empty sha,
// and the next Save creates the file.
func (c *Client) Load(ctx context.Context) ([]models.Application, string, error) {
	reqURL := c.contentsURL() + "?ref=" + url.QueryEscape(c.branch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", &UnavailableError{Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", unavailable(resp)
	}

	var payload struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", &UnavailableError{Err: fmt.Errorf("failed to decode contents response: %w", err)}
	}

	raw, err := base64.StdEncoding.DecodeString(stripNewlines(payload.Content))
	if err != nil {
		return nil, "", &UnavailableError{Err: fmt.Errorf("failed to decode file content: %w", err)}
	}

	apps, err := DecodeCSV(raw)
	if err != nil {
		return nil, "", &UnavailableError{Err: err}
	}
	return apps, payload.SHA, nil
}

// Save rewrites the whole file and returns the new sha. expectedSHA is
// sent as the write precondition; pass the empty string to create the
// file. A stale sha yields ErrConflict and leaves the remote untouched.
func (c *Client) Save(ctx context.Context, apps []models.Application, expectedSHA, message string) (string, error) {
	raw, err := EncodeCSV(apps)
	if err != nil {
		return "", &UnavailableError{Err: err}
	}

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(raw),
		"branch":  c.branch,
	}
	if expectedSHA != "" {
		payload["sha"] = expectedSHA
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &UnavailableError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(), bytes.NewReader(body))
	if err != nil {
		return "", &UnavailableError{Err: err}
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict:
		return "", ErrConflict
	case http.StatusUnprocessableEntity:
		// The live API reports a stale sha as 422 rather than 409.
		return "", ErrConflict
	default:
		return "", unavailable(resp)
	}

	var result struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &UnavailableError{Err: fmt.Errorf("failed to decode commit response: %w", err)}
	}
	return result.Content.SHA, nil
}

func unavailable(resp *http.Response) *UnavailableError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &UnavailableError{StatusCode: resp.StatusCode, Body: string(body)}
}

// The contents API wraps base64 payloads with newlines every 60 chars.
func stripNewlines(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}
