// Package store provides a client for the GitHub-hosted content repository.
//
// The portal keeps all lesson material in a public GitHub repo and reads it
// through three endpoints: the contents API for directory listings, the git
// trees API for a recursive file manifest, and raw.githubusercontent.com for
// file bodies. Absence of a path is a normal outcome (ErrNotFound) and is
// kept distinct from transport failure (TransientError).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultAPIBase = "https://api.github.com"
	defaultRawBase = "https://raw.githubusercontent.com"
	defaultRef     = "main"
)

// ErrNotFound reports that the remote path does not exist.
var ErrNotFound = errors.New("content path not found")

// TransientError reports a network or server failure that a caller may retry.
type TransientError struct {
	Status int // HTTP status, 0 for transport-level failures
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("content store fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("content store fetch failed: status %d", e.Status)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Entry is one immediate child of a repository directory.
type Entry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"-"`
}

// TreeEntry is one path in the recursive repository manifest.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
}

// Client fetches content from a single GitHub repository.
type Client struct {
	repo    string // "owner/name"
	ref     string
	apiBase string
	rawBase string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIBase overrides the GitHub API base URL (for testing).
func WithAPIBase(url string) Option {
	return func(c *Client) {
		c.apiBase = url
	}
}

// WithRawBase overrides the raw file base URL (for testing).
func WithRawBase(url string) Option {
	return func(c *Client) {
		c.rawBase = url
	}
}

// WithRef sets the git ref to read from (default "main").
func WithRef(ref string) Option {
	return func(c *Client) {
		c.ref = ref
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a content store client for the given "owner/name" repo.
func NewClient(repo string, opts ...Option) *Client {
	c := &Client{
		repo:    repo,
		ref:     defaultRef,
		apiBase: defaultAPIBase,
		rawBase: defaultRawBase,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repo returns the "owner/name" repository this client reads from.
func (c *Client) Repo() string { return c.repo }

// Contents lists the immediate children of a repository path.
// A missing path yields ErrNotFound; the caller decides whether that is an
// error or merely an empty section.
func (c *Client) Contents(ctx context.Context, path string) ([]Entry, error) {
	url := fmt.Sprintf("%s/repos/%s/contents/%s", c.apiBase, c.repo, path)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Name string `json:"name"`
		Path string `json:"path"`
		Type string `json:"type"` // "file" or "dir"
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		// A single-file path returns an object, not an array. The portal
		// only ever lists directories, so treat it as an empty listing.
		return nil, ErrNotFound
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, Entry{
			Name:  e.Name,
			Path:  e.Path,
			IsDir: e.Type == "dir",
		})
	}
	return entries, nil
}

// Tree returns the flat recursive manifest of every path in the repository
// at the configured ref.
func (c *Client) Tree(ctx context.Context) ([]TreeEntry, error) {
	url := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", c.apiBase, c.repo, c.ref)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Tree []TreeEntry `json:"tree"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return raw.Tree, nil
}

// RawFile fetches the raw text of a file by repository path.
func (c *Client) RawFile(ctx context.Context, path string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s", c.rawBase, c.repo, c.ref, path)

	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &TransientError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	return body, nil
}
