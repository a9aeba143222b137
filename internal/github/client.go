// internal/github/client.go - GitHub release metadata provider.
//
// This file fetches release metadata and release asset contents from the
// GitHub REST API. Requests are made once; a non-2xx response is returned to
// the caller as an error without retrying.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/egoist/bina/internal/manifest"
)

// DefaultAPIBase is the public GitHub REST API.
const DefaultAPIBase = "https://api.github.com"

// DefaultMaxAssetBytes bounds FetchAsset when Client.MaxAssetBytes is zero.
const DefaultMaxAssetBytes = 1 << 20

// ErrAssetTooLarge is returned when an asset exceeds Client.MaxAssetBytes.
var ErrAssetTooLarge = errors.New("asset exceeds size limit")

// StatusError is returned for non-2xx responses other than a missing release.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// TokenFromEnv returns the server-side GitHub token, if any.
func TokenFromEnv() string {
	if tok := strings.TrimSpace(os.Getenv("BINA_GITHUB_TOKEN")); tok != "" {
		return tok
	}
	return strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
}

// UserAgent returns the User-Agent sent with every request.
func UserAgent(version string) string {
	return fmt.Sprintf("bina/%s", version)
}

// Client talks to the GitHub REST API.
type Client struct {
	BaseURL       string
	UserAgent     string
	MaxAssetBytes int64
	HTTPClient    *http.Client
}

// NewClient returns a Client for baseURL. An empty baseURL means DefaultAPIBase.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// ReleasePath returns the releases endpoint suffix for a requested version:
// "latest", a numeric release ID, an explicit "tags/<tag>", or a bare tag.
// The tag is path-escaped.
func ReleasePath(version string) string {
	switch {
	case version == "" || version == manifest.LatestVersion:
		return manifest.LatestVersion
	case strings.HasPrefix(version, "tags/"):
		return "tags/" + url.PathEscape(strings.TrimPrefix(version, "tags/"))
	case isNumeric(version):
		return version
	default:
		return "tags/" + url.PathEscape(version)
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (c *Client) newRequest(ctx context.Context, target, accept, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}
	return req, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// GetRelease fetches the release ref.Version of ref's repository.
func (c *Client) GetRelease(ctx context.Context, ref manifest.Ref, token string) (*manifest.Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/%s", c.BaseURL,
		url.PathEscape(ref.Owner), url.PathEscape(ref.Name), ReleasePath(ref.Version))
	req, err := c.newRequest(ctx, endpoint, "application/json", token)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &manifest.NoReleaseError{Repo: ref.Repo(), Version: ref.Version, Status: resp.Status}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var release manifest.Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release %s: %w", ref, err)
	}
	return &release, nil
}

// FetchAsset downloads the content of asset through its API URL.
func (c *Client) FetchAsset(ctx context.Context, asset manifest.Asset, token string) ([]byte, error) {
	req, err := c.newRequest(ctx, asset.URL, "application/octet-stream", token)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset %s: %w", asset.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: asset.URL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	limit := c.MaxAssetBytes
	if limit <= 0 {
		limit = DefaultMaxAssetBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", asset.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w (%d bytes)", asset.Name, ErrAssetTooLarge, limit)
	}
	return data, nil
}
