package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"mms/internal/domain"
)

// Client talks to a mod sync server. The server exposes a small JSON API
// under /api and serves file content under the plain address:
//
//	GET {base}/api/mods                 -> ["branch", ...]
//	GET {base}/api/mods/{branch}        -> branch manifest (JSON)
//	GET {base}/mods/{branch}/{file}     -> single mod stream
//	GET {base}/mods/{branch}            -> bulk zip stream
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the given server address. The address
// may omit the scheme; https is assumed. If httpClient is nil,
// http.DefaultClient is used.
func NewClient(httpClient *http.Client, address string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	base := strings.TrimRight(address, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    base,
	}
}

// BaseURL returns the resolved server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// modJSON matches the server's manifest entry encoding. mod_date is a
// unix timestamp with a fractional part.
type modJSON struct {
	Name     string  `json:"name"`
	ModDate  float64 `json:"mod_date"`
	Size     int64   `json:"size"`
	Optional bool    `json:"is_optional"`
}

type zipJSON struct {
	Size      int64   `json:"size"`
	IsPresent bool    `json:"is_present"`
	ModDate   float64 `json:"mod_date"`
}

type branchInfoJSON struct {
	Mods []modJSON `json:"mods"`
	Zip  zipJSON   `json:"zip"`
}

// Branches lists the branch names the server publishes.
func (c *Client) Branches(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "/api/mods", &names); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Manifest fetches the manifest for a branch. A missing branch maps to
// domain.ErrBranchNotFound so the session can fall back to branch
// selection instead of failing.
func (c *Client) Manifest(ctx context.Context, branch string) (*domain.Manifest, error) {
	var info branchInfoJSON
	if err := c.getJSON(ctx, "/api/mods/"+branch, &info); err != nil {
		return nil, err
	}

	manifest := &domain.Manifest{
		Branch: branch,
		Mods:   make([]domain.ModEntry, len(info.Mods)),
		Archive: domain.ArchiveInfo{
			Present: info.Zip.IsPresent,
			Size:    info.Zip.Size,
			ModTime: unixFloat(info.Zip.ModDate),
		},
	}
	for i, m := range info.Mods {
		manifest.Mods[i] = domain.ModEntry{
			Name:     m.Name,
			Size:     m.Size,
			ModTime:  unixFloat(m.ModDate),
			Optional: m.Optional,
		}
	}
	sort.Slice(manifest.Mods, func(i, j int) bool {
		return manifest.Mods[i].Name < manifest.Mods[j].Name
	})
	return manifest, nil
}

// FetchMod opens a stream for a single mod file. A missing file maps to
// domain.ErrModNotFound. The caller must close the returned body. Length
// is -1 when the server does not report it.
func (c *Client) FetchMod(ctx context.Context, branch, name string) (io.ReadCloser, int64, error) {
	return c.getStream(ctx, "/mods/"+branch+"/"+name, domain.ErrModNotFound)
}

// FetchArchive opens a stream for the branch's bulk zip archive.
func (c *Client) FetchArchive(ctx context.Context, branch string) (io.ReadCloser, int64, error) {
	return c.getStream(ctx, "/mods/"+branch, domain.ErrBranchNotFound)
}

func (c *Client) getJSON(ctx context.Context, path string, result any) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing response body: %w", cerr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, domain.ErrBranchNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) getStream(ctx context.Context, path string, notFound error) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%s: %w", path, notFound)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return resp.Body, resp.ContentLength, nil
}

// unixFloat converts the server's fractional unix timestamps.
func unixFloat(ts float64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
