// Package download owns installer acquisition: redirect resolution, the
// resolved-URL cache, and the HTTP fetch of the artifact itself.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"claudebuild/internal/builderr"
	"claudebuild/internal/resolve"
)

const (
	defaultHTTPTimeout = 5 * time.Minute
	defaultRetries     = 3
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Manager resolves redirect endpoints and fetches installer artifacts
// into the cache directory. Resolution results are persisted so later
// update checks can compare URLs without re-downloading.
type Manager struct {
	CacheDir string
	Resolver resolve.Resolver
	Logger   Logger

	// Client overrides the HTTP client used for artifact downloads.
	Client *http.Client

	// Progress, when set, receives byte counts during a download.
	Progress func(done, total int64)

	retries int
}

// NewManager creates a download manager using the headless-browser
// resolver unless another one is supplied.
func NewManager(cacheDir string, resolver resolve.Resolver, logger Logger) *Manager {
	if resolver == nil {
		resolver = &resolve.ChromeResolver{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Manager{
		CacheDir: cacheDir,
		Resolver: resolver,
		Logger:   logger,
		Client:   &http.Client{Timeout: defaultHTTPTimeout},
		retries:  defaultRetries,
	}
}

// UpdateCheck is the outcome of a no-download update probe.
type UpdateCheck struct {
	Available     bool
	ResolvedURL   string
	CachedURL     string
	NewVersion    string
	CachedVersion string
}

// Fetch resolves the redirect URL and downloads the artifact to dest.
// When resolution fails the manager degrades to a best-effort direct
// fetch from the last cached URL instead of aborting the pipeline.
func (m *Manager) Fetch(ctx context.Context, redirectURL, dest, cacheKey string) (string, string, error) {
	downloadURL, err := m.Resolver.Resolve(ctx, redirectURL)
	if err != nil {
		cached := LoadCachedURL(m.CacheDir, cacheKey)
		if cached == "" {
			return "", "", &builderr.DownloadError{URL: redirectURL, Err: fmt.Errorf("resolve failed and no cached URL available: %w", err)}
		}
		m.Logger.Printf("resolve failed (%v); falling back to cached URL %s", err, cached)
		downloadURL = cached
	} else if err := SaveCachedURL(m.CacheDir, cacheKey, downloadURL); err != nil {
		return "", "", err
	}

	m.Logger.Printf("downloading %s", downloadURL)
	if err := m.downloadToFile(ctx, downloadURL, dest); err != nil {
		return "", "", &builderr.DownloadError{URL: downloadURL, Err: err}
	}
	return dest, downloadURL, nil
}

// CheckForUpdate resolves the redirect without downloading and compares
// the result against the cached URL. URL equality is the sole change
// signal; any vendor-side path change counts as an update.
func (m *Manager) CheckForUpdate(ctx context.Context, redirectURL, cacheKey string) (UpdateCheck, error) {
	check := UpdateCheck{CachedURL: LoadCachedURL(m.CacheDir, cacheKey)}
	if v, ok := resolve.VersionFromURL(check.CachedURL); ok {
		check.CachedVersion = v
	}

	resolved, err := m.Resolver.Resolve(ctx, redirectURL)
	if err != nil {
		return check, err
	}
	check.ResolvedURL = resolved
	if v, ok := resolve.VersionFromURL(resolved); ok {
		check.NewVersion = v
	}

	check.Available = check.CachedURL == "" || resolved != check.CachedURL
	return check, nil
}

// LatestVersion resolves the redirect and extracts the embedded version.
func (m *Manager) LatestVersion(ctx context.Context, redirectURL string) (string, error) {
	resolved, err := m.Resolver.Resolve(ctx, redirectURL)
	if err != nil {
		return "", err
	}
	version, ok := resolve.VersionFromURL(resolved)
	if !ok {
		return "", fmt.Errorf("no version segment in resolved URL %s", resolved)
	}
	return version, nil
}

func (m *Manager) client() *http.Client {
	if m.Client != nil {
		return m.Client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// downloadToFile fetches a URL into dest with retries and an atomic
// temp-file rename so a partial download never masquerades as a cached
// installer.
func (m *Manager) downloadToFile(ctx context.Context, url, dest string) error {
	var lastErr error

	retries := m.retries
	if retries <= 0 {
		retries = defaultRetries
	}

	for attempt := 0; attempt <= retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			m.Logger.Printf("retrying download in %s (attempt %d/%d)", backoff, attempt, retries)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := m.downloadOnce(ctx, url, dest)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", retries, lastErr)
}

func (m *Manager) downloadOnce(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := m.client().Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := dest + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := true
	defer func() {
		tmpFile.Close()
		if cleanup {
			os.Remove(tmpPath)
		}
	}()

	var reader io.Reader = resp.Body
	if m.Progress != nil {
		reader = &progressReader{
			r:        resp.Body,
			total:    resp.ContentLength,
			callback: m.Progress,
		}
	}

	if _, err := io.Copy(tmpFile, reader); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("move artifact into place: %w", err)
	}
	cleanup = false
	return nil
}

type progressReader struct {
	r        io.Reader
	done     int64
	total    int64
	callback func(done, total int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.done += int64(n)
		p.callback(p.done, p.total)
	}
	return n, err
}
