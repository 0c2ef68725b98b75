// Package resolve turns the vendor's anti-automation redirect endpoint
// into a concrete artifact URL. The headless-browser implementation is
// hidden behind a one-method interface so the rest of the pipeline can
// run against a deterministic fake.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"claudebuild/internal/builderr"
)

// Resolver resolves a redirect URL to the final download URL.
type Resolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

const (
	defaultTimeout = 30 * time.Second
	// settleDelay gives the page time to fire the download request after
	// the initial navigation completes.
	settleDelay = 2 * time.Second

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"
)

// ChromeResolver drives a headless Chrome through the redirect chain and
// captures the first request that targets the artifact storage backend.
type ChromeResolver struct {
	Timeout time.Duration
}

func (r *ChromeResolver) timeout() time.Duration {
	if r == nil || r.Timeout <= 0 {
		return defaultTimeout
	}
	return r.Timeout
}

// Resolve navigates the redirect URL and returns the captured download
// URL. Navigation errors are tolerated when the download request was
// already observed, since starting a download aborts the navigation.
func (r *ChromeResolver) Resolve(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout())
	defer cancelRun()

	var (
		mu       sync.Mutex
		captured string
	)

	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		req, ok := ev.(*network.EventRequestWillBeSent)
		if !ok {
			return
		}
		if !IsArtifactURL(req.Request.URL) {
			return
		}
		mu.Lock()
		if captured == "" {
			captured = req.Request.URL
		}
		mu.Unlock()
	})

	var pageURL string
	navErr := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(settleDelay),
		chromedp.Location(&pageURL),
	)

	mu.Lock()
	final := captured
	mu.Unlock()

	if final == "" {
		final = pageURL
	}
	if navErr != nil && final == "" {
		return "", &builderr.DownloadError{URL: url, Err: fmt.Errorf("resolve redirect: %w", navErr)}
	}
	if final == "" || final == url {
		return "", &builderr.DownloadError{URL: url, Err: fmt.Errorf("redirect did not resolve to an artifact URL")}
	}
	return final, nil
}

// IsArtifactURL reports whether a request URL looks like the concrete
// installer artifact rather than an intermediate challenge page.
func IsArtifactURL(url string) bool {
	if strings.Contains(url, "storage.googleapis.com") {
		return true
	}
	return strings.HasSuffix(url, ".exe") || strings.HasSuffix(url, ".dmg")
}

var _ Resolver = (*ChromeResolver)(nil)
