package policy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Downloader resolves a BundleSpec to a checksum-verified list of
// Patterns, consulting the Cache before going to the network. Adapted
// from ruleset.Downloader, minus the zip/extract step — a bundle here
// is a single JSON document.
type Downloader struct {
	config         *DownloadConfig
	cache          *Cache
	manifestLoader ManifestProvider
	httpClient     *http.Client
	runID          string
}

// NewDownloader builds a Downloader backed by a disk Cache and a
// ManifestLoader rooted at config.BaseURL.
func NewDownloader(config *DownloadConfig) (*Downloader, error) {
	cache, err := NewCache(config.CacheDir)
	if err != nil {
		return nil, err
	}
	return &Downloader{
		config:         config,
		cache:          cache,
		manifestLoader: NewManifestLoader(config.BaseURL),
		httpClient:     &http.Client{Timeout: config.HTTPTimeout},
		runID:          uuid.NewString(),
	}, nil
}

// Download resolves "category/bundle" to its Patterns, using the cache
// when possible and falling back to a retried HTTP fetch + checksum
// verification otherwise.
func (d *Downloader) Download(category, bundleName string) ([]*Pattern, error) {
	spec := BundleSpec{Category: category, Bundle: bundleName}

	manifest, err := d.manifestLoader.LoadCategoryManifest(spec.Category)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}

	bundle, err := manifest.GetBundle(spec.Bundle)
	if err != nil {
		return nil, err
	}

	if cached, err := d.cache.Get(spec, bundle.Checksum); err == nil {
		return cached, nil
	}

	return d.downloadAndCache(spec, bundle)
}

func (d *Downloader) downloadAndCache(spec BundleSpec, bundle *Bundle) ([]*Pattern, error) {
	body, err := d.fetchWithRetry(bundle.URL)
	if err != nil {
		return nil, fmt.Errorf("downloading bundle: %w", err)
	}

	if err := verifyChecksum(body, bundle.Checksum); err != nil {
		return nil, err
	}

	patterns, err := decodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("parsing bundle %s/%s: %w", spec.Category, spec.Bundle, err)
	}

	if err := d.cache.Set(spec, patterns, bundle.Checksum, d.config.CacheTTL); err != nil {
		return nil, fmt.Errorf("caching bundle: %w", err)
	}

	return patterns, nil
}

func (d *Downloader) fetchWithRetry(url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < d.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Second * time.Duration(attempt))
		}

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("X-Flowlattice-Run", d.runID)

		resp, err := d.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := readAndClose(resp)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", d.config.RetryAttempts, lastErr)
}

func readAndClose(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func verifyChecksum(data []byte, expected string) error {
	sum := sha256.Sum256(data)
	actual := hex.EncodeToString(sum[:])
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

// RefreshCache invalidates the cached entry for category/bundle so the
// next Download re-fetches from the network.
func (d *Downloader) RefreshCache(category, bundleName string) error {
	return d.cache.Invalidate(BundleSpec{Category: category, Bundle: bundleName})
}
