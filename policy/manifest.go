package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ManifestLoader fetches category manifests from a manifest server over
// HTTP. Adapted from ruleset.ManifestLoader.
type ManifestLoader struct {
	baseURL    string
	httpClient *http.Client
}

// NewManifestLoader creates a manifest loader rooted at baseURL.
func NewManifestLoader(baseURL string) *ManifestLoader {
	return &ManifestLoader{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LoadCategoryManifest fetches and parses the manifest for one category.
func (m *ManifestLoader) LoadCategoryManifest(category string) (*Manifest, error) {
	url := fmt.Sprintf("%s/%s/manifest.json", m.baseURL, category)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building manifest request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest fetch failed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading manifest body: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	manifest.Category = category

	return &manifest, nil
}
