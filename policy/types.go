package policy

import "time"

// BundleSpec identifies a remote pattern bundle, e.g. "web/django" or
// "infra/terraform" — repurposed from ruleset.RulesetSpec
// (category/bundle) to pattern-bundle category/name pairs.
type BundleSpec struct {
	Category string // e.g. "web"
	Bundle   string // e.g. "django"
}

// Manifest is the category-level index of available bundles, fetched
// from a manifest server — repurposed from ruleset.Manifest.
type Manifest struct {
	Category string             `json:"category,omitempty"`
	Bundles  map[string]*Bundle `json:"bundles"`
}

// Bundle describes one downloadable collection of Patterns.
type Bundle struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Checksum    string `json:"checksum"`
}

// GetBundle looks up bundle metadata by name.
func (m *Manifest) GetBundle(name string) (*Bundle, error) {
	b, ok := m.Bundles[name]
	if !ok {
		return nil, &BundleNotFoundError{Category: m.Category, Bundle: name}
	}
	return b, nil
}

// BundleNotFoundError reports a bundle missing from its category manifest.
type BundleNotFoundError struct {
	Category string
	Bundle   string
}

func (e *BundleNotFoundError) Error() string {
	return "bundle not found: " + e.Category + "/" + e.Bundle
}

// CacheEntry tracks one cached, checksum-verified bundle download.
type CacheEntry struct {
	Spec      BundleSpec `json:"spec"`
	Patterns  []*Pattern `json:"patterns"`
	Checksum  string     `json:"checksum"`
	CachedAt  time.Time  `json:"cached_at"`  //nolint:tagliatelle
	ExpiresAt time.Time  `json:"expires_at"` //nolint:tagliatelle
}

// DownloadConfig configures a Downloader.
type DownloadConfig struct {
	BaseURL       string
	CacheDir      string
	CacheTTL      time.Duration
	HTTPTimeout   time.Duration
	RetryAttempts int
}

// ManifestProvider loads a category manifest — an interface so tests can
// substitute a fake without a network round trip, matching
// ruleset.ManifestProvider.
type ManifestProvider interface {
	LoadCategoryManifest(category string) (*Manifest, error)
}
