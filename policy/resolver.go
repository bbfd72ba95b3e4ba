package policy

import (
	"fmt"
	"strings"
)

// ParseBundleSpec parses "category/bundle" into a BundleSpec, mirroring
// ruleset.ParseSpec's "docker/security" convention.
func ParseBundleSpec(spec string) (BundleSpec, error) {
	parts := strings.Split(spec, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return BundleSpec{}, fmt.Errorf("invalid bundle spec %q (expected format: category/bundle)", spec)
	}
	return BundleSpec{Category: parts[0], Bundle: parts[1]}, nil
}

// String renders a BundleSpec back as "category/bundle".
func (s BundleSpec) String() string {
	return s.Category + "/" + s.Bundle
}

// Resolve merges a local Policy with zero or more remote bundles
// (specified as "category/bundle" strings) into one Policy. Later
// sources win on vuln-name collisions, matching the teacher's
// last-bundle-wins semantics for overlapping rule IDs.
func Resolve(local *Policy, downloader *Downloader, bundleSpecs []string) (*Policy, error) {
	merged := make([]*Pattern, 0, len(local.Patterns()))
	seen := make(map[string]int) // vuln name -> index in merged

	add := func(patterns []*Pattern) {
		for _, p := range patterns {
			if idx, ok := seen[p.VulnName]; ok {
				merged[idx] = p
				continue
			}
			seen[p.VulnName] = len(merged)
			merged = append(merged, p)
		}
	}

	add(local.Patterns())

	for _, spec := range bundleSpecs {
		bundleSpec, err := ParseBundleSpec(spec)
		if err != nil {
			return nil, err
		}
		patterns, err := downloader.Download(bundleSpec.Category, bundleSpec.Bundle)
		if err != nil {
			return nil, fmt.Errorf("resolving bundle %s: %w", spec, err)
		}
		add(patterns)
	}

	return New(merged), nil
}
