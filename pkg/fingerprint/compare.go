package fingerprint

// Component weights for similarity scoring. User-Agent dominates because it
// is the most stable and most identifying header; encoding is nearly
// universal and contributes least.
const (
	weightUserAgent = 3
	weightLanguage  = 2
	weightEncoding  = 1
	weightTimezone  = 2
	weightScreen    = 2
)

// SuspiciousThreshold is the similarity below which a fingerprint change is
// treated as a possible account takeover. Tunable policy constant, not a
// derived value.
const SuspiciousThreshold = 0.5

// Compare returns the weighted similarity of two fingerprints in [0, 1].
//
// Identical hashes short-circuit to 1.0. Otherwise each component contributes
// its weight when equal; optional components (timezone, screen info) only
// count toward the denominator when at least one side supplied a value, so a
// client that never reported them is not penalized. Returns 0 when no weight
// is applicable.
func Compare(a, b Fingerprint) float64 {
	if a.Hash != "" && a.Hash == b.Hash {
		return 1.0
	}

	var matched, applicable float64

	applicable += weightUserAgent
	if a.Components.UserAgent == b.Components.UserAgent {
		matched += weightUserAgent
	}

	applicable += weightLanguage
	if a.Components.Language == b.Components.Language {
		matched += weightLanguage
	}

	applicable += weightEncoding
	if a.Components.Encoding == b.Components.Encoding {
		matched += weightEncoding
	}

	if a.Components.Timezone != "" || b.Components.Timezone != "" {
		applicable += weightTimezone
		if a.Components.Timezone == b.Components.Timezone {
			matched += weightTimezone
		}
	}

	if a.Components.ScreenInfo != "" || b.Components.ScreenInfo != "" {
		applicable += weightScreen
		if a.Components.ScreenInfo == b.Components.ScreenInfo {
			matched += weightScreen
		}
	}

	if applicable == 0 {
		return 0
	}
	return matched / applicable
}

// IsSuspiciousChange reports whether the similarity between a stored baseline
// and the current fingerprint is low enough to suggest the session moved to a
// different device.
func IsSuspiciousChange(old, current Fingerprint) bool {
	return Compare(old, current) < SuspiciousThreshold
}
