package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Cache domains. Each domain owns the key space under its prefix.
const (
	DomainTopics       = "topics"
	DomainMediaLibrary = "media_library"
	DomainSearch       = "search"
	DomainSelection    = "selection"
)

// KeySeparator joins the domain and selector fields of a key.
const KeySeparator = "_"

var selectorEscaper = strings.NewReplacer(
	"%", "%25",
	KeySeparator, "%5F",
	"\r", "%0D",
	"\n", "%0A",
)

// hashedPrefix marks a selector replaced by its digest. Escaping never emits
// "%H", so a digest cannot collide with a literal selector.
const hashedPrefix = "%H"

// DeriveKey builds the cache key for an ordered tuple of selectors.
// Format: <domain>_<s1>_<s2>_..._<sn>
//
// Every selector keeps its position, empty ones included, and separator
// characters inside a selector are escaped, so distinct tuples never share a
// key. Line breaks are escaped too. When the key would exceed MaxKeyLength,
// the longest selectors are replaced by a sha256 digest until it fits. With
// no selectors the key is the domain alone.
func DeriveKey(domain string, selectors ...string) string {
	if len(selectors) == 0 {
		return domain
	}

	parts := make([]string, len(selectors))
	size := len(domain)
	for i, s := range selectors {
		parts[i] = selectorEscaper.Replace(s)
		size += len(KeySeparator) + len(parts[i])
	}
	if size > MaxKeyLength {
		size = shrink(parts, size)
	}

	var b strings.Builder
	b.Grow(size)
	b.WriteString(domain)
	for _, p := range parts {
		b.WriteString(KeySeparator)
		b.WriteString(p)
	}
	return b.String()
}

// shrink digests escaped selectors, longest first, until the key fits.
// It returns the new key size.
func shrink(parts []string, size int) int {
	order := make([]int, len(parts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(parts[order[a]]) > len(parts[order[b]])
	})

	for _, i := range order {
		if size <= MaxKeyLength {
			break
		}
		sum := sha256.Sum256([]byte(parts[i]))
		digest := hashedPrefix + hex.EncodeToString(sum[:])
		if len(digest) >= len(parts[i]) {
			break
		}
		size += len(digest) - len(parts[i])
		parts[i] = digest
	}
	return size
}

// TopicsKey derives the topic-discovery key.
func TopicsKey(location, locationType, dateRange, country string) string {
	return DeriveKey(DomainTopics, location, locationType, dateRange, country)
}

// MediaLibraryKey derives the media-library key, which has no selectors.
func MediaLibraryKey() string {
	return DeriveKey(DomainMediaLibrary)
}

// SelectionKey derives the key of the committed selection for a scene.
func SelectionKey(sceneID string) string {
	return DeriveKey(DomainSelection, sceneID)
}
