package cache

import (
	"crypto/md5"
	"encoding/hex"
	"traveltime-tiles/internal/domain"
)

// Bumped whenever the entry format changes so old entries are never read.
const keyVersion = "v2"

// DurationKey derives the store key for a duration lookup. Coordinates are
// truncated to six decimals first, so inputs differing only beyond that
// share a key.
func DurationKey(prefix string, origin, destination domain.GeoCoordinate) string {
	return digest(keyVersion + "-" + prefix + "-" + origin.KeyString() + "-" + destination.KeyString())
}

// SearchKey derives the store key for a location search.
func SearchKey(query string) string {
	return digest("search-" + query)
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
