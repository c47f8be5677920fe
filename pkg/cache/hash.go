package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
)

// KeyOpts are the traversal options that change a cached report.
type KeyOpts struct {
	MaxNodes         int      `json:"max_nodes"`
	Exclude          []string `json:"exclude,omitempty"`
	IncludeStatic    bool     `json:"include_static,omitempty"`
	IncludeTransient bool     `json:"include_transient,omitempty"`
	Format           string   `json:"format,omitempty"`
}

// ReportKey generates a cache key for the report of an input document.
// inputHash should be the [Hash] of the raw document. Exclusions are
// order-insensitive.
func ReportKey(inputHash string, opts KeyOpts) string {
	opts.Exclude = slices.Sorted(slices.Values(opts.Exclude))
	opts.Exclude = slices.Compact(opts.Exclude)
	return hashKey("report", inputHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
