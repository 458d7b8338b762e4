package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// QueryHash is a stable hash over semantic query parts. Parts that are sets
// (keywords) must be passed pre-sorted or sorted here; ordering must never
// change the hash.
type QueryHash Hash

// NewQueryHash computes a deterministic hash of scalar parts plus a keyword set
func NewQueryHash(parts []string, keywords []string) QueryHash {
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.Strings(sorted)

	var data strings.Builder
	for _, p := range parts {
		data.WriteString(strings.ToLower(strings.TrimSpace(p)))
		data.WriteString("\x1f")
	}
	for _, k := range sorted {
		data.WriteString(strings.ToLower(strings.TrimSpace(k)))
		data.WriteString("\x1f")
	}
	return QueryHash(NewHash([]byte(data.String())))
}

// String returns the string representation
func (h QueryHash) String() string { return Hash(h).String() }
