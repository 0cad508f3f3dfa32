package utils

import (
	"crypto/sha256"
	"hash"

	"github.com/zeebo/blake3"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
	BLAKE3 HashAlgorithm = "blake3"
)

// Hasher computes content digests
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns the hasher used for stored file checksums
func DefaultHasher() *Hasher {
	return NewHasher(BLAKE3)
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

// New returns a streaming hash for the configured algorithm
func (h *Hasher) New() hash.Hash {
	switch h.algorithm {
	case SHA256:
		return sha256.New()
	default:
		return blake3.New()
	}
}
