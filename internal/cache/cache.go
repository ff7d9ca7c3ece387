package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrCorruptEntry is returned when a cached score cannot be decoded
var ErrCorruptEntry = errors.New("corrupt cache entry")

// Cache stores opaque values by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Digest hashes the raw content of a submission
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// PairKey builds the key of a pairwise similarity score. The key does not
// depend on argument order because similarity is symmetric.
func PairKey(digestA, digestB string) string {
	if digestB < digestA {
		digestA, digestB = digestB, digestA
	}
	hash := sha256.Sum256([]byte(digestA + ":" + digestB))
	return "compass:v1:" + hex.EncodeToString(hash[:])
}

// EncodeScore serializes a similarity score
func EncodeScore(score float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(score))
	return buf
}

// DecodeScore deserializes a similarity score
func DecodeScore(data []byte) (float64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: %d bytes", ErrCorruptEntry, len(data))
	}
	score := math.Float64frombits(binary.BigEndian.Uint64(data))
	if math.IsNaN(score) || score < 0 || score > 1 {
		return 0, fmt.Errorf("%w: score %v out of range", ErrCorruptEntry, score)
	}
	return score, nil
}

// GetScore reads a score from c. A corrupt entry is deleted and reported
// as a miss.
func GetScore(c Cache, key string) (float64, bool) {
	data, found := c.Get(key)
	if !found {
		return 0, false
	}
	score, err := DecodeScore(data)
	if err != nil {
		_ = c.Delete(key)
		return 0, false
	}
	return score, true
}

// SetScore writes a score to c using the cache's default TTL
func SetScore(c Cache, key string, score float64) error {
	return c.Set(key, EncodeScore(score), 0)
}
