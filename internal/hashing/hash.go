// Package hashing provides the deterministic bucketing hash shared by every
// SDK in the family. It maps an arbitrary seed string to a float in [0,1)
// with 1/1000 granularity. The same seed must produce the same value in every
// language implementation, so the algorithm (32-bit FNV-1a, unsigned overflow,
// UTF-8 bytes, modulo 1000) is frozen: changing any part of it silently
// re-buckets users evaluated by other SDKs against the same backend.
package hashing

import "hash/fnv"

// Bucket hashes seed to a value in [0,1) at 3-decimal resolution.
// Pure and total: identical input always yields identical output.
func Bucket(seed string) float64 {
	h := fnv.New32a()
	// Hash.Write never fails.
	_, _ = h.Write([]byte(seed))
	return float64(h.Sum32()%1000) / 1000
}
