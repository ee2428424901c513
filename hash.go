package taproot

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sync"
	"unsafe"

	sha256simd "github.com/minio/sha256-simd"
)

// Hash tags used by BIP-340 signing and BIP-341 tweaking/sighashing.
const (
	TagBIP340Aux       = "BIP0340/aux"
	TagBIP340Nonce     = "BIP0340/nonce"
	TagBIP340Challenge = "BIP0340/challenge"
	TagTapTweak        = "TapTweak"
	TagTapLeaf         = "TapLeaf"
	TagTapBranch       = "TapBranch"
	TagTapSighash      = "TapSighash"
)

// Precomputed SHA256(tag) prefixes for the tags above, computed once at
// first use to avoid rehashing the tag on every call.
var (
	taggedHashPrefixes map[string][32]byte
	taggedHashInitOnce sync.Once
)

func initTaggedHashPrefixes() {
	taggedHashPrefixes = make(map[string][32]byte, 7)
	for _, tag := range []string{
		TagBIP340Aux, TagBIP340Nonce, TagBIP340Challenge,
		TagTapTweak, TagTapLeaf, TagTapBranch, TagTapSighash,
	} {
		taggedHashPrefixes[tag] = sha256.Sum256([]byte(tag))
	}
}

// getTaggedHashPrefix returns SHA256(tag), precomputed for the known tags
func getTaggedHashPrefix(tag string) [32]byte {
	taggedHashInitOnce.Do(initTaggedHashPrefixes)

	if prefix, ok := taggedHashPrefixes[tag]; ok {
		return prefix
	}

	return sha256.Sum256([]byte(tag))
}

// TaggedHash computes SHA256(SHA256(tag) || SHA256(tag) || msgs...), the
// domain-separated hash BIP-340 and BIP-341 build everything on.
func TaggedHash(tag string, msgs ...[]byte) [32]byte {
	var result [32]byte

	tagHash := getTaggedHashPrefix(tag)

	h := sha256simd.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	for _, msg := range msgs {
		h.Write(msg)
	}
	copy(result[:], h.Sum(nil))

	return result
}

// SHA256 represents a SHA-256 hash context
type SHA256 struct {
	hasher hash.Hash
}

// NewSHA256 creates a new SHA-256 hash context
func NewSHA256() *SHA256 {
	h := &SHA256{}
	h.hasher = sha256simd.New()
	return h
}

// Write writes data to the hash
func (h *SHA256) Write(data []byte) {
	h.hasher.Write(data)
}

// Sum finalizes the hash and returns the 32-byte result
func (h *SHA256) Sum(out []byte) []byte {
	if out == nil {
		out = make([]byte, 32)
	}
	copy(out, h.hasher.Sum(nil))
	return out
}

// Finalize finalizes the hash and writes the result to out32 (must be 32 bytes)
func (h *SHA256) Finalize(out32 []byte) {
	if len(out32) != 32 {
		panic("output buffer must be 32 bytes")
	}
	sum := h.hasher.Sum(nil)
	copy(out32, sum)
}

// Clear clears the hash context to prevent leaking sensitive information
func (h *SHA256) Clear() {
	memclear(unsafe.Pointer(h), unsafe.Sizeof(*h))
}

// HMACSHA256 represents an HMAC-SHA256 context
type HMACSHA256 struct {
	inner, outer SHA256
}

// NewHMACSHA256 creates a new HMAC-SHA256 context with the given key
func NewHMACSHA256(key []byte) *HMACSHA256 {
	h := &HMACSHA256{}

	// Keys longer than the block size are hashed first
	var rkey [64]byte
	if len(key) <= 64 {
		copy(rkey[:], key)
	} else {
		sum := sha256.Sum256(key)
		copy(rkey[:32], sum[:])
	}

	// Outer hash starts with key XOR 0x5c
	h.outer = SHA256{hasher: sha256.New()}
	for i := 0; i < 64; i++ {
		rkey[i] ^= 0x5c
	}
	h.outer.hasher.Write(rkey[:])

	// Inner hash starts with key XOR 0x36
	h.inner = SHA256{hasher: sha256.New()}
	for i := 0; i < 64; i++ {
		rkey[i] ^= 0x5c ^ 0x36
	}
	h.inner.hasher.Write(rkey[:])

	memclear(unsafe.Pointer(&rkey), unsafe.Sizeof(rkey))
	return h
}

// Write writes data to the inner hash
func (h *HMACSHA256) Write(data []byte) {
	h.inner.Write(data)
}

// Finalize finalizes the HMAC and writes the result to out32 (must be 32 bytes)
func (h *HMACSHA256) Finalize(out32 []byte) {
	if len(out32) != 32 {
		panic("output buffer must be 32 bytes")
	}

	var temp [32]byte
	h.inner.Finalize(temp[:])

	h.outer.Write(temp[:])
	h.outer.Finalize(out32)

	memclear(unsafe.Pointer(&temp), unsafe.Sizeof(temp))
}

// Clear clears the HMAC context
func (h *HMACSHA256) Clear() {
	h.inner.Clear()
	h.outer.Clear()
	memclear(unsafe.Pointer(h), unsafe.Sizeof(*h))
}

// HashToScalar converts a 32-byte hash to a scalar value, reducing modulo
// the group order
func HashToScalar(hash []byte) (*Scalar, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash must be 32 bytes, got %d: %w", len(hash), ErrMalformedInput)
	}

	var scalar Scalar
	scalar.setB32(hash)
	return &scalar, nil
}
