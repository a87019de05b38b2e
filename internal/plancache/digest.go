package plancache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 hash.
type Digest [32]byte

// Sum hashes data.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine hashes content followed by each part, in order.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Key identifies the plans for one program text, target list, root
// selection and layout triple (empty when layouts are off). Order of targets
// and roots is significant.
func Key(program []byte, targets, roots []string, abi string) Digest {
	return Combine(Sum(program), sumStrings(targets), sumStrings(roots), sumStrings([]string{abi}))
}

func sumStrings(items []string) Digest {
	h := sha256.New()
	for _, s := range items {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d was never set.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
