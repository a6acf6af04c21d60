package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Digest is a fixed 256-bit content hash.
type Digest [32]byte

// Zero is the digest of nothing; used as the hash of absent tables.
var Zero Digest

// Combine builds H(first || rest...). Callers keep rest in a deterministic order.
func Combine(first Digest, rest ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 8 bytes in hex, enough for log lines.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:8])
}

func (d Digest) IsZero() bool {
	return d == Zero
}

// Hasher is a stable streaming hasher. Every write is length- or
// width-prefixed so that adjacent fields cannot alias.
type Hasher struct {
	h   hash.Hash
	buf [8]byte
}

func New() *Hasher {
	return &Hasher{h: sha256.New()}
}

func (s *Hasher) WriteU8(v uint8) {
	s.buf[0] = v
	_, _ = s.h.Write(s.buf[:1])
}

func (s *Hasher) WriteU32(v uint32) {
	binary.LittleEndian.PutUint32(s.buf[:4], v)
	_, _ = s.h.Write(s.buf[:4])
}

func (s *Hasher) WriteU64(v uint64) {
	binary.LittleEndian.PutUint64(s.buf[:8], v)
	_, _ = s.h.Write(s.buf[:8])
}

func (s *Hasher) WriteBool(v bool) {
	if v {
		s.WriteU8(1)
		return
	}
	s.WriteU8(0)
}

func (s *Hasher) WriteString(v string) {
	s.WriteU64(uint64(len(v)))
	_, _ = s.h.Write([]byte(v))
}

func (s *Hasher) WriteDigest(d Digest) {
	_, _ = s.h.Write(d[:])
}

// Sum returns the digest of everything written so far.
func (s *Hasher) Sum() Digest {
	var out Digest
	copy(out[:], s.h.Sum(nil))
	return out
}

// OfString hashes a single string.
func OfString(v string) Digest {
	s := New()
	s.WriteString(v)
	return s.Sum()
}
