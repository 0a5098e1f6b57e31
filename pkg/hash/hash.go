// Package hash implements the domain-separated incremental hash chain
// used to derive challenges, fingerprint round inputs, and build hash
// commitments. It is built on github.com/zeebo/blake3.
package hash

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// Commitment is a hash commitment to a value, opened later with its
// matching Decommitment (nonce).
type Commitment []byte

// Decommitment is the randomness used to open a Commitment.
type Decommitment []byte

// WriterTo is implemented by anything hashable into a Transcript. Domain
// names string-separate unrelated structures so that, e.g., a
// scalar and a point with the same byte representation never collide.
type WriterTo interface {
	Domain() string
	WriteTo(w io.Writer) (int64, error)
}

// BytesWithDomain lets a raw byte slice carry a domain tag, for chaining
// values that don't implement WriterTo (e.g. precomputed sub-hashes).
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

func (b *BytesWithDomain) Domain() string { return b.TheDomain }
func (b *BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

// Transcript is an incremental, domain-separated hash chain. Every
// session derives its own Transcript seeded with the session id so that
// challenges from distinct sessions never collide, even over identical
// witness/statement pairs.
type Transcript struct {
	h *blake3.Hasher
}

// New returns a Transcript seeded with domain-separated initial bytes.
func New(sessionID []byte) *Transcript {
	t := &Transcript{h: blake3.New()}
	_, _ = t.h.Write([]byte("cggmp21/transcript/v1"))
	_, _ = t.h.Write(sessionID)
	return t
}

// Clone returns an independent copy of the transcript's current state,
// so a round can fork a challenge-specific transcript without polluting
// the shared chain other proofs in the same round will also bind to.
func (t *Transcript) Clone() *Transcript {
	return &Transcript{h: t.h.Clone()}
}

// WriteDomain chains a domain tag followed by length-prefixed bytes.
func (t *Transcript) WriteDomain(domain string, b []byte) {
	_, _ = t.h.Write([]byte(domain))
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	_, _ = t.h.Write(lenBuf[:])
	_, _ = t.h.Write(b)
}

// WriteAny chains a WriterTo value using its own domain.
func (t *Transcript) WriteAny(w WriterTo) error {
	var buf writeBuffer
	if _, err := w.WriteTo(&buf); err != nil {
		return fmt.Errorf("hash: failed to serialize %s: %w", w.Domain(), err)
	}
	t.WriteDomain(w.Domain(), buf.b)
	return nil
}

// Sum returns the current 32-byte digest without mutating the chain
// further (blake3's XOF state can be read non-destructively).
func (t *Transcript) Sum() []byte {
	d := t.h.Digest()
	out := make([]byte, 32)
	_, _ = io.ReadFull(d, out)
	return out
}

// Challenge derives a scalar-sized challenge in [0, 2^256) from the
// current transcript state and an additional domain-specific label,
// without mutating the parent transcript.
func (t *Transcript) Challenge(label string) []byte {
	fork := t.Clone()
	fork.WriteDomain("challenge:"+label, nil)
	return fork.Sum()
}

// Commit hashes values together with a fresh random nonce, returning a
// commitment the sender can later open with Decommitment. Mirrors the
// teacher's r.HashForID(id).Commit(...) pattern from KeyGen round 1.
func Commit(values ...WriterTo) (Commitment, Decommitment, error) {
	nonce := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("hash: failed to sample commitment nonce: %w", err)
	}
	c, err := commitWithNonce(nonce, values...)
	if err != nil {
		return nil, nil, err
	}
	return c, nonce, nil
}

// VerifyCommit recomputes the commitment from values and the claimed
// decommitment nonce and checks it against commitment.
func VerifyCommit(commitment Commitment, decommitment Decommitment, values ...WriterTo) (bool, error) {
	recomputed, err := commitWithNonce(decommitment, values...)
	if err != nil {
		return false, err
	}
	if len(recomputed) != len(commitment) {
		return false, nil
	}
	ok := true
	for i := range recomputed {
		if recomputed[i] != commitment[i] {
			ok = false
		}
	}
	return ok, nil
}

func commitWithNonce(nonce []byte, values ...WriterTo) (Commitment, error) {
	h := blake3.New()
	_, _ = h.Write([]byte("cggmp21/commitment/v1"))
	_, _ = h.Write(nonce)
	for _, v := range values {
		var buf writeBuffer
		if _, err := v.WriteTo(&buf); err != nil {
			return nil, fmt.Errorf("hash: failed to serialize %s for commitment: %w", v.Domain(), err)
		}
		_, _ = h.Write([]byte(v.Domain()))
		_, _ = h.Write(buf.b)
	}
	d := h.Digest()
	out := make([]byte, 32)
	_, _ = io.ReadFull(d, out)
	return out, nil
}

// writeBuffer is a tiny growable byte sink implementing io.Writer,
// avoiding a bytes.Buffer import purely for style parity with the
// teacher's io.WriterTo-heavy serialization code.
type writeBuffer struct {
	b []byte
}

func (w *writeBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}
