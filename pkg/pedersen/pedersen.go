// Package pedersen implements ring-Pedersen parameters: a commitment
// scheme over an RSA-like modulus used throughout the ZK range-proof
// family (pkg/zk/enc, log, affg, mul, dec) as the auxiliary commitment
// space.
package pedersen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

// Parameters is a ring-Pedersen parameter tuple (N, S, T), chosen so
// that the discrete log of S base T mod N is unknown to anyone but the
// party that generated it (spec.md §3's PublicAuxInfo.rp_generator/
// rp_power).
type Parameters struct {
	n    *saferith.Modulus
	s, t *saferith.Nat
}

// New constructs Parameters directly; callers generating fresh
// parameters should use Generate instead, which also returns the secret
// exponent lambda needed to prove knowledge of the S/T relationship
// (pkg/zk/prm).
func New(n *saferith.Modulus, s, t *saferith.Nat) *Parameters {
	return &Parameters{n: n, s: s, t: t}
}

func (p *Parameters) N() *saferith.Modulus { return p.n }
func (p *Parameters) S() *saferith.Nat     { return p.s }
func (p *Parameters) T() *saferith.Nat     { return p.t }

// lengthPrefixed builds the flat byte-triple encoding MarshalBinary produces:
// each field's saferith byte encoding, length-prefixed so UnmarshalBinary
// can split them back apart.
func lengthPrefixed(chunks ...[]byte) []byte {
	out := make([]byte, 0)
	for _, c := range chunks {
		var lenBuf [4]byte
		lenBuf[0] = byte(len(c) >> 24)
		lenBuf[1] = byte(len(c) >> 16)
		lenBuf[2] = byte(len(c) >> 8)
		lenBuf[3] = byte(len(c))
		out = append(out, lenBuf[:]...)
		out = append(out, c...)
	}
	return out
}

func splitLengthPrefixed(b []byte, n int) ([][]byte, error) {
	chunks := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if len(b) < 4 {
			return nil, errors.New("pedersen: truncated encoding")
		}
		l := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
		b = b[4:]
		if len(b) < l {
			return nil, errors.New("pedersen: truncated encoding")
		}
		chunks = append(chunks, b[:l])
		b = b[l:]
	}
	return chunks, nil
}

// MarshalBinary implements encoding.BinaryMarshaler, letting Parameters
// appear directly in CBOR-encoded round messages (the mod/prm proofs
// carry a Parameters value as their Aux field).
func (p *Parameters) MarshalBinary() ([]byte, error) {
	return lengthPrefixed(p.n.Nat().Bytes(), p.s.Bytes(), p.t.Bytes()), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Parameters) UnmarshalBinary(b []byte) error {
	chunks, err := splitLengthPrefixed(b, 3)
	if err != nil {
		return err
	}
	n := new(saferith.Nat).SetBytes(chunks[0])
	p.n = saferith.ModulusFromNat(n)
	p.s = new(saferith.Nat).SetBytes(chunks[1])
	p.t = new(saferith.Nat).SetBytes(chunks[2])
	return nil
}

// Generate samples t, lambda, and derives s = t^lambda mod phi-order
// subgroup of Z_n^*, given the factorization's totient phi and modulus
// n. This mirrors the teacher's SecretKey.GeneratePedersen helper: the
// Paillier key generator is the natural place to also mint ring-Pedersen
// parameters, since both need the same safe-prime factorization.
func Generate(rng io.Reader, phi *saferith.Nat, n *saferith.Modulus) (*Parameters, *saferith.Nat, error) {
	if rng == nil {
		rng = rand.Reader
	}
	phiMod := saferith.ModulusFromNat(phi)
	lambda := sampleNat(rng, phiMod)
	tau := sampleUnitSquare(rng, n)
	t := tau
	s := n.Exp(t, lambda)
	return &Parameters{n: n, s: s, t: t}, lambda, nil
}

// Commit computes s^x * t^r mod N, the Pedersen commitment to x with
// blinding r.
func (p *Parameters) Commit(x, r *saferith.Int) *saferith.Nat {
	sx := expSigned(p.n, p.s, x)
	tr := expSigned(p.n, p.t, r)
	return new(saferith.Nat).ModMul(sx, tr, p.n)
}

func expSigned(n *saferith.Modulus, base *saferith.Nat, e *saferith.Int) *saferith.Nat {
	abs, neg := e.Abs(), e.IsNegative()
	result := n.Exp(base, abs)
	if neg {
		result = new(saferith.Nat).ModInverse(result, n)
	}
	return result
}

// ValidateParameters checks that N, S and T are present, that S and T are
// non-zero, and that S is non-zero modulo N. It does not check that N is
// well formed or that S and T are units modulo N.
func ValidateParameters(n *saferith.Modulus, s, t *saferith.Nat) error {
	if n == nil || s == nil || t == nil {
		return errors.New("pedersen: missing parameter")
	}
	if s.EqZero() == 1 || t.EqZero() == 1 {
		return errors.New("pedersen: s or t is zero")
	}
	if new(saferith.Nat).Mod(s, n).Eq(new(saferith.Nat).SetUint64(0)) == 1 {
		return fmt.Errorf("pedersen: s is not coprime to N")
	}
	return nil
}

func sampleNat(rng io.Reader, m *saferith.Modulus) *saferith.Nat {
	byteLen := (m.Nat().TrueLen() + 7) / 8
	for {
		buf := make([]byte, byteLen)
		if _, err := io.ReadFull(rng, buf); err != nil {
			continue
		}
		n := new(saferith.Nat).SetBytes(buf)
		n.Mod(n, m)
		if n.EqZero() == 1 {
			continue
		}
		return n
	}
}

func sampleUnitSquare(rng io.Reader, n *saferith.Modulus) *saferith.Nat {
	r := sampleNat(rng, n)
	return new(saferith.Nat).ModMul(r, r, n)
}
