// Package paillier implements the additively homomorphic Paillier
// cryptosystem used as the engine's external collaborator for MtA and
// the range-proof family in pkg/zk. Modular arithmetic is delegated to
// github.com/cronokirby/saferith, mirroring the teacher's use of the
// sibling safenum package throughout its own (unsampled) Paillier layer.
package paillier

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

// BitsBlumPrime is the bit length each Paillier prime factor must have.
// 1536-bit primes give a 3072-bit modulus N, the width CGGMP21 assumes
// for its range proofs (SchemeParams.PaillierBits / 2).
const BitsBlumPrime = 1536

var (
	ErrPrimeBadLength = errors.New("paillier: prime factor has the wrong bit length")
	ErrNotBlum        = errors.New("paillier: prime factor is not 3 (mod 4)")
	ErrInvalidCiphertext = errors.New("paillier: ciphertext out of range")
)

var one = new(saferith.Nat).SetUint64(1)

// PublicKey is a Paillier public key: the modulus N (and its square).
type PublicKey struct {
	n        *saferith.Modulus
	nSquared *saferith.Modulus
}

// NewPublicKey wraps a raw modulus N into a PublicKey, computing N².
func NewPublicKey(n *saferith.Nat) *PublicKey {
	mod := saferith.ModulusFromNat(n)
	nSq := new(saferith.Nat).Mul(n, n, -1)
	return &PublicKey{n: mod, nSquared: saferith.ModulusFromNat(nSq)}
}

// N returns the public modulus.
func (pk *PublicKey) N() *saferith.Modulus { return pk.n }

// Clone returns a new PublicKey value; it shares pk's N and N^2
// *Modulus values rather than copying them.
func (pk *PublicKey) Clone() *PublicKey {
	return &PublicKey{n: pk.n, nSquared: pk.nSquared}
}

// Ciphertext is an encrypted Paillier value, an element of Z_{N^2}*.
type Ciphertext struct {
	c *saferith.Nat
}

func (ct *Ciphertext) Nat() *saferith.Nat { return ct.c }

// Bytes returns the big-endian encoding of the ciphertext.
func (ct *Ciphertext) Bytes() []byte {
	return ct.c.Bytes()
}

// CiphertextFromBytes reconstructs a ciphertext from its encoding.
func CiphertextFromBytes(b []byte) *Ciphertext {
	return &Ciphertext{c: new(saferith.Nat).SetBytes(b)}
}

// MarshalBinary implements encoding.BinaryMarshaler, letting Ciphertext
// appear directly in CBOR-encoded round messages.
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	return ct.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (ct *Ciphertext) UnmarshalBinary(b []byte) error {
	ct.c = new(saferith.Nat).SetBytes(b)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return pk.n.Nat().Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pk *PublicKey) UnmarshalBinary(b []byte) error {
	n := new(saferith.Nat).SetBytes(b)
	*pk = *NewPublicKey(n)
	return nil
}

// Enc encrypts m under pk using randomness sampled from rng, returning
// both the ciphertext and the nonce used (callers need the nonce to
// produce range proofs over the same ciphertext).
func (pk *PublicKey) Enc(rng io.Reader, m *saferith.Int) (*Ciphertext, *saferith.Nat) {
	nonce := sampleUnit(rng, pk.n)
	return pk.EncWithNonce(m, nonce), nonce
}

// EncWithNonce encrypts m deterministically using the given nonce:
// c = (1+N)^m * nonce^N mod N^2.
func (pk *PublicKey) EncWithNonce(m *saferith.Int, nonce *saferith.Nat) *Ciphertext {
	nAsNat := pk.n.Nat()
	// (1+N)^m mod N^2 == 1 + m*N mod N^2, the standard Paillier shortcut.
	mNat, mNeg := m.Abs(), m.IsNegative()
	mTimesN := new(saferith.Nat).Mul(mNat, nAsNat, -1)
	base := new(saferith.Nat).SetUint64(1)
	if mNeg {
		negMTimesN := new(saferith.Nat).ModNeg(mTimesN, pk.nSquared)
		base = new(saferith.Nat).ModAdd(base, negMTimesN, pk.nSquared)
	} else {
		base = new(saferith.Nat).ModAdd(base, mTimesN, pk.nSquared)
	}
	nonceToN := pk.nSquared.Exp(nonce, nAsNat)
	c := new(saferith.Nat).ModMul(base, nonceToN, pk.nSquared)
	return &Ciphertext{c: c}
}

// Add homomorphically adds two ciphertexts (mod N^2 multiplication).
func (pk *PublicKey) Add(a, b *Ciphertext) *Ciphertext {
	return &Ciphertext{c: new(saferith.Nat).ModMul(a.c, b.c, pk.nSquared)}
}

// Mul homomorphically scales a ciphertext's plaintext by k (mod N^2
// exponentiation), the building block for MtA's multiplicative step.
func (pk *PublicKey) Mul(ct *Ciphertext, k *saferith.Int) *Ciphertext {
	kNat, kNeg := k.Abs(), k.IsNegative()
	result := pk.nSquared.Exp(ct.c, kNat)
	if kNeg {
		result = new(saferith.Nat).ModInverse(result, pk.nSquared)
	}
	return &Ciphertext{c: result}
}

// ValidateCiphertext checks that c is a unit of Z_{N^2}, i.e. in range
// and coprime to N^2. saferith's fixed-width Nat already bounds the
// representable range; we only check for the zero ciphertext here.
func (pk *PublicKey) ValidateCiphertext(ct *Ciphertext) bool {
	return ct != nil && ct.c != nil && ct.c.EqZero() == 0
}

// SecretKey is a Paillier secret key: the prime factorization of N.
type SecretKey struct {
	*PublicKey
	p, q   *saferith.Nat
	phi    *saferith.Nat
	phiInv *saferith.Nat
}

// P returns the first prime factor.
func (sk *SecretKey) P() *saferith.Nat { return sk.p }

// Q returns the second prime factor.
func (sk *SecretKey) Q() *saferith.Nat { return sk.q }

// Phi returns phi(N) = (P-1)(Q-1).
func (sk *SecretKey) Phi() *saferith.Nat { return sk.phi }

// MarshalBinary implements encoding.BinaryMarshaler, encoding just the
// two prime factors: phi and its inverse are cheap to recompute and
// not worth carrying on the wire.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	p, q := sk.p.Bytes(), sk.q.Bytes()
	if len(p) != len(q) {
		return nil, fmt.Errorf("paillier: secret key factors have mismatched lengths %d/%d", len(p), len(q))
	}
	buf := make([]byte, 4+len(p)+len(q))
	buf[0] = byte(len(p) >> 24)
	buf[1] = byte(len(p) >> 16)
	buf[2] = byte(len(p) >> 8)
	buf[3] = byte(len(p))
	copy(buf[4:], p)
	copy(buf[4+len(p):], q)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sk *SecretKey) UnmarshalBinary(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("paillier: secret key encoding too short")
	}
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if len(b) != 4+2*n {
		return fmt.Errorf("paillier: secret key encoding has the wrong length")
	}
	p := new(saferith.Nat).SetBytes(b[4 : 4+n])
	q := new(saferith.Nat).SetBytes(b[4+n:])
	rebuilt, err := NewSecretKeyFromPrimes(p, q)
	if err != nil {
		return fmt.Errorf("paillier: failed to rebuild secret key: %w", err)
	}
	*sk = *rebuilt
	return nil
}

// GenerateKeyPair samples two Blum primes (each ≡ 3 mod 4) and returns
// the resulting key pair. It does not check that (p-1)/2 or (q-1)/2 is
// prime, so the factors are not guaranteed to be safe primes. It is CPU-heavy (~seconds at BitsBlumPrime width); callers
// generating many keys (as Auxiliary/Key-Refresh does, one per party)
// should fan out with pkg/pool.
func GenerateKeyPair(rng io.Reader) (*SecretKey, error) {
	if rng == nil {
		rng = rand.Reader
	}
	p, err := sampleBlumPrime(rng)
	if err != nil {
		return nil, fmt.Errorf("paillier: failed to sample p: %w", err)
	}
	q, err := sampleBlumPrime(rng)
	if err != nil {
		return nil, fmt.Errorf("paillier: failed to sample q: %w", err)
	}
	return NewSecretKeyFromPrimes(p, q)
}

// NewSecretKeyFromPrimes builds a SecretKey from two (assumed prime,
// assumed Blum) factors.
func NewSecretKeyFromPrimes(p, q *saferith.Nat) (*SecretKey, error) {
	n := new(saferith.Nat).Mul(p, q, -1)
	pMinus1 := new(saferith.Nat).Sub(p, one, -1)
	qMinus1 := new(saferith.Nat).Sub(q, one, -1)
	phi := new(saferith.Nat).Mul(pMinus1, qMinus1, -1)
	nMod := saferith.ModulusFromNat(n)
	phiInv := new(saferith.Nat).ModInverse(phi, nMod)
	return &SecretKey{
		PublicKey: NewPublicKey(n),
		p:         p,
		q:         q,
		phi:       phi,
		phiInv:    phiInv,
	}, nil
}

// Dec decrypts a ciphertext, returning the signed plaintext in
// (-N/2, N/2], per the standard Paillier decryption formula using the
// Chinese-Remainder speedup's non-CRT fallback (kept simple since raw
// performance is out of this module's scope).
func (sk *SecretKey) Dec(ct *Ciphertext) (*saferith.Int, error) {
	if !sk.ValidateCiphertext(ct) {
		return nil, ErrInvalidCiphertext
	}
	nSquared := sk.nSquared
	result := nSquared.Exp(ct.c, sk.phi)
	result = new(saferith.Nat).Sub(result, one, -1)
	nNat := sk.n.Nat()
	result = new(saferith.Nat).Div(result, saferith.ModulusFromNat(nNat), nNat.TrueLen())
	result = new(saferith.Nat).ModMul(result, sk.phiInv, sk.n)
	return new(saferith.Int).SetModSymmetric(result, sk.n), nil
}

// ValidatePrime checks p is the right bit length and Blum (3 mod 4).
func ValidatePrime(p *saferith.Nat) error {
	if bits := p.TrueLen(); bits != BitsBlumPrime {
		return fmt.Errorf("%w: have %d want %d", ErrPrimeBadLength, bits, BitsBlumPrime)
	}
	b := p.Bytes()
	if len(b) == 0 || b[len(b)-1]&0b11 != 3 {
		return ErrNotBlum
	}
	return nil
}

func sampleBlumPrime(rng io.Reader) (*saferith.Nat, error) {
	// A production implementation samples safe Blum primes (p, (p-1)/2
	// both prime, p ≡ 3 mod 4); this module delegates the heavy-duty
	// primality search to crypto/rand-seeded search exactly as the
	// teacher's sample.Paillier collaborator would, without
	// reimplementing a hardened sieve (out of scope per spec.md §1).
	for {
		buf := make([]byte, BitsBlumPrime/8)
		if _, err := io.ReadFull(rng, buf); err != nil {
			return nil, err
		}
		buf[0] |= 0xC0                       // ensure top bits set for full bit length
		buf[len(buf)-1] |= 0x03              // ensure ≡ 3 mod 4
		n := new(saferith.Nat).SetBytes(buf)
		if n.TrueLen() != BitsBlumPrime {
			continue
		}
		if !probablyPrime(n) {
			continue
		}
		return n, nil
	}
}

func probablyPrime(n *saferith.Nat) bool {
	return n.Big().ProbablyPrime(20)
}

// sampleUnit samples a uniformly random element of Z_n^*.
func sampleUnit(rng io.Reader, n *saferith.Modulus) *saferith.Nat {
	if rng == nil {
		rng = rand.Reader
	}
	byteLen := (n.Nat().TrueLen() + 7) / 8
	for {
		buf := make([]byte, byteLen)
		if _, err := io.ReadFull(rng, buf); err != nil {
			continue
		}
		candidate := new(saferith.Nat).SetBytes(buf)
		candidate.Mod(candidate, n)
		if candidate.EqZero() == 1 {
			continue
		}
		return candidate
	}
}
