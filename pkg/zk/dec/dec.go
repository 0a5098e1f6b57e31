// Package dec implements πdec: a proof that a public scalar is the
// reduction modulo the curve order of a Paillier ciphertext's plaintext.
// Signing's identifiable-abort round uses it to show that a party's
// disclosed σ_i (or an intermediate additive share) really is the
// decryption of the ciphertext it publishes alongside it, pinning blame on
// whichever party's proof fails to verify.
package dec

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/zk/natcodec"
)

const maskBits = 256

// curveOrder is the secp256k1 group order, used to reduce plaintexts
// into scalars for the congruence check.
var curveOrder = func() *saferith.Nat {
	n := new(saferith.Nat)
	n.SetHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	return n
}()

var curveOrderMod = saferith.ModulusFromNat(curveOrder)

// Public is the statement: ciphertext C decrypts to a value congruent
// to scalar X modulo the curve order.
type Public struct {
	C      *paillier.Ciphertext
	X      *curve.Scalar
	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

// Private is the witness: the full-width plaintext y (before reduction)
// and the nonce used to encrypt it.
type Private struct {
	Y   *saferith.Int
	Rho *saferith.Nat
}

// Proof is the πdec sigma-protocol transcript.
type Proof struct {
	S       *saferith.Nat
	T       *saferith.Nat
	A       *paillier.Ciphertext
	AScalar *curve.Scalar // alpha reduced mod q, disclosed in the clear
	Z1      *saferith.Int // alpha + e*y, over Z
	Z2      *saferith.Int // nu + e*mu, over Z
	Z3      *saferith.Nat // paillier nonce combination
}

type wireProof struct {
	S       []byte
	T       []byte
	A       *paillier.Ciphertext
	AScalar *curve.Scalar
	Z1      natcodec.IntWire
	Z2      natcodec.IntWire
	Z3      []byte
}

// MarshalCBOR implements cbor.Marshaler.
func (p *Proof) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireProof{
		S:       natcodec.NatBytes(p.S),
		T:       natcodec.NatBytes(p.T),
		A:       p.A,
		AScalar: p.AScalar,
		Z1:      natcodec.EncodeInt(p.Z1),
		Z2:      natcodec.EncodeInt(p.Z2),
		Z3:      natcodec.NatBytes(p.Z3),
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (p *Proof) UnmarshalCBOR(data []byte) error {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.S = natcodec.NatFromBytes(w.S)
	p.T = natcodec.NatFromBytes(w.T)
	p.A = w.A
	p.AScalar = w.AScalar
	p.Z1 = natcodec.DecodeInt(w.Z1)
	p.Z2 = natcodec.DecodeInt(w.Z2)
	p.Z3 = natcodec.NatFromBytes(w.Z3)
	return nil
}

// Prove constructs the proof.
func Prove(transcript *hash.Transcript, pub Public, priv Private) (*Proof, error) {
	alpha := randomInt(maskBits)
	mu := randomInt(maskBits)
	nu := randomInt(maskBits)

	A, r := pub.Prover.Enc(rand.Reader, alpha)
	S := pub.Aux.Commit(priv.Y, mu)
	T := pub.Aux.Commit(alpha, nu)

	aScalar := reduceToScalar(alpha)

	fork := transcript.Clone()
	fork.WriteDomain("zk/dec/C", pub.C.Bytes())
	fork.WriteDomain("zk/dec/X", pub.X.Bytes())
	fork.WriteDomain("zk/dec/A", A.Bytes())
	fork.WriteDomain("zk/dec/AS", aScalar.Bytes())
	fork.WriteDomain("zk/dec/S", S.Bytes())
	fork.WriteDomain("zk/dec/T", T.Bytes())
	e := challengeInt(fork)

	z1 := new(saferith.Int).Add(alpha, new(saferith.Int).Mul(e, priv.Y, -1), -1)
	z2 := new(saferith.Int).Add(nu, new(saferith.Int).Mul(e, mu, -1), -1)
	z3 := new(saferith.Nat).ModMul(r, pub.Prover.N().Exp(priv.Rho, e.Abs()), pub.Prover.N())

	return &Proof{S: S, T: T, A: A, AScalar: aScalar, Z1: z1, Z2: z2, Z3: z3}, nil
}

// Verify checks the proof against the public statement.
func Verify(transcript *hash.Transcript, pub Public, proof *Proof) bool {
	if proof == nil {
		return false
	}
	fork := transcript.Clone()
	fork.WriteDomain("zk/dec/C", pub.C.Bytes())
	fork.WriteDomain("zk/dec/X", pub.X.Bytes())
	fork.WriteDomain("zk/dec/A", proof.A.Bytes())
	fork.WriteDomain("zk/dec/AS", proof.AScalar.Bytes())
	fork.WriteDomain("zk/dec/S", proof.S.Bytes())
	fork.WriteDomain("zk/dec/T", proof.T.Bytes())
	e := challengeInt(fork)

	lhsCipher := pub.Prover.EncWithNonce(proof.Z1, proof.Z3)
	rhsCipher := pub.Prover.Add(proof.A, pub.Prover.Mul(pub.C, e))
	if string(lhsCipher.Bytes()) != string(rhsCipher.Bytes()) {
		return false
	}

	lhsPed := pub.Aux.Commit(proof.Z1, proof.Z2)
	rhsPed := new(saferith.Nat).ModMul(proof.T, expSigned(pub.Aux, proof.S, e), pub.Aux.N())
	if lhsPed.Big().Cmp(rhsPed.Big()) != 0 {
		return false
	}

	z1Scalar := reduceToScalar(proof.Z1)
	eScalar := reduceToScalar(e)
	expected := proof.AScalar.Add(eScalar.Mul(pub.X))
	return z1Scalar.Equal(expected)
}

// reduceToScalar reduces a signed Int modulo the curve order and lifts
// it into a Scalar, negating when the source was negative.
func reduceToScalar(i *saferith.Int) *curve.Scalar {
	abs := new(saferith.Nat).Mod(i.Abs(), curveOrderMod)
	s := curve.NewScalar().SetBytes(abs.Bytes())
	if i.IsNegative() {
		s = s.Negate()
	}
	return s
}

func expSigned(aux *pedersen.Parameters, base *saferith.Nat, e *saferith.Int) *saferith.Nat {
	abs, neg := e.Abs(), e.IsNegative()
	result := aux.N().Exp(base, abs)
	if neg {
		result = new(saferith.Nat).ModInverse(result, aux.N())
	}
	return result
}

func challengeInt(transcript *hash.Transcript) *saferith.Int {
	digest := transcript.Challenge("dec/e")
	n := new(saferith.Nat).SetBytes(digest)
	return new(saferith.Int).SetNat(n)
}

func randomInt(bits int) *saferith.Int {
	buf := make([]byte, bits/8)
	_, _ = rand.Read(buf)
	n := new(saferith.Nat).SetBytes(buf)
	i := new(saferith.Int).SetNat(n)
	if buf[0]&1 == 1 {
		i = i.Neg(1)
	}
	return i
}
