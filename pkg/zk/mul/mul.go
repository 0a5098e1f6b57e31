// Package mul implements πmul: a proof that one ciphertext is another
// raised to a known (but hidden) plaintext exponent, i.e. Z = X^y ·
// Enc(0; rho) where Y = Enc(y) is also published. No protocol round in
// this module calls it; Presigning's MtA exchange uses πaff-g instead.
package mul

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/zk/natcodec"
)

const maskBits = 256

var zero = new(saferith.Int)

// Public is the statement.
type Public struct {
	X      *paillier.Ciphertext
	Y      *paillier.Ciphertext
	Z      *paillier.Ciphertext
	Prover *paillier.PublicKey
}

// Private is the witness.
type Private struct {
	Y    *saferith.Int
	RhoY *saferith.Nat
	Rho  *saferith.Nat
}

// Proof is the πmul sigma-protocol transcript.
type Proof struct {
	A   *paillier.Ciphertext // X^alpha * Enc(0; r)
	B   *paillier.Ciphertext // Enc(alpha; s)
	Z1  *saferith.Int        // alpha + e*y
	Z2  *saferith.Nat        // r * rho^e
	Z3  *saferith.Nat        // s * rhoY^e
}

type wireProof struct {
	A  *paillier.Ciphertext
	B  *paillier.Ciphertext
	Z1 natcodec.IntWire
	Z2 []byte
	Z3 []byte
}

// MarshalCBOR implements cbor.Marshaler.
func (p *Proof) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireProof{
		A:  p.A,
		B:  p.B,
		Z1: natcodec.EncodeInt(p.Z1),
		Z2: natcodec.NatBytes(p.Z2),
		Z3: natcodec.NatBytes(p.Z3),
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (p *Proof) UnmarshalCBOR(data []byte) error {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.A = w.A
	p.B = w.B
	p.Z1 = natcodec.DecodeInt(w.Z1)
	p.Z2 = natcodec.NatFromBytes(w.Z2)
	p.Z3 = natcodec.NatFromBytes(w.Z3)
	return nil
}

// Prove constructs the proof.
func Prove(transcript *hash.Transcript, pub Public, priv Private) (*Proof, error) {
	alpha := randomInt(maskBits)

	zeroEnc, r := pub.Prover.Enc(rand.Reader, zero)
	A := pub.Prover.Add(pub.Prover.Mul(pub.X, alpha), zeroEnc)
	B, s := pub.Prover.Enc(rand.Reader, alpha)

	fork := transcript.Clone()
	fork.WriteDomain("zk/mul/X", pub.X.Bytes())
	fork.WriteDomain("zk/mul/Y", pub.Y.Bytes())
	fork.WriteDomain("zk/mul/Z", pub.Z.Bytes())
	fork.WriteDomain("zk/mul/A", A.Bytes())
	fork.WriteDomain("zk/mul/B", B.Bytes())
	e := challengeInt(fork)

	z1 := new(saferith.Int).Add(alpha, new(saferith.Int).Mul(e, priv.Y, -1), -1)
	z2 := new(saferith.Nat).ModMul(r, pub.Prover.N().Exp(priv.Rho, e.Abs()), pub.Prover.N())
	z3 := new(saferith.Nat).ModMul(s, pub.Prover.N().Exp(priv.RhoY, e.Abs()), pub.Prover.N())

	return &Proof{A: A, B: B, Z1: z1, Z2: z2, Z3: z3}, nil
}

// Verify checks the proof against the public statement.
func Verify(transcript *hash.Transcript, pub Public, proof *Proof) bool {
	if proof == nil {
		return false
	}
	fork := transcript.Clone()
	fork.WriteDomain("zk/mul/X", pub.X.Bytes())
	fork.WriteDomain("zk/mul/Y", pub.Y.Bytes())
	fork.WriteDomain("zk/mul/Z", pub.Z.Bytes())
	fork.WriteDomain("zk/mul/A", proof.A.Bytes())
	fork.WriteDomain("zk/mul/B", proof.B.Bytes())
	e := challengeInt(fork)

	zeroEnc := pub.Prover.EncWithNonce(zero, proof.Z2)
	lhs := pub.Prover.Add(pub.Prover.Mul(pub.X, proof.Z1), zeroEnc)
	rhs := pub.Prover.Add(proof.A, pub.Prover.Mul(pub.Z, e))
	if string(lhs.Bytes()) != string(rhs.Bytes()) {
		return false
	}

	lhsB := pub.Prover.EncWithNonce(proof.Z1, proof.Z3)
	rhsB := pub.Prover.Add(proof.B, pub.Prover.Mul(pub.Y, e))
	return string(lhsB.Bytes()) == string(rhsB.Bytes())
}

func challengeInt(transcript *hash.Transcript) *saferith.Int {
	digest := transcript.Challenge("mul/e")
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
