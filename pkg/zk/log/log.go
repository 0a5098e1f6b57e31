// Package log implements πlog: a proof that a Paillier ciphertext
// encrypts the same value as the discrete log of a public EC point. No
// protocol round in this module calls it; Signing's share proof uses
// πdec instead.
package log

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

// Public is the statement: ciphertext C and point X share the same
// underlying value x.
type Public struct {
	C      *paillier.Ciphertext
	X      *curve.Point
	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

// Private is the witness.
type Private struct {
	X   *saferith.Int // the shared value, as an integer
	Rho *saferith.Nat // C's encryption nonce
}

// Proof is the πlog sigma-protocol transcript.
type Proof struct {
	S  *saferith.Nat
	A  *paillier.Ciphertext
	APoint *curve.Point
	Z1 *saferith.Int
	Z2 *saferith.Nat
}

type wireProof struct {
	S      []byte
	A      *paillier.Ciphertext
	APoint *curve.Point
	Z1     natcodec.IntWire
	Z2     []byte
}

// MarshalCBOR implements cbor.Marshaler.
func (p *Proof) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireProof{
		S:      natcodec.NatBytes(p.S),
		A:      p.A,
		APoint: p.APoint,
		Z1:     natcodec.EncodeInt(p.Z1),
		Z2:     natcodec.NatBytes(p.Z2),
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (p *Proof) UnmarshalCBOR(data []byte) error {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.S = natcodec.NatFromBytes(w.S)
	p.A = w.A
	p.APoint = w.APoint
	p.Z1 = natcodec.DecodeInt(w.Z1)
	p.Z2 = natcodec.NatFromBytes(w.Z2)
	return nil
}

// Prove constructs the proof.
func Prove(transcript *hash.Transcript, pub Public, priv Private) (*Proof, error) {
	alpha := randomInt(maskBits)
	alphaScalar := curve.NewScalar().SetBytes(alpha.Abs().Bytes())
	if alpha.IsNegative() {
		alphaScalar = alphaScalar.Negate()
	}

	A, r := pub.Prover.Enc(rand.Reader, alpha)
	APoint := alphaScalar.ActOnBase()
	S := pub.Aux.Commit(priv.X, randomInt(maskBits))

	fork := transcript.Clone()
	fork.WriteDomain("zk/log/C", pub.C.Bytes())
	fork.WriteDomain("zk/log/X", pub.X.ToCompressed())
	fork.WriteDomain("zk/log/A", A.Bytes())
	fork.WriteDomain("zk/log/AP", APoint.ToCompressed())
	fork.WriteDomain("zk/log/S", S.Bytes())
	e := challengeInt(fork)

	z1 := new(saferith.Int).Add(alpha, new(saferith.Int).Mul(e, priv.X, -1), -1)
	z2 := new(saferith.Nat).ModMul(r, pub.Prover.N().Exp(priv.Rho, e.Abs()), pub.Prover.N())

	return &Proof{S: S, A: A, APoint: APoint, Z1: z1, Z2: z2}, nil
}

// Verify checks the proof against the public statement.
func Verify(transcript *hash.Transcript, pub Public, proof *Proof) bool {
	if proof == nil {
		return false
	}
	fork := transcript.Clone()
	fork.WriteDomain("zk/log/C", pub.C.Bytes())
	fork.WriteDomain("zk/log/X", pub.X.ToCompressed())
	fork.WriteDomain("zk/log/A", proof.A.Bytes())
	fork.WriteDomain("zk/log/AP", proof.APoint.ToCompressed())
	fork.WriteDomain("zk/log/S", proof.S.Bytes())
	e := challengeInt(fork)

	lhsCipher := pub.Prover.EncWithNonce(proof.Z1, proof.Z2)
	rhsCipher := pub.Prover.Add(proof.A, pub.Prover.Mul(pub.C, e))
	if string(lhsCipher.Bytes()) != string(rhsCipher.Bytes()) {
		return false
	}

	z1Scalar := curve.NewScalar().SetBytes(proof.Z1.Abs().Bytes())
	if proof.Z1.IsNegative() {
		z1Scalar = z1Scalar.Negate()
	}
	eScalar := curve.NewScalar().SetBytes(e.Abs().Bytes())
	if e.IsNegative() {
		eScalar = eScalar.Negate()
	}
	lhsPoint := z1Scalar.ActOnBase()
	rhsPoint := proof.APoint.Add(eScalar.Act(pub.X))
	return lhsPoint.Equal(rhsPoint)
}

func challengeInt(transcript *hash.Transcript) *saferith.Int {
	digest := transcript.Challenge("log/e")
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
