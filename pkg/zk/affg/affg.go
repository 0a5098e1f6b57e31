// Package affg implements πaff-g, the range proof backing the
// multiplicative-to-additive (MtA) exchange in Presigning. A party
// holding a multiplicative share x (bound to a public point X = x·G) and
// a peer's ciphertext C proves that D = C^x · Enc_j(-beta; r) and
// Y = Enc_i(beta; r2) were computed consistently, without revealing x or
// beta beyond their committed bounds.
package affg

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

// Public is the MtA statement.
type Public struct {
	C        *paillier.Ciphertext // peer j's ciphertext being scaled
	D        *paillier.Ciphertext // C^x * Enc_j(-beta)
	Y        *paillier.Ciphertext // Enc_i(beta)
	X        *curve.Point         // x·G
	Receiver *paillier.PublicKey  // pk_j, owner of C and D
	Sender   *paillier.PublicKey  // pk_i, owner of Y
	Aux      *pedersen.Parameters
}

// Private is the witness.
type Private struct {
	X    *saferith.Int // multiplicative share
	Beta *saferith.Int // additive offset
	R    *saferith.Nat // nonce used inside D's Enc_j(-beta; r)
	R2   *saferith.Nat // nonce used for Y = Enc_i(beta; r2)
}

// Proof is the πaff-g sigma-protocol transcript.
type Proof struct {
	S   *saferith.Nat
	T   *saferith.Nat
	A   *paillier.Ciphertext // D_tilde = C^alpha * Enc_j(-beta_tilde; r_tilde)
	APoint *curve.Point
	BY  *paillier.Ciphertext // Enc_i(beta_tilde; r2_tilde)
	Z1  *saferith.Int        // alpha + e*x
	Z2  *saferith.Int        // beta_tilde + e*beta
	Z3  *saferith.Nat        // r_tilde * r^e
	Z4  *saferith.Nat        // r2_tilde * r2^e
}

type wireProof struct {
	S      []byte
	T      []byte
	A      *paillier.Ciphertext
	APoint *curve.Point
	BY     *paillier.Ciphertext
	Z1     natcodec.IntWire
	Z2     natcodec.IntWire
	Z3     []byte
	Z4     []byte
}

// MarshalCBOR implements cbor.Marshaler.
func (p *Proof) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireProof{
		S:      natcodec.NatBytes(p.S),
		T:      natcodec.NatBytes(p.T),
		A:      p.A,
		APoint: p.APoint,
		BY:     p.BY,
		Z1:     natcodec.EncodeInt(p.Z1),
		Z2:     natcodec.EncodeInt(p.Z2),
		Z3:     natcodec.NatBytes(p.Z3),
		Z4:     natcodec.NatBytes(p.Z4),
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
	p.APoint = w.APoint
	p.BY = w.BY
	p.Z1 = natcodec.DecodeInt(w.Z1)
	p.Z2 = natcodec.DecodeInt(w.Z2)
	p.Z3 = natcodec.NatFromBytes(w.Z3)
	p.Z4 = natcodec.NatFromBytes(w.Z4)
	return nil
}

// Prove constructs the proof.
func Prove(transcript *hash.Transcript, pub Public, priv Private) (*Proof, error) {
	alpha := randomInt(maskBits)
	betaTilde := randomInt(maskBits)

	alphaScalar := toScalar(alpha)
	APoint := alphaScalar.ActOnBase()

	negBetaTilde := new(saferith.Int).Set(betaTilde).Neg(1)
	encNegBetaTilde, rTilde := pub.Receiver.Enc(rand.Reader, negBetaTilde)
	A := pub.Receiver.Add(pub.Receiver.Mul(pub.C, alpha), encNegBetaTilde)

	BY, r2Tilde := pub.Sender.Enc(rand.Reader, betaTilde)

	S := pub.Aux.Commit(priv.X, randomInt(maskBits))
	T := pub.Aux.Commit(priv.Beta, randomInt(maskBits))

	fork := transcript.Clone()
	fork.WriteDomain("zk/affg/C", pub.C.Bytes())
	fork.WriteDomain("zk/affg/D", pub.D.Bytes())
	fork.WriteDomain("zk/affg/Y", pub.Y.Bytes())
	fork.WriteDomain("zk/affg/X", pub.X.ToCompressed())
	fork.WriteDomain("zk/affg/A", A.Bytes())
	fork.WriteDomain("zk/affg/AP", APoint.ToCompressed())
	fork.WriteDomain("zk/affg/BY", BY.Bytes())
	fork.WriteDomain("zk/affg/S", S.Bytes())
	fork.WriteDomain("zk/affg/T", T.Bytes())
	e := challengeInt(fork)

	z1 := new(saferith.Int).Add(alpha, new(saferith.Int).Mul(e, priv.X, -1), -1)
	z2 := new(saferith.Int).Add(betaTilde, new(saferith.Int).Mul(e, priv.Beta, -1), -1)
	z3 := new(saferith.Nat).ModMul(rTilde, pub.Receiver.N().Exp(priv.R, e.Abs()), pub.Receiver.N())
	z4 := new(saferith.Nat).ModMul(r2Tilde, pub.Sender.N().Exp(priv.R2, e.Abs()), pub.Sender.N())

	return &Proof{S: S, T: T, A: A, APoint: APoint, BY: BY, Z1: z1, Z2: z2, Z3: z3, Z4: z4}, nil
}

// Verify checks the proof against the public statement.
func Verify(transcript *hash.Transcript, pub Public, proof *Proof) bool {
	if proof == nil {
		return false
	}
	fork := transcript.Clone()
	fork.WriteDomain("zk/affg/C", pub.C.Bytes())
	fork.WriteDomain("zk/affg/D", pub.D.Bytes())
	fork.WriteDomain("zk/affg/Y", pub.Y.Bytes())
	fork.WriteDomain("zk/affg/X", pub.X.ToCompressed())
	fork.WriteDomain("zk/affg/A", proof.A.Bytes())
	fork.WriteDomain("zk/affg/AP", proof.APoint.ToCompressed())
	fork.WriteDomain("zk/affg/BY", proof.BY.Bytes())
	fork.WriteDomain("zk/affg/S", proof.S.Bytes())
	fork.WriteDomain("zk/affg/T", proof.T.Bytes())
	e := challengeInt(fork)

	// D relation: C^{z1} * Enc_j(-z2; z3) == A * D^e
	negZ2 := new(saferith.Int).Set(proof.Z2).Neg(1)
	lhsD := pub.Receiver.Add(pub.Receiver.Mul(pub.C, proof.Z1), pub.Receiver.EncWithNonce(negZ2, proof.Z3))
	rhsD := pub.Receiver.Add(proof.A, pub.Receiver.Mul(pub.D, e))
	if string(lhsD.Bytes()) != string(rhsD.Bytes()) {
		return false
	}

	// Y relation: Enc_i(z2; z4) == BY * Y^e
	lhsY := pub.Sender.EncWithNonce(proof.Z2, proof.Z4)
	rhsY := pub.Sender.Add(proof.BY, pub.Sender.Mul(pub.Y, e))
	if string(lhsY.Bytes()) != string(rhsY.Bytes()) {
		return false
	}

	// X relation: z1·G == APoint + e·X
	z1Scalar := toScalar(proof.Z1)
	eScalar := toScalar(e)
	lhsX := z1Scalar.ActOnBase()
	rhsX := proof.APoint.Add(eScalar.Act(pub.X))
	return lhsX.Equal(rhsX)
}

func toScalar(i *saferith.Int) *curve.Scalar {
	s := curve.NewScalar().SetBytes(i.Abs().Bytes())
	if i.IsNegative() {
		s = s.Negate()
	}
	return s
}

func challengeInt(transcript *hash.Transcript) *saferith.Int {
	digest := transcript.Challenge("affg/e")
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
