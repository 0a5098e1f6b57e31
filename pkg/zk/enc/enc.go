// Package enc implements πenc: a range proof that a Paillier ciphertext
// encrypts a value bounded in absolute size, backed by an auxiliary
// ring-Pedersen commitment. Auxiliary/Key-Refresh attaches it to each
// encrypted key-refresh delta; the Presigning ciphertexts K_i, G_i carry
// no such proof.
package enc

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/zk/natcodec"
)

// maskBits widens the masking range beyond the value's expected bit
// width by this many bits, giving the simulator/soundness slack a
// production implementation derives from SchemeParams.Epsilon.
const maskBits = 256

// Public is the statement: ciphertext K was produced under Prover's
// Paillier key, with range checked against Aux's ring-Pedersen modulus.
type Public struct {
	K      *paillier.Ciphertext
	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

// Private is the witness: the plaintext and its encryption nonce.
type Private struct {
	K   *saferith.Int
	Rho *saferith.Nat
}

// Proof is the πenc sigma-protocol transcript.
type Proof struct {
	S *saferith.Nat // Pedersen commitment to k
	A *paillier.Ciphertext
	C *saferith.Nat // Pedersen commitment to the mask alpha
	Z1 *saferith.Int // alpha + e*k, over Z
	Z2 *saferith.Nat // paillier nonce combination
	Z3 *saferith.Int // gamma + e*mu, over Z
}

type wireProof struct {
	S  []byte
	A  *paillier.Ciphertext
	C  []byte
	Z1 natcodec.IntWire
	Z2 []byte
	Z3 natcodec.IntWire
}

// MarshalCBOR implements cbor.Marshaler.
func (p *Proof) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireProof{
		S:  natcodec.NatBytes(p.S),
		A:  p.A,
		C:  natcodec.NatBytes(p.C),
		Z1: natcodec.EncodeInt(p.Z1),
		Z2: natcodec.NatBytes(p.Z2),
		Z3: natcodec.EncodeInt(p.Z3),
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
	p.C = natcodec.NatFromBytes(w.C)
	p.Z1 = natcodec.DecodeInt(w.Z1)
	p.Z2 = natcodec.NatFromBytes(w.Z2)
	p.Z3 = natcodec.DecodeInt(w.Z3)
	return nil
}

// Prove constructs the range proof for ciphertext pub.K.
func Prove(transcript *hash.Transcript, pub Public, priv Private) (*Proof, error) {
	alpha := randomInt(maskBits)
	mu := randomInt(maskBits)
	gamma := randomInt(maskBits)

	A, r := pub.Prover.Enc(rand.Reader, alpha)
	S := pub.Aux.Commit(priv.K, mu)
	C := pub.Aux.Commit(alpha, gamma)

	fork := transcript.Clone()
	fork.WriteDomain("zk/enc/K", pub.K.Bytes())
	fork.WriteDomain("zk/enc/S", S.Bytes())
	fork.WriteDomain("zk/enc/A", A.Bytes())
	fork.WriteDomain("zk/enc/C", C.Bytes())
	e := challengeInt(fork)

	z1 := new(saferith.Int).Add(alpha, new(saferith.Int).Mul(e, priv.K, -1), -1)
	z2 := new(saferith.Nat).ModMul(r, pub.Prover.N().Exp(priv.Rho, e.Abs()), pub.Prover.N())
	z3 := new(saferith.Int).Add(gamma, new(saferith.Int).Mul(e, mu, -1), -1)

	return &Proof{S: S, A: A, C: C, Z1: z1, Z2: z2, Z3: z3}, nil
}

// Verify checks the proof against the public statement.
func Verify(transcript *hash.Transcript, pub Public, proof *Proof) bool {
	if proof == nil {
		return false
	}
	fork := transcript.Clone()
	fork.WriteDomain("zk/enc/K", pub.K.Bytes())
	fork.WriteDomain("zk/enc/S", proof.S.Bytes())
	fork.WriteDomain("zk/enc/A", proof.A.Bytes())
	fork.WriteDomain("zk/enc/C", proof.C.Bytes())
	e := challengeInt(fork)

	lhs := pub.Prover.EncWithNonce(proof.Z1, proof.Z2)
	rhs := pub.Prover.Add(proof.A, pub.Prover.Mul(pub.K, e))
	if string(lhs.Bytes()) != string(rhs.Bytes()) {
		return false
	}

	lhsC := pub.Aux.Commit(proof.Z1, proof.Z3)
	rhsC := new(saferith.Nat).ModMul(proof.C, expSigned(pub.Aux, proof.S, e), pub.Aux.N())
	return lhsC.Big().Cmp(rhsC.Big()) == 0
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
	digest := transcript.Challenge("enc/e")
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
