// Package prm implements the ring-Pedersen parameter proof: knowledge of
// lambda such that s = t^lambda mod N. Auxiliary/Key-Refresh's Open
// Question (spec.md §9) calls this out explicitly — ring-Pedersen
// parameters must not be published without this accompanying proof.
package prm

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/zk/natcodec"
)

// Iterations amplifies soundness the same way mod.Iterations does; see
// that package's doc comment for the rationale behind using a reduced
// count instead of the paper's ~80.
const Iterations = 12

// Public is the ring-Pedersen tuple being proven well-formed.
type Public struct {
	N    *saferith.Modulus
	S, T *saferith.Nat
}

// Private is the witness: lambda with s = t^lambda mod N, and phi(N) so
// the prover can sample exponents with the right order.
type Private struct {
	Lambda *saferith.Nat
	Phi    *saferith.Nat
}

// Proof is a batch of Girault-style sigma-protocol responses.
type Proof struct {
	A []*saferith.Nat // t^{a_i} mod N
	Z []*saferith.Nat // a_i + e_i * lambda, reduced mod phi(N)
}

type wireProof struct {
	A [][]byte
	Z [][]byte
}

// MarshalCBOR implements cbor.Marshaler.
func (p *Proof) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireProof{A: natcodec.NatSliceBytes(p.A), Z: natcodec.NatSliceBytes(p.Z)})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (p *Proof) UnmarshalCBOR(data []byte) error {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	p.A = natcodec.NatSliceFromBytes(w.A)
	p.Z = natcodec.NatSliceFromBytes(w.Z)
	return nil
}

// Prove constructs the proof.
func Prove(transcript *hash.Transcript, pub Public, priv Private) (*Proof, error) {
	phiMod := saferith.ModulusFromNat(priv.Phi)
	as := make([]*saferith.Nat, Iterations)
	commitments := make([]*saferith.Nat, Iterations)
	for i := range as {
		a := sampleNat(rand.Reader, phiMod)
		as[i] = a
		commitments[i] = pub.N.Exp(pub.T, a)
	}

	fork := transcript.Clone()
	fork.WriteDomain("zk/prm/N", pub.N.Nat().Bytes())
	fork.WriteDomain("zk/prm/S", pub.S.Bytes())
	fork.WriteDomain("zk/prm/T", pub.T.Bytes())
	for i, c := range commitments {
		fork.WriteDomain(fmt.Sprintf("zk/prm/A/%d", i), c.Bytes())
	}

	zs := make([]*saferith.Nat, Iterations)
	for i := range zs {
		e := challengeBit(fork, i)
		if e {
			zs[i] = new(saferith.Nat).ModAdd(as[i], priv.Lambda, phiMod)
		} else {
			zs[i] = as[i]
		}
	}

	return &Proof{A: commitments, Z: zs}, nil
}

// Verify checks the proof against the public ring-Pedersen tuple.
func Verify(transcript *hash.Transcript, pub Public, proof *Proof) bool {
	if proof == nil || len(proof.A) != Iterations || len(proof.Z) != Iterations {
		return false
	}
	fork := transcript.Clone()
	fork.WriteDomain("zk/prm/N", pub.N.Nat().Bytes())
	fork.WriteDomain("zk/prm/S", pub.S.Bytes())
	fork.WriteDomain("zk/prm/T", pub.T.Bytes())
	for i, c := range proof.A {
		fork.WriteDomain(fmt.Sprintf("zk/prm/A/%d", i), c.Bytes())
	}

	for i := range proof.A {
		e := challengeBit(fork, i)
		lhs := pub.N.Exp(pub.T, proof.Z[i])
		rhs := proof.A[i]
		if e {
			rhs = new(saferith.Nat).ModMul(proof.A[i], pub.S, pub.N)
		}
		if lhs.Big().Cmp(rhs.Big()) != 0 {
			return false
		}
	}
	return true
}

func challengeBit(transcript *hash.Transcript, i int) bool {
	digest := transcript.Challenge(fmt.Sprintf("prm/e/%d", i))
	return len(digest) > 0 && digest[0]&1 == 1
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
		return n
	}
}
