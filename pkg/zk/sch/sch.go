// Package sch implements a non-interactive Schnorr proof of knowledge of
// a discrete logarithm, the simplest member of the proof family spec.md
// §2.3 describes. It is used directly by KeyGen round 3 to prove
// knowledge of x_i for X_i = x_i·G.
package sch

import (
	"fmt"
	"io"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
)

// Randomness is the prover's first-message randomness, generated ahead
// of time so its commitment can be broadcast before the witness is
// finalized (as KeyGen round 1 needs: Aᵢ = aᵢ·G is committed alongside
// Xᵢ before round 3 reveals the full proof).
type Randomness struct {
	a *curve.Scalar
	A *curve.Point
}

// NewRandomness samples fresh prover randomness.
func NewRandomness(rng io.Reader) (*Randomness, error) {
	a, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, fmt.Errorf("sch: failed to sample randomness: %w", err)
	}
	return &Randomness{a: a, A: a.ActOnBase()}, nil
}

// Commitment returns the first-message commitment A = a·G.
func (r *Randomness) Commitment() *curve.Point { return r.A }

// Proof is a Schnorr proof of knowledge of discrete log.
type Proof struct {
	A *curve.Point
	Z *curve.Scalar
}

// Prove constructs a proof that the prover knows x such that X = x·G,
// reusing previously-committed randomness r and binding the challenge to
// transcript (which should already include the session id, round
// number, and statement X per spec.md §4.5).
func Prove(transcript *hash.Transcript, r *Randomness, x *curve.Scalar, statement *curve.Point) (*Proof, error) {
	e := challenge(transcript, r.A, statement)
	z := r.a.Add(e.Mul(x))
	return &Proof{A: r.A, Z: z}, nil
}

// Verify checks a Schnorr proof against the claimed statement X.
func Verify(transcript *hash.Transcript, proof *Proof, statement *curve.Point) bool {
	if proof == nil || proof.A == nil || proof.Z == nil {
		return false
	}
	e := challenge(transcript, proof.A, statement)
	lhs := proof.Z.ActOnBase()
	rhs := proof.A.Add(e.Act(statement))
	return lhs.Equal(rhs)
}

func challenge(transcript *hash.Transcript, a, statement *curve.Point) *curve.Scalar {
	fork := transcript.Clone()
	fork.WriteDomain("zk/sch/A", a.ToCompressed())
	fork.WriteDomain("zk/sch/X", statement.ToCompressed())
	digest := fork.Sum()
	var buf [32]byte
	copy(buf[:], digest)
	return curve.FromReducedBytes(buf)
}
