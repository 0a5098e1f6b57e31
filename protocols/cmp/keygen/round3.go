package keygen

import (
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/sch"
)

// round3 opens every party's round-1 commitment and, once all are
// verified, broadcasts this party's Schnorr proof of knowledge of x_i.
type round3 struct {
	*round.Helper

	x       *curve.Scalar
	X       *curve.Point
	schRand *sch.Randomness

	commitments map[party.ID]hash.Commitment
	points      map[party.ID]*curve.Point
	schCommits  map[party.ID]*curve.Point
}

func (r *round3) Number() round.Number         { return 3 }
func (r *round3) MessageContent() round.Content { return nil }

func (r *round3) VerifyMessage(round.Message) error { return nil }
func (r *round3) StoreMessage(round.Message) error  { return nil }

func (r *round3) BroadcastContent() round.BroadcastContent { return &broadcast3{} }

func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast3)
	if !ok {
		return round.ErrInvalidContent
	}
	if body.X == nil || body.A == nil || body.Decommitment == nil {
		return round.ErrNilFields
	}
	commitment, ok := r.commitments[msg.From]
	if !ok {
		return fmt.Errorf("keygen: no round-1 commitment on file for %s", msg.From)
	}
	ok, err := hash.VerifyCommit(commitment, body.Decommitment,
		&hash.BytesWithDomain{TheDomain: "keygen/X", Bytes: body.X.ToCompressed()},
		&hash.BytesWithDomain{TheDomain: "keygen/A", Bytes: body.A.ToCompressed()},
	)
	if err != nil {
		return fmt.Errorf("keygen: failed to verify commitment opening for %s: %w", msg.From, err)
	}
	if !ok {
		return fmt.Errorf("keygen: commitment opening for %s does not match round-1 commitment", msg.From)
	}
	r.points[msg.From] = body.X
	r.schCommits[msg.From] = body.A
	return nil
}

func (r *round3) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	transcript := r.HashForID(r.SelfID())
	proof, err := sch.Prove(transcript, r.schRand, r.x, r.X)
	if err != nil {
		return nil, nil, fmt.Errorf("keygen: failed to prove knowledge of share: %w", err)
	}

	next := &round4{
		Helper:     r.Helper,
		x:          r.x,
		points:     r.points,
		schCommits: r.schCommits,
	}
	out = r.BroadcastMessage(out, &broadcast4{Proof: proof})
	return next, out, nil
}
