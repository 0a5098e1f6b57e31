package keygen

import (
	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/sch"
)

// round2 collects every party's round-1 commitment, then opens this
// party's own (X_i, A_i) once all commitments are in.
type round2 struct {
	*round.Helper

	x       *curve.Scalar
	X       *curve.Point
	schRand *sch.Randomness

	decommitment hash.Decommitment
	commitments  map[party.ID]hash.Commitment
}

func (r *round2) Number() round.Number         { return 2 }
func (r *round2) MessageContent() round.Content { return nil }

func (r *round2) VerifyMessage(round.Message) error { return nil }
func (r *round2) StoreMessage(round.Message) error  { return nil }

func (r *round2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok {
		return round.ErrInvalidContent
	}
	if body.Commitment == nil {
		return round.ErrNilFields
	}
	r.commitments[msg.From] = body.Commitment
	return nil
}

func (r *round2) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	A := r.schRand.Commitment()

	next := &round3{
		Helper:      r.Helper,
		x:           r.x,
		X:           r.X,
		schRand:     r.schRand,
		commitments: r.commitments,
		points:      make(map[party.ID]*curve.Point, r.N()),
		schCommits:  make(map[party.ID]*curve.Point, r.N()),
	}
	out = r.BroadcastMessage(out, &broadcast3{X: r.X, A: A, Decommitment: r.decommitment})
	return next, out, nil
}
