package presign

import (
	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/protocol"
)

// round4 collects every party's revealed delta share, sums them, and
// uses the aggregate to recover the nonce point R = Gamma^{1/delta}
// from the public Gamma_i points broadcast in round2.
type round4 struct {
	*round.Helper

	k           *curve.Scalar
	chi         *curve.Scalar
	gammaPoints map[party.ID]*curve.Point
	deltas      map[party.ID]*curve.Scalar
}

func (r *round4) Number() round.Number          { return 4 }
func (r *round4) MessageContent() round.Content { return nil }

func (r *round4) VerifyMessage(round.Message) error { return nil }
func (r *round4) StoreMessage(round.Message) error  { return nil }

func (r *round4) BroadcastContent() round.BroadcastContent { return &broadcast4{} }

func (r *round4) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast4)
	if !ok {
		return round.ErrInvalidContent
	}
	if body.Delta == nil {
		return round.ErrNilFields
	}
	r.deltas[msg.From] = body.Delta
	return nil
}

func (r *round4) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	delta := curve.NewScalar()
	for _, d := range r.deltas {
		delta = delta.Add(d)
	}
	if delta.IsZero() {
		return nil, nil, &protocol.RetryableFailure{Reason: "presign: aggregate delta is zero, retry with fresh randomness"}
	}

	Gamma := curve.NewIdentityPoint()
	for _, g := range r.gammaPoints {
		Gamma = Gamma.Add(g)
	}

	R := delta.Invert().Act(Gamma)
	if R.IsIdentity() {
		return nil, nil, &protocol.RetryableFailure{Reason: "presign: nonce point is the identity, retry with fresh randomness"}
	}

	data := &PresigningData{
		ID:       r.SelfID(),
		PartyIDs: r.PartyIDs(),
		R:        R,
		KShare:   r.k,
		ChiShare: r.chi,
	}
	return &round.Output{Helper: r.Helper, Result: data}, out, nil
}
