package keygen

import (
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/sch"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round4 collects every party's Schnorr proof of knowledge of its
// share, then checks the resulting public key is non-degenerate and
// produces the KeyShareSeed.
type round4 struct {
	*round.Helper

	x          *curve.Scalar
	points     map[party.ID]*curve.Point
	schCommits map[party.ID]*curve.Point
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
	if body.Proof == nil || body.Proof.A == nil || body.Proof.Z == nil {
		return round.ErrNilFields
	}
	committedA, ok := r.schCommits[msg.From]
	if !ok {
		return fmt.Errorf("keygen: no round-1 schnorr commitment on file for %s", msg.From)
	}
	if !body.Proof.A.Equal(committedA) {
		return fmt.Errorf("keygen: schnorr proof from %s does not reuse its committed randomness", msg.From)
	}
	statement, ok := r.points[msg.From]
	if !ok {
		return fmt.Errorf("keygen: no share point on file for %s", msg.From)
	}
	transcript := r.HashForID(msg.From)
	if !sch.Verify(transcript, body.Proof, statement) {
		return fmt.Errorf("keygen: invalid schnorr proof from %s", msg.From)
	}
	return nil
}

func (r *round4) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	sum := curve.NewIdentityPoint()
	for _, X := range r.points {
		sum = sum.Add(X)
	}
	if sum.IsIdentity() {
		return &round.Abort{
			Helper: r.Helper,
			Err:    fmt.Errorf("keygen: aggregate public key is the identity point"),
		}, out, nil
	}

	seed := &config.KeyShareSeed{
		ID:           r.SelfID(),
		PartyIDs:     r.PartyIDs(),
		ECDSA:        r.x,
		PublicShares: r.points,
	}
	return &round.Output{Helper: r.Helper, Result: seed}, out, nil
}
