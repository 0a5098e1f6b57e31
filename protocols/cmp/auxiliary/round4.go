package auxiliary

import (
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round4 collects every party's revealed delta point and checks they
// sum to the identity, the key-refresh analogue of KeyGen round4's
// non-degenerate-public-key check.
type round4 struct {
	*round.Helper

	sk      *paillier.SecretKey
	y       *curve.Scalar
	total   *curve.Scalar
	publics map[party.ID]*config.Public
	changes map[party.ID]*curve.Point
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
	if body.D == nil {
		return round.ErrNilFields
	}
	r.changes[msg.From] = body.D
	return nil
}

func (r *round4) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	sum := curve.NewIdentityPoint()
	for _, D := range r.changes {
		sum = sum.Add(D)
	}
	if !sum.IsIdentity() {
		return &round.Abort{
			Helper: r.Helper,
			Err:    fmt.Errorf("auxiliary: key-refresh deltas do not sum to the identity"),
		}, out, nil
	}

	change := &config.KeyShareChange{
		ID:                 r.SelfID(),
		PartyIDs:           r.PartyIDs(),
		SecretShareChange:  r.total,
		PublicShareChanges: r.changes,
		Paillier:           r.sk,
		ElGamal:            r.y,
		Public:             r.publics,
	}
	return &round.Output{Helper: r.Helper, Result: change}, out, nil
}
