package presign

import (
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/affg"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round3 receives every peer's MtA messages, verifies both proofs
// against this party's own ciphertext and aux parameters, and decrypts
// the resulting alpha shares.
type round3 struct {
	*round.Helper
	share *config.KeyShare

	k, gamma    *curve.Scalar
	K           *paillier.Ciphertext
	gammaPoints map[party.ID]*curve.Point

	gammaBeta  map[party.ID]*curve.Scalar
	chiBeta    map[party.ID]*curve.Scalar
	gammaAlpha map[party.ID]*curve.Scalar
	chiAlpha   map[party.ID]*curve.Scalar
}

func (r *round3) Number() round.Number          { return 3 }
func (r *round3) MessageContent() round.Content { return &mta3{} }

func (r *round3) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*mta3)
	if !ok {
		return round.ErrInvalidContent
	}
	if body.GammaD == nil || body.GammaY == nil || body.GammaProof == nil ||
		body.ChiD == nil || body.ChiY == nil || body.ChiProof == nil {
		return round.ErrNilFields
	}
	self := r.share.Public[r.SelfID()]
	sender := r.share.Public[msg.From]
	transcript := r.HashForID(msg.From)

	if !affg.Verify(transcript, affg.Public{
		C: r.K, D: body.GammaD, Y: body.GammaY, X: r.gammaPoints[msg.From],
		Receiver: self.Paillier, Sender: sender.Paillier, Aux: self.Aux,
	}, body.GammaProof) {
		return fmt.Errorf("presign: invalid gamma-MtA proof from %s", msg.From)
	}
	if !affg.Verify(transcript, affg.Public{
		C: r.K, D: body.ChiD, Y: body.ChiY, X: sender.ECDSA,
		Receiver: self.Paillier, Sender: sender.Paillier, Aux: self.Aux,
	}, body.ChiProof) {
		return fmt.Errorf("presign: invalid chi-MtA proof from %s", msg.From)
	}
	return nil
}

func (r *round3) StoreMessage(msg round.Message) error {
	body := msg.Content.(*mta3)
	gammaPlain, err := r.share.Paillier.Dec(body.GammaD)
	if err != nil {
		return fmt.Errorf("presign: failed to decrypt gamma-MtA share from %s: %w", msg.From, err)
	}
	chiPlain, err := r.share.Paillier.Dec(body.ChiD)
	if err != nil {
		return fmt.Errorf("presign: failed to decrypt chi-MtA share from %s: %w", msg.From, err)
	}
	r.gammaAlpha[msg.From] = intToScalar(gammaPlain)
	r.chiAlpha[msg.From] = intToScalar(chiPlain)
	return nil
}

func (r *round3) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	delta := r.k.Mul(r.gamma)
	chi := r.k.Mul(r.share.ECDSA)
	for _, id := range r.OtherPartyIDs() {
		delta = delta.Add(r.gammaAlpha[id]).Add(r.gammaBeta[id])
		chi = chi.Add(r.chiAlpha[id]).Add(r.chiBeta[id])
	}

	next := &round4{
		Helper:      r.Helper,
		k:           r.k,
		chi:         chi,
		gammaPoints: r.gammaPoints,
		deltas:      make(map[party.ID]*curve.Scalar, r.N()),
	}
	out = r.BroadcastMessage(out, &broadcast4{Delta: delta})
	return next, out, nil
}
