package auxiliary

import (
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/enc"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round3 receives every peer's encrypted delta share addressed to this
// party, decrypts it, and sums the result with the self-share kept from
// round1 before revealing the total as a public point.
type round3 struct {
	*round.Helper

	sk *paillier.SecretKey
	y  *curve.Scalar

	selfDelta *curve.Scalar
	publics   map[party.ID]*config.Public
	received  map[party.ID]*curve.Scalar
}

func (r *round3) Number() round.Number          { return 3 }
func (r *round3) MessageContent() round.Content { return &share3{} }

func (r *round3) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*share3)
	if !ok {
		return round.ErrInvalidContent
	}
	if body.Ciphertext == nil || body.Proof == nil {
		return round.ErrNilFields
	}
	transcript := r.HashForID(msg.From)
	if !enc.Verify(transcript, enc.Public{
		K:      body.Ciphertext,
		Prover: r.sk.PublicKey,
		Aux:    r.publics[r.SelfID()].Aux,
	}, body.Proof) {
		return fmt.Errorf("auxiliary: invalid delta-share range proof from %s", msg.From)
	}
	return nil
}

func (r *round3) StoreMessage(msg round.Message) error {
	body := msg.Content.(*share3)
	plain, err := r.sk.Dec(body.Ciphertext)
	if err != nil {
		return fmt.Errorf("auxiliary: failed to decrypt delta share from %s: %w", msg.From, err)
	}
	r.received[msg.From] = intToScalar(plain)
	return nil
}

func (r *round3) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	total := r.selfDelta
	for _, id := range r.OtherPartyIDs() {
		total = total.Add(r.received[id])
	}

	next := &round4{
		Helper:  r.Helper,
		sk:      r.sk,
		y:       r.y,
		total:   total,
		publics: r.publics,
		changes: make(map[party.ID]*curve.Point, r.N()),
	}
	out = r.BroadcastMessage(out, &broadcast4{D: total.ActOnBase()})
	return next, out, nil
}
