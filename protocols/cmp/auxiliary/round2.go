package auxiliary

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/enc"
	"github.com/luxfi/cggmp21/pkg/zk/mod"
	"github.com/luxfi/cggmp21/pkg/zk/prm"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round2 collects every party's Paillier modulus and ring-Pedersen
// parameters, verifying mod/prm for each, then sends every peer its
// encrypted delta share range-proven against the peer's own aux
// parameters.
type round2 struct {
	*round.Helper

	sk     *paillier.SecretKey
	y      *curve.Scalar
	deltas map[party.ID]*curve.Scalar

	publics map[party.ID]*config.Public
}

func (r *round2) Number() round.Number          { return 2 }
func (r *round2) MessageContent() round.Content { return nil }

func (r *round2) VerifyMessage(round.Message) error { return nil }
func (r *round2) StoreMessage(round.Message) error  { return nil }

func (r *round2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok {
		return round.ErrInvalidContent
	}
	if body.Paillier == nil || body.Aux == nil || body.ElGamal == nil || body.ModProof == nil || body.PrmProof == nil {
		return round.ErrNilFields
	}
	transcript := r.HashForID(msg.From)
	if !mod.Verify(transcript.Clone(), mod.Public{N: body.Paillier.N()}, body.ModProof) {
		return fmt.Errorf("auxiliary: invalid modulus proof from %s", msg.From)
	}
	if !prm.Verify(transcript.Clone(), prm.Public{N: body.Paillier.N(), S: body.Aux.S(), T: body.Aux.T()}, body.PrmProof) {
		return fmt.Errorf("auxiliary: invalid ring-pedersen proof from %s", msg.From)
	}
	r.publics[msg.From] = &config.Public{
		Paillier: body.Paillier,
		ElGamal:  body.ElGamal,
		Aux:      body.Aux,
	}
	return nil
}

func (r *round2) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	next := &round3{
		Helper:    r.Helper,
		sk:        r.sk,
		y:         r.y,
		selfDelta: r.deltas[r.SelfID()],
		publics:   r.publics,
		received:  make(map[party.ID]*curve.Scalar, r.N()),
	}

	for _, id := range r.OtherPartyIDs() {
		peer := r.publics[id]
		share := r.deltas[id]
		ciphertext, rho := peer.Paillier.Enc(rand.Reader, scalarToInt(share))
		proof, err := enc.Prove(r.HashForID(r.SelfID()), enc.Public{
			K:      ciphertext,
			Prover: peer.Paillier,
			Aux:    peer.Aux,
		}, enc.Private{
			K:   scalarToInt(share),
			Rho: rho,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("auxiliary: failed to prove delta share for %s: %w", id, err)
		}
		out = r.SendMessage(out, &share3{Ciphertext: ciphertext, Proof: proof}, id)
	}
	return next, out, nil
}
