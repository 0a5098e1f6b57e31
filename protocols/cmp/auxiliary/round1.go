package auxiliary

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/zk/mod"
	"github.com/luxfi/cggmp21/pkg/zk/prm"
	"github.com/luxfi/cggmp21/protocols/cmp/config"
)

// round1 never touches the wire: it generates this party's fresh
// Paillier modulus and ring-Pedersen parameters, proves both are well
// formed, and samples a zero-sum row of key-refresh deltas (one per
// peer, plus a self-share that makes the row sum to zero).
type round1 struct {
	*round.Helper
}

func (r *round1) Number() round.Number            { return 1 }
func (r *round1) MessageContent() round.Content   { return nil }
func (r *round1) VerifyMessage(round.Message) error { return nil }
func (r *round1) StoreMessage(round.Message) error  { return nil }

func (r *round1) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	sk, err := paillier.GenerateKeyPair(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("auxiliary: failed to generate paillier modulus: %w", err)
	}
	aux, lambda, err := pedersen.Generate(rand.Reader, sk.Phi(), sk.N())
	if err != nil {
		return nil, nil, fmt.Errorf("auxiliary: failed to generate ring-pedersen parameters: %w", err)
	}
	y, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("auxiliary: failed to sample elgamal share: %w", err)
	}
	Y := y.ActOnBase()

	transcript := r.HashForID(r.SelfID())
	modProof, err := mod.Prove(transcript.Clone(), mod.Public{N: sk.N()}, mod.Private{P: sk.P(), Q: sk.Q()})
	if err != nil {
		return nil, nil, fmt.Errorf("auxiliary: failed to prove modulus: %w", err)
	}
	prmProof, err := prm.Prove(transcript.Clone(), prm.Public{N: sk.N(), S: aux.S(), T: aux.T()}, prm.Private{Lambda: lambda, Phi: sk.Phi()})
	if err != nil {
		return nil, nil, fmt.Errorf("auxiliary: failed to prove ring-pedersen parameters: %w", err)
	}

	others := r.OtherPartyIDs()
	deltas := make(map[party.ID]*curve.Scalar, len(others)+1)
	selfDelta := curve.NewScalar()
	for _, id := range others {
		d, err := curve.RandomScalar(rand.Reader)
		if err != nil {
			return nil, nil, fmt.Errorf("auxiliary: failed to sample delta share for %s: %w", id, err)
		}
		deltas[id] = d
		selfDelta = selfDelta.Add(d)
	}
	selfDelta = selfDelta.Negate()
	deltas[r.SelfID()] = selfDelta

	next := &round2{
		Helper:  r.Helper,
		sk:      sk,
		y:       y,
		deltas:  deltas,
		publics: make(map[party.ID]*config.Public, r.N()),
	}
	out = r.BroadcastMessage(out, &broadcast2{
		Paillier: sk.PublicKey,
		Aux:      aux,
		ElGamal:  Y,
		ModProof: modProof,
		PrmProof: prmProof,
	})
	return next, out, nil
}
