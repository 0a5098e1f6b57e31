package keygen

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/zk/sch"
)

// round1 never touches the wire: it samples this party's share and
// Schnorr randomness, commits to both, and immediately advances to
// round2 carrying the commitment broadcast. pkg/session finalizes it
// the moment the session is created, since it depends on no peer input.
type round1 struct {
	*round.Helper
}

func (r *round1) Number() round.Number           { return 1 }
func (r *round1) MessageContent() round.Content   { return nil }
func (r *round1) VerifyMessage(round.Message) error { return nil }
func (r *round1) StoreMessage(round.Message) error  { return nil }

func (r *round1) Finalize(out []*round.Message) (round.Session, []*round.Message, error) {
	x, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("keygen: failed to sample share: %w", err)
	}
	X := x.ActOnBase()

	schRand, err := sch.NewRandomness(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("keygen: failed to sample schnorr randomness: %w", err)
	}
	A := schRand.Commitment()

	commitment, decommitment, err := hash.Commit(
		&hash.BytesWithDomain{TheDomain: "keygen/X", Bytes: X.ToCompressed()},
		&hash.BytesWithDomain{TheDomain: "keygen/A", Bytes: A.ToCompressed()},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("keygen: failed to commit: %w", err)
	}

	next := &round2{
		Helper:       r.Helper,
		x:            x,
		X:            X,
		schRand:      schRand,
		decommitment: decommitment,
		commitments:  make(map[party.ID]hash.Commitment, r.N()),
	}
	out = r.BroadcastMessage(out, &broadcast2{Commitment: commitment})
	return next, out, nil
}
