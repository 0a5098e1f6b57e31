package presign

import (
	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/zk/affg"
)

// broadcast2 reveals a party's encrypted nonce share K_i, encrypted
// gamma share G_i, and the public commitment Gamma_i = gamma_i·G. K_i
// and G_i stay opaque until Signing or identifiable abort; Gamma_i is
// safe to reveal immediately, since only the nonce k (never gamma)
// must stay secret for R to be unpredictable.
type broadcast2 struct {
	round.NormalBroadcastContent
	K     *paillier.Ciphertext
	G     *paillier.Ciphertext
	Gamma *curve.Point
}

func (broadcast2) RoundNumber() round.Number { return 2 }

// mta3 bundles the two MtA exchanges this party owes its recipient as
// the party holding the multiplicative share: one against the
// recipient's K_i scaled by this party's gamma (producing an additive
// split of k_i·gamma_j, used for delta), one scaled by this party's
// ECDSA share x (producing an additive split of k_i·x_j, used for chi).
type mta3 struct {
	GammaD     *paillier.Ciphertext
	GammaY     *paillier.Ciphertext
	GammaProof *affg.Proof
	ChiD       *paillier.Ciphertext
	ChiY       *paillier.Ciphertext
	ChiProof   *affg.Proof
}

func (mta3) RoundNumber() round.Number { return 3 }

// broadcast4 reveals this party's share of delta = k·gamma. Revealing
// delta is safe (it blinds neither k nor the ECDSA key); chi, built the
// same way, stays secret and becomes part of PresigningData instead.
type broadcast4 struct {
	round.NormalBroadcastContent
	Delta *curve.Scalar
}

func (broadcast4) RoundNumber() round.Number { return 4 }
