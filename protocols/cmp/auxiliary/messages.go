package auxiliary

import (
	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/pedersen"
	"github.com/luxfi/cggmp21/pkg/zk/enc"
	"github.com/luxfi/cggmp21/pkg/zk/mod"
	"github.com/luxfi/cggmp21/pkg/zk/prm"
)

// broadcast2 carries a party's freshly generated Paillier modulus,
// ring-Pedersen parameters, ElGamal-like point, and the proofs binding
// them. Unlike KeyGen's X_i, none of this carries rogue-key risk, so it
// is revealed directly with no commit-then-reveal step.
type broadcast2 struct {
	round.NormalBroadcastContent
	Paillier *paillier.PublicKey
	Aux      *pedersen.Parameters
	ElGamal  *curve.Point
	ModProof *mod.Proof
	PrmProof *prm.Proof
}

func (broadcast2) RoundNumber() round.Number { return 2 }

// share3 is a direct message carrying an encrypted zero-sum key-refresh
// delta, addressed to its recipient and range-proven against the
// recipient's own ring-Pedersen parameters.
type share3 struct {
	Ciphertext *paillier.Ciphertext
	Proof      *enc.Proof
}

func (share3) RoundNumber() round.Number { return 3 }

// broadcast4 reveals this party's total key-refresh delta as a public
// point, so every party can check the deltas sum to the identity
// without anyone learning another party's individual delta.
type broadcast4 struct {
	round.NormalBroadcastContent
	D *curve.Point
}

func (broadcast4) RoundNumber() round.Number { return 4 }
