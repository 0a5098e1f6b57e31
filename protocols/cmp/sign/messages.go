package sign

import (
	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/paillier"
	"github.com/luxfi/cggmp21/pkg/zk/dec"
)

// broadcast2 carries a party's signature share sigma_i together with an
// encryption of it and a proof that the encryption really does decrypt
// to the disclosed value. A proof that fails to verify names the sender;
// the proof does not tie sigma_i to the Presigning values, so a wrong
// share with a valid proof is not attributed to anyone.
type broadcast2 struct {
	round.NormalBroadcastContent
	Sigma      *curve.Scalar
	Ciphertext *paillier.Ciphertext
	Proof      *dec.Proof
}

func (broadcast2) RoundNumber() round.Number { return 2 }
