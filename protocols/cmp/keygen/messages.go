package keygen

import (
	"github.com/luxfi/cggmp21/internal/round"
	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/math/curve"
	"github.com/luxfi/cggmp21/pkg/zk/sch"
)

// broadcast2 carries the round-1 hash commitment to (X_i, A_i): the
// party's share point and its Schnorr first-message commitment.
type broadcast2 struct {
	round.NormalBroadcastContent
	Commitment hash.Commitment
}

func (broadcast2) RoundNumber() round.Number { return 2 }

// broadcast3 opens the commitment: the share point itself, the Schnorr
// commitment point, and the nonce needed to check it against the
// broadcast2 a party already received.
type broadcast3 struct {
	round.NormalBroadcastContent
	X            *curve.Point
	A            *curve.Point
	Decommitment hash.Decommitment
}

func (broadcast3) RoundNumber() round.Number { return 3 }

// broadcast4 carries the Schnorr proof of knowledge of x_i for X_i,
// reusing the A_i already committed to in broadcast2/broadcast3.
type broadcast4 struct {
	round.NormalBroadcastContent
	Proof *sch.Proof
}

func (broadcast4) RoundNumber() round.Number { return 4 }
