package round

import (
	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/party"
	"github.com/luxfi/cggmp21/pkg/pool"
)

// Info holds the static parameters of a protocol execution, fixed at
// Session creation and unchanged across every round.
type Info struct {
	// ProtocolID names the protocol, e.g. "cmp/keygen".
	ProtocolID string
	// FinalRoundNumber is the highest round number this protocol reaches
	// before producing an Output (or Abort).
	FinalRoundNumber Number
	// SelfID is this party's identity.
	SelfID party.ID
	// PartyIDs is the full, sorted set of participants.
	PartyIDs party.IDSlice
	// Threshold is unused by the N-of-N core but recorded for callers
	// layering a t-of-N scheme on top.
	Threshold int
	// Group names the curve in use; always "secp256k1" for this module.
	Group string
}

// Helper bundles the bookkeeping every concrete round needs and is
// never reimplemented: the party set, a domain-separated hash
// transcript seeded with the session ID, and a worker pool for
// parallel proof generation/verification. Rounds embed *Helper and
// inherit its methods, the same way the teacher's round types embed a
// common base round.
type Helper struct {
	info Info
	ssid []byte
	hash *hash.Transcript
	pool *pool.Pool
}

// NewHelper seeds a fresh transcript over sessionID and the protocol's
// static parameters, and returns a Helper ready to be embedded into
// round 1.
func NewHelper(info Info, sessionID []byte, workerPool *pool.Pool) (*Helper, error) {
	h := hash.New(sessionID)
	h.WriteDomain("session/protocol", []byte(info.ProtocolID))
	for _, id := range info.PartyIDs {
		h.WriteDomain("session/party", []byte(id))
	}
	if workerPool == nil {
		workerPool = pool.New(1)
	}
	return &Helper{
		info: info,
		ssid: h.Sum(),
		hash: h,
		pool: workerPool,
	}, nil
}

// Number is overridden by every concrete round; Helper has no opinion
// on its own round number.
func (h *Helper) N() int                       { return len(h.info.PartyIDs) }
func (h *Helper) SSID() []byte                 { return h.ssid }
func (h *Helper) SelfID() party.ID             { return h.info.SelfID }
func (h *Helper) ProtocolID() string           { return h.info.ProtocolID }
func (h *Helper) PartyIDs() party.IDSlice      { return h.info.PartyIDs }
func (h *Helper) FinalRoundNumber() Number     { return h.info.FinalRoundNumber }
func (h *Helper) Hash() *hash.Transcript       { return h.hash.Clone() }
func (h *Helper) Pool() *pool.Pool             { return h.pool }
func (h *Helper) Threshold() int               { return h.info.Threshold }

// OtherPartyIDs returns every participant except SelfID.
func (h *Helper) OtherPartyIDs() party.IDSlice {
	return h.info.PartyIDs.Remove(h.info.SelfID)
}

// HashForID forks the session transcript and binds it to a specific
// prover, the standard way a ZK proof's Fiat-Shamir challenge is kept
// distinct per-sender even though every party shares one SSID.
func (h *Helper) HashForID(id party.ID) *hash.Transcript {
	fork := h.hash.Clone()
	fork.WriteDomain("round/id", []byte(id))
	return fork
}

// BroadcastMessage appends a reliably-broadcast message addressed to
// every party to out, returning the extended slice.
func (h *Helper) BroadcastMessage(out []*Message, content BroadcastContent) []*Message {
	return append(out, &Message{
		From:      h.info.SelfID,
		Content:   content,
		Broadcast: true,
	})
}

// SendMessage appends a point-to-point message addressed to `to` (or to
// every other party if to == "") to out, returning the extended slice.
func (h *Helper) SendMessage(out []*Message, content Content, to party.ID) []*Message {
	return append(out, &Message{
		From:    h.info.SelfID,
		To:      to,
		Content: content,
	})
}
