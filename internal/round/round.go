// Package round defines the type-erased round interfaces shared by every
// protocol (KeyGen, Auxiliary, Presigning, Signing). A round advances a
// Session synchronously: it is handed every message addressed to the
// current step, and produces the next Session plus any outbound messages
// without ever blocking on I/O. pkg/session drives rounds from the
// messages it is handed; network delivery, retries, and timers are left
// to its caller.
package round

import (
	"errors"

	"github.com/luxfi/cggmp21/pkg/hash"
	"github.com/luxfi/cggmp21/pkg/party"
)

// Number identifies a round within a protocol, starting at 1.
type Number uint32

// Content is the payload carried by a Message. Every round defines its
// own concrete Content type(s).
type Content interface {
	RoundNumber() Number
}

// BroadcastContent marks a Content that must be consistently
// (reliably) broadcast: every honest party must see the same bytes from
// a given sender, or the round aborts with an identified culprit.
type BroadcastContent interface {
	Content
	broadcastMarker()
}

// NormalBroadcastContent is embedded by concrete broadcast content types
// to satisfy BroadcastContent without additional boilerplate.
type NormalBroadcastContent struct{}

func (NormalBroadcastContent) broadcastMarker() {}

// Message is a single unit of protocol traffic, already verified to
// belong to the current session and unmarshaled into a concrete
// Content. To == "" means the message was broadcast to every party.
type Message struct {
	From      party.ID
	To        party.ID
	Content   Content
	Broadcast bool
}

// IsBroadcast reports whether the message must be echoed/verified for
// consistency across all recipients.
func (m Message) IsBroadcast() bool { return m.Broadcast }

// Session is the common surface every round (including the terminal
// Abort/Output rounds) exposes to pkg/session's driver loop. Concrete
// rounds satisfy it by embedding *Helper, which implements every method
// below except Number (each round defines its own) plus the shared bookkeeping (party set, self ID, SSID, hash
// transcript, parallelism pool).
type Session interface {
	// Number is this round's position in the protocol.
	Number() Number
	N() int
	SSID() []byte
	SelfID() party.ID
	ProtocolID() string
	PartyIDs() party.IDSlice
	OtherPartyIDs() party.IDSlice
	FinalRoundNumber() Number
	Hash() *hash.Transcript
}

// Round is a Session capable of receiving and verifying messages and
// producing the next round. The terminal Abort and Output types
// implement Session but not Round.
type Round interface {
	// VerifyMessage checks a single non-broadcast message's content
	// (signatures, ZK proofs, range bounds) without mutating state.
	VerifyMessage(msg Message) error
	// StoreMessage records a verified message's content into this
	// round's accumulator.
	StoreMessage(msg Message) error
	// Finalize is called once every expected message for this round has
	// been stored and verified. It returns the next Session and any
	// messages this party must now send.
	Finalize(out []*Message) (Session, []*Message, error)
	// MessageContent returns an empty Content value used to unmarshal
	// incoming non-broadcast messages for this round, or nil if this
	// round expects none.
	MessageContent() Content
	// Number is this round's position in the protocol.
	Number() Number
}

// BroadcastRound is a Round that additionally expects a reliably
// broadcast message from every party before it can finalize.
type BroadcastRound interface {
	Round
	// StoreBroadcastMessage records a verified broadcast message.
	StoreBroadcastMessage(msg Message) error
	// BroadcastContent returns an empty BroadcastContent value used to
	// unmarshal incoming broadcast messages for this round.
	BroadcastContent() BroadcastContent
}

// Abort is the terminal Session produced when a round detects
// misbehavior it can attribute to specific parties.
type Abort struct {
	*Helper
	Err      error
	Culprits []party.ID
}

// Number implements Session.
func (a *Abort) Number() Number { return 0 }

// Output is the terminal Session produced when a protocol completes
// successfully.
type Output struct {
	*Helper
	Result interface{}
}

// Number implements Session.
func (o *Output) Number() Number { return 0 }

var (
	// ErrInvalidContent is returned when a message's content does not
	// match the type expected for its round.
	ErrInvalidContent = errors.New("round: invalid message content")
	// ErrNilFields is returned when a message's content is missing
	// required fields.
	ErrNilFields = errors.New("round: message content has nil fields")
	// ErrNotEnoughMessages is returned by Finalize if it is called
	// before every expected message has been stored.
	ErrNotEnoughMessages = errors.New("round: not enough messages received to finalize")
	// ErrDuplicate is returned when a second message from a party
	// already heard from this round is received.
	ErrDuplicate = errors.New("round: duplicate message")
	// ErrEchoMismatch is returned when two parties' views of a
	// broadcast round's messages disagree (equivocation).
	ErrEchoMismatch = errors.New("round: broadcast echo mismatch")
)

// HashForID forks h with an additional domain-separating write of id,
// the standard way rounds bind a proof's transcript to its prover.
func HashForID(h *hash.Transcript, id party.ID) *hash.Transcript {
	fork := h.Clone()
	fork.WriteDomain("round/id", []byte(id))
	return fork
}
