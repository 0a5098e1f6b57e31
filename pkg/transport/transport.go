// Package transport defines the authenticated envelope exchanged
// between parties and the Signer/Verifier capabilities a caller injects
// to produce/check it. This package never opens a socket: delivery,
// retries, and persistence are the embedding application's job.
package transport

import (
	"fmt"

	"github.com/luxfi/cggmp21/pkg/party"
)

// Kind distinguishes how a SignedMessage must be delivered.
type Kind uint8

const (
	// Direct is a point-to-point message meant for exactly one peer.
	Direct Kind = iota
	// Broadcast is meant for every peer and need not be reliably
	// echoed (no equivocation risk for this content).
	Broadcast
	// Echo is meant for every peer and MUST be reliably broadcast: all
	// honest recipients are required to see byte-identical payloads, or
	// the round aborts with an identified culprit.
	Echo
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Broadcast:
		return "broadcast"
	case Echo:
		return "echo"
	default:
		return "unknown"
	}
}

// SignedMessage is the wire envelope: a session-scoped, round-scoped
// payload plus the sender's signature over it.
type SignedMessage struct {
	SessionID []byte
	RoundID   uint32
	Kind      Kind
	From      party.ID
	To        party.ID
	Payload   []byte
	Signature []byte
}

// SigningInput returns the bytes a Signer signs and a Verifier checks:
// every header field except Signature itself, so a forwarded envelope
// cannot be replayed under a different session or round.
func (m *SignedMessage) SigningInput() []byte {
	buf := make([]byte, 0, len(m.SessionID)+len(m.Payload)+len(m.From)+len(m.To)+8)
	buf = append(buf, m.SessionID...)
	buf = append(buf, byte(m.RoundID), byte(m.RoundID>>8), byte(m.RoundID>>16), byte(m.RoundID>>24))
	buf = append(buf, byte(m.Kind))
	buf = append(buf, []byte(m.From)...)
	buf = append(buf, []byte(m.To)...)
	buf = append(buf, m.Payload...)
	return buf
}

// Signer produces a detached signature over an arbitrary message on
// behalf of a party. Implementations may wrap any prehash scheme; the
// default is pkg/transport/secp256k1signer.go.
type Signer interface {
	Sign(message []byte) ([]byte, error)
}

// Verifier checks a detached signature produced by a named party's
// Signer.
type Verifier interface {
	Verify(id party.ID, message, signature []byte) error
}

// VerifierSet resolves a Verifier per party, the shape a Session needs
// since every peer authenticates with its own key.
type VerifierSet map[party.ID]Verifier

// Verify dispatches to the Verifier registered for id.
func (v VerifierSet) Verify(id party.ID, message, signature []byte) error {
	verifier, ok := v[id]
	if !ok {
		return fmt.Errorf("transport: no verifier registered for party %q", id)
	}
	return verifier.Verify(id, message, signature)
}

// ErrBadSignature is returned by a Verifier when a signature fails to
// check against the claimed sender's key.
var ErrBadSignature = fmt.Errorf("transport: signature verification failed")
