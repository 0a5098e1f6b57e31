package protocol

import (
	"fmt"

	"github.com/luxfi/cggmp21/pkg/party"
)

// LocalError reports a problem this party detected in its own inputs or
// state (malformed configuration, a failed local invariant) with no
// implication that any peer misbehaved.
type LocalError struct {
	Reason string
	Err    error
}

func (e *LocalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("local error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("local error: %s", e.Reason)
}

func (e *LocalError) Unwrap() error { return e.Err }

// RemoteError reports verifiable misbehavior by one or more named
// parties: a failed ZK proof, an inconsistent echo-broadcast hash, a
// malformed share. Culprits names the accused parties; it is empty when
// the failure is not pinned on a sender (a broadcast echo mismatch, or a
// round's Abort that names no culprit).
type RemoteError struct {
	Culprits []party.ID
	Reason   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: %s (culprits: %v)", e.Reason, e.Culprits)
}

// RetryableFailure reports an outcome with negligible but nonzero
// probability that does not implicate any party — e.g. a sampled nonce
// inverse landing on zero in Presigning. Callers should restart the
// affected round with fresh randomness.
type RetryableFailure struct {
	Reason string
}

func (e *RetryableFailure) Error() string {
	return fmt.Sprintf("retryable failure: %s", e.Reason)
}

// Fatal reports an unrecoverable condition in the runtime itself
// (entropy source failure, corrupted persisted state) that no retry or
// blame assignment can resolve.
type Fatal struct {
	Reason string
	Err    error
}

func (e *Fatal) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fatal: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("fatal: %s", e.Reason)
}

func (e *Fatal) Unwrap() error { return e.Err }

// Error is the session-level failure value returned once a protocol
// execution aborts: it pairs the offending Culprits (if any) with the
// round error that triggered the abort.
type Error struct {
	Culprits []party.ID
	Err      error
}

func (e Error) Error() string {
	if len(e.Culprits) == 0 {
		return fmt.Sprintf("protocol aborted: %v", e.Err)
	}
	return fmt.Sprintf("protocol aborted (culprits: %v): %v", e.Culprits, e.Err)
}

func (e Error) Unwrap() error { return e.Err }

// Evidence is a portable record of why a protocol aborted: the
// offending round, the culprits identified, and a human-readable
// reason, suitable for logging or for escalating to an operator
// without replaying the whole transcript.
type Evidence struct {
	Protocol string
	Round    uint32
	Culprits []party.ID
	Reason   string
}

func (e Evidence) String() string {
	return fmt.Sprintf("%s round %d: %s (culprits: %v)", e.Protocol, e.Round, e.Reason, e.Culprits)
}

// NewEvidence builds an Evidence record from a terminated session's
// Error.
func NewEvidence(protocolID string, round uint32, err Error) Evidence {
	return Evidence{
		Protocol: protocolID,
		Round:    round,
		Culprits: err.Culprits,
		Reason:   err.Error(),
	}
}
