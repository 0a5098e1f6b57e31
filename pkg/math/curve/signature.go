package curve

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// orderHalf is q/2, used for low-s normalization (BIP-62 / RFC 6979 §3.2
// style): a valid ECDSA signature remains valid if s is replaced by q-s,
// so canonical signatures always pick the smaller of the two.
var orderHalf = func() *secp256k1.ModNScalar {
	// q = 0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141
	var q secp256k1.ModNScalar
	q.SetByteSlice([]byte{
		0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0x5D, 0x57, 0x6E, 0x73, 0x57, 0xA4, 0x50, 0x1D,
		0xDF, 0xE9, 0x2F, 0x46, 0x68, 0x1B, 0x20, 0xA0,
	})
	return &q
}()

// RecoverableSignature is the final output of the Signing protocol:
// (r, s, recovery_id), with s always normalized to the lower half of the
// scalar field.
type RecoverableSignature struct {
	R          *Scalar
	S          *Scalar
	RecoveryID byte
}

// NewRecoverableSignature builds a low-s-normalized signature from the
// nonce point R, its x-coordinate scalar r, and raw scalar s, deriving the recovery
// id from R's parity and whether R.x overflowed the group order (which
// for secp256k1 in practice never happens within cryptographic margin,
// so the overflow bit is always 0 here).
func NewRecoverableSignature(nonce *Point, r, s *Scalar) (*RecoverableSignature, error) {
	if nonce.IsIdentity() {
		return nil, fmt.Errorf("curve: cannot build signature from identity nonce point")
	}
	recID := byte(0)
	if isOddY(nonce) {
		recID |= 1
	}
	normS := s
	if greaterThanHalfOrder(s) {
		normS = s.Negate()
		recID ^= 1
	}
	return &RecoverableSignature{R: r, S: normS, RecoveryID: recID}, nil
}

func isOddY(p *Point) bool {
	b := p.ToCompressed()
	if len(b) == 0 {
		return false
	}
	return b[0] == 0x03
}

func greaterThanHalfOrder(s *Scalar) bool {
	var cmp secp256k1.ModNScalar
	cmp.Set(&s.s)
	// s > q/2 iff s + s (mod q) wraps around relative to s itself being
	// the larger representative; simplest robust check is byte compare
	// against the known halfway constant.
	sb := s.Bytes()
	hb := orderHalf.Bytes()
	for i := range sb {
		if sb[i] != hb[i] {
			return sb[i] > hb[i]
		}
	}
	return false
}

// Verify checks (r, s) against the verifying key and message scalar
// using the standard ECDSA verification equation.
func Verify(pub *Point, message *Scalar, r, s *Scalar) bool {
	if r.IsZero() || s.IsZero() {
		return false
	}
	w := s.Invert()
	u1 := message.Mul(w)
	u2 := r.Mul(w)
	p := u1.ActOnBase().Add(u2.Act(pub))
	if p.IsIdentity() {
		return false
	}
	x, err := p.XCoordScalar()
	if err != nil {
		return false
	}
	return x.Equal(r)
}
