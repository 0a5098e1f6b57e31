// Package params defines scheme-wide tunables: Paillier modulus size, ZK
// slack widths, and the hash function identifier. No session or protocol
// round in this module reads SchemeParams or binds it into the
// transcript; the rounds use sizes fixed in their own packages.
package params

import "fmt"

// SchemeParams configures the cryptographic sizes used throughout
// KeyGen, Auxiliary, Presigning, and Signing. The zero value is invalid;
// use Default() and override selectively.
type SchemeParams struct {
	// PaillierBits is the bit length of each party's Paillier modulus N.
	PaillierBits int
	// Epsilon widens ZK range-proof masks beyond the value's nominal bit
	// width, giving the simulator/soundness slack the proofs in pkg/zk
	// rely on.
	Epsilon int
	// SecurityBits (kappa) is the statistical security parameter used
	// for RID sampling and commitment randomness.
	SecurityBits int
	// HashID names the hash function backing the session transcript;
	// always "blake3" for this module, recorded so a wire-compatible
	// peer can assert agreement before running any round.
	HashID string
}

// Default returns the parameter set this module's protocols are
// written against.
func Default() SchemeParams {
	return SchemeParams{
		PaillierBits: 2 * 1536,
		Epsilon:      256,
		SecurityBits: 256,
		HashID:       "blake3",
	}
}

// Validate reports whether p is internally consistent and strong
// enough to run the protocol safely.
func (p SchemeParams) Validate() error {
	if p.PaillierBits < 2*1024 {
		return fmt.Errorf("params: PaillierBits %d is below the minimum of %d", p.PaillierBits, 2*1024)
	}
	if p.Epsilon < 128 {
		return fmt.Errorf("params: Epsilon %d is below the minimum of 128", p.Epsilon)
	}
	if p.SecurityBits < 128 {
		return fmt.Errorf("params: SecurityBits %d is below the minimum of 128", p.SecurityBits)
	}
	if p.HashID != "blake3" {
		return fmt.Errorf("params: unsupported HashID %q", p.HashID)
	}
	return nil
}
