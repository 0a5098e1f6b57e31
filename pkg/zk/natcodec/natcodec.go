// Package natcodec gives the proof types in pkg/zk a common way to
// survive CBOR encoding. saferith.Nat and saferith.Int carry only
// unexported fields, so a Proof struct built directly out of them would
// serialize as a row of empty maps; every Proof instead implements
// cbor.Marshaler/Unmarshaler and routes through these helpers to turn
// each field into a plain byte string (or a slice/sign bit alongside
// one) before handing it to the encoder.
package natcodec

import "github.com/cronokirby/saferith"

// NatBytes encodes a single Nat as its big-endian byte string.
func NatBytes(n *saferith.Nat) []byte {
	if n == nil {
		return nil
	}
	return n.Bytes()
}

// NatFromBytes decodes a Nat from its big-endian byte string.
func NatFromBytes(b []byte) *saferith.Nat {
	return new(saferith.Nat).SetBytes(b)
}

// NatSliceBytes encodes a slice of Nats as a slice of byte strings.
func NatSliceBytes(ns []*saferith.Nat) [][]byte {
	out := make([][]byte, len(ns))
	for i, n := range ns {
		out[i] = NatBytes(n)
	}
	return out
}

// NatSliceFromBytes decodes a slice of Nats from a slice of byte strings.
func NatSliceFromBytes(bs [][]byte) []*saferith.Nat {
	out := make([]*saferith.Nat, len(bs))
	for i, b := range bs {
		out[i] = NatFromBytes(b)
	}
	return out
}

// IntWire is the sign-and-magnitude encoding of a saferith.Int, the
// shape every Proof field of that type marshals to.
type IntWire struct {
	Neg bool
	Abs []byte
}

// EncodeInt converts an Int to its wire form.
func EncodeInt(i *saferith.Int) IntWire {
	if i == nil {
		return IntWire{}
	}
	return IntWire{Neg: i.IsNegative(), Abs: i.Abs().Bytes()}
}

// DecodeInt reconstructs an Int from its wire form.
func DecodeInt(w IntWire) *saferith.Int {
	abs := new(saferith.Nat).SetBytes(w.Abs)
	i := new(saferith.Int).SetNat(abs)
	if w.Neg {
		i = new(saferith.Int).Set(i).Neg(1)
	}
	return i
}

// EncodeIntSlice converts a slice of Ints to their wire form.
func EncodeIntSlice(is []*saferith.Int) []IntWire {
	out := make([]IntWire, len(is))
	for i, v := range is {
		out[i] = EncodeInt(v)
	}
	return out
}

// DecodeIntSlice reconstructs a slice of Ints from their wire form.
func DecodeIntSlice(ws []IntWire) []*saferith.Int {
	out := make([]*saferith.Int, len(ws))
	for i, w := range ws {
		out[i] = DecodeInt(w)
	}
	return out
}
