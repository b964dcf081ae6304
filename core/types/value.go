package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// ErrNumericOverflow is returned when an asset mutation would push a
// Numeric value past its definition's configured maximum, or below zero.
// It is a hard error — no wrapping, no clamping.
var ErrNumericOverflow = fmt.Errorf("types: numeric overflow")

// Numeric is an arbitrary-precision fixed-point quantity. Scale is the
// number of implied decimal digits; Value holds the scaled integer, so a
// Numeric{Value: 150, Scale: 2} represents 1.50.
type Numeric struct {
	Value *big.Int
	Scale uint32
}

// ZeroNumeric returns the additive identity at the given scale.
func ZeroNumeric(scale uint32) Numeric {
	return Numeric{Value: big.NewInt(0), Scale: scale}
}

// rescale aligns two Numerics to the larger of their two scales, matching
// fixed-point addition semantics (never losing precision silently).
func rescale(a, b Numeric) (*big.Int, *big.Int, uint32) {
	if a.Scale == b.Scale {
		return a.Value, b.Value, a.Scale
	}
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	av := new(big.Int).Set(a.Value)
	bv := new(big.Int).Set(b.Value)
	if a.Scale < scale {
		av.Mul(av, pow10(scale-a.Scale))
	}
	if b.Scale < scale {
		bv.Mul(bv, pow10(scale-b.Scale))
	}
	return av, bv, scale
}

func pow10(n uint32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// CheckedAdd returns a+b, erroring with ErrNumericOverflow if the result
// would exceed max (max is expressed at the same scale as the result).
func (a Numeric) CheckedAdd(b Numeric, max *big.Int) (Numeric, error) {
	av, bv, scale := rescale(a, b)
	sum := new(big.Int).Add(av, bv)
	if max != nil && sum.Cmp(max) > 0 {
		return Numeric{}, ErrNumericOverflow
	}
	return Numeric{Value: sum, Scale: scale}, nil
}

// CheckedSub returns a-b, erroring with ErrNumericOverflow on a negative
// result — asset balances never go negative.
func (a Numeric) CheckedSub(b Numeric) (Numeric, error) {
	av, bv, scale := rescale(a, b)
	diff := new(big.Int).Sub(av, bv)
	if diff.Sign() < 0 {
		return Numeric{}, ErrNumericOverflow
	}
	return Numeric{Value: diff, Scale: scale}, nil
}

// Cmp compares two Numerics after rescaling.
func (a Numeric) Cmp(b Numeric) int {
	av, bv, _ := rescale(a, b)
	return av.Cmp(bv)
}

// IsZero reports whether the value is exactly zero.
func (a Numeric) IsZero() bool {
	return a.Value == nil || a.Value.Sign() == 0
}

func (a Numeric) String() string {
	if a.Value == nil {
		return "0"
	}
	if a.Scale == 0 {
		return a.Value.String()
	}
	s := new(big.Int).Abs(a.Value).String()
	for uint32(len(s)) <= a.Scale {
		s = "0" + s
	}
	cut := len(s) - int(a.Scale)
	sign := ""
	if a.Value.Sign() < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%s", sign, s[:cut], s[cut:])
}

// MarshalJSON encodes Numeric as a decimal string so precision survives
// JSON round-trips (float64 would silently lose it).
func (a Numeric) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes the decimal string MarshalJSON produces; the scale
// is the number of digits after the decimal point.
func (a *Numeric) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	whole, frac, _ := strings.Cut(s, ".")
	v, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return fmt.Errorf("types: invalid numeric %q", s)
	}
	*a = Numeric{Value: v, Scale: uint32(len(frac))}
	return nil
}

// AssetValueKind distinguishes the two shapes an asset's value can take.
type AssetValueKind byte

const (
	// AssetValueNumeric is a fixed-point quantity asset (the common case:
	// currencies, points, shares).
	AssetValueNumeric AssetValueKind = iota
	// AssetValueStore is an arbitrary key-value document asset.
	AssetValueStore
)

// AssetValue is the tagged union stored per (definition, account) pair.
type AssetValue struct {
	Kind    AssetValueKind
	Numeric Numeric
	Store   map[Name]json.RawMessage
}

// Mintability controls how many times an asset definition may be minted.
type Mintability byte

const (
	// MintableInfinitely allows unlimited Mint instructions.
	MintableInfinitely Mintability = iota
	// MintableOnce allows exactly one successful Mint per definition,
	// across the entire ledger history .
	MintableOnce
	// MintableNot forbids Mint entirely after the defining Register.
	MintableNot
)

// AssetDefinitionType distinguishes numeric asset definitions (with a
// fixed scale and optional max) from opaque store definitions.
type AssetDefinitionType struct {
	Store   bool
	Scale   uint32
	Max     *big.Int // nil means unbounded
}
