//go:build gmp

// The GMP backend is opt-in: build with -tags=gmp on a system with libgmp
// installed (libgmp-dev on Debian/Ubuntu, "brew install gmp" on macOS).

package calculator

import (
	"fmt"

	"github.com/ncw/gmp"

	"github.com/agbru/bigcalc/internal/expr"
)

func init() {
	RegisterCalculator("gmp", func() coreCalculator { return newCore[*gmp.Int](GMP{}) })
}

var _ expr.Arith[*gmp.Int] = GMP{}

// GMP evaluates with libgmp through cgo. mpz division truncates and Rsh
// floors, matching the other backends.
type GMP struct{}

func (GMP) Name() string { return "gmp" }

func (GMP) Parse(s string) (*gmp.Int, error) {
	z, ok := new(gmp.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("gmp: invalid integer %q", s)
	}
	return z, nil
}

func (GMP) FromInt64(i int64) *gmp.Int { return gmp.NewInt(i) }
func (GMP) String(x *gmp.Int) string   { return x.String() }
func (GMP) Sign(x *gmp.Int) int        { return x.Sign() }
func (GMP) Cmp(x, y *gmp.Int) int      { return x.Cmp(y) }
func (GMP) BitLen(x *gmp.Int) int      { return x.BitLen() }

func (GMP) Uint64(x *gmp.Int) (uint64, bool) {
	if x.Sign() < 0 || x.BitLen() > 64 {
		return 0, false
	}
	return x.Uint64(), true
}

func (GMP) Add(x, y *gmp.Int) *gmp.Int      { return new(gmp.Int).Add(x, y) }
func (GMP) Sub(x, y *gmp.Int) *gmp.Int      { return new(gmp.Int).Sub(x, y) }
func (GMP) Mul(x, y *gmp.Int) *gmp.Int      { return new(gmp.Int).Mul(x, y) }
func (GMP) Quo(x, y *gmp.Int) *gmp.Int      { return new(gmp.Int).Quo(x, y) }
func (GMP) Rem(x, y *gmp.Int) *gmp.Int      { return new(gmp.Int).Rem(x, y) }
func (GMP) Neg(x *gmp.Int) *gmp.Int         { return new(gmp.Int).Neg(x) }
func (GMP) And(x, y *gmp.Int) *gmp.Int      { return new(gmp.Int).And(x, y) }
func (GMP) Or(x, y *gmp.Int) *gmp.Int       { return new(gmp.Int).Or(x, y) }
func (GMP) Xor(x, y *gmp.Int) *gmp.Int      { return new(gmp.Int).Xor(x, y) }
func (GMP) Not(x *gmp.Int) *gmp.Int         { return new(gmp.Int).Not(x) }
func (GMP) Lsh(x *gmp.Int, k uint) *gmp.Int { return new(gmp.Int).Lsh(x, k) }
func (GMP) Rsh(x *gmp.Int, k uint) *gmp.Int { return new(gmp.Int).Rsh(x, k) }
