package calculator

import (
	"fmt"
	"math/big"

	"github.com/agbru/bigcalc/internal/expr"
)

var _ expr.Arith[*big.Int] = MathBig{}

// MathBig evaluates with the standard library. Quo and Rem truncate and Rsh
// is arithmetic, the same conventions as pkg/bigint, so results are directly
// comparable.
type MathBig struct{}

func newMathBigCore() coreCalculator { return newCore[*big.Int](MathBig{}) }

func (MathBig) Name() string { return "mathbig" }

func (MathBig) Parse(s string) (*big.Int, error) {
	z, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("mathbig: invalid integer %q", s)
	}
	return z, nil
}

func (MathBig) FromInt64(i int64) *big.Int { return big.NewInt(i) }
func (MathBig) String(x *big.Int) string   { return x.String() }
func (MathBig) Sign(x *big.Int) int        { return x.Sign() }
func (MathBig) Cmp(x, y *big.Int) int      { return x.Cmp(y) }
func (MathBig) BitLen(x *big.Int) int      { return x.BitLen() }

func (MathBig) Uint64(x *big.Int) (uint64, bool) {
	if !x.IsUint64() {
		return 0, false
	}
	return x.Uint64(), true
}

func (MathBig) Add(x, y *big.Int) *big.Int      { return new(big.Int).Add(x, y) }
func (MathBig) Sub(x, y *big.Int) *big.Int      { return new(big.Int).Sub(x, y) }
func (MathBig) Mul(x, y *big.Int) *big.Int      { return new(big.Int).Mul(x, y) }
func (MathBig) Quo(x, y *big.Int) *big.Int      { return new(big.Int).Quo(x, y) }
func (MathBig) Rem(x, y *big.Int) *big.Int      { return new(big.Int).Rem(x, y) }
func (MathBig) Neg(x *big.Int) *big.Int         { return new(big.Int).Neg(x) }
func (MathBig) And(x, y *big.Int) *big.Int      { return new(big.Int).And(x, y) }
func (MathBig) Or(x, y *big.Int) *big.Int       { return new(big.Int).Or(x, y) }
func (MathBig) Xor(x, y *big.Int) *big.Int      { return new(big.Int).Xor(x, y) }
func (MathBig) Not(x *big.Int) *big.Int         { return new(big.Int).Not(x) }
func (MathBig) Lsh(x *big.Int, k uint) *big.Int { return new(big.Int).Lsh(x, k) }
func (MathBig) Rsh(x *big.Int, k uint) *big.Int { return new(big.Int).Rsh(x, k) }
