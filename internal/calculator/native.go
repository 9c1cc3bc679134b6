package calculator

import (
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/pkg/bigint"
)

var _ expr.Arith[bigint.Int] = Native{}

// Native evaluates with pkg/bigint: schoolbook multiplication, Knuth
// division and copy-on-write limb storage.
type Native struct{}

func newNativeCore() coreCalculator { return newCore[bigint.Int](Native{}) }

func (Native) Name() string                        { return "native" }
func (Native) Parse(s string) (bigint.Int, error)  { return bigint.Parse(s) }
func (Native) FromInt64(i int64) bigint.Int        { return bigint.FromInt64(i) }
func (Native) String(x bigint.Int) string          { return x.String() }
func (Native) Sign(x bigint.Int) int               { return x.Sign() }
func (Native) Cmp(x, y bigint.Int) int             { return x.Cmp(y) }
func (Native) BitLen(x bigint.Int) int             { return x.BitLen() }
func (Native) Add(x, y bigint.Int) bigint.Int      { return x.Add(y) }
func (Native) Sub(x, y bigint.Int) bigint.Int      { return x.Sub(y) }
func (Native) Mul(x, y bigint.Int) bigint.Int      { return x.Mul(y) }
func (Native) Quo(x, y bigint.Int) bigint.Int      { return x.Quo(y) }
func (Native) Rem(x, y bigint.Int) bigint.Int      { return x.Rem(y) }
func (Native) Neg(x bigint.Int) bigint.Int         { return x.Neg() }
func (Native) And(x, y bigint.Int) bigint.Int      { return x.And(y) }
func (Native) Or(x, y bigint.Int) bigint.Int       { return x.Or(y) }
func (Native) Xor(x, y bigint.Int) bigint.Int      { return x.Xor(y) }
func (Native) Not(x bigint.Int) bigint.Int         { return x.Not() }
func (Native) Lsh(x bigint.Int, k uint) bigint.Int { return x.Lsh(k) }
func (Native) Rsh(x bigint.Int, k uint) bigint.Int { return x.Rsh(k) }

func (Native) Uint64(x bigint.Int) (uint64, bool) {
	if !x.IsUint64() {
		return 0, false
	}
	return x.Uint64(), true
}
