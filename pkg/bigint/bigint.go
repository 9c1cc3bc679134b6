package bigint

import (
	"encoding/binary"
	"math/big"

	"github.com/agbru/bigcalc/internal/limbs"
)

// FromBigInt converts b to an Int. A nil b converts to 0.
func FromBigInt(b *big.Int) Int {
	if b == nil || b.Sign() == 0 {
		return Int{}
	}
	bts := b.Bytes()
	n := (len(bts) + 3) / 4
	padded := make([]byte, 4*n)
	copy(padded[4*n-len(bts):], bts)
	mag := limbs.Make(n, 0)
	ws := mag.MutableWords()
	for i := 0; i < n; i++ {
		ws[i] = binary.BigEndian.Uint32(padded[4*(n-1-i):])
	}
	return fromMag(b.Sign() < 0, mag)
}

// AsBigInt returns x as a new big.Int.
func (x Int) AsBigInt() *big.Int {
	b := new(big.Int)
	x.IntoBigInt(b)
	return b
}

// IntoBigInt stores x in b, reusing b's memory.
func (x Int) IntoBigInt(b *big.Int) {
	ws := x.words()
	bts := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.BigEndian.PutUint32(bts[4*(len(ws)-1-i):], w)
	}
	b.SetBytes(bts)
	if x.neg {
		b.Neg(b)
	}
}
