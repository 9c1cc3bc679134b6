package bigint

import (
	"math"
	"math/bits"

	"github.com/agbru/bigcalc/internal/limbs"
)

// divMagWord returns a/d and a%d for a single-limb divisor, walking from the
// most significant limb down with the remainder carried into the next limb.
func divMagWord(a []uint32, d uint32) (limbs.Vector, uint32) {
	q := limbs.Make(len(a), 0)
	qw := q.MutableWords()
	var rem uint64
	for i := len(a) - 1; i >= 0; i-- {
		cur := rem<<32 | uint64(a[i])
		qw[i] = uint32(cur / uint64(d))
		rem = cur % uint64(d)
	}
	trimMag(&q)
	return q, uint32(rem)
}

// trialDigit estimates the next quotient limb from the top three limbs of the
// window and the top two limbs of the normalized divisor. The estimate is
// never too small and is capped at the largest limb value.
func trialDigit(window, divisor []uint32) uint32 {
	m := len(window)
	hi := uint64(window[m-1])
	lo := uint64(window[m-2])<<32 | uint64(window[m-3])
	n := len(divisor)
	d := uint64(divisor[n-1])<<32 | uint64(divisor[n-2])
	// hi < 2^32 <= d, so the 96/64 division cannot overflow.
	q, _ := bits.Div64(hi, lo, d)
	if q > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(q)
}

// lessWindow reports whether window < multiple; both hold the same number of
// limbs.
func lessWindow(window, multiple []uint32) bool {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] != multiple[i] {
			return window[i] < multiple[i]
		}
	}
	return false
}

// subInto sets dst = dst - b over len(dst) limbs, treating missing limbs of b
// as zero. Any borrow out of the top limb is dropped.
func subInto(dst, b []uint32) {
	var borrow uint32
	for i := range dst {
		var bi uint32
		if i < len(b) {
			bi = b[i]
		}
		d, c := bits.Sub32(dst[i], bi, borrow)
		dst[i] = d
		borrow = c
	}
}

// quoMag returns the truncated quotient |a| / |b| for a non-zero b.
func quoMag(a, b []uint32) limbs.Vector {
	if len(a) < len(b) {
		return limbs.Make(1, 0)
	}
	if len(b) == 1 {
		q, _ := divMagWord(a, b[0])
		return q
	}

	// Scale both operands so the divisor's top limb is at least 2^31; the
	// trial digit is then off by at most a small amount.
	f := uint32((uint64(1) << 32) / (uint64(b[len(b)-1]) + 1))
	dividend := limbs.Make(len(a)+2, 0)
	dw := dividend.MutableWords()
	mulWordInto(dw[:len(a)+1], a, f)
	divisor := mulMagWord(b, f)
	bw := divisor.Words()

	n := len(a) + 1
	if dw[len(a)] == 0 {
		n = len(a)
	}
	// One spare zero limb on top of the dividend so that every window holds
	// len(b)+1 limbs.
	n++
	m := len(bw) + 1

	q := limbs.Make(n-m+1, 0)
	qw := q.MutableWords()
	multiple := limbs.Make(m, 0)
	mw := multiple.MutableWords()
	for j := n - m; j >= 0; j-- {
		window := dw[j : j+m]
		digit := trialDigit(window, bw)
		mulWordInto(mw, bw, digit)
		for lessWindow(window, mw) {
			digit--
			subInto(mw, bw)
		}
		qw[j] = digit
		subInto(window, mw)
	}
	trimMag(&q)
	return q
}

// quoRem returns the truncated quotient and remainder of x/y. The remainder
// is x - (x/y)*y and takes the sign of x.
func quoRem(x, y Int) (Int, Int) {
	if y.IsZero() {
		panic(ErrDivisionByZero)
	}
	q := fromMag(x.neg != y.neg, quoMag(x.words(), y.words()))
	r := x.Sub(q.Mul(y))
	return q, r
}

// Quo returns the quotient x/y rounded toward zero. It panics with
// ErrDivisionByZero if y is 0.
func (x Int) Quo(y Int) Int {
	if y.IsZero() {
		panic(ErrDivisionByZero)
	}
	return fromMag(x.neg != y.neg, quoMag(x.words(), y.words()))
}

// Rem returns the remainder x%y, which has the sign of x. It panics with
// ErrDivisionByZero if y is 0.
func (x Int) Rem(y Int) Int {
	_, r := quoRem(x, y)
	return r
}

// QuoRem returns x/y and x%y. Unlike Quo and Rem it reports a zero divisor
// as an error instead of panicking.
func (x Int) QuoRem(y Int) (q, r Int, err error) {
	if y.IsZero() {
		return Int{}, Int{}, ErrDivisionByZero
	}
	q, r = quoRem(x, y)
	return q, r, nil
}

// QuoAssign sets z to z/y and returns z. z is left unchanged if it panics.
func (z *Int) QuoAssign(y Int) *Int {
	q := z.Quo(y)
	return z.replace(q.neg, q.mag)
}

// RemAssign sets z to z%y and returns z. z is left unchanged if it panics.
func (z *Int) RemAssign(y Int) *Int {
	r := z.Rem(y)
	return z.replace(r.neg, r.mag)
}
