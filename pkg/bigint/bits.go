package bigint

import "github.com/agbru/bigcalc/internal/limbs"

// toTwos stores in dst the two's-complement image of (neg, mag) over n
// limbs. The infinite sign extension above those limbs is neg itself.
func toTwos(dst *limbs.Vector, neg bool, mag []uint32, n int) {
	*dst = limbs.FromLimbs(mag)
	dst.Resize(n)
	if neg {
		complementInc(dst)
	}
}

// fromTwos converts a two's-complement image with sign extension neg back
// to sign/magnitude form.
func fromTwos(neg bool, v *limbs.Vector) Int {
	if neg {
		complementInc(v)
	}
	return fromMag(neg, *v)
}

// complementInc replaces v with ^v + 1. A carry out of the top limb is kept
// as a new limb, which happens only when every limb of ^v was all ones.
func complementInc(v *limbs.Vector) {
	ws := v.MutableWords()
	carry := uint32(1)
	for i, w := range ws {
		w = ^w + carry
		if carry == 1 && w != 0 {
			carry = 0
		}
		ws[i] = w
	}
	if carry != 0 {
		v.PushBack(1)
	}
}

// bitwise applies op limb by limb to the two's-complement images of x and y.
// The sign of the result is op applied to the sign bits.
func bitwise(x, y Int, op func(a, b uint32) uint32) Int {
	xw, yw := x.words(), y.words()
	n := len(xw)
	if len(yw) > n {
		n = len(yw)
	}
	var a, b limbs.Vector
	toTwos(&a, x.neg, xw, n)
	toTwos(&b, y.neg, yw, n)
	aw := a.MutableWords()
	bw := b.Words()
	for i := range aw {
		aw[i] = op(aw[i], bw[i])
	}
	neg := op(signBit(x.neg), signBit(y.neg)) != 0
	return fromTwos(neg, &a)
}

func signBit(neg bool) uint32 {
	if neg {
		return 1
	}
	return 0
}

func and(a, b uint32) uint32 { return a & b }
func or(a, b uint32) uint32  { return a | b }
func xor(a, b uint32) uint32 { return a ^ b }

// And returns x & y in two's complement.
func (x Int) And(y Int) Int { return bitwise(x, y, and) }

// Or returns x | y in two's complement.
func (x Int) Or(y Int) Int { return bitwise(x, y, or) }

// Xor returns x ^ y in two's complement.
func (x Int) Xor(y Int) Int { return bitwise(x, y, xor) }

// Not returns ^x, which is -x-1.
func (x Int) Not() Int {
	return x.Neg().Sub(one)
}

// Lsh returns x << k, that is x * 2^k.
func (x Int) Lsh(k uint) Int {
	if x.IsZero() {
		return Int{}
	}
	mag := mulMagWord(x.words(), 1<<(k%32))
	mag.Insert(0, int(k/32), 0)
	return fromMag(x.neg, mag)
}

// Rsh returns x >> k, rounding toward negative infinity like an arithmetic
// shift: -5 >> 1 is -3.
func (x Int) Rsh(k uint) Int {
	mag, rem := divMagWord(x.words(), 1<<(k%32))
	inexact := rem != 0
	drop := int(k / 32)
	if drop > mag.Len() {
		drop = mag.Len()
	}
	for _, w := range mag.Words()[:drop] {
		if w != 0 {
			inexact = true
			break
		}
	}
	mag.Erase(0, drop)
	z := fromMag(x.neg, mag)
	if x.neg && inexact {
		z.Dec()
	}
	return z
}

// AndAssign sets z to z & y and returns z.
func (z *Int) AndAssign(y Int) *Int {
	r := z.And(y)
	return z.replace(r.neg, r.mag)
}

// OrAssign sets z to z | y and returns z.
func (z *Int) OrAssign(y Int) *Int {
	r := z.Or(y)
	return z.replace(r.neg, r.mag)
}

// XorAssign sets z to z ^ y and returns z.
func (z *Int) XorAssign(y Int) *Int {
	r := z.Xor(y)
	return z.replace(r.neg, r.mag)
}

// LshAssign sets z to z << k and returns z.
func (z *Int) LshAssign(k uint) *Int {
	r := z.Lsh(k)
	return z.replace(r.neg, r.mag)
}

// RshAssign sets z to z >> k and returns z.
func (z *Int) RshAssign(k uint) *Int {
	r := z.Rsh(k)
	return z.replace(r.neg, r.mag)
}
