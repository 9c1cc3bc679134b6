package bigint

import "github.com/agbru/bigcalc/internal/limbs"

// cmpMag compares two trimmed magnitudes.
func cmpMag(a, b []uint32) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// addMag returns a+b. The longer operand is cloned and the shorter added into
// it, so the clone's first write is where the copy actually happens.
func addMag(a, b *limbs.Vector) limbs.Vector {
	if a.Len() < b.Len() {
		a, b = b, a
	}
	z := a.Clone()
	zw := z.MutableWords()
	bw := b.Words()
	var carry uint64
	for i := range zw {
		s := uint64(zw[i]) + carry
		if i < len(bw) {
			s += uint64(bw[i])
		} else if carry == 0 {
			break
		}
		zw[i] = uint32(s)
		carry = s >> 32
	}
	if carry != 0 {
		z.PushBack(uint32(carry))
	}
	return z
}

// subMag returns a-b for |a| >= |b|, trimmed.
func subMag(a, b *limbs.Vector) limbs.Vector {
	z := a.Clone()
	zw := z.MutableWords()
	bw := b.Words()
	var borrow uint32
	for i := 0; i < len(bw) || borrow != 0; i++ {
		var d uint32
		if i < len(bw) {
			d = bw[i]
		}
		r := int64(zw[i]) - int64(d) - int64(borrow)
		borrow = 0
		if r < 0 {
			r += 1 << 32
			borrow = 1
		}
		zw[i] = uint32(r)
	}
	trimMag(&z)
	return z
}

// mulMag returns the schoolbook product a*b, trimmed.
func mulMag(a, b []uint32) limbs.Vector {
	z := limbs.Make(len(a)+len(b), 0)
	zw := z.MutableWords()
	for i, ai := range a {
		if ai == 0 {
			continue
		}
		var carry uint64
		for j, bj := range b {
			t := uint64(ai)*uint64(bj) + uint64(zw[i+j]) + carry
			zw[i+j] = uint32(t)
			carry = t >> 32
		}
		zw[i+len(b)] = uint32(carry)
	}
	trimMag(&z)
	return z
}

// mulMagWord returns a*w with room for the carry limb.
func mulMagWord(a []uint32, w uint32) limbs.Vector {
	z := limbs.Make(len(a)+1, 0)
	mulWordInto(z.MutableWords(), a, w)
	trimMag(&z)
	return z
}

// mulWordInto stores a*w in dst, which must hold len(a)+1 limbs.
func mulWordInto(dst, a []uint32, w uint32) {
	var carry uint64
	for i, ai := range a {
		t := uint64(ai)*uint64(w) + carry
		dst[i] = uint32(t)
		carry = t >> 32
	}
	dst[len(a)] = uint32(carry)
	for i := len(a) + 1; i < len(dst); i++ {
		dst[i] = 0
	}
}

// addSigned returns (aNeg, a) + (bNeg, b) in sign/magnitude form.
func addSigned(aNeg bool, a *limbs.Vector, bNeg bool, b *limbs.Vector) (bool, limbs.Vector) {
	if aNeg == bNeg {
		return aNeg, addMag(a, b)
	}
	if cmpMag(a.Words(), b.Words()) < 0 {
		return bNeg, subMag(b, a)
	}
	return aNeg, subMag(a, b)
}

// Add returns x+y.
func (x Int) Add(y Int) Int {
	xm, ym := x.magRef(), y.magRef()
	neg, mag := addSigned(x.neg, xm, y.neg, ym)
	return fromMag(neg, mag)
}

// Sub returns x-y.
func (x Int) Sub(y Int) Int {
	xm, ym := x.magRef(), y.magRef()
	neg, mag := addSigned(x.neg, xm, !y.neg, ym)
	return fromMag(neg, mag)
}

// Mul returns x*y.
func (x Int) Mul(y Int) Int {
	return fromMag(x.neg != y.neg, mulMag(x.words(), y.words()))
}

// Neg returns -x. The negation of 0 is 0.
func (x Int) Neg() Int {
	z := x.Clone()
	if !z.IsZero() {
		z.neg = !z.neg
	}
	return z
}

// Abs returns |x|.
func (x Int) Abs() Int {
	z := x.Clone()
	z.neg = false
	return z
}

// Pos returns a copy of x (unary plus).
func (x Int) Pos() Int { return x.Clone() }

// magRef returns x's magnitude, materialising the zero limb for the zero
// value so the helpers always see at least one limb.
func (x *Int) magRef() *limbs.Vector {
	if x.mag.Len() == 0 {
		x.mag = limbs.Make(1, 0)
	}
	return &x.mag
}

// AddAssign sets z to z+y and returns z.
func (z *Int) AddAssign(y Int) *Int {
	neg, mag := addSigned(z.neg, z.magRef(), y.neg, y.magRef())
	return z.replace(neg, mag)
}

// SubAssign sets z to z-y and returns z.
func (z *Int) SubAssign(y Int) *Int {
	neg, mag := addSigned(z.neg, z.magRef(), !y.neg, y.magRef())
	return z.replace(neg, mag)
}

// MulAssign sets z to z*y and returns z.
func (z *Int) MulAssign(y Int) *Int {
	return z.replace(z.neg != y.neg, mulMag(z.words(), y.words()))
}

var one = FromUint32(1)

// Inc adds one to z and returns z (prefix ++).
func (z *Int) Inc() *Int { return z.AddAssign(one) }

// Dec subtracts one from z and returns z (prefix --).
func (z *Int) Dec() *Int { return z.SubAssign(one) }

// PostInc adds one to z and returns its previous value (postfix ++).
func (z *Int) PostInc() Int {
	old := z.Clone()
	z.Inc()
	return old
}

// PostDec subtracts one from z and returns its previous value (postfix --).
func (z *Int) PostDec() Int {
	old := z.Clone()
	z.Dec()
	return old
}
