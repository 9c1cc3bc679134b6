// Package bigint provides Int, an arbitrary-precision signed integer.
//
// An Int is a sign and a magnitude of 32-bit limbs held in a small-buffer
// copy-on-write container: values of up to 64 bits never allocate, and
// larger values share their limbs with copies until one of them changes.
//
// Int has value semantics. Binary operations such as Add return a new Int and
// leave both operands untouched; the *Assign methods replace the receiver.
// Division truncates toward zero while Rsh rounds toward negative infinity,
// mirroring Go's own / and >> on signed integers.
//
// An Int is not safe for concurrent use, and that includes methods that only
// read it. Copying a value that lives on the heap (Neg, Abs, Pos, Set, Clone
// and every arithmetic operation that reuses an operand's limbs) updates the
// reference count and ownership record of the shared buffer, so two
// goroutines reading the same Int race. Give each goroutine its own value,
// for example by round-tripping through String and Parse, or guard shared
// values with a mutex. A buffer that has been copied this way is never
// written in place again, so each Int clones before it changes.
package bigint

import (
	"math"
	"math/bits"

	"github.com/agbru/bigcalc/internal/limbs"
)

// Int is an arbitrary-precision signed integer. The zero value is 0.
type Int struct {
	neg bool
	mag limbs.Vector
}

var zeroWords = []uint32{0}

// words returns the magnitude limbs, least significant first. The zero value
// reports a single zero limb.
func (x *Int) words() []uint32 {
	if x.mag.Len() == 0 {
		return zeroWords
	}
	return x.mag.Words()
}

// fromMag builds a canonical Int that takes over mag.
func fromMag(neg bool, mag limbs.Vector) Int {
	z := Int{neg: neg, mag: mag}
	z.norm()
	return z
}

// norm trims most significant zero limbs and clears the sign of zero.
func (x *Int) norm() {
	trimMag(&x.mag)
	if x.mag.Len() == 1 && x.mag.At(0) == 0 {
		x.neg = false
	}
}

// trimMag pops most significant zero limbs, keeping at least one limb.
func trimMag(v *limbs.Vector) {
	if v.Len() == 0 {
		v.PushBack(0)
		return
	}
	ws := v.Words()
	n := len(ws)
	for n > 1 && ws[n-1] == 0 {
		n--
	}
	if n != len(ws) {
		v.Resize(n)
	}
}

// replace swaps z's magnitude for mag and releases the old storage.
func (z *Int) replace(neg bool, mag limbs.Vector) *Int {
	z.mag.Release()
	*z = fromMag(neg, mag)
	return z
}

// FromUint32 returns u as an Int.
func FromUint32(u uint32) Int {
	return Int{mag: limbs.Make(1, u)}
}

// FromUint64 returns u as an Int.
func FromUint64(u uint64) Int {
	if u <= math.MaxUint32 {
		return FromUint32(uint32(u))
	}
	return Int{mag: limbs.FromLimbs([]uint32{uint32(u), uint32(u >> 32)})}
}

// FromInt32 returns i as an Int.
func FromInt32(i int32) Int {
	if i == math.MinInt32 {
		return Int{neg: true, mag: limbs.Make(1, 1<<31)}
	}
	if i < 0 {
		return Int{neg: true, mag: limbs.Make(1, uint32(-i))}
	}
	return FromUint32(uint32(i))
}

// FromInt64 returns i as an Int.
func FromInt64(i int64) Int {
	if i >= 0 {
		return FromUint64(uint64(i))
	}
	var u uint64
	if i == math.MinInt64 {
		u = 1 << 63
	} else {
		u = uint64(-i)
	}
	z := FromUint64(u)
	z.neg = true
	return z
}

// FromInt returns i as an Int.
func FromInt(i int) Int { return FromInt64(int64(i)) }

// FromLimbs builds an Int from a sign and a little-endian magnitude.
func FromLimbs(neg bool, mag []uint32) Int {
	return fromMag(neg, limbs.FromLimbs(mag))
}

// Limbs returns a copy of the magnitude, least significant limb first.
func (x Int) Limbs() []uint32 {
	out := make([]uint32, len(x.words()))
	copy(out, x.words())
	return out
}

// Clone returns a copy of x that shares x's storage until either changes.
func (x *Int) Clone() Int {
	return Int{neg: x.neg, mag: x.mag.Clone()}
}

// Set makes z a copy of x and returns z.
func (z *Int) Set(x Int) *Int {
	return z.replace(x.neg, x.mag.Clone())
}

// Release drops z's storage and resets it to 0.
func (z *Int) Release() {
	z.mag.Release()
	z.neg = false
}

// Sign returns -1, 0 or +1 depending on the sign of x.
func (x Int) Sign() int {
	switch {
	case x.neg:
		return -1
	case x.IsZero():
		return 0
	}
	return 1
}

// IsZero reports whether x is 0.
func (x Int) IsZero() bool {
	ws := x.words()
	return len(ws) == 1 && ws[0] == 0
}

// IsInt64 reports whether x fits in an int64.
func (x Int) IsInt64() bool {
	ws := x.words()
	if len(ws) > 2 {
		return false
	}
	u := x.uint64()
	if x.neg {
		return u <= 1<<63
	}
	return u <= math.MaxInt64
}

// Int64 returns the low 64 bits of x as an int64, the same way
// math/big.Int.Int64 does.
func (x Int) Int64() int64 {
	v := int64(x.uint64())
	if x.neg {
		v = -v
	}
	return v
}

// IsUint64 reports whether x fits in a uint64.
func (x Int) IsUint64() bool {
	return !x.neg && len(x.words()) <= 2
}

// Uint64 returns the low 64 bits of |x|.
func (x Int) Uint64() uint64 { return x.uint64() }

func (x *Int) uint64() uint64 {
	ws := x.words()
	u := uint64(ws[0])
	if len(ws) > 1 {
		u |= uint64(ws[1]) << 32
	}
	return u
}

// BitLen returns the length of |x| in bits. The bit length of 0 is 0.
func (x Int) BitLen() int {
	ws := x.words()
	return 32*(len(ws)-1) + bits.Len32(ws[len(ws)-1])
}
