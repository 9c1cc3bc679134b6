// Package limbs implements the digit storage behind bigint.Int: a small
// vector of 32-bit limbs that keeps up to InlineCap limbs inside the value
// itself and moves to a reference-counted heap buffer beyond that.
//
// Copies made with Clone share the heap buffer until one of them mutates,
// at which point the mutating copy takes a private clone (copy-on-write).
// A buffer also remembers which Vector allocated it. Only that Vector may
// write in place, so a Vector copied by plain assignment (which cannot bump
// the reference count) still clones before its first write. Once a buffer
// has been cloned it is never written in place again, even after its count
// drops back to one, because releasing an uncounted plain copy also lowers
// the count. The reverse is not covered: writes by the owner stay visible to
// plain copies, so values handed out to callers are never written in place.
//
// A Vector is not safe for concurrent use, and neither are two Vectors that
// share a buffer.
package limbs

import "fmt"

// InlineCap is the number of limbs stored without allocation.
const InlineCap = 2

// buffer is the heap store shared between Vectors. len(data) is its capacity.
type buffer struct {
	refs   int
	owner  *Vector
	cloned bool
	data   []uint32
}

// Vector is a sequence of limbs, least significant first. The zero value is
// an empty inline vector ready to use.
type Vector struct {
	n      int
	inline [InlineCap]uint32
	buf    *buffer
}

// Make returns a vector holding n copies of v.
func Make(n int, v uint32) Vector {
	if n < 0 {
		panic(fmt.Sprintf("limbs: negative length %d", n))
	}
	var out Vector
	out.n = n
	if n <= InlineCap {
		for i := 0; i < n; i++ {
			out.inline[i] = v
		}
		return out
	}
	out.buf = &buffer{refs: 1, data: make([]uint32, n)}
	if v != 0 {
		for i := range out.buf.data {
			out.buf.data[i] = v
		}
	}
	return out
}

// FromLimbs returns a vector holding a copy of ws.
func FromLimbs(ws []uint32) Vector {
	v := Make(len(ws), 0)
	copy(v.words(), ws)
	return v
}

// Len reports the number of live limbs.
func (v *Vector) Len() int { return v.n }

// Cap reports how many limbs fit before the next reallocation.
func (v *Vector) Cap() int {
	if v.buf == nil {
		return InlineCap
	}
	return len(v.buf.data)
}

// IsInline reports whether the limbs live inside the vector itself.
func (v *Vector) IsInline() bool { return v.buf == nil }

// Refs reports the number of counted references to the heap buffer, or 0
// for an inline vector.
func (v *Vector) Refs() int {
	if v.buf == nil {
		return 0
	}
	return v.buf.refs
}

// Shared reports whether a write to v would have to clone the buffer first:
// the buffer has more than one counted reference, belongs to another Vector,
// or has been handed out by Clone.
func (v *Vector) Shared() bool {
	if v.buf == nil {
		return false
	}
	return v.buf.refs > 1 || v.buf.cloned || (v.buf.owner != nil && v.buf.owner != v)
}

// words returns the live limbs without unsharing. Callers must not write
// through the result.
func (v *Vector) words() []uint32 {
	if v.buf == nil {
		return v.inline[:v.n]
	}
	return v.buf.data[:v.n]
}

// Words returns the live limbs for reading. The slice aliases storage that
// may be shared with other vectors and must not be modified.
func (v *Vector) Words() []uint32 { return v.words() }

// MutableWords unshares v and returns its live limbs for in-place writes.
// The slice is valid until the next call that changes the length.
func (v *Vector) MutableWords() []uint32 {
	v.Unshare()
	return v.words()
}

// Limbs returns a fresh copy of the live limbs.
func (v *Vector) Limbs() []uint32 {
	out := make([]uint32, v.n)
	copy(out, v.words())
	return out
}

// Unshare gives v exclusive, writable storage. An inline vector is always
// exclusive. A heap vector whose buffer is shared in the sense of Shared
// receives a private clone of its live limbs and drops its reference to the
// old buffer.
func (v *Vector) Unshare() {
	if v.buf == nil {
		return
	}
	v.adopt()
	if !v.Shared() {
		return
	}
	capacity := len(v.buf.data)
	if capacity < v.n {
		capacity = v.n
	}
	nb := &buffer{refs: 1, owner: v, data: make([]uint32, capacity)}
	copy(nb.data, v.buf.data[:v.n])
	v.dropRef()
	v.buf = nb
}

// adopt claims ownership of a buffer returned by Make or FromLimbs. Such a
// buffer has no owner until the first Vector writes to it or clones it.
func (v *Vector) adopt() {
	if v.buf != nil && v.buf.refs <= 1 && v.buf.owner == nil {
		v.buf.owner = v
	}
}

func (v *Vector) dropRef() {
	if v.buf != nil && v.buf.refs > 0 {
		v.buf.refs--
	}
}

// Clone returns a copy of v in O(1). Heap storage is shared and its
// reference count incremented. Both v and the copy clone on their next write.
func (v *Vector) Clone() Vector {
	v.adopt()
	out := *v
	if out.buf != nil {
		out.buf.refs++
		out.buf.cloned = true
	}
	return out
}

// Release drops v's reference to its storage and leaves v empty. The heap
// buffer becomes garbage once its last reference is released.
func (v *Vector) Release() {
	v.dropRef()
	*v = Vector{}
}

// At returns the limb at index i.
func (v *Vector) At(i int) uint32 {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("limbs: index %d out of range [0:%d]", i, v.n))
	}
	return v.words()[i]
}

// Set stores x at index i.
func (v *Vector) Set(i int, x uint32) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("limbs: index %d out of range [0:%d]", i, v.n))
	}
	v.MutableWords()[i] = x
}

// Back returns the most significant limb.
func (v *Vector) Back() uint32 {
	if v.n == 0 {
		panic("limbs: Back on empty vector")
	}
	return v.words()[v.n-1]
}

// SetBack overwrites the most significant limb.
func (v *Vector) SetBack(x uint32) {
	if v.n == 0 {
		panic("limbs: SetBack on empty vector")
	}
	v.MutableWords()[v.n-1] = x
}

// reserve makes room for at least want limbs, unsharing on the way.
// Capacity at least doubles on every reallocation.
func (v *Vector) reserve(want int) {
	if v.buf == nil {
		if want <= InlineCap {
			return
		}
		capacity := 2 * InlineCap
		for capacity < want {
			capacity *= 2
		}
		nb := &buffer{refs: 1, owner: v, data: make([]uint32, capacity)}
		copy(nb.data, v.inline[:v.n])
		v.inline = [InlineCap]uint32{}
		v.buf = nb
		return
	}
	v.Unshare()
	if want <= len(v.buf.data) {
		return
	}
	capacity := 2 * len(v.buf.data)
	for capacity < want {
		capacity *= 2
	}
	data := make([]uint32, capacity)
	copy(data, v.buf.data[:v.n])
	v.buf.data = data
}

// PushBack appends x as the new most significant limb.
func (v *Vector) PushBack(x uint32) {
	v.reserve(v.n + 1)
	v.n++
	v.words()[v.n-1] = x
}

// PopBack removes the most significant limb.
func (v *Vector) PopBack() {
	if v.n == 0 {
		panic("limbs: PopBack on empty vector")
	}
	v.Unshare()
	v.words()[v.n-1] = 0
	v.n--
}

// Resize grows v with zero limbs or truncates it to n limbs.
func (v *Vector) Resize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("limbs: negative length %d", n))
	}
	if n == v.n {
		return
	}
	if n < v.n {
		ws := v.MutableWords()
		for i := n; i < len(ws); i++ {
			ws[i] = 0
		}
		v.n = n
		return
	}
	v.reserve(n)
	old := v.n
	v.n = n
	ws := v.words()
	for i := old; i < n; i++ {
		ws[i] = 0
	}
}

// Insert places count copies of x before index pos, shifting the limbs at
// pos and above upward.
func (v *Vector) Insert(pos, count int, x uint32) {
	if pos < 0 || pos > v.n {
		panic(fmt.Sprintf("limbs: insert position %d out of range [0:%d]", pos, v.n))
	}
	if count < 0 {
		panic(fmt.Sprintf("limbs: negative insert count %d", count))
	}
	if count == 0 {
		return
	}
	old := v.n
	v.reserve(old + count)
	v.n = old + count
	ws := v.words()
	copy(ws[pos+count:], ws[pos:old])
	for i := pos; i < pos+count; i++ {
		ws[i] = x
	}
}

// Erase removes the limbs in [first, last), shifting the rest downward.
func (v *Vector) Erase(first, last int) {
	if first < 0 || last > v.n || first > last {
		panic(fmt.Sprintf("limbs: erase range [%d:%d] out of range [0:%d]", first, last, v.n))
	}
	if first == last {
		return
	}
	ws := v.MutableWords()
	copy(ws[first:], ws[last:])
	removed := last - first
	for i := v.n - removed; i < v.n; i++ {
		ws[i] = 0
	}
	v.n -= removed
}

// Equal reports whether v and o hold the same limbs, regardless of how
// either is stored.
func (v *Vector) Equal(o *Vector) bool {
	if v.n != o.n {
		return false
	}
	a, b := v.words(), o.words()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the limbs most significant first, for debugging.
func (v *Vector) String() string {
	ws := v.words()
	rev := make([]uint32, len(ws))
	for i, w := range ws {
		rev[len(ws)-1-i] = w
	}
	return fmt.Sprintf("%08x", rev)
}
