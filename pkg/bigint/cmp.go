package bigint

// Cmp compares x and y and returns -1 if x < y, 0 if x == y and +1 if x > y.
// Negative values order before non-negative ones; within a sign the longer
// magnitude is further from zero.
func (x Int) Cmp(y Int) int {
	if x.neg != y.neg {
		if x.neg {
			return -1
		}
		return 1
	}
	c := cmpMag(x.words(), y.words())
	if x.neg {
		return -c
	}
	return c
}

// CmpAbs compares |x| and |y|.
func (x Int) CmpAbs(y Int) int { return cmpMag(x.words(), y.words()) }

// Equal reports whether x == y: equal signs and identical limbs.
func (x Int) Equal(y Int) bool {
	if x.neg != y.neg {
		return false
	}
	xw, yw := x.words(), y.words()
	if len(xw) != len(yw) {
		return false
	}
	for i := range xw {
		if xw[i] != yw[i] {
			return false
		}
	}
	return true
}

// NotEqual reports whether x != y.
func (x Int) NotEqual(y Int) bool { return !x.Equal(y) }

// LessThan reports whether x < y.
func (x Int) LessThan(y Int) bool { return x.Cmp(y) < 0 }

// LessOrEqualTo reports whether x <= y.
func (x Int) LessOrEqualTo(y Int) bool { return x.Cmp(y) <= 0 }

// GreaterThan reports whether x > y.
func (x Int) GreaterThan(y Int) bool { return x.Cmp(y) > 0 }

// GreaterOrEqualTo reports whether x >= y.
func (x Int) GreaterOrEqualTo(y Int) bool { return x.Cmp(y) >= 0 }
