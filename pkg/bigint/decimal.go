package bigint

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	parseChunk  = 8 // decimal digits folded in per multiply-add step
	renderChunk = 9 // decimal digits peeled off per division step
	renderBase  = 1_000_000_000
)

var pow10 = [...]uint32{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000}

// Parse converts a base-10 string with an optional leading '+' or '-' into
// an Int. Digits are folded in eight at a time as v = v*10^k + chunk. "-0"
// parses as 0.
func Parse(s string) (Int, error) {
	if s == "" {
		return Int{}, &NumError{Input: s, Err: ErrEmpty}
	}
	digits := s
	neg := false
	switch s[0] {
	case '-':
		neg = true
		digits = s[1:]
	case '+':
		digits = s[1:]
	}
	start := len(s) - len(digits)
	if digits == "" {
		return Int{}, &NumError{Input: s, Offset: start, Err: ErrSyntax}
	}
	for i := 0; i < len(digits); i++ {
		if c := digits[i]; c < '0' || c > '9' {
			return Int{}, &NumError{Input: s, Offset: start + i, Err: ErrSyntax}
		}
	}

	var v Int
	for i := 0; i < len(digits); i += parseChunk {
		end := i + parseChunk
		if end > len(digits) {
			end = len(digits)
		}
		chunk, _ := strconv.ParseUint(digits[i:end], 10, 32)
		v.MulAssign(FromUint32(pow10[end-i]))
		v.AddAssign(FromUint32(uint32(chunk)))
	}
	if neg {
		v = v.Neg()
	}
	return v, nil
}

// MustParse is like Parse but panics if s is not a decimal integer. It is
// intended for constants in tests and initialisers.
func MustParse(s string) Int {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders x in base 10 with a leading '-' for negative values.
func (x Int) String() string {
	if x.IsZero() {
		return "0"
	}
	base := FromUint32(renderBase)
	cur := x.Abs()
	var chunks []uint32
	for !cur.IsZero() {
		q, r, _ := cur.QuoRem(base)
		chunks = append(chunks, uint32(r.Uint64()))
		cur = q
	}

	var sb strings.Builder
	sb.Grow(len(chunks)*renderChunk + 1)
	if x.neg {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatUint(uint64(chunks[len(chunks)-1]), 10))
	var buf [renderChunk]byte
	for i := len(chunks) - 2; i >= 0; i-- {
		c := chunks[i]
		for j := renderChunk - 1; j >= 0; j-- {
			buf[j] = byte('0' + c%10)
			c /= 10
		}
		sb.Write(buf[:])
	}
	return sb.String()
}

// Format implements fmt.Formatter for the verbs %d, %s and %v, honouring
// width and the '+', ' ', '-' and '0' flags.
func (x Int) Format(s fmt.State, verb rune) {
	switch verb {
	case 'd', 's', 'v':
	default:
		fmt.Fprintf(s, "%%!%c(bigint.Int=%s)", verb, x.String())
		return
	}

	digits := x.String()
	sign := ""
	if x.neg {
		sign, digits = "-", digits[1:]
	} else if s.Flag('+') {
		sign = "+"
	} else if s.Flag(' ') {
		sign = " "
	}

	width, hasWidth := s.Width()
	pad := 0
	if hasWidth {
		pad = width - len(sign) - len(digits)
	}
	switch {
	case pad <= 0:
		fmt.Fprint(s, sign, digits)
	case s.Flag('-'):
		fmt.Fprint(s, sign, digits, strings.Repeat(" ", pad))
	case s.Flag('0'):
		fmt.Fprint(s, sign, strings.Repeat("0", pad), digits)
	default:
		fmt.Fprint(s, strings.Repeat(" ", pad), sign, digits)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (x Int) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Int) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	z.replace(v.neg, v.mag)
	return nil
}

// MarshalJSON encodes x as a quoted decimal string, since JSON numbers lose
// precision past 2^53 in most decoders.
func (x Int) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON integer.
func (z *Int) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		if len(data) < 2 || data[len(data)-1] != '"' {
			return fmt.Errorf("bigint: invalid JSON %q", string(data))
		}
		data = data[1 : len(data)-1]
	}
	return z.UnmarshalText(data)
}
