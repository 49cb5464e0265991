package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cipher is the reversible per-field obfuscation applied to every value
// before it is written to a data file. Each byte of the plaintext is
// raised to the public exponent modulo n and rendered as a decimal
// token followed by a space, so the encoded alphabet (digits and
// spaces) can never collide with the comma record delimiter. The
// parameters are deliberately tiny; this provides format obfuscation,
// not confidentiality.
type Cipher struct {
	n int // modulus
	e int // encode exponent
	d int // decode exponent
}

// ErrBadToken is returned when an encoded token is not a decimal
// number in range or does not decode to a byte value.
var ErrBadToken = errors.New("malformed cipher token")

// NewCipher builds a Cipher from the given parameters and verifies that
// decode is the exact inverse of encode over all byte values. The
// defaults used by the application are n=667, e=3, d=411.
func NewCipher(n, e, d int) (*Cipher, error) {
	if n < 256 {
		return nil, fmt.Errorf("cipher modulus %d too small for byte values", n)
	}
	c := &Cipher{n: n, e: e, d: d}
	for b := 0; b < 256; b++ {
		if modExp(modExp(b, e, n), d, n) != b {
			return nil, fmt.Errorf("cipher parameters n=%d e=%d d=%d are not a bijection over bytes", n, e, d)
		}
	}
	return c, nil
}

// Encode obfuscates a single field value.
func (c *Cipher) Encode(plain string) string {
	var b strings.Builder
	for i := 0; i < len(plain); i++ {
		b.WriteString(strconv.Itoa(modExp(int(plain[i]), c.e, c.n)))
		b.WriteByte(' ')
	}
	return b.String()
}

// Decode reverses Encode. Tokens that are not decimal numbers, exceed
// the modulus, or decode outside the byte range report ErrBadToken.
func (c *Cipher) Decode(enc string) (string, error) {
	var b strings.Builder
	for _, tok := range strings.Fields(enc) {
		v, err := strconv.Atoi(tok)
		if err != nil || v < 0 || v >= c.n {
			return "", fmt.Errorf("%w: %q", ErrBadToken, tok)
		}
		p := modExp(v, c.d, c.n)
		if p > 255 {
			return "", fmt.Errorf("%w: %q decodes out of byte range", ErrBadToken, tok)
		}
		b.WriteByte(byte(p))
	}
	return b.String(), nil
}

// modExp computes b^e mod m by square and multiply.
func modExp(b, e, m int) int {
	res := 1
	b %= m
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			res = res * b % m
		}
		b = b * b % m
	}
	return res
}
