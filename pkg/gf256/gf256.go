// Package gf256 implements arithmetic in the finite field GF(2^8).
//
// Elements are bytes. The field is defined by the AES reduction polynomial
// x^8 + x^4 + x^3 + x + 1 (0x11B) with 0x03 as the generator of the
// multiplicative group. Multiplication and inversion go through log/exp
// tables that are filled once at package init and never written again, so
// every function here is safe for concurrent use.
package gf256

import "crypto/subtle"

const (
	// Polynomial is the irreducible reduction polynomial x^8+x^4+x^3+x+1.
	Polynomial = 0x11B

	// Generator generates the multiplicative group of the field.
	Generator = 0x03

	// Order is the size of the multiplicative group.
	Order = 255
)

var (
	expTable [256]byte
	logTable [256]byte
)

func init() {
	var x byte = 1
	for i := 0; i < Order; i++ {
		expTable[i] = x
		logTable[x] = byte(i)
		x = mulSlow(x, Generator)
	}
	expTable[Order] = expTable[0]
}

// Add adds two field elements. Addition is XOR and is its own inverse.
func Add(a, b byte) byte {
	return a ^ b
}

// Sub subtracts b from a. Identical to Add in characteristic 2.
func Sub(a, b byte) byte {
	return a ^ b
}

// Mul multiplies two field elements.
func Mul(a, b byte) byte {
	sum := (int(logTable[a]) + int(logTable[b])) % Order
	ret := expTable[sum]

	// log(0) is undefined; mask the result instead of branching on a or b.
	ret &= ^byte(subtle.ConstantTimeByteEq(a, 0) * 0xFF)
	ret &= ^byte(subtle.ConstantTimeByteEq(b, 0) * 0xFF)

	return ret
}

// Inverse returns the multiplicative inverse of a. It panics if a is zero.
func Inverse(a byte) byte {
	if a == 0 {
		panic("gf256: inverse of zero")
	}
	return expTable[Order-int(logTable[a])]
}

// Div divides a by b. It panics if b is zero.
func Div(a, b byte) byte {
	return Mul(a, Inverse(b))
}

// Exp returns Generator raised to the power e.
func Exp(e int) byte {
	e %= Order
	if e < 0 {
		e += Order
	}
	return expTable[e]
}

// Log returns the discrete logarithm of a to base Generator.
// It panics if a is zero.
func Log(a byte) int {
	if a == 0 {
		panic("gf256: log of zero")
	}
	return int(logTable[a])
}

// mulSlow multiplies using shift-and-add with reduction by Polynomial.
// It is the textbook definition the tables are derived from.
func mulSlow(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		carry := a & 0x80
		a <<= 1
		if carry != 0 {
			a ^= Polynomial & 0xFF
		}
		b >>= 1
	}
	return p
}
