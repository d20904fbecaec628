// Package polynomial evaluates and interpolates polynomials over GF(256).
//
// It is the arithmetic half of Shamir's scheme: Evaluate produces share
// values and InterpolateAtZero recovers the constant term. Callers are
// expected to have validated their inputs; x coordinates passed to the
// interpolation functions must be distinct and nonzero.
package polynomial

import (
	"fmt"
	"io"

	"github.com/Beastly713/sss/pkg/gf256"
)

// Polynomial is a polynomial over GF(256). coefficients[i] multiplies x^i.
type Polynomial struct {
	coefficients []byte
}

// New builds a polynomial from explicit coefficients, constant term first.
func New(coefficients ...byte) Polynomial {
	c := make([]byte, len(coefficients))
	copy(c, coefficients)
	return Polynomial{coefficients: c}
}

// Random constructs a polynomial of the given degree whose constant term is
// intercept and whose other coefficients are read from rand.
func Random(intercept byte, degree int, rand io.Reader) (Polynomial, error) {
	if degree < 0 {
		return Polynomial{}, fmt.Errorf("negative degree %d", degree)
	}

	p := Polynomial{coefficients: make([]byte, degree+1)}
	p.coefficients[0] = intercept

	if _, err := io.ReadFull(rand, p.coefficients[1:]); err != nil {
		return Polynomial{}, fmt.Errorf("failed to read coefficients: %w", err)
	}
	return p, nil
}

// Degree returns the nominal degree (number of coefficients minus one).
func (p Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Coefficients returns a copy of the coefficients, constant term first.
func (p Polynomial) Coefficients() []byte {
	c := make([]byte, len(p.coefficients))
	copy(c, p.coefficients)
	return c
}

// Evaluate returns the value of the polynomial at x.
func (p Polynomial) Evaluate(x byte) byte {
	return Evaluate(p.coefficients, x)
}

// Zero overwrites the coefficients.
func (p *Polynomial) Zero() {
	clear(p.coefficients)
}

// Evaluate returns c[0] + c[1]*x + ... + c[len-1]*x^(len-1) using
// Horner's method. An empty coefficient slice evaluates to 0.
func Evaluate(coefficients []byte, x byte) byte {
	var out byte
	for i := len(coefficients) - 1; i >= 0; i-- {
		out = gf256.Add(gf256.Mul(out, x), coefficients[i])
	}
	return out
}

// LagrangeWeights returns, for each xs[i], the Lagrange basis polynomial
// l_i evaluated at zero:
//
//	l_i(0) = prod_{j != i} x_j / (x_j - x_i)
//
// The weights depend only on the x coordinates, so a join computes them
// once and reuses them for every byte position.
func LagrangeWeights(xs []byte) []byte {
	weights := make([]byte, len(xs))
	for i, xi := range xs {
		var num, den byte = 1, 1
		for j, xj := range xs {
			if i == j {
				continue
			}
			num = gf256.Mul(num, xj)
			den = gf256.Mul(den, gf256.Sub(xj, xi))
		}
		weights[i] = gf256.Div(num, den)
	}
	return weights
}

// InterpolateAtZero returns f(0) for the unique polynomial f of degree
// below len(xs) with f(xs[i]) = ys[i].
func InterpolateAtZero(xs, ys []byte) byte {
	return Combine(LagrangeWeights(xs), ys)
}

// Combine sums ys[i] * weights[i]. With weights from LagrangeWeights this is
// the interpolated value at zero.
func Combine(weights, ys []byte) byte {
	var out byte
	for i, w := range weights {
		out = gf256.Add(out, gf256.Mul(ys[i], w))
	}
	return out
}

// Interpolate returns f(x) for the unique polynomial f of degree below
// len(xs) with f(xs[i]) = ys[i].
func Interpolate(xs, ys []byte, x byte) byte {
	var out byte
	for i, xi := range xs {
		basis := byte(1)
		for j, xj := range xs {
			if i == j {
				continue
			}
			basis = gf256.Mul(basis, gf256.Div(gf256.Sub(x, xj), gf256.Sub(xi, xj)))
		}
		out = gf256.Add(out, gf256.Mul(ys[i], basis))
	}
	return out
}
