package gf256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulMatchesSlowMultiply(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			got := Mul(byte(a), byte(b))
			want := mulSlow(byte(a), byte(b))
			if got != want {
				t.Fatalf("Mul(%#02x, %#02x) = %#02x, want %#02x", a, b, got, want)
			}
		}
	}
}

func TestKnownProducts(t *testing.T) {
	// FIPS-197 section 4.2 worked examples.
	assert.Equal(t, byte(0xC1), Mul(0x57, 0x83))
	assert.Equal(t, byte(0xFE), Mul(0x57, 0x13))
	assert.Equal(t, byte(0xCA), Inverse(0x53))
}

func TestFieldLaws(t *testing.T) {
	for a := 0; a < 256; a++ {
		x := byte(a)
		assert.Equal(t, byte(0), Add(x, x), "a+a")
		assert.Equal(t, x, Add(x, 0), "a+0")
		assert.Equal(t, byte(0), Mul(x, 0), "a*0")
		assert.Equal(t, x, Mul(x, 1), "a*1")
		if x != 0 {
			assert.Equal(t, byte(1), Mul(x, Inverse(x)), "a*inv(a) for %#02x", x)
		}

		for b := 0; b < 256; b += 7 {
			y := byte(b)
			assert.Equal(t, Add(x, y), Add(y, x))
			assert.Equal(t, Mul(x, y), Mul(y, x))
			assert.Equal(t, Sub(Add(x, y), y), x)

			for c := 0; c < 256; c += 31 {
				z := byte(c)
				assert.Equal(t, Mul(Mul(x, y), z), Mul(x, Mul(y, z)), "associativity")
				assert.Equal(t, Mul(x, Add(y, z)), Add(Mul(x, y), Mul(x, z)), "distributivity")
			}
		}
	}
}

func TestDiv(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 1; b < 256; b++ {
			q := Div(byte(a), byte(b))
			require.Equal(t, byte(a), Mul(q, byte(b)))
		}
	}
}

func TestExpLogBijection(t *testing.T) {
	seen := make(map[byte]bool)
	for e := 0; e < Order; e++ {
		v := Exp(e)
		require.NotZero(t, v)
		require.False(t, seen[v], "generator power %d repeats %#02x", e, v)
		seen[v] = true
		require.Equal(t, e, Log(v))
	}
	assert.Len(t, seen, Order)
	assert.Equal(t, Exp(0), Exp(Order))
	assert.Equal(t, Exp(Order-1), Exp(-1))
}

func TestZeroPanics(t *testing.T) {
	assert.Panics(t, func() { Inverse(0) })
	assert.Panics(t, func() { Div(1, 0) })
	assert.Panics(t, func() { Log(0) })
}

func BenchmarkMul(b *testing.B) {
	var acc byte
	for i := 0; i < b.N; i++ {
		acc ^= Mul(byte(i), byte(i>>8))
	}
	_ = acc
}
