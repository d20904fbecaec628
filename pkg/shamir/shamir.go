// Package shamir splits a secret into shares with Shamir's Secret Sharing
// over GF(256) and joins them back.
//
// Every byte of the secret is the constant term of its own random polynomial
// of degree k-1. Share x holds that polynomial evaluated at x for every byte
// position, so each share is as long as the secret. Any k shares determine
// the polynomials and therefore the secret; k-1 shares are consistent with
// every possible secret.
//
// Shares carry no threshold. Joining fewer than k shares returns bytes that
// are not the secret, without an error: the joiner has no way to tell.
package shamir

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/Beastly713/sss/pkg/polynomial"
	"golang.org/x/sync/errgroup"
)

// Share is a single (index, payload) pair produced by Split.
type Share struct {
	Index   int
	Payload []byte
}

// Splitter splits and joins secrets with a configurable randomness source
// and degree of parallelism. The zero value is not usable; call New.
type Splitter struct {
	rand    io.Reader
	workers int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithRand sets the source of polynomial coefficients. It must be a
// cryptographically secure generator outside of tests. The reader is only
// ever used from the goroutine calling Split.
func WithRand(r io.Reader) Option {
	return func(s *Splitter) {
		s.rand = r
	}
}

// WithWorkers spreads byte positions over w goroutines. Values below 2
// keep everything on the calling goroutine.
func WithWorkers(w int) Option {
	return func(s *Splitter) {
		if w < 1 {
			w = 1
		}
		s.workers = w
	}
}

// New returns a Splitter reading from crypto/rand unless configured otherwise.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		rand:    rand.Reader,
		workers: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultSplitter = New()

// Split divides secret into n shares, any k of which reconstruct it.
// The result maps each index 1..n to its payload.
func Split(n, k int, secret []byte) (map[int][]byte, error) {
	return defaultSplitter.Split(n, k, secret)
}

// Join reconstructs a secret from shares keyed by index.
//
// Shares do not record the threshold, so passing fewer than k of them is not
// detected: Join returns bytes that are not the secret, and no error.
func Join(shares map[int][]byte) ([]byte, error) {
	return defaultSplitter.Join(shares)
}

// Combine reconstructs a secret from a slice of shares. Unlike the map form,
// a slice can repeat an index, which is reported as a *MismatchError.
func Combine(shares []Share) ([]byte, error) {
	return defaultSplitter.Combine(shares)
}

// Split divides secret into n shares, any k of which reconstruct it.
func (s *Splitter) Split(n, k int, secret []byte) (map[int][]byte, error) {
	if err := validateParams(n, k, len(secret)); err != nil {
		return nil, err
	}

	degree := k - 1
	size := len(secret)

	// All coefficients are read up front, in order, so the output for a
	// given random stream does not depend on the worker count.
	coeffs := make([]byte, size*degree)
	defer clear(coeffs)
	if _, err := io.ReadFull(s.rand, coeffs); err != nil {
		return nil, fmt.Errorf("shamir: failed to generate coefficients: %w", err)
	}

	payloads := make([][]byte, n)
	for i := range payloads {
		payloads[i] = make([]byte, size)
	}

	s.forEachRange(size, func(lo, hi int) {
		poly := make([]byte, k)
		defer clear(poly)
		for pos := lo; pos < hi; pos++ {
			poly[0] = secret[pos]
			copy(poly[1:], coeffs[pos*degree:(pos+1)*degree])
			for i := range payloads {
				payloads[i][pos] = polynomial.Evaluate(poly, byte(i+1))
			}
		}
	})

	out := make(map[int][]byte, n)
	for i, p := range payloads {
		out[i+1] = p
	}
	return out, nil
}

// Join reconstructs a secret from shares keyed by index.
func (s *Splitter) Join(shares map[int][]byte) ([]byte, error) {
	return s.combine(FromMap(shares))
}

// Combine reconstructs a secret from a slice of shares.
func (s *Splitter) Combine(shares []Share) ([]byte, error) {
	sorted := make([]Share, len(shares))
	copy(sorted, shares)
	sortShares(sorted)
	return s.combine(sorted)
}

func (s *Splitter) combine(shares []Share) ([]byte, error) {
	size, err := validateShares(shares)
	if err != nil {
		return nil, err
	}

	xs := make([]byte, len(shares))
	for i, sh := range shares {
		xs[i] = byte(sh.Index)
	}
	weights := polynomial.LagrangeWeights(xs)

	secret := make([]byte, size)
	s.forEachRange(size, func(lo, hi int) {
		ys := make([]byte, len(shares))
		for pos := lo; pos < hi; pos++ {
			for i, sh := range shares {
				ys[i] = sh.Payload[pos]
			}
			secret[pos] = polynomial.Combine(weights, ys)
		}
	})

	return secret, nil
}

// forEachRange calls fn over disjoint ranges covering [0, size), one per
// worker. Ranges never overlap, so fn may write to its own positions of a
// shared slice without locking.
func (s *Splitter) forEachRange(size int, fn func(lo, hi int)) {
	workers := min(s.workers, size)
	if workers <= 1 {
		fn(0, size)
		return
	}

	chunk := (size + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < size; lo += chunk {
		hi := min(lo+chunk, size)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
