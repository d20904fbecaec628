package shamir

import (
	"fmt"
	"sort"
)

// MaxShares is the largest share count: indices are the nonzero bytes.
const MaxShares = 255

func validateParams(n, k, secretLen int) error {
	if k <= 1 {
		return &ParameterError{Param: "threshold", Value: k, Reason: "must be greater than 1"}
	}
	if n < k {
		return &ParameterError{Param: "threshold", Value: k, Reason: fmt.Sprintf("exceeds total shares %d", n)}
	}
	if n > MaxShares {
		return &ParameterError{Param: "shares", Value: n, Reason: fmt.Sprintf("cannot exceed %d", MaxShares)}
	}
	if secretLen == 0 {
		return &ParameterError{Param: "secret", Value: secretLen, Reason: "cannot be empty"}
	}
	return nil
}

// validateShares checks that shares can be interpolated and returns the
// common payload length.
func validateShares(shares []Share) (int, error) {
	if len(shares) == 0 {
		return 0, &ParameterError{Param: "shares", Value: 0, Reason: "no shares provided"}
	}

	seen := make(map[int]bool, len(shares))
	size := len(shares[0].Payload)
	for _, s := range shares {
		if s.Index <= 0 || s.Index > MaxShares {
			return 0, &MismatchError{Index: s.Index, Reason: fmt.Sprintf("index must be in [1, %d]", MaxShares)}
		}
		if seen[s.Index] {
			return 0, &MismatchError{Index: s.Index, Reason: "duplicate index"}
		}
		seen[s.Index] = true

		if len(s.Payload) != size {
			return 0, &MismatchError{Index: s.Index, Reason: fmt.Sprintf("payload length %d differs from %d", len(s.Payload), size)}
		}
	}

	if size == 0 {
		return 0, &MismatchError{Index: shares[0].Index, Reason: "empty payload"}
	}
	return size, nil
}

// ValidateShares reports whether shares could be passed to Join. It does not
// and cannot check that enough shares are present.
func ValidateShares(shares map[int][]byte) error {
	_, err := validateShares(FromMap(shares))
	return err
}

// FromMap converts the map form to a slice ordered by index.
func FromMap(shares map[int][]byte) []Share {
	out := make([]Share, 0, len(shares))
	for idx, payload := range shares {
		out = append(out, Share{Index: idx, Payload: payload})
	}
	sortShares(out)
	return out
}

func sortShares(shares []Share) {
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Index < shares[j].Index
	})
}
