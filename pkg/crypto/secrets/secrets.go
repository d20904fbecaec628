package secrets

import (
	"crypto/subtle"
	"fmt"
	"io"
)

// Secret holds sensitive bytes (data keys, reconstructed secrets) and wipes
// them on Destroy. Its String and GoString methods never print the contents,
// so a Secret is safe to pass to a logger by accident.
type Secret struct {
	data []byte
}

// NewSecret reads size random bytes from r.
func NewSecret(r io.Reader, size int) (*Secret, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid secret size %d", size)
	}
	key := make([]byte, size)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to generate random secret: %w", err)
	}
	return &Secret{data: key}, nil
}

// WrapSecret takes ownership of data. The caller must not keep using the slice.
func WrapSecret(data []byte) *Secret {
	return &Secret{data: data}
}

// Bytes returns the underlying bytes, not a copy.
func (s *Secret) Bytes() []byte {
	return s.data
}

// Len returns the secret length, or 0 once destroyed.
func (s *Secret) Len() int {
	return len(s.data)
}

// Equal compares two secrets in constant time.
func (s *Secret) Equal(other *Secret) bool {
	return subtle.ConstantTimeCompare(s.data, other.data) == 1
}

func (s *Secret) String() string {
	return fmt.Sprintf("[REDACTED %d bytes]", len(s.data))
}

func (s *Secret) GoString() string {
	return s.String()
}

// Destroy overwrites the secret with zeros. It is idempotent.
func (s *Secret) Destroy() {
	if s.data != nil {
		clear(s.data)
		s.data = nil
	}
}
