package format

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Beastly713/sss/pkg/shamir"
	"github.com/google/uuid"
)

// Standard Markers used to delineate sections in the text-friendly format
const (
	// MagicHeader is the user-friendly introduction found at the top of the file
	MagicHeader = `# THIS FILE IS A SECRET SHARE.
# IT IS SHARE %d OF %d IN SET %s.
# ANY %d SHARES OF THIS SET TOGETHER RECONSTRUCT THE ORIGINAL %s.
# FEWER REVEAL NOTHING ABOUT IT.
`
	// HeaderMarker indicates the start of the JSON metadata
	HeaderMarker = "-- HEADER --"

	// BodyMarker indicates the start of the share payload
	BodyMarker = "-- BODY --"

	// Extension is the file extension share files are written with.
	Extension = ".share"
)

// Kind says what the body of a share file holds.
type Kind string

const (
	// KindSecret bodies are raw Shamir share payloads of a small secret.
	KindSecret Kind = "secret"

	// KindFile bodies are erasure-coded shards of an encrypted file; the
	// data key travels as a Shamir share in Header.KeyFragment.
	KindFile Kind = "file"
)

// Header contains all the metadata required to put shares back together.
type Header struct {
	// SetID identifies the split this share came from. Shares are only
	// ever combined with shares of the same set.
	SetID string `json:"setId"`

	Kind Kind `json:"kind"`

	// Label is a display name: the original filename for KindFile.
	Label string `json:"label,omitempty"`

	// Timestamp is the unix timestamp when the split occurred.
	Timestamp int64 `json:"timestamp"`

	// Index is the Shamir share index, 1-based.
	Index int `json:"index"`

	// Total is the number of shares created
	Total int `json:"total"`

	// Threshold is the number of shares required to reconstruct
	Threshold int `json:"threshold"`

	// Compression names the codec applied before encryption (KindFile).
	Compression string `json:"compression,omitempty"`

	// KeyFragment is this share of the file's data key (KindFile).
	KeyFragment []byte `json:"keyFragment,omitempty"`

	// CipherLength is the ciphertext size before erasure coding padded it (KindFile).
	CipherLength int `json:"cipherLength,omitempty"`

	// Checksum is the hex SHA-256 of the index byte followed by the body.
	Checksum string `json:"checksum"`
}

// NewSetID returns a fresh random set identifier.
func NewSetID() string {
	return uuid.NewString()
}

// Validate checks if the header contains sane values.
func (h *Header) Validate() error {
	if _, err := uuid.Parse(h.SetID); err != nil {
		return fmt.Errorf("invalid set id %q: %w", h.SetID, err)
	}
	if h.Total < 2 || h.Total > shamir.MaxShares {
		return fmt.Errorf("invalid total %d", h.Total)
	}
	if h.Index < 1 || h.Index > h.Total {
		return fmt.Errorf("invalid index %d for total %d", h.Index, h.Total)
	}
	if h.Threshold < 2 || h.Threshold > h.Total {
		return fmt.Errorf("invalid threshold %d for total %d", h.Threshold, h.Total)
	}

	switch h.Kind {
	case KindSecret:
		if len(h.KeyFragment) != 0 {
			return errors.New("secret share must not carry a key fragment")
		}
	case KindFile:
		if len(h.KeyFragment) == 0 {
			return errors.New("header is missing key fragment")
		}
		if h.CipherLength <= 0 {
			return fmt.Errorf("invalid cipher length %d", h.CipherLength)
		}
		if h.Label == "" {
			return errors.New("header is missing original filename")
		}
	default:
		return fmt.Errorf("unknown share kind %q", h.Kind)
	}
	return nil
}

// Checksum returns the hex SHA-256 of index (as one byte) and body.
func Checksum(index int, body []byte) string {
	h := sha256.New()
	h.Write([]byte{byte(index)})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
