package pipeline

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/Beastly713/sss/pkg/compression"
	"github.com/Beastly713/sss/pkg/crypto/encryptor"
	"github.com/Beastly713/sss/pkg/crypto/secrets"
	"github.com/Beastly713/sss/pkg/shamir"
	"github.com/Beastly713/sss/pkg/sharding"
)

// Config holds the parameters for sealing a file.
type Config struct {
	Total     int
	Threshold int

	// SetID is bound into the ciphertext as associated data, so pieces of
	// one set cannot decrypt another set's shards.
	SetID string

	// Compression names the codec, "gzip" (default) or "none".
	Compression string

	// Rand supplies the data key and nonce. Defaults to crypto/rand.
	Rand io.Reader

	// Splitter splits the data key. Defaults to shamir.New(WithRand(Rand)).
	Splitter *shamir.Splitter
}

// Piece is one share of a sealed file: a Shamir share of the data key plus
// an erasure-coded shard of the ciphertext.
type Piece struct {
	Index       int // 1-based, the Shamir index
	KeyFragment []byte
	Shard       []byte
}

// Sealed is the output of Seal.
type Sealed struct {
	Pieces       []Piece
	CipherLength int
	Compression  string
}

// Seal orchestrates the flow: Read -> Compress -> Encrypt -> Shard, and
// splits the data key so that any Threshold pieces recover the input.
func Seal(input io.Reader, cfg Config) (*Sealed, error) {
	r := cfg.Rand
	if r == nil {
		r = rand.Reader
	}
	splitter := cfg.Splitter
	if splitter == nil {
		splitter = shamir.New(shamir.WithRand(r))
	}
	compressor, err := compression.ByName(cfg.Compression)
	if err != nil {
		return nil, err
	}
	if cfg.Compression == "" {
		cfg.Compression = "gzip"
	}

	// 1. Read Input
	plainBytes, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	// 2. Compress
	compressedBytes, err := compressor.Compress(plainBytes)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}

	// 3. Encrypt under an ephemeral key
	key, err := secrets.NewSecret(r, encryptor.KeySize)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	cipherText, err := encryptor.Seal(r, key.Bytes(), compressedBytes, []byte(cfg.SetID))
	if err != nil {
		return nil, fmt.Errorf("encryption failed: %w", err)
	}

	// 4. Split the key
	keyShares, err := splitter.Split(cfg.Total, cfg.Threshold, key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}

	// 5. Shard the ciphertext
	enc, err := sharding.NewEncoder(cfg.Total, cfg.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encoder: %w", err)
	}
	shards, err := enc.Split(cipherText)
	if err != nil {
		return nil, fmt.Errorf("sharding failed: %w", err)
	}

	pieces := make([]Piece, cfg.Total)
	for i := range pieces {
		// Shamir index i+1 carries erasure shard i.
		pieces[i] = Piece{
			Index:       i + 1,
			KeyFragment: keyShares[i+1],
			Shard:       shards[i],
		}
	}

	return &Sealed{
		Pieces:       pieces,
		CipherLength: len(cipherText),
		Compression:  cfg.Compression,
	}, nil
}

// OpenConfig describes a sealed set being reopened. All values come from
// the share headers.
type OpenConfig struct {
	Total        int
	Threshold    int
	SetID        string
	CipherLength int
	Compression  string

	// Splitter rebuilds the data key. Defaults to shamir.New().
	Splitter *shamir.Splitter
}

// Open orchestrates the reverse: Unshard -> Decrypt -> Decompress.
// Unlike a bare Shamir join, the threshold is known here, so too few
// pieces is an error rather than a wrong key.
func Open(pieces []Piece, cfg OpenConfig) ([]byte, error) {
	if len(pieces) < cfg.Threshold {
		return nil, fmt.Errorf("not enough pieces: need %d, have %d", cfg.Threshold, len(pieces))
	}

	// 1. Reconstruct the key
	keyShares := make([]shamir.Share, len(pieces))
	shardMap := make(map[int][]byte, len(pieces))
	for i, p := range pieces {
		keyShares[i] = shamir.Share{Index: p.Index, Payload: p.KeyFragment}
		shardMap[p.Index-1] = p.Shard
	}

	splitter := cfg.Splitter
	if splitter == nil {
		splitter = shamir.New()
	}
	keyBytes, err := splitter.Combine(keyShares)
	if err != nil {
		return nil, fmt.Errorf("key reconstruction failed: %w", err)
	}
	key := secrets.WrapSecret(keyBytes)
	defer key.Destroy()

	// 2. Unshard
	enc, err := sharding.NewEncoder(cfg.Total, cfg.Threshold)
	if err != nil {
		return nil, err
	}
	cipherText, err := enc.Join(shardMap, cfg.CipherLength)
	if err != nil {
		return nil, fmt.Errorf("reconstruction failed: %w", err)
	}

	// 3. Decrypt
	compressedBytes, err := encryptor.Open(key.Bytes(), cipherText, []byte(cfg.SetID))
	if err != nil {
		return nil, fmt.Errorf("decryption failed (integrity check): %w", err)
	}

	// 4. Decompress
	compressor, err := compression.ByName(cfg.Compression)
	if err != nil {
		return nil, err
	}
	plainBytes, err := compressor.Decompress(compressedBytes)
	if err != nil {
		return nil, fmt.Errorf("decompression failed: %w", err)
	}

	return plainBytes, nil
}
