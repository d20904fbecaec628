package sharding

import (
	"bytes"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Encoder erasure-codes a byte slice into Total shards of which any
// Threshold rebuild it. Shards are addressed 0..Total-1.
type Encoder struct {
	Total     int
	Threshold int

	enc reedsolomon.Encoder
}

// NewEncoder builds an encoder with Threshold data shards and
// Total-Threshold parity shards.
func NewEncoder(total, threshold int) (*Encoder, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1, got %d", threshold)
	}
	if threshold > total {
		return nil, fmt.Errorf("threshold %d cannot exceed total shards %d", threshold, total)
	}

	enc, err := reedsolomon.New(threshold, total-threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to create reed-solomon encoder: %w", err)
	}

	return &Encoder{
		Total:     total,
		Threshold: threshold,
		enc:       enc,
	}, nil
}

// Split pads data to a multiple of Threshold, cuts it into data shards and
// computes the parity shards. The caller must remember len(data) to undo the
// padding in Join.
func (e *Encoder) Split(data []byte) ([][]byte, error) {
	shards, err := e.enc.Split(data)
	if err != nil {
		return nil, fmt.Errorf("failed to split data: %w", err)
	}

	if err := e.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("failed to compute parity: %w", err)
	}

	return shards, nil
}

// Join rebuilds the original size bytes from whichever shards are present.
func (e *Encoder) Join(shards map[int][]byte, size int) ([]byte, error) {
	all := make([][]byte, e.Total)
	present := 0
	for idx, data := range shards {
		if idx < 0 || idx >= e.Total {
			return nil, fmt.Errorf("shard index %d out of range [0, %d)", idx, e.Total)
		}
		all[idx] = data
		present++
	}

	if present < e.Threshold {
		return nil, fmt.Errorf("not enough shards to reconstruct: have %d, need %d", present, e.Threshold)
	}

	if err := e.enc.ReconstructData(all); err != nil {
		return nil, fmt.Errorf("reconstruction failed: %w", err)
	}

	var buf bytes.Buffer
	if err := e.enc.Join(&buf, all, size); err != nil {
		return nil, fmt.Errorf("failed to join shards: %w", err)
	}
	return buf.Bytes(), nil
}
