package format

import (
	"bufio"
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	// maxBannerLines bounds the scan for HeaderMarker on garbage input.
	maxBannerLines = 50

	// MaxBodySize caps how much body a reader will buffer.
	MaxBodySize = 1 << 30
)

// Reader holds a parsed share file.
type Reader struct {
	Header *Header
	Body   []byte
}

// NewReader parses a share file: it skips the banner, decodes and validates
// the header, reads the body and verifies the checksum.
func NewReader(r io.Reader) (*Reader, error) {
	bufReader := bufio.NewReader(r)

	// 1. Scan for the Header Marker
	foundHeader := false
	for i := 0; i < maxBannerLines; i++ {
		line, err := bufReader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read stream while looking for header: %w", err)
		}
		if strings.TrimSpace(line) == HeaderMarker {
			foundHeader = true
			break
		}
	}

	if !foundHeader {
		return nil, fmt.Errorf("invalid format: could not find %q marker", HeaderMarker)
	}

	// 2. Read the JSON content until the Body Marker
	var jsonBuilder bytes.Buffer
	for {
		line, err := bufReader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read stream while reading header json: %w", err)
		}
		if strings.TrimSpace(line) == BodyMarker {
			break
		}
		jsonBuilder.WriteString(line)
	}

	// 3. Unmarshal the Header
	header := &Header{}
	if err := json.Unmarshal(jsonBuilder.Bytes(), header); err != nil {
		return nil, fmt.Errorf("failed to parse header json: %w", err)
	}

	// 4. Validate the parsed header
	if err := header.Validate(); err != nil {
		return nil, fmt.Errorf("header validation failed: %w", err)
	}

	// 5. Read and verify the body
	body, err := io.ReadAll(io.LimitReader(bufReader, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxBodySize)
	}

	want := Checksum(header.Index, body)
	if subtle.ConstantTimeCompare([]byte(want), []byte(header.Checksum)) != 1 {
		return nil, fmt.Errorf("checksum mismatch for share %d", header.Index)
	}

	return &Reader{
		Header: header,
		Body:   body,
	}, nil
}
