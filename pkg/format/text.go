package format

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// EncodeText renders a share as "<index>:<base64 payload>", one share per
// line, for printing to a terminal or pasting into a ticket.
func EncodeText(index int, payload []byte) string {
	return strconv.Itoa(index) + ":" + base64.StdEncoding.EncodeToString(payload)
}

// ParseText is the inverse of EncodeText. It does not range-check the
// index; that is the joiner's job.
func ParseText(s string) (int, []byte, error) {
	idx, enc, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, nil, fmt.Errorf("malformed share: missing ':' separator")
	}

	index, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return 0, nil, fmt.Errorf("malformed share: invalid index: %w", err)
	}

	payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(enc))
	if err != nil {
		return 0, nil, fmt.Errorf("share %d: invalid base64 payload: %w", index, err)
	}
	return index, payload, nil
}

// WriteText writes shares in index order, one EncodeText line each.
func WriteText(w io.Writer, shares map[int][]byte) error {
	indices := make([]int, 0, len(shares))
	for idx := range shares {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	for _, idx := range indices {
		if _, err := fmt.Fprintln(w, EncodeText(idx, shares[idx])); err != nil {
			return fmt.Errorf("failed to write share %d: %w", idx, err)
		}
	}
	return nil
}

// ParseTextLines reads EncodeText lines. Blank lines and lines starting
// with '#' are skipped. A repeated index is an error.
func ParseTextLines(r io.Reader) (map[int][]byte, error) {
	shares := make(map[int][]byte)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		idx, payload, err := ParseText(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, dup := shares[idx]; dup {
			return nil, fmt.Errorf("line %d: duplicate share index %d", line, idx)
		}
		shares[idx] = payload
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shares: %w", err)
	}
	return shares, nil
}
