package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Writer handles the writing of a single share file.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new Writer around an io.Writer (usually an os.File).
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write fills in header.Checksum for body, then serializes the header and
// body to the underlying writer.
func (hw *Writer) Write(header *Header, body []byte) error {
	header.Checksum = Checksum(header.Index, body)

	// 1. Validate the header before writing anything
	if err := header.Validate(); err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}

	// 2. Format and write the banner
	what := "SECRET"
	if header.Kind == KindFile {
		what = strings.ToUpper(strings.NewReplacer("\r", " ", "\n", " ").Replace(header.Label))
	}
	banner := fmt.Sprintf(MagicHeader, header.Index, header.Total, header.SetID, header.Threshold, what)
	if _, err := io.WriteString(hw.w, banner); err != nil {
		return fmt.Errorf("failed to write magic header: %w", err)
	}

	// 3. Write the Header Marker
	if _, err := fmt.Fprintln(hw.w, HeaderMarker); err != nil {
		return fmt.Errorf("failed to write header marker: %w", err)
	}

	// 4. Marshal and write the Header JSON on one line
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if _, err := fmt.Fprintf(hw.w, "%s\n", headerBytes); err != nil {
		return fmt.Errorf("failed to write json header: %w", err)
	}

	// 5. Write the Body Marker
	if _, err := fmt.Fprintln(hw.w, BodyMarker); err != nil {
		return fmt.Errorf("failed to write body marker: %w", err)
	}

	// 6. Write the body
	if _, err := hw.w.Write(body); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	return nil
}
