package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Beastly713/sss/pkg/format"
	"github.com/Beastly713/sss/pkg/pipeline"
	"github.com/Beastly713/sss/pkg/shamir"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxOpenFiles bounds how many share files are parsed at once.
const maxOpenFiles = 8

type loadedShare struct {
	Path   string
	Header *format.Header
	Body   []byte
}

// shareSet is every loaded share that carries the same set ID.
type shareSet struct {
	ID     string
	Shares []*loadedShare
}

func (s *shareSet) ref() *format.Header {
	return s.Shares[0].Header
}

// findShareFiles lists the share files directly inside dir.
func findShareFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), format.Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

func readShareFile(path string) (*loadedShare, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := format.NewReader(f)
	if err != nil {
		return nil, err
	}
	return &loadedShare{Path: path, Header: r.Header, Body: r.Body}, nil
}

// loadShareFiles parses paths concurrently. With strict set, the first bad
// file fails the load; otherwise bad files are logged and skipped.
func loadShareFiles(paths []string, strict bool, log *zap.Logger) ([]*loadedShare, error) {
	loaded := make([]*loadedShare, len(paths))

	var g errgroup.Group
	g.SetLimit(maxOpenFiles)
	for i, path := range paths {
		g.Go(func() error {
			s, err := readShareFile(path)
			if err != nil {
				if strict {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				log.Warn("skipping invalid share file", zap.String("file", path), zap.Error(err))
				return nil
			}
			loaded[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := loaded[:0]
	for _, s := range loaded {
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

// groupBySet buckets shares by set ID, ordered by label then ID so output
// is stable.
func groupBySet(shares []*loadedShare) []*shareSet {
	byID := make(map[string]*shareSet)
	for _, s := range shares {
		set, ok := byID[s.Header.SetID]
		if !ok {
			set = &shareSet{ID: s.Header.SetID}
			byID[s.Header.SetID] = set
		}
		set.Shares = append(set.Shares, s)
	}

	sets := make([]*shareSet, 0, len(byID))
	for _, set := range byID {
		sort.Slice(set.Shares, func(i, j int) bool {
			return set.Shares[i].Header.Index < set.Shares[j].Header.Index
		})
		sets = append(sets, set)
	}
	sort.Slice(sets, func(i, j int) bool {
		if sets[i].ref().Label != sets[j].ref().Label {
			return sets[i].ref().Label < sets[j].ref().Label
		}
		return sets[i].ID < sets[j].ID
	})
	return sets
}

// check reports headers that disagree about the set they claim to be from,
// and sets too small to reconstruct.
func (s *shareSet) check() error {
	ref := s.ref()
	for _, sh := range s.Shares[1:] {
		h := sh.Header
		if h.Kind != ref.Kind || h.Total != ref.Total || h.Threshold != ref.Threshold ||
			h.Label != ref.Label || h.CipherLength != ref.CipherLength || h.Compression != ref.Compression {
			return fmt.Errorf("share %s disagrees with share %s about set %s",
				filepath.Base(sh.Path), filepath.Base(s.Shares[0].Path), s.ID)
		}
	}
	if len(s.Shares) < ref.Threshold {
		return fmt.Errorf("not enough shares for %s: need %d, found %d", s.describe(), ref.Threshold, len(s.Shares))
	}
	return nil
}

func (s *shareSet) describe() string {
	if label := s.ref().Label; label != "" {
		return fmt.Sprintf("%q (set %s)", label, s.ID)
	}
	return "set " + s.ID
}

// reconstruct recovers the secret or file a set was made from.
func (s *shareSet) reconstruct(splitter *shamir.Splitter) ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	ref := s.ref()
	switch ref.Kind {
	case format.KindSecret:
		shares := make([]shamir.Share, len(s.Shares))
		for i, sh := range s.Shares {
			shares[i] = shamir.Share{Index: sh.Header.Index, Payload: sh.Body}
		}
		return splitter.Combine(shares)

	case format.KindFile:
		pieces := make([]pipeline.Piece, len(s.Shares))
		for i, sh := range s.Shares {
			pieces[i] = pipeline.Piece{
				Index:       sh.Header.Index,
				KeyFragment: sh.Header.KeyFragment,
				Shard:       sh.Body,
			}
		}
		return pipeline.Open(pieces, pipeline.OpenConfig{
			Total:        ref.Total,
			Threshold:    ref.Threshold,
			SetID:        ref.SetID,
			CipherLength: ref.CipherLength,
			Compression:  ref.Compression,
			Splitter:     splitter,
		})
	}
	return nil, fmt.Errorf("unknown share kind %q", ref.Kind)
}

// outputName is the file a reconstructed set is written to.
func (s *shareSet) outputName() string {
	ref := s.ref()
	name := filepath.Base(ref.Label)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "secret"
	}
	if ref.Kind == format.KindSecret {
		name += ".secret"
	}
	return name
}

// shareFileName builds names like diary_1_of_5.share.
func shareFileName(label string, index, total int) string {
	base := filepath.Base(label)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "secret"
	}
	return fmt.Sprintf("%s_%d_of_%d%s", base, index, total, format.Extension)
}

// writeShareFile creates path and writes one share into it.
func writeShareFile(path string, header *format.Header, body []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	if err := format.NewWriter(f).Write(header, body); err != nil {
		f.Close()
		return fmt.Errorf("failed to write share %d: %w", header.Index, err)
	}
	return f.Close()
}

var errExists = errors.New("file already exists, use --overwrite to replace it")

// writeOutput writes a reconstructed secret, refusing to clobber unless
// overwrite is set.
func writeOutput(path string, data []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", path, errExists)
		}
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return f.Close()
}
