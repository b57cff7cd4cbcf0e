package paper

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode"
)

// Source yields canonical papers one at a time and returns io.EOF when exhausted.
type Source interface {
	Next() (*Paper, error)
}

// Reader streams papers from a JSON array or from JSON Lines. The format is
// detected from the first non-space byte.
type Reader struct {
	dec     *json.Decoder
	array   bool
	done    bool
	decoded int
}

// NewReader prepares a streaming reader over r.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read papers: %w", err)
	}

	reader := &Reader{dec: json.NewDecoder(br), array: first == '['}
	if errors.Is(err, io.EOF) {
		reader.done = true
		return reader, nil
	}
	if reader.array {
		if _, err := reader.dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to open papers array: %w", err)
		}
	}
	return reader, nil
}

// Next decodes the next paper.
func (r *Reader) Next() (*Paper, error) {
	if r.done {
		return nil, io.EOF
	}
	if r.array && !r.dec.More() {
		r.done = true
		if _, err := r.dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to close papers array: %w", err)
		}
		return nil, io.EOF
	}

	var p Paper
	if err := r.dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) && !r.array {
			r.done = true
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode paper #%d: %w", r.decoded+1, err)
	}
	r.decoded++
	return &p, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(rune(b[0])) {
			return b[0], nil
		}
		if _, err := br.ReadByte(); err != nil {
			return 0, err
		}
	}
}

// SliceSource serves papers from memory.
type SliceSource struct {
	papers []Paper
	next   int
}

// NewSliceSource creates a source over papers.
func NewSliceSource(papers []Paper) *SliceSource {
	return &SliceSource{papers: papers}
}

// Next returns the next paper or io.EOF.
func (s *SliceSource) Next() (*Paper, error) {
	if s.next >= len(s.papers) {
		return nil, io.EOF
	}
	p := s.papers[s.next]
	s.next++
	return &p, nil
}
