package chat

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxLineBytes bounds a single response line.
const MaxLineBytes = 1 << 20

// Stream yields the response body one line at a time as it arrives.
// It is single-pass: once Next returns false the stream is exhausted.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	line    string
	count   int
	err     error
	done    bool
}

// NewStream wraps a response body. The stream owns body and closes it on Close.
func NewStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	scanner.Split(scanLines)
	return &Stream{body: body, scanner: scanner}
}

// Next advances to the next line, blocking until it arrives or the body ends.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	if !s.scanner.Scan() {
		s.done = true
		if err := s.scanner.Err(); err != nil {
			s.err = fmt.Errorf("read response line %d: %w", s.count+1, err)
		}
		return false
	}

	raw := s.scanner.Bytes()
	s.count++
	if !utf8.Valid(raw) {
		s.done = true
		s.err = fmt.Errorf("line %d: %w", s.count, ErrInvalidUTF8)
		return false
	}
	s.line = string(raw)
	return true
}

// Line returns the current line without its terminator. Empty lines are yielded as "".
func (s *Stream) Line() string { return s.line }

// Count returns how many lines have been read so far.
func (s *Stream) Count() int { return s.count }

// Err returns the first read or decode error.
func (s *Stream) Err() error { return s.err }

// Close releases the underlying response body.
func (s *Stream) Close() error {
	s.done = true
	if s.body == nil {
		return nil
	}
	return s.body.Close()
}

// scanLines splits on "\n", "\r\n" and a lone "\r". A trailing "\r" waits for
// the next byte unless the body has ended.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
