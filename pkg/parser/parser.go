package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReaderSource implements LogSource over a single io.Reader.
// Lines may be of any length; they are not buffered beyond the current one.
type ReaderSource struct {
	name    string
	reader  *bufio.Reader
	lineNum int
	done    bool
}

// NewReaderSource creates a LogSource reading newline-delimited lines from r.
// The name is reported as the Source of each line.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{
		name:   name,
		reader: bufio.NewReaderSize(r, 64*1024),
	}
}

// Next returns the next line, or io.EOF once the reader is exhausted.
// A final line without a trailing newline is still returned.
func (s *ReaderSource) Next(ctx context.Context) (*LogLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.done {
		return nil, io.EOF
	}

	text, err := s.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return nil, fmt.Errorf("reading %s: %w", s.name, err)
		}
		s.done = true
		if text == "" {
			return nil, io.EOF
		}
	}

	s.lineNum++
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	return &LogLine{
		Content: text,
		Source:  s.name,
		LineNum: s.lineNum,
	}, nil
}

// Close is a no-op; the caller owns the underlying reader.
func (s *ReaderSource) Close() error {
	return nil
}

// FileSource implements LogSource for reading from log files in order.
type FileSource struct {
	files []string

	currentFile   *os.File
	currentReader *ReaderSource
	fileIndex     int
}

// NewFileSource creates a LogSource that reads the given files one after another.
func NewFileSource(files []string) *FileSource {
	return &FileSource{
		files:     files,
		fileIndex: -1,
	}
}

// Next returns the next line across all files.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*LogLine, error) {
	for {
		// Ensure we have a file open
		if s.currentReader == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		line, err := s.currentReader.Next(ctx)
		if err == nil {
			return line, nil
		}
		if err != io.EOF {
			return nil, err
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentReader = NewReaderSource(path, f)

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentReader = nil
		return err
	}
	return nil
}
