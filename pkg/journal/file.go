package journal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File appends entries as JSON lines to a local file.
type File struct {
	path string

	mu sync.Mutex
	f  *os.File
}

// NewFile opens (or creates) the journal file at path. Parent directories are
// created as needed.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &File{path: path, f: f}, nil
}

// Append writes e as one line.
func (j *File) Append(_ context.Context, e Entry) error {
	data, err := encode(e)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return os.ErrClosed
	}
	_, err = j.f.Write(append(data, '\n'))
	return err
}

// Entries reads the file back. Lines that do not decode are skipped.
func (j *File) Entries(_ context.Context, session string) ([]Entry, error) {
	j.mu.Lock()
	data, err := os.ReadFile(j.path)
	j.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		e, err := decode(line)
		if err != nil {
			continue
		}
		if keep(e, session) {
			out = append(out, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read journal %s: %w", j.path, err)
	}
	return out, nil
}

// Path returns the journal file path.
func (j *File) Path() string { return j.path }

// Close closes the file. Close is idempotent.
func (j *File) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	err := j.f.Close()
	j.f = nil
	return err
}

var _ Journal = (*File)(nil)
