// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/setlist/internal/spotify"
)

// MockFetcher is a test double for the playlist client. It returns the
// configured playlist or error and counts calls.
type MockFetcher struct {
	Playlist *spotify.Playlist
	Err      error
	Calls    int
}

func (m *MockFetcher) PublicPlaylist(ctx context.Context, id string) (*spotify.Playlist, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &spotify.Playlist{ID: id}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
