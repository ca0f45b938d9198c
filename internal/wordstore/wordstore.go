// The wordstore package holds the word sequence served to clients. The store
// is built once at startup and never mutated, so it needs no locking even if
// the serving model ever changes.
package wordstore

import (
	"fmt"
	"os"
	"strings"

	"github.com/wordgate/wordgate/internal/wire"
)

// Store is an immutable, zero-indexed sequence of words.
type Store struct {
	words []string
}

// New creates a Store from an already-tokenized word sequence.
func New(words []string) *Store {
	return &Store{words: words}
}

// Load reads the entire source file and splits it on the delimiter. Every
// segment is kept, including empty ones; a source ending in the delimiter
// therefore yields a trailing empty word. An unreadable file is a hard error
// so that the server fails at startup instead of silently serving an empty
// store.
func Load(filename string) (*Store, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading word file %s: %w", filename, err)
	}
	return New(strings.Split(string(content), wire.Delimiter)), nil
}

// Len returns the number of words in the store.
func (s *Store) Len() int {
	return len(s.words)
}

// Page returns up to count words starting at offset. An offset outside
// [0, Len) yields no words and a terminal page; otherwise terminal reports
// whether the slice reached the end of the store before count words were
// collected.
func (s *Store) Page(offset, count int) (words []string, terminal bool) {
	if offset < 0 || offset >= len(s.words) {
		return nil, true
	}
	end := offset + count
	if end > len(s.words) {
		return s.words[offset:], true
	}
	return s.words[offset:end], false
}
