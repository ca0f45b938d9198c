package client

import (
	"fmt"
	"io"
	"sort"

	"github.com/wordgate/wordgate/internal/wire"
)

// Frequencies counts how often each word appears in the downloaded sequence.
// Empty words are skipped.
func Frequencies(words []string) map[string]int {
	freq := make(map[string]int)
	for _, word := range words {
		if word == "" {
			continue
		}
		freq[word]++
	}
	return freq
}

// WriteFrequencyReport prints one "word,count" line per distinct word in
// lexicographic order.
func WriteFrequencyReport(w io.Writer, words []string) error {
	freq := Frequencies(words)

	keys := make([]string, 0, len(freq))
	for word := range freq {
		keys = append(keys, word)
	}
	sort.Strings(keys)

	for _, word := range keys {
		if _, err := fmt.Fprintf(w, "%s%s%d\n", word, wire.Delimiter, freq[word]); err != nil {
			return err
		}
	}
	return nil
}
