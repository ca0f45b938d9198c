package client

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFrequencies(t *testing.T) {
	words := []string{"apple", "banana", "apple", "", "cherry", "banana", "apple"}

	want := map[string]int{"apple": 3, "banana": 2, "cherry": 1}
	if diff := cmp.Diff(want, Frequencies(words)); diff != "" {
		t.Errorf("Frequencies() mismatch; diff:\n%s", diff)
	}
}

func TestFrequenciesEmpty(t *testing.T) {
	if got := Frequencies(nil); len(got) != 0 {
		t.Errorf("Frequencies(nil) = %v, want empty map", got)
	}
	if got := Frequencies([]string{"", ""}); len(got) != 0 {
		t.Errorf("empty words should not be counted, got %v", got)
	}
}

func TestWriteFrequencyReport(t *testing.T) {
	var sb strings.Builder
	err := WriteFrequencyReport(&sb, []string{"b", "a", "b"})
	if err != nil {
		t.Fatal("WriteFrequencyReport() returned error:", err)
	}

	want := "a,1\nb,2\n"
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("report mismatch; diff:\n%s", diff)
	}
}
