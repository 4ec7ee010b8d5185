package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"one terminated", "a\n", 1},
		{"one unterminated", "a", 1},
		{"mixed", "a\nb\nc", 3},
		{"blank lines", "\n\n\n", 3},
		{"header and rows", "en\tkab\nHello\tAzul\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Count(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestCount_LargeInput(t *testing.T) {
	input := strings.Repeat("izirig\n", 200000)
	got, err := Count(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if got != 200000 {
		t.Errorf("expected 200000 lines, got %d", got)
	}
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	os.WriteFile(a, []byte("1\n2\n3\n"), 0644)
	os.WriteFile(b, []byte("x\n"), 0644)

	counts, err := CountLines(a, b)
	if err != nil {
		t.Fatalf("CountLines failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 counts, got %d", len(counts))
	}
	if counts[0] != (LineCount{Path: a, Lines: 3}) || counts[1] != (LineCount{Path: b, Lines: 1}) {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestCountLines_MissingFile(t *testing.T) {
	if _, err := CountLines(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSummary_Print(t *testing.T) {
	s := Summary{
		SourceLang: "en", TargetLang: "kab",
		RawPairs: 10, CleanPairs: 8, Removed: 2,
		SourceLines: 8, TargetLines: 8,
		SourcePath: "en.txt", TargetPath: "kab.txt",
	}
	var buf bytes.Buffer
	if err := s.Print(&buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"(raw TSV, excluding header): 10",
		"(clean TSV, excluding header): 8",
		"Rows removed by cleaning: 2",
		"Number of en sentences (en.txt): 8",
		"Number of kab sentences (kab.txt): 8",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
