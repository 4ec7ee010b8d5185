// Package report counts lines in the produced corpora and prints a summary.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// LineCount is the number of lines in one file.
type LineCount struct {
	Path  string
	Lines int
}

// CountLines returns the line count of every path, in order. A final line
// without a terminating newline still counts. Headers are not special-cased.
func CountLines(paths ...string) ([]LineCount, error) {
	counts := make([]LineCount, 0, len(paths))
	for _, p := range paths {
		n, err := countFile(p)
		if err != nil {
			return nil, err
		}
		counts = append(counts, LineCount{Path: p, Lines: n})
	}
	return counts, nil
}

func countFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n, err := Count(f)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return n, nil
}

// Count returns the number of lines readable from r.
func Count(r io.Reader) (int, error) {
	buf := make([]byte, 64*1024)
	lines := 0
	var last byte = '\n'

	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if last != '\n' {
		lines++
	}
	return lines, nil
}

// Summary is the end-of-run report.
type Summary struct {
	SourceLang string
	TargetLang string
	// RawPairs and CleanPairs exclude the header line.
	RawPairs    int
	CleanPairs  int
	Removed     int
	SourceLines int
	TargetLines int
	SourcePath  string
	TargetPath  string
}

// Print writes the human-readable summary to w.
func (s Summary) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"Number of translation pairs (raw TSV, excluding header): %d\n"+
			"Number of translation pairs (clean TSV, excluding header): %d\n"+
			"Rows removed by cleaning: %d\n"+
			"Number of %s sentences (%s): %d\n"+
			"Number of %s sentences (%s): %d\n",
		s.RawPairs, s.CleanPairs, s.Removed,
		s.SourceLang, s.SourcePath, s.SourceLines,
		s.TargetLang, s.TargetPath, s.TargetLines)
	return err
}
