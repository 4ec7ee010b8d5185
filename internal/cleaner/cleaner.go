// Package cleaner drops malformed rows from a tab-separated parallel corpus.
package cleaner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BoFFire/kabyliner/internal"
)

// DefaultProgressEvery is how many rows pass between two progress lines.
const DefaultProgressEvery = 1000

// Stats holds the row tallies of one cleaning pass. Kept+Removed is the
// number of rows after the header.
type Stats struct {
	Kept    int
	Removed int
}

// Options controls progress output.
type Options struct {
	Verbose       bool
	ProgressEvery int
	Logger        *log.Logger
}

// CleanFile filters the corpus at inPath into outPath. The first row must be
// the header "srcLang\ttgtLang"; it is copied unchanged. outPath is replaced
// only when cleaning succeeds, so a rejected input keeps the previous output.
func CleanFile(inPath, outPath, srcLang, tgtLang string, opts Options) (stats Stats, err error) {
	if _, err := os.Stat(inPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, fmt.Errorf("%w: %s", internal.ErrFileNotFound, inPath)
		}
		return stats, fmt.Errorf("failed to stat %s: %w", inPath, err)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return stats, fmt.Errorf("failed to open %s: %w", inPath, err)
	}
	defer in.Close()

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outPath)+".*.part")
	if err != nil {
		return stats, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	stats, err = Clean(in, w, srcLang, tgtLang, opts)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", inPath, err)
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	if err := tmp.Close(); err != nil {
		return stats, fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return stats, fmt.Errorf("failed to set permissions on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return stats, fmt.Errorf("failed to move %s into place: %w", outPath, err)
	}
	committed = true
	return stats, nil
}

// Clean copies the header and every valid row from r to w. A row is valid
// when it has exactly two tab-separated fields that are both non-blank.
func Clean(r io.Reader, w io.Writer, srcLang, tgtLang string, opts Options) (Stats, error) {
	var stats Stats

	every := opts.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	br := bufio.NewReader(r)

	header, ok, err := readRow(br)
	if err != nil {
		return stats, err
	}
	if !ok {
		return stats, internal.ErrEmptyInput
	}
	if fields := strings.Split(header, "\t"); len(fields) != 2 || fields[0] != srcLang || fields[1] != tgtLang {
		return stats, fmt.Errorf("%w: expected header %q, got %q", internal.ErrInvalidFormat, srcLang+"\t"+tgtLang, header)
	}
	if _, err := io.WriteString(w, header+"\n"); err != nil {
		return stats, err
	}

	for {
		row, ok, err := readRow(br)
		if err != nil {
			return stats, err
		}
		if !ok {
			break
		}

		if validRow(row) {
			if _, err := io.WriteString(w, row+"\n"); err != nil {
				return stats, err
			}
			stats.Kept++
		} else {
			stats.Removed++
		}

		if opts.Verbose && (stats.Kept+stats.Removed)%every == 0 {
			logger.Printf("[clean  ] [progress] [%d row(s)] kept=%d removed=%d\n", stats.Kept+stats.Removed, stats.Kept, stats.Removed)
		}
	}

	return stats, nil
}

func validRow(row string) bool {
	fields := strings.Split(row, "\t")
	if len(fields) != 2 {
		return false
	}
	return strings.TrimSpace(fields[0]) != "" && strings.TrimSpace(fields[1]) != ""
}

// readRow returns the next row without its line terminator. ok is false once
// the input is exhausted.
func readRow(br *bufio.Reader) (row string, ok bool, err error) {
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	if line == "" && err == io.EOF {
		return "", false, nil
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}
