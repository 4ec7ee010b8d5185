// Package splitter fans a cleaned two-column corpus out into one plain-text
// file per language, aligned line by line.
package splitter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BoFFire/kabyliner/internal"
)

// MalformedRowError reports a data row that does not split into two fields.
// The cleaner guarantees row shape, so this signals a corpus that skipped it.
type MalformedRowError struct {
	Line   int
	Fields int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("line %d: expected 2 fields, got %d", e.Line, e.Fields)
}

func (e *MalformedRowError) Unwrap() error {
	return internal.ErrMalformedRow
}

// SplitFile writes column one of the corpus at tsvPath to srcPath and column
// two to tgtPath, returning the number of rows written to each.
func SplitFile(tsvPath, srcPath, tgtPath string) (rows int, err error) {
	in, err := os.Open(tsvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", tsvPath, err)
	}
	defer in.Close()

	srcOut, err := create(srcPath)
	if err != nil {
		return 0, err
	}
	defer closeInto(srcOut, &err)

	tgtOut, err := create(tgtPath)
	if err != nil {
		return 0, err
	}
	defer closeInto(tgtOut, &err)

	srcW := bufio.NewWriter(srcOut)
	tgtW := bufio.NewWriter(tgtOut)

	rows, err = Split(in, srcW, tgtW)
	if err != nil {
		return rows, fmt.Errorf("%s: %w", tsvPath, err)
	}
	if err := srcW.Flush(); err != nil {
		return rows, fmt.Errorf("failed to write %s: %w", srcPath, err)
	}
	if err := tgtW.Flush(); err != nil {
		return rows, fmt.Errorf("failed to write %s: %w", tgtPath, err)
	}
	return rows, nil
}

// Split skips the header of r and writes each row's fields to src and tgt.
func Split(r io.Reader, src, tgt io.Writer) (int, error) {
	br := bufio.NewReader(r)
	rows := 0

	for line := 1; ; line++ {
		row, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return rows, err
		}
		if row == "" && err == io.EOF {
			return rows, nil
		}
		atEOF := err == io.EOF

		if line > 1 {
			row = strings.TrimSuffix(strings.TrimSuffix(row, "\n"), "\r")
			fields := strings.Split(row, "\t")
			if len(fields) != 2 {
				return rows, &MalformedRowError{Line: line, Fields: len(fields)}
			}
			if _, err := io.WriteString(src, fields[0]+"\n"); err != nil {
				return rows, err
			}
			if _, err := io.WriteString(tgt, fields[1]+"\n"); err != nil {
				return rows, err
			}
			rows++
		}

		if atEOF {
			return rows, nil
		}
	}
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func closeInto(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close %s: %w", f.Name(), cerr)
	}
}
