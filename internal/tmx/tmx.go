// Package tmx projects a TMX translation memory onto a two-column,
// tab-separated parallel corpus.
package tmx

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"github.com/BoFFire/kabyliner/internal"
)

// namespaceXML is the namespace bound to the reserved "xml" prefix. It is
// never declared in documents, so etree cannot resolve it for us.
const namespaceXML = "http://www.w3.org/XML/1998/namespace"

// Stats summarises one extraction.
type Stats struct {
	// Units is the number of <tu> elements seen.
	Units int
	// Pairs is the number of rows written after the header.
	Pairs int
}

// ExtractFile reads the TMX document at tmxPath and writes the tabular corpus
// for srcLang and tgtLang to tsvPath.
func ExtractFile(tmxPath, tsvPath, srcLang, tgtLang string, logger *log.Logger) (stats Stats, err error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[extract] [start] %s\n", tmxPath)

	in, err := os.Open(tmxPath)
	if err != nil {
		return stats, fmt.Errorf("failed to open %s: %w", tmxPath, err)
	}
	defer in.Close()

	pairs, units, err := ReadPairs(in, srcLang, tgtLang)
	if err != nil {
		return stats, fmt.Errorf("failed to parse %s: %w", tmxPath, err)
	}
	stats.Units = units

	if err := os.MkdirAll(filepath.Dir(tsvPath), 0755); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.Create(tsvPath)
	if err != nil {
		return stats, fmt.Errorf("failed to create %s: %w", tsvPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", tsvPath, cerr)
		}
	}()

	w := bufio.NewWriter(out)
	if err := WriteCorpus(w, srcLang, tgtLang, pairs); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", tsvPath, err)
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", tsvPath, err)
	}
	stats.Pairs = len(pairs)

	logger.Printf("[extract] [status=ok] [%d unit(s), %d pair(s)] %s\n", stats.Units, stats.Pairs, tsvPath)
	return stats, nil
}

// ReadPairs parses a TMX document and returns the pairs for srcLang and
// tgtLang in document order, along with the number of translation units seen.
// Units lacking either language contribute nothing.
func ReadPairs(r io.Reader, srcLang, tgtLang string) ([]internal.Pair, int, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, 0, err
	}

	root := doc.Root()
	if root == nil {
		return nil, 0, fmt.Errorf("document has no root element")
	}
	m := newMatcher(root)

	var pairs []internal.Pair
	units := 0
	for _, tu := range m.findAll(root, "tu") {
		units++
		if p, ok := m.pair(tu, srcLang, tgtLang); ok {
			pairs = append(pairs, p)
		}
	}
	return pairs, units, nil
}

// WriteCorpus writes the "src\ttgt" header followed by one row per pair.
// Tabs or newlines inside the texts are written as-is.
func WriteCorpus(w io.Writer, srcLang, tgtLang string, pairs []internal.Pair) error {
	if _, err := fmt.Fprintf(w, "%s\t%s\n", srcLang, tgtLang); err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", p.Source, p.Target); err != nil {
			return err
		}
	}
	return nil
}

// matcher compares elements by namespace URI and local name. The namespace
// is taken from the root once, so documents with and without a default
// namespace are walked the same way.
type matcher struct {
	space string
}

func newMatcher(root *etree.Element) matcher {
	return matcher{space: root.NamespaceURI()}
}

func (m matcher) is(e *etree.Element, local string) bool {
	return e.Tag == local && e.NamespaceURI() == m.space
}

// findAll returns every descendant of root named local, in document order.
func (m matcher) findAll(root *etree.Element, local string) []*etree.Element {
	var found []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if m.is(c, local) {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(root)
	return found
}

// first returns the first direct child of e named local, or nil.
func (m matcher) first(e *etree.Element, local string) *etree.Element {
	for _, c := range e.ChildElements() {
		if m.is(c, local) {
			return c
		}
	}
	return nil
}

func (m matcher) pair(tu *etree.Element, srcLang, tgtLang string) (internal.Pair, bool) {
	texts := map[string][]string{srcLang: nil, tgtLang: nil}

	for _, tuv := range tu.ChildElements() {
		if !m.is(tuv, "tuv") {
			continue
		}
		lang := xmlLang(tuv)
		if lang != srcLang && lang != tgtLang {
			continue
		}
		seg := m.first(tuv, "seg")
		if seg == nil {
			continue
		}
		if text := strings.TrimSpace(innerText(seg)); text != "" {
			texts[lang] = append(texts[lang], text)
		}
	}

	if len(texts[srcLang]) == 0 || len(texts[tgtLang]) == 0 {
		return internal.Pair{}, false
	}
	return internal.Pair{
		Source: strings.Join(texts[srcLang], " "),
		Target: strings.Join(texts[tgtLang], " "),
	}, true
}

// xmlLang returns the xml:lang attribute of e. A bare lang attribute does not count.
func xmlLang(e *etree.Element) string {
	for _, a := range e.Attr {
		if a.Key != "lang" {
			continue
		}
		if a.Space == "xml" || (a.Space != "" && a.NamespaceURI() == namespaceXML) {
			return a.Value
		}
	}
	return ""
}

// innerText concatenates all character data below e, including text inside
// inline markup such as <bpt>, <ph> or <hi>.
func innerText(e *etree.Element) string {
	var buffer bytes.Buffer
	innerTextRecursive(e, &buffer)
	return buffer.String()
}

func innerTextRecursive(e *etree.Element, buffer *bytes.Buffer) {
	for _, c := range e.Child {
		switch t := c.(type) {
		case *etree.Element:
			innerTextRecursive(t, buffer)
		case *etree.CharData:
			buffer.WriteString(t.Data)
		}
	}
}
