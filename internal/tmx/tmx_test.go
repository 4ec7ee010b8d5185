package tmx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BoFFire/kabyliner/internal"
)

const plainTMX = `<?xml version="1.0" encoding="UTF-8"?>
<tmx version="1.4">
  <header srclang="en" datatype="plaintext"/>
  <body>
    <tu>
      <tuv xml:lang="en"><seg>Hello</seg></tuv>
      <tuv xml:lang="kab"><seg>Azul</seg></tuv>
    </tu>
  </body>
</tmx>`

func extract(t *testing.T, doc string) ([]internal.Pair, int) {
	t.Helper()
	pairs, units, err := ReadPairs(strings.NewReader(doc), "en", "kab")
	if err != nil {
		t.Fatalf("ReadPairs failed: %v", err)
	}
	return pairs, units
}

func TestExtractFile_HelloAzul(t *testing.T) {
	dir := t.TempDir()
	tmxPath := filepath.Join(dir, "tm.tmx")
	tsvPath := filepath.Join(dir, "out", "corpus.tsv")
	if err := os.WriteFile(tmxPath, []byte(plainTMX), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := ExtractFile(tmxPath, tsvPath, "en", "kab", nil)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if stats.Units != 1 || stats.Pairs != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	got, err := os.ReadFile(tsvPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "en\tkab\nHello\tAzul\n"
	if string(got) != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReadPairs_NamespacedMatchesPlain(t *testing.T) {
	defaultNS := strings.Replace(plainTMX, `<tmx version="1.4">`, `<tmx xmlns="http://www.lisa.org/tmx14" version="1.4">`, 1)
	prefixed := `<?xml version="1.0"?>
<t:tmx xmlns:t="http://www.lisa.org/tmx14" version="1.4">
  <t:body>
    <t:tu>
      <t:tuv xml:lang="en"><t:seg>Hello</t:seg></t:tuv>
      <t:tuv xml:lang="kab"><t:seg>Azul</t:seg></t:tuv>
    </t:tu>
  </t:body>
</t:tmx>`

	want, _ := extract(t, plainTMX)
	for name, doc := range map[string]string{"default": defaultNS, "prefixed": prefixed} {
		t.Run(name, func(t *testing.T) {
			got, units := extract(t, doc)
			if units != 1 {
				t.Errorf("expected 1 unit, got %d", units)
			}
			if len(got) != 1 || got[0] != want[0] {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestReadPairs_ForeignNamespaceIgnored(t *testing.T) {
	doc := `<tmx xmlns="urn:tmx" xmlns:o="urn:other">
  <body>
    <o:tu>
      <o:tuv xml:lang="en"><o:seg>Hello</o:seg></o:tuv>
      <o:tuv xml:lang="kab"><o:seg>Azul</o:seg></o:tuv>
    </o:tu>
  </body>
</tmx>`
	pairs, units := extract(t, doc)
	if units != 0 || len(pairs) != 0 {
		t.Errorf("elements outside the root namespace should be skipped, got %d units %v", units, pairs)
	}
}

func TestReadPairs_InlineMarkupFlattened(t *testing.T) {
	doc := `<tmx><body><tu>
  <tuv xml:lang="en"><seg>Click <bpt i="1">&lt;b&gt;</bpt>Save<ept i="1">&lt;/b&gt;</ept> now</seg></tuv>
  <tuv xml:lang="kab"><seg>  Sit <hi>ɣef</hi> Sekles  </seg></tuv>
</tu></body></tmx>`

	pairs, _ := extract(t, doc)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Source != "Click <b>Save</b> now" {
		t.Errorf("unexpected source %q", pairs[0].Source)
	}
	if pairs[0].Target != "Sit ɣef Sekles" {
		t.Errorf("unexpected target %q", pairs[0].Target)
	}
}

func TestReadPairs_MultipleSegmentsJoined(t *testing.T) {
	doc := `<tmx><body><tu>
  <tuv xml:lang="en"><seg>One file</seg></tuv>
  <tuv xml:lang="en"><seg>%d files</seg></tuv>
  <tuv xml:lang="kab"><seg>Yiwen ufaylu</seg></tuv>
  <tuv xml:lang="kab"><seg>%d yifuyla</seg></tuv>
  <tuv xml:lang="fr"><seg>Un fichier</seg></tuv>
</tu></body></tmx>`

	pairs, _ := extract(t, doc)
	want := internal.Pair{Source: "One file %d files", Target: "Yiwen ufaylu %d yifuyla"}
	if len(pairs) != 1 || pairs[0] != want {
		t.Errorf("expected %v, got %v", want, pairs)
	}
}

func TestReadPairs_DropsIncompleteUnits(t *testing.T) {
	doc := `<tmx><body>
  <tu><tuv xml:lang="en"><seg>Only English</seg></tuv></tu>
  <tu><tuv xml:lang="en"><seg>Empty Kabyle</seg></tuv><tuv xml:lang="kab"><seg>   </seg></tuv></tu>
  <tu><tuv xml:lang="en"><seg>No seg</seg></tuv><tuv xml:lang="kab"><note>x</note></tuv></tu>
  <tu><tuv lang="en"><seg>Plain lang</seg></tuv><tuv xml:lang="kab"><seg>Ur ittwaḥsab ara</seg></tuv></tu>
  <tu><tuv xml:lang="en"><seg>Yes</seg></tuv><tuv xml:lang="kab"><seg>Ih</seg></tuv></tu>
</body></tmx>`

	pairs, units := extract(t, doc)
	if units != 5 {
		t.Errorf("expected 5 units, got %d", units)
	}
	want := []internal.Pair{{Source: "Yes", Target: "Ih"}}
	if len(pairs) != 1 || pairs[0] != want[0] {
		t.Errorf("expected %v, got %v", want, pairs)
	}
}

func TestReadPairs_EveryRowHasTwoNonEmptyFields(t *testing.T) {
	doc := `<tmx><body>
  <tu><tuv xml:lang="en"><seg>a</seg></tuv><tuv xml:lang="kab"><seg>b</seg></tuv></tu>
  <tu><tuv xml:lang="en"><seg> </seg></tuv><tuv xml:lang="kab"><seg>c</seg></tuv></tu>
  <tu><tuv xml:lang="kab"><seg>d</seg></tuv><tuv xml:lang="en"><seg>e</seg></tuv></tu>
</body></tmx>`

	pairs, _ := extract(t, doc)
	var buf bytes.Buffer
	if err := WriteCorpus(&buf, "en", "kab", pairs); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if lines[0] != "en\tkab" {
		t.Fatalf("header should come first, got %q", lines[0])
	}
	for i, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		if len(fields) != 2 || strings.TrimSpace(fields[0]) == "" || strings.TrimSpace(fields[1]) == "" {
			t.Errorf("row %d malformed: %q", i+1, line)
		}
	}
	if len(lines) != 3 {
		t.Errorf("expected header and 2 rows, got %d lines", len(lines))
	}
	// Source column always carries the source language, whatever the tuv order.
	if lines[2] != "e\td" {
		t.Errorf("expected %q, got %q", "e\td", lines[2])
	}
}

func TestReadPairs_Latin1Document(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<tmx><body><tu>" +
		"<tuv xml:lang=\"en\"><seg>Coffee</seg></tuv>" +
		"<tuv xml:lang=\"kab\"><seg>Caf\xe9</seg></tuv>" +
		"</tu></body></tmx>")

	pairs, _, err := ReadPairs(bytes.NewReader(doc), "en", "kab")
	if err != nil {
		t.Fatalf("ReadPairs failed: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Target != "Café" {
		t.Errorf("expected decoded target Café, got %v", pairs)
	}
}

func TestReadPairs_MalformedXML(t *testing.T) {
	_, _, err := ReadPairs(strings.NewReader(`<tmx><body><tu></body></tmx>`), "en", "kab")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadPairs_EmptyDocument(t *testing.T) {
	_, _, err := ReadPairs(strings.NewReader(""), "en", "kab")
	if err == nil {
		t.Fatal("expected error for a document without root")
	}
}

func TestExtractFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := ExtractFile(filepath.Join(dir, "missing.tmx"), filepath.Join(dir, "out.tsv"), "en", "kab", nil)
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.tsv")); !os.IsNotExist(statErr) {
		t.Error("output should not be created when input is missing")
	}
}
