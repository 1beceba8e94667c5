package wavmeta

import (
	"bytes"
	"testing"

	"github.com/beevik/etree"
	"github.com/go-audio/riff"
)

func discardLogf(string, ...any) {}

func TestExtractIXMLSynonyms(t *testing.T) {
	tests := []struct {
		name  string
		xml   string
		field string
		want  string
	}{
		{"show from SHOW", `<X><SHOW>The Show</SHOW></X>`, "Show", "The Show"},
		{"show from PROGRAM", `<X><PROGRAM>The Program</PROGRAM></X>`, "Show", "The Program"},
		{"show from PROJECT", `<X><PROJECT>The Project</PROJECT></X>`, "Show", "The Project"},
		{"scene from SCENE", `<X><SCENE>5A</SCENE></X>`, "Scene", "5A"},
		{"scene from nested BWF_SCENE", `<BWFXML><BWFCORE><BWF_SCENE>7B</BWF_SCENE></BWFCORE></BWFXML>`, "Scene", "7B"},
		{"take from TAKE", `<X><TAKE>12</TAKE></X>`, "Take", "12"},
		{"take from nested BWF_TAKE", `<BWFXML><BWFCORE><BWF_TAKE>3</BWF_TAKE></BWFCORE></BWFXML>`, "Take", "3"},
		{"category from TYPE", `<X><TYPE>SFX</TYPE></X>`, "Category", "SFX"},
		{"subcategory from SUBTYPE", `<X><SUBTYPE>DOOR</SUBTYPE></X>`, "Subcategory", "DOOR"},
		{"note from COMMENTS", `<X><COMMENTS>too much wind</COMMENTS></X>`, "Note", "too much wind"},
		{"wildtrack from WILD_TRACK", `<X><WILD_TRACK>TRUE</WILD_TRACK></X>`, "Wildtrack", "TRUE"},
		{"circled from CIRCLED", `<X><CIRCLED>TRUE</CIRCLED></X>`, "Circled", "TRUE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecord("test.wav")
			extractIXML(&rec, []byte(tt.xml), discardLogf)

			if got := rec.Get(tt.field); got != tt.want {
				t.Fatalf("%s=%q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestExtractIXMLFirstSynonymWins(t *testing.T) {
	xml := `<X><SHOW>primary</SHOW><PROGRAM>secondary</PROGRAM></X>`

	rec := newRecord("test.wav")
	extractIXML(&rec, []byte(xml), discardLogf)

	if rec.Show != "primary" {
		t.Fatalf("Show=%q, want %q", rec.Show, "primary")
	}
}

func TestExtractIXMLDoesNotOverwrite(t *testing.T) {
	rec := newRecord("test.wav")
	rec.Scene = "already set"

	extractIXML(&rec, []byte(`<X><SCENE>other</SCENE></X>`), discardLogf)

	if rec.Scene != "already set" {
		t.Fatalf("Scene=%q, expected existing value to win", rec.Scene)
	}
}

func TestExtractIXMLNonXMLPayload(t *testing.T) {
	rec := newRecord("test.wav")

	extractIXML(&rec, []byte("no delimiters here"), discardLogf)
	extractIXML(&rec, []byte("<BWFXML><SCENE>broken"), discardLogf)
	extractIXML(&rec, nil, discardLogf)

	if rec.Scene != "" {
		t.Fatalf("Scene=%q, want empty", rec.Scene)
	}
}

func TestDecodeIXMLChunkTrimsPadding(t *testing.T) {
	payload := append([]byte(`<BWFXML><TAKE>1</TAKE></BWFXML>`), 0, 0, 0)
	chnk := &riff.Chunk{ID: CIDIXML, Size: len(payload), R: bytes.NewReader(payload)}

	dec := NewDecoder(bytes.NewReader(nil))

	err := DecodeIXMLChunk(dec, chnk)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if dec.Metadata == nil || len(dec.Metadata.IXML) == 0 {
		t.Fatalf("expected the iXML payload to be stashed")
	}

	if bytes.HasSuffix(dec.Metadata.IXML, []byte{0}) {
		t.Fatalf("expected trailing null padding to be trimmed")
	}
}

func TestBuildIXML(t *testing.T) {
	rec := Record{
		Show:        "My Show",
		Scene:       "5.14D",
		Take:        "3",
		Category:    "AMBIENCE",
		Subcategory: "FOREST",
		Note:        "windy",
		Wildtrack:   "TRUE",
		Circled:     "TRUE",
	}

	out, err := BuildIXML(rec)
	if err != nil {
		t.Fatalf("BuildIXML failed: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("output is not parseable XML: %v", err)
	}

	checks := map[string]string{
		"//BWFXML/BWFCORE/BWF_SHOW":  "My Show",
		"//BWFXML/BWFCORE/BWF_SCENE": "5.14D",
		"//BWFXML/BWFCORE/BWF_TAKE":  "3",
		"//BWFXML/CATEGORY":          "AMBIENCE",
		"//BWFXML/SUBCATEGORY":       "FOREST",
		"//BWFXML/NOTE":              "windy",
		"//BWFXML/WILD_TRACK":        "TRUE",
		"//BWFXML/CIRCLED":           "TRUE",
	}

	for path, want := range checks {
		elem := doc.FindElement(path)
		if elem == nil {
			t.Fatalf("missing element %s", path)
		}

		if elem.Text() != want {
			t.Fatalf("%s=%q, want %q", path, elem.Text(), want)
		}
	}
}

func TestBuildIXMLSkipsEmptyFields(t *testing.T) {
	out, err := BuildIXML(Record{Scene: "1A"})
	if err != nil {
		t.Fatalf("BuildIXML failed: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("output is not parseable XML: %v", err)
	}

	if doc.FindElement("//BWF_SHOW") != nil {
		t.Fatalf("expected no BWF_SHOW element for an empty show")
	}

	if doc.FindElement("//BWF_SCENE") == nil {
		t.Fatalf("expected a BWF_SCENE element")
	}
}

func TestBuildIXMLRoundTrip(t *testing.T) {
	in := Record{Show: "My Show", Scene: "5.14D", Take: "3", Note: "windy"}

	out, err := BuildIXML(in)
	if err != nil {
		t.Fatalf("BuildIXML failed: %v", err)
	}

	rec := newRecord("test.wav")
	extractIXML(&rec, out, discardLogf)

	if rec.Show != in.Show || rec.Scene != in.Scene || rec.Take != in.Take || rec.Note != in.Note {
		t.Fatalf("round trip mismatch:\nin:  %+v\nout: %+v", in, rec)
	}
}
