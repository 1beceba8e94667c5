package wavmeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/go-audio/riff"
)

var errIXMLNilChunk = errors.New("can't decode a nil chunk")

// ixmlSynonyms maps each record field to the ordered list of iXML tag
// paths that may carry it. Recorder vendors disagree on tag names, so the
// first path with a non-empty value wins and the rest are ignored.
var ixmlSynonyms = []struct {
	field Field
	paths []string
}{
	{FieldShow, []string{"SHOW", "PROGRAM", "SERIES", "PROJECT", "TITLE", "BWF_SHOW"}},
	{FieldScene, []string{"SCENE", "BWF_SCENE", "BWFCORE/BWF_SCENE"}},
	{FieldTake, []string{"TAKE", "BWF_TAKE", "BWFCORE/BWF_TAKE"}},
	{FieldCategory, []string{"CATEGORY", "TYPE", "KIND"}},
	{FieldSubcategory, []string{"SUBCATEGORY", "SUBTYPE", "SUBKIND"}},
	{FieldNote, []string{"NOTE", "COMMENTS", "COMMENT", "DESCRIPTION"}},
	{FieldWildtrack, []string{"WILD_TRACK", "WILDTRACK"}},
	{FieldCircled, []string{"CIRCLED", "SLATE", "GOOD_TAKE"}},
}

// tagLookup resolves an iXML tag path to its text value, or "".
type tagLookup interface {
	Lookup(path string) string
}

type etreeLookup struct {
	doc *etree.Document
}

func (l etreeLookup) Lookup(path string) string {
	elem := l.doc.FindElement("//" + path)
	if elem == nil {
		return ""
	}

	return strings.TrimSpace(elem.Text())
}

func lookupFirst(src tagLookup, paths []string) string {
	for _, p := range paths {
		if v := src.Lookup(p); v != "" {
			return v
		}
	}

	return ""
}

// DecodeIXMLChunk stashes the raw iXML payload on the decoder. Parsing is
// deferred to extraction time so a malformed payload never aborts the walk.
func DecodeIXMLChunk(dec *Decoder, chnk *riff.Chunk) error {
	if chnk == nil {
		return errIXMLNilChunk
	}

	if dec == nil {
		return errNilDecoder
	}

	if chnk.ID != CIDIXML {
		chnk.Drain()
		return nil
	}

	buf := make([]byte, chnk.Size)

	n, err := io.ReadFull(chnk, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read the iXML chunk - %w", err)
	}

	chnk.Drain()

	dec.ensureMetadata()
	dec.Metadata.IXML = bytes.TrimRight(buf[:n], "\x00")
	dec.Metadata.noteSource(sourceIXML)
	dec.logf("iXML: %d byte payload", len(dec.Metadata.IXML))

	return nil
}

// extractIXML fills record gaps from an iXML payload. A payload that does
// not look like XML, or fails to parse, contributes nothing.
func extractIXML(rec *Record, payload []byte, logf func(string, ...any)) {
	if len(payload) == 0 {
		return
	}

	if !bytes.ContainsRune(payload, '<') || !bytes.ContainsRune(payload, '>') {
		logf("iXML: payload does not contain XML delimiters, skipping")
		return
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(payload); err != nil {
		logf("iXML: parse error: %v", err)
		return
	}

	src := etreeLookup{doc: doc}
	for _, syn := range ixmlSynonyms {
		value := lookupFirst(src, syn.paths)
		if rec.fill(syn.field, value) {
			logf("iXML: %s <- %q", syn.paths[0], value)
		}
	}
}

// BuildIXML serializes a record's metadata fields into a BWFXML document.
// Elements are emitted only for non-empty fields.
func BuildIXML(rec Record) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("BWFXML")
	core := root.CreateElement("BWFCORE")

	setIf := func(parent *etree.Element, tag, value string) {
		if value == "" {
			return
		}

		parent.CreateElement(tag).SetText(value)
	}

	setIf(core, "BWF_SHOW", rec.Show)
	setIf(core, "BWF_SCENE", rec.Scene)
	setIf(core, "BWF_TAKE", rec.Take)

	setIf(root, "CATEGORY", rec.Category)
	setIf(root, "SUBCATEGORY", rec.Subcategory)
	setIf(root, "NOTE", rec.Note)
	setIf(root, "WILD_TRACK", rec.Wildtrack)
	setIf(root, "CIRCLED", rec.Circled)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize iXML document: %w", err)
	}

	return out, nil
}
