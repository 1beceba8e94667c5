package wavmeta

import (
	"bytes"
	"testing"

	"github.com/go-audio/riff"
)

func TestDecodeInfoChunkListForm(t *testing.T) {
	payload := infoListPayload(
		[2]string{"IART", "the artist"},
		[2]string{"INAM", "track title"},
		[2]string{"ISBJ", "the subject"},
		[2]string{"ICMT", "a comment"},
		[2]string{"ICRD", "2024-03-01"},
		[2]string{"ISFT", "wavtag"},
	)

	chnk := &riff.Chunk{ID: CIDList, Size: len(payload), R: bytes.NewReader(payload)}
	dec := NewDecoder(bytes.NewReader(nil))

	err := DecodeInfoChunk(dec, chnk)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if dec.Metadata == nil || dec.Metadata.Info == nil {
		t.Fatalf("expected INFO metadata to be set")
	}

	info := dec.Metadata.Info
	if info.Artist != "the artist" {
		t.Fatalf("Artist=%q", info.Artist)
	}

	if info.Title != "track title" {
		t.Fatalf("Title=%q", info.Title)
	}

	if info.Subject != "the subject" {
		t.Fatalf("Subject=%q", info.Subject)
	}

	if info.Comment != "a comment" {
		t.Fatalf("Comment=%q", info.Comment)
	}

	if info.CreationDate != "2024-03-01" {
		t.Fatalf("CreationDate=%q", info.CreationDate)
	}

	if info.Software != "wavtag" {
		t.Fatalf("Software=%q", info.Software)
	}
}

func TestDecodeInfoChunkBareForm(t *testing.T) {
	// Some tools write the INFO sub-records in a bare INFO chunk without
	// the enclosing LIST container.
	payload := infoListPayload([2]string{"ISBJ", "bare subject"})[4:]

	chnk := &riff.Chunk{ID: CIDInfoChunk, Size: len(payload), R: bytes.NewReader(payload)}
	dec := NewDecoder(bytes.NewReader(nil))

	err := DecodeInfoChunk(dec, chnk)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if dec.Metadata == nil || dec.Metadata.Info == nil {
		t.Fatalf("expected INFO metadata to be set")
	}

	if dec.Metadata.Info.Subject != "bare subject" {
		t.Fatalf("Subject=%q", dec.Metadata.Info.Subject)
	}
}

func TestDecodeInfoChunkNonInfoList(t *testing.T) {
	// An adtl list is not a metadata source.
	payload := []byte("adtl")

	chnk := &riff.Chunk{ID: CIDList, Size: len(payload), R: bytes.NewReader(payload)}
	dec := NewDecoder(bytes.NewReader(nil))

	err := DecodeInfoChunk(dec, chnk)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if dec.Metadata != nil && dec.Metadata.Info != nil {
		t.Fatalf("expected no INFO metadata from an adtl list")
	}
}

func TestDecodeInfoChunkOverrunningSubRecord(t *testing.T) {
	// A sub-record declaring more bytes than the chunk holds stops the
	// walk but keeps what decoded before it.
	payload := infoListPayload([2]string{"ISBJ", "kept"})
	payload = append(payload, 'I', 'C', 'M', 'T', 0xff, 0xff, 0xff, 0x7f, 'x')

	chnk := &riff.Chunk{ID: CIDList, Size: len(payload), R: bytes.NewReader(payload)}
	dec := NewDecoder(bytes.NewReader(nil))

	err := DecodeInfoChunk(dec, chnk)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if dec.Metadata.Info.Subject != "kept" {
		t.Fatalf("Subject=%q, want %q", dec.Metadata.Info.Subject, "kept")
	}

	if dec.Metadata.Info.Comment != "" {
		t.Fatalf("Comment=%q, want empty", dec.Metadata.Info.Comment)
	}
}

func TestEncodeInfoChunkRoundTrip(t *testing.T) {
	in := &Info{
		Artist:   "the artist",
		Title:    "odd", // 3 chars + null = even payload
		Subject:  "subj", // 4 chars + null = odd payload, exercises padding
		Comment:  "a comment",
		Genre:    "AMBIENCE",
		Software: "wavtag",
	}

	payload := encodeInfoChunk(in)
	if len(payload) == 0 {
		t.Fatalf("expected a non-empty payload")
	}

	chnk := &riff.Chunk{ID: CIDList, Size: len(payload), R: bytes.NewReader(payload)}
	dec := NewDecoder(bytes.NewReader(nil))

	err := DecodeInfoChunk(dec, chnk)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	out := dec.Metadata.Info
	if *out != *in {
		t.Fatalf("round trip mismatch:\nin:  %+v\nout: %+v", in, out)
	}
}

func TestEncodeInfoChunkEmpty(t *testing.T) {
	if got := encodeInfoChunk(nil); got != nil {
		t.Fatalf("expected nil for nil info, got %d bytes", len(got))
	}

	if got := encodeInfoChunk(&Info{}); got != nil {
		t.Fatalf("expected nil for empty info, got %d bytes", len(got))
	}
}
