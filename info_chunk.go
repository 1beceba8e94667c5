package wavmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// See http://bwfmetaedit.sourceforge.net/listinfo.html
var (
	markerIART = [4]byte{'I', 'A', 'R', 'T'}
	markerINAM = [4]byte{'I', 'N', 'A', 'M'}
	markerISBJ = [4]byte{'I', 'S', 'B', 'J'}
	markerICMT = [4]byte{'I', 'C', 'M', 'T'}
	markerICRD = [4]byte{'I', 'C', 'R', 'D'}
	markerICOP = [4]byte{'I', 'C', 'O', 'P'}
	markerIGNR = [4]byte{'I', 'G', 'N', 'R'}
	markerISFT = [4]byte{'I', 'S', 'F', 'T'}
	markerIKEY = [4]byte{'I', 'K', 'E', 'Y'}

	errListNilChunk = errors.New("can't decode a nil chunk")
)

// Info holds LIST/INFO text fields. Subject and Comment feed the heuristic
// extraction layer; the rest are kept so a rewrite can re-emit them.
type Info struct {
	Artist       string
	Title        string
	Subject      string
	Comment      string
	CreationDate string
	Copyright    string
	Genre        string
	Software     string
	Keywords     string
}

// DecodeInfoChunk decodes a LIST chunk holding INFO sub-records, or a bare
// INFO chunk as written by some tools. Sub-records are walked with the same
// bounds checks and even-padding rule as top-level chunks.
func DecodeInfoChunk(d *Decoder, ch *riff.Chunk) error {
	if ch == nil {
		return errListNilChunk
	}

	if d == nil {
		return errNilDecoder
	}

	if ch.ID != CIDList && ch.ID != CIDInfoChunk {
		ch.Drain()
		return nil
	}

	buf := make([]byte, ch.Size)

	n, err := io.ReadFull(ch, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read the LIST chunk - %w", err)
	}

	buf = buf[:n]
	ch.Drain()

	// A LIST chunk leads with its list type; a bare INFO chunk does not.
	if ch.ID == CIDList {
		if len(buf) < 4 || !bytes.Equal(buf[:4], CIDInfo) {
			// adtl and other list types are not metadata sources here.
			return nil
		}

		buf = buf[4:]
	}

	info := &Info{}
	decodeInfoSubRecords(buf, info, d.logf)

	d.ensureMetadata()
	d.Metadata.Info = info
	d.Metadata.noteSource(sourceInfo)

	return nil
}

func decodeInfoSubRecords(buf []byte, info *Info, logf func(string, ...any)) {
	pos := 0
	for pos+8 <= len(buf) {
		var id [4]byte

		copy(id[:], buf[pos:pos+4])
		size := int(binary.LittleEndian.Uint32(buf[pos+4 : pos+8]))
		pos += 8

		if size < 0 || pos+size > len(buf) {
			logf("INFO: sub-record %q declares %d bytes past end, stopping", id, size)
			break
		}

		text := nullTermStr(buf[pos : pos+size])

		switch id {
		case markerIART:
			info.Artist = text
		case markerINAM:
			info.Title = text
		case markerISBJ:
			info.Subject = text
		case markerICMT:
			info.Comment = text
		case markerICRD:
			info.CreationDate = text
		case markerICOP:
			info.Copyright = text
		case markerIGNR:
			info.Genre = text
		case markerISFT:
			info.Software = text
		case markerIKEY:
			info.Keywords = text
		default:
			logf("INFO: ignoring sub-record %q (%d bytes)", id, size)
		}

		pos += size
		if size%2 == 1 {
			pos++
		}
	}
}

func encodeInfoChunk(info *Info) []byte {
	if info == nil {
		return nil
	}

	buf := bytes.NewBuffer(nil)

	writeSection := func(id [4]byte, val string) {
		if val == "" {
			return
		}

		buf.Write(id[:])
		binary.Write(buf, binary.LittleEndian, uint32(len(val)+1))
		buf.Write(append([]byte(val), 0x00))

		// keep sub-records word aligned
		if (len(val)+1)%2 == 1 {
			buf.WriteByte(0x00)
		}
	}

	fields := []struct {
		marker [4]byte
		value  string
	}{
		{markerIART, info.Artist},
		{markerICMT, info.Comment},
		{markerICOP, info.Copyright},
		{markerICRD, info.CreationDate},
		{markerIGNR, info.Genre},
		{markerIKEY, info.Keywords},
		{markerINAM, info.Title},
		{markerISBJ, info.Subject},
		{markerISFT, info.Software},
	}

	for _, field := range fields {
		writeSection(field.marker, field.value)
	}

	if buf.Len() == 0 {
		return nil
	}

	return append(append([]byte(nil), CIDInfo...), buf.Bytes()...)
}
