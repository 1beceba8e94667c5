package wavmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type testChunk struct {
	id   string
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, data: payload})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}

func parseWavChunksFromFile(path string) ([]testChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseWavChunks(data)
}

func findChunk(chunks []testChunk, id string) (*testChunk, int) {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i], i
		}
	}

	return nil, -1
}

// buildWav assembles a RIFF/WAVE byte stream from the passed chunks,
// applying the word-alignment padding rule.
func buildWav(chunks ...testChunk) []byte {
	var body bytes.Buffer

	for _, ch := range chunks {
		body.WriteString(ch.id)
		binary.Write(&body, binary.LittleEndian, uint32(len(ch.data)))
		body.Write(ch.data)

		if len(ch.data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer

	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+body.Len()))
	out.WriteString("WAVE")
	out.Write(body.Bytes())

	return out.Bytes()
}

func fmtChunkPayload(formatTag, numChans uint16, sampleRate uint32, bitDepth uint16) []byte {
	blockAlign := numChans * bitDepth / 8

	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, formatTag)
	binary.Write(&buf, binary.LittleEndian, numChans)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, sampleRate*uint32(blockAlign))
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, bitDepth)

	return buf.Bytes()
}

func pcm16MonoFmtChunk() testChunk {
	return testChunk{id: "fmt ", data: fmtChunkPayload(1, 1, 48000, 16)}
}

// bextChunkPayload lays out the fixed 602-byte bext block with the passed
// free-text fields.
func bextChunkPayload(description, originator, reference string) []byte {
	buf := make([]byte, 602)

	copy(buf[0:256], description)
	copy(buf[256:288], originator)
	copy(buf[288:320], reference)

	return buf
}

func infoListPayload(records ...[2]string) []byte {
	var buf bytes.Buffer

	buf.WriteString("INFO")

	for _, rec := range records {
		buf.WriteString(rec[0])
		binary.Write(&buf, binary.LittleEndian, uint32(len(rec[1])+1))
		buf.WriteString(rec[1])
		buf.WriteByte(0)

		if (len(rec[1])+1)%2 == 1 {
			buf.WriteByte(0)
		}
	}

	return buf.Bytes()
}

func writeTempWav(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")

	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		t.Fatalf("failed to write temp wav: %v", err)
	}

	return path
}
