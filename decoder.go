package wavmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	// CIDList is the chunk ID for a LIST chunk.
	CIDList = [4]byte{'L', 'I', 'S', 'T'}
	// CIDInfo is the list type for INFO sub-chunks inside a LIST chunk.
	CIDInfo = []byte{'I', 'N', 'F', 'O'}
	// CIDInfoChunk is a bare INFO chunk ID, written by some tools without
	// the enclosing LIST container.
	CIDInfoChunk = [4]byte{'I', 'N', 'F', 'O'}
	// CIDBext is the chunk ID for the broadcast extension chunk.
	CIDBext = [4]byte{'b', 'e', 'x', 't'}
	// CIDIXML is the chunk ID for the iXML production metadata chunk.
	CIDIXML = [4]byte{'i', 'X', 'M', 'L'}

	// ErrPCMDataNotFound is returned when the PCM data chunk is not found.
	ErrPCMDataNotFound = errors.New("PCM data not found")

	errUnhandledByteDepth     = errors.New("unhandled byte depth")
	errUnhandledFloatBitDepth = errors.New("unhandled float bit depth")
	errUnsupportedWavFormat   = errors.New("unsupported wav format")
)

// Decoder walks the chunks of a RIFF/WAVE container, collecting metadata
// chunks through a registry of typed handlers, preserving unknown chunks,
// and giving access to the PCM data for rewrite flows.
type Decoder struct {
	r      io.ReadSeeker
	parser *riff.Parser
	chunks *ChunkRegistry

	NumChans   uint16
	BitDepth   uint16
	SampleRate uint32

	AvgBytesPerSec uint32
	WavAudioFormat uint16
	FmtChunk       *FmtChunk

	// DebugOut receives diagnostic chunk dumps when non-nil. It is
	// observability only and never changes decode behavior.
	DebugOut io.Writer

	err             error
	PCMSize         int
	pcmDataAccessed bool
	PCMChunk        *riff.Chunk
	// Metadata collects the metadata chunks of the current file.
	Metadata *Metadata
	// UnknownChunks stores non-core chunks for optional round-trip writing.
	UnknownChunks []RawChunk

	preambleRead      bool
	padPending        bool
	unknownChunkOrder int
}

// NewDecoder creates a decoder for the passed wav reader.
// Note that the reader doesn't get rewinded as the container is processed.
func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{
		r:      r,
		parser: riff.New(r),
		chunks: newDefaultChunkRegistry(),
	}
}

// Err returns the first non-EOF error that was encountered by the Decoder.
func (d *Decoder) Err() error {
	if errors.Is(d.err, io.EOF) {
		return nil
	}

	return d.err
}

func (d *Decoder) logf(format string, args ...any) {
	if d == nil || d.DebugOut == nil {
		return
	}

	fmt.Fprintf(d.DebugOut, format+"\n", args...)
}

func (d *Decoder) ensureMetadata() {
	if d.Metadata == nil {
		d.Metadata = &Metadata{}
	}
}

// readPreamble validates the 12-byte RIFF/WAVE header. Safe to call
// multiple times.
func (d *Decoder) readPreamble() error {
	if d.preambleRead {
		return nil
	}

	id, size, err := d.parser.IDnSize()
	if err != nil {
		return fmt.Errorf("failed to read the RIFF header: %w", err)
	}

	if id != riff.RiffID {
		return fmt.Errorf("%q - %w", id, riff.ErrFmtNotSupported)
	}

	d.parser.ID = id
	d.parser.Size = size

	err = binary.Read(d.r, binary.BigEndian, &d.parser.Format)
	if err != nil {
		return fmt.Errorf("failed to read the container format: %w", err)
	}

	if d.parser.Format != riff.WavFormatID {
		return fmt.Errorf("%q - %w", d.parser.Format, riff.ErrFmtNotSupported)
	}

	d.preambleRead = true

	return nil
}

// NextChunk returns the next available chunk.
func (d *Decoder) NextChunk() (*riff.Chunk, error) {
	if err := d.readPreamble(); err != nil {
		return nil, err
	}

	// All RIFF chunks must be word aligned: an odd-sized chunk is followed
	// by a zero pad byte the declared size does not include. The pad byte
	// is skipped here so it never leaks into the previous chunk's payload.
	if d.padPending {
		d.padPending = false

		if _, err := io.CopyN(io.Discard, d.r, 1); err != nil {
			return nil, fmt.Errorf("error reading chunk header - %w", err)
		}
	}

	id, size, err := d.parser.IDnSize()
	if err != nil {
		return nil, fmt.Errorf("error reading chunk header - %w", err)
	}

	d.padPending = size%2 == 1

	chnk := &riff.Chunk{
		ID:   id,
		Size: int(size),
		R:    io.LimitReader(d.r, int64(size)),
	}

	return chnk, nil
}

// ReadMetadata walks every chunk of the container and populates Metadata
// and UnknownChunks. The walk terminates at end of stream or on a truncated
// chunk header, which is normal end-of-chunks termination, not an error.
// A chunk whose declared size overruns the file stops the walk without
// failing the read. This method is safe to call multiple times.
func (d *Decoder) ReadMetadata() {
	if d.Metadata != nil {
		return
	}

	if d.err = d.readPreamble(); d.err != nil {
		return
	}

	d.ensureMetadata()

	seenData := false

	for {
		chunk, err := d.NextChunk()
		if err != nil {
			if !isStreamEnd(err) {
				d.err = err
			}

			return
		}

		d.unknownChunkOrder++
		d.logf("chunk %s (%d bytes)", string(chunk.ID[:]), chunk.Size)

		switch chunk.ID {
		case riff.FmtID:
			if err := d.decodeFmtChunk(chunk); err != nil {
				d.logf("fmt chunk decode failed: %v", err)
				d.err = err
			}

			chunk.Drain()
		case riff.DataFormatID:
			seenData = true
			d.PCMSize = chunk.Size

			chunk.Drain()
		default:
			handled, err := d.chunks.Decode(d, chunk)
			if err != nil {
				// A malformed metadata chunk must not abort extraction of
				// the others.
				d.logf("chunk %s decode failed: %v", chunk.ID, err)
				chunk.Drain()

				continue
			}

			if !handled {
				d.captureUnknownChunk(chunk, !seenData)
			}
		}
	}
}

// FwdToPCM forwards the underlying reader until the start of the PCM chunk.
func (d *Decoder) FwdToPCM() error {
	if d == nil {
		return ErrPCMDataNotFound
	}

	if d.err = d.readPreamble(); d.err != nil {
		return d.err
	}

	for {
		chunk, err := d.NextChunk()
		if err != nil {
			d.err = err
			return ErrPCMDataNotFound
		}

		switch chunk.ID {
		case riff.FmtID:
			if err := d.decodeFmtChunk(chunk); err != nil {
				d.err = err
				return d.err
			}

			chunk.Drain()
		case riff.DataFormatID:
			d.PCMSize = chunk.Size
			d.PCMChunk = chunk
			d.pcmDataAccessed = true

			return nil
		default:
			chunk.Drain()
		}
	}
}

// WasPCMAccessed returns positively if the PCM data was previously accessed.
func (d *Decoder) WasPCMAccessed() bool {
	if d == nil {
		return false
	}

	return d.pcmDataAccessed
}

// FullPCMBuffer decodes the entire PCM data into memory.
func (d *Decoder) FullPCMBuffer() (*audio.Float32Buffer, error) {
	if !d.WasPCMAccessed() {
		err := d.FwdToPCM()
		if err != nil {
			return nil, d.err
		}
	}

	if d.PCMChunk == nil {
		return nil, ErrPCMChunkNotFound
	}

	format := &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}

	buf := &audio.Float32Buffer{
		Data:           make([]float32, 4096),
		Format:         format,
		SourceBitDepth: int(d.BitDepth),
	}

	bPerSample := bytesPerSample(int(d.BitDepth))
	sampleBufData := make([]byte, bPerSample)

	decodeF, err := sampleDecodeFloat32Func(int(d.BitDepth), d.effectiveFormatTag())
	if err != nil {
		return nil, fmt.Errorf("could not get sample decode func %w", err)
	}

	i := 0
	for err == nil {
		buf.Data[i], err = decodeF(d.PCMChunk, sampleBufData)
		if err != nil {
			break
		}

		i++
		if i == len(buf.Data) {
			buf.Data = append(buf.Data, make([]float32, 4096)...)
		}
	}

	buf.Data = buf.Data[:i]

	if errors.Is(err, io.EOF) {
		err = nil
	}

	return buf, err
}

// Format returns the audio format of the decoded content.
func (d *Decoder) Format() *audio.Format {
	if d == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
}

func (d *Decoder) effectiveFormatTag() uint16 {
	if d.FmtChunk != nil {
		return d.FmtChunk.EffectiveFormatTag()
	}

	return d.WavAudioFormat
}

func (d *Decoder) decodeFmtChunk(chunk *riff.Chunk) error {
	if chunk == nil {
		return errNilChunk
	}

	fmtChunk := &FmtChunk{}

	for _, field := range []struct {
		dst  any
		name string
	}{
		{&fmtChunk.FormatTag, "wav format"},
		{&fmtChunk.NumChannels, "channels"},
		{&fmtChunk.SampleRate, "sample rate"},
		{&fmtChunk.AvgBytesPerSec, "avg bytes/sec"},
		{&fmtChunk.BlockAlign, "block align"},
		{&fmtChunk.BitsPerSample, "bit depth"},
	} {
		if err := chunk.ReadLE(field.dst); err != nil {
			return fmt.Errorf("failed to read %s: %w", field.name, err)
		}
	}

	d.FmtChunk = fmtChunk
	d.NumChans = fmtChunk.NumChannels
	d.BitDepth = fmtChunk.BitsPerSample
	d.SampleRate = fmtChunk.SampleRate
	d.AvgBytesPerSec = fmtChunk.AvgBytesPerSec
	d.WavAudioFormat = fmtChunk.FormatTag

	if chunk.Size <= 16 {
		return nil
	}

	var extraSize uint16

	if err := chunk.ReadLE(&extraSize); err != nil {
		return fmt.Errorf("failed to read fmt extension size: %w", err)
	}

	fmtChunk.ExtraData = make([]byte, extraSize)
	if extraSize > 0 {
		if err := chunk.ReadLE(&fmtChunk.ExtraData); err != nil {
			return fmt.Errorf("failed to read fmt extension data: %w", err)
		}
	}

	if fmtChunk.FormatTag != wavFormatExtensible || extraSize < 22 {
		return nil
	}

	ext := &FmtExtensible{}
	ext.ValidBitsPerSample = binary.LittleEndian.Uint16(fmtChunk.ExtraData[0:2])
	ext.ChannelMask = binary.LittleEndian.Uint32(fmtChunk.ExtraData[2:6])
	copy(ext.SubFormat[:], fmtChunk.ExtraData[6:22])

	if len(fmtChunk.ExtraData) > 22 {
		ext.ExtraData = append(ext.ExtraData, fmtChunk.ExtraData[22:]...)
	}

	fmtChunk.Extensible = ext
	d.WavAudioFormat = fmtChunk.EffectiveFormatTag()

	return nil
}

func (d *Decoder) captureUnknownChunk(chunk *riff.Chunk, beforeData bool) {
	if d == nil || chunk == nil {
		return
	}

	data, err := io.ReadAll(chunk)
	if err != nil {
		d.logf("failed to read unknown chunk %s: %v", string(chunk.ID[:]), err)
		return
	}

	chunk.Drain()

	d.UnknownChunks = append(d.UnknownChunks, RawChunk{
		ID:         chunk.ID,
		Size:       uint32(len(data)),
		Data:       data,
		Order:      d.unknownChunkOrder,
		BeforeData: beforeData,
	})
}

func isStreamEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func bytesPerSample(bitDepth int) int {
	return (bitDepth-1)/8 + 1
}

// sampleDecodeFunc returns a function that can be used to convert
// a byte range into an int value based on the amount of bits used per sample.
// Note that 8bit samples are unsigned, all other values are signed.
func sampleDecodeFunc(bitsPerSample int) (func(io.Reader, []byte) (int, error), error) {
	// NOTE: WAV PCM data is stored using little-endian
	switch {
	case bitsPerSample == 8:
		// 8bit values are unsigned
		return func(r io.Reader, buf []byte) (int, error) {
			_, err := r.Read(buf[:1])
			return int(buf[0]), err
		}, nil
	case bitsPerSample > 8 && bitsPerSample <= 16:
		return func(r io.Reader, buf []byte) (int, error) {
			_, err := r.Read(buf[:2])
			return int(int16(binary.LittleEndian.Uint16(buf[:2]))), err
		}, nil
	case bitsPerSample > 16 && bitsPerSample <= 24:
		return func(r io.Reader, buf []byte) (int, error) {
			_, err := r.Read(buf[:3])
			if err != nil {
				return 0, fmt.Errorf("failed to read 24-bit sample: %w", err)
			}

			return int(audio.Int24LETo32(buf[:3])), nil
		}, nil
	case bitsPerSample > 24 && bitsPerSample <= 32:
		return func(r io.Reader, buf []byte) (int, error) {
			_, err := r.Read(buf[:4])
			return int(int32(binary.LittleEndian.Uint32(buf[:4]))), err
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnhandledByteDepth, bitsPerSample)
	}
}

// sampleDecodeFloat32Func returns a function that can be used to convert
// a byte range into a normalized float32 value.
func sampleDecodeFloat32Func(bitsPerSample int, wavFormat uint16) (func(io.Reader, []byte) (float32, error), error) {
	if wavFormat == wavFormatIEEEFloat {
		switch bitsPerSample {
		case 32:
			return func(r io.Reader, buf []byte) (float32, error) {
				_, err := r.Read(buf[:4])
				if err != nil {
					return 0, fmt.Errorf("failed to read 32-bit float sample: %w", err)
				}

				value := math.Float32frombits(binary.LittleEndian.Uint32(buf[:4]))

				return clampFloat32(value, -1, 1), nil
			}, nil
		case 64:
			return func(r io.Reader, buf []byte) (float32, error) {
				_, err := r.Read(buf[:8])
				if err != nil {
					return 0, fmt.Errorf("failed to read 64-bit float sample: %w", err)
				}

				value := math.Float64frombits(binary.LittleEndian.Uint64(buf[:8]))

				return clampFloat32(float32(value), -1, 1), nil
			}, nil
		default:
			return nil, fmt.Errorf("%w: %d", errUnhandledFloatBitDepth, bitsPerSample)
		}
	}

	if wavFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: %d", errUnsupportedWavFormat, wavFormat)
	}

	decodeInt, err := sampleDecodeFunc(bitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("failed to create int decoder: %w", err)
	}

	storageBitsPerSample := bytesPerSample(bitsPerSample) * 8

	return func(r io.Reader, buf []byte) (float32, error) {
		value, err := decodeInt(r, buf)
		if err != nil {
			return 0, fmt.Errorf("failed to decode int sample: %w", err)
		}

		return normalizePCMInt(value, storageBitsPerSample), nil
	}, nil
}
