package wavmeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

var errChunkEncodeNotSupported = errors.New("chunk encode not supported")

// ChunkHandler is a typed handler for RIFF/WAV metadata chunks.
// Encode is optional and may return errChunkEncodeNotSupported.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte, listType [4]byte) bool
	Decode(d *Decoder, ch *riff.Chunk) error
	Encode(e *Encoder) error
}

// ChunkRegistry resolves chunks to handlers. Handler order matches the
// registration order, but extraction priority follows chunk encounter
// order, not registry order.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

func newDefaultChunkRegistry() *ChunkRegistry {
	// iXML first: the encode pass emits chunks in handler order, and the
	// structured iXML chunk must precede bext in the container so its
	// values outrank the bext free-text layer on readback.
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&ixmlChunkHandler{},
			&bextChunkHandler{},
			&infoChunkHandler{},
		},
	}
}

// Register appends a handler to the registry.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Decode(dec *Decoder, chnk *riff.Chunk) (bool, error) {
	if r == nil || chnk == nil {
		return false, nil
	}

	listType, err := sniffListType(chnk)
	if err != nil {
		return false, err
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(chnk.ID, listType) {
			err := handler.Decode(dec, chnk)
			if err != nil {
				return true, fmt.Errorf("chunk handler decode failed: %w", err)
			}

			return true, nil
		}
	}

	return false, nil
}

func sniffListType(chnk *riff.Chunk) ([4]byte, error) {
	var listType [4]byte

	if chnk == nil || chnk.ID != CIDList || chnk.Size < 4 {
		return listType, nil
	}

	var head [4]byte

	n, err := io.ReadFull(chnk.R, head[:])
	if err != nil {
		return listType, fmt.Errorf("failed to read LIST type: %w", err)
	}

	copy(listType[:], head[:])

	remaining := io.LimitReader(chnk.R, int64(chnk.Size-n))
	chnk.R = io.MultiReader(bytes.NewReader(head[:]), remaining)

	return listType, nil
}

type bextChunkHandler struct{}

func (h *bextChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDBext
}

func (h *bextChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	return DecodeBroadcastChunk(d, ch)
}

func (h *bextChunkHandler) Encode(e *Encoder) error {
	if e == nil || e.Metadata == nil || e.Metadata.Broadcast == nil {
		return nil
	}

	return e.writeRawChunk(RawChunk{ID: CIDBext, Data: encodeBroadcastChunk(e.Metadata.Broadcast)})
}

type ixmlChunkHandler struct{}

func (h *ixmlChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDIXML
}

func (h *ixmlChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	return DecodeIXMLChunk(d, ch)
}

func (h *ixmlChunkHandler) Encode(e *Encoder) error {
	if e == nil || e.Metadata == nil || len(e.Metadata.IXML) == 0 {
		return nil
	}

	return e.writeRawChunk(RawChunk{ID: CIDIXML, Data: e.Metadata.IXML})
}

type infoChunkHandler struct{}

func (h *infoChunkHandler) CanHandle(chunkID [4]byte, listType [4]byte) bool {
	if chunkID == CIDInfoChunk {
		return true
	}

	return chunkID == CIDList && bytes.Equal(listType[:], CIDInfo)
}

func (h *infoChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	return DecodeInfoChunk(d, ch)
}

// Encode is handled by the encoder's LIST serialization, which needs the
// outer LIST header the raw chunk writer doesn't produce.
func (h *infoChunkHandler) Encode(_ *Encoder) error {
	return errChunkEncodeNotSupported
}
