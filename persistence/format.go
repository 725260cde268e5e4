package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MagicNumber identifies index files (ASCII "ANNI" little endian).
	MagicNumber uint32 = 0x494E4E41
	// Version is the current file format version.
	Version uint16 = 1

	// HeaderSize is the encoded size of Header in bytes.
	HeaderSize = 40
)

// Header flags.
const (
	// FlagTombstones is set when the body carries removed entries.
	FlagTombstones uint8 = 1 << iota
)

// ErrCorruptFormat is returned for any malformed or truncated index file.
var ErrCorruptFormat = errors.New("corrupt index format")

// Header is the fixed-size header at the start of every index file.
type Header struct {
	Magic       uint32
	Version     uint16
	IndexType   uint8 // 1=Flat, 2=HNSW
	MetricKind  uint8
	Compression Compression
	Flags       uint8
	Reserved    uint16
	Dimension   uint32
	MinkowskiP  float64
	SlotCount   uint64 // entries including removed ones
	LiveCount   uint64
}

// WriteHeader stamps magic and version into h and writes it to w.
func WriteHeader(w io.Writer, h *Header) error {
	h.Magic = MagicNumber
	h.Version = Version
	return binary.Write(w, binary.LittleEndian, h)
}

// ReadHeader reads and validates a header.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("%w: truncated header", ErrCorruptFormat)
		}
		return Header{}, err
	}
	if h.Magic != MagicNumber {
		return Header{}, fmt.Errorf("%w: invalid magic number 0x%08x", ErrCorruptFormat, h.Magic)
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptFormat, h.Version)
	}
	if !h.Compression.valid() {
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrCorruptFormat, h.Compression)
	}
	if h.LiveCount > h.SlotCount {
		return Header{}, fmt.Errorf("%w: live count %d exceeds slot count %d", ErrCorruptFormat, h.LiveCount, h.SlotCount)
	}
	return h, nil
}
