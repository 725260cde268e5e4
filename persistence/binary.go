package persistence

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/annie/internal/mmap"
)

// Writer frames an index body: header, optional compression and trailer.
type Writer struct {
	*Encoder
	stream io.WriteCloser
	sum    *ChecksumWriter
	closed bool
}

// NewWriter writes h to w and returns a Writer for the body.
// Close must be called to flush compression and append the checksum.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	if !h.Compression.valid() {
		return nil, fmt.Errorf("unknown compression %d", h.Compression)
	}
	if err := WriteHeader(w, &h); err != nil {
		return nil, err
	}
	stream, err := compressWriter(w, h.Compression)
	if err != nil {
		return nil, err
	}
	sum := NewChecksumWriter(stream)
	return &Writer{
		Encoder: NewEncoder(sum),
		stream:  stream,
		sum:     sum,
	}, nil
}

// Close writes the trailer and flushes the compressor. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.Err(); err != nil {
		_ = w.stream.Close()
		return err
	}
	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], w.sum.Sum())
	if _, err := w.stream.Write(trailer[:]); err != nil {
		_ = w.stream.Close()
		return err
	}
	return w.stream.Close()
}

// Reader unframes an index body written by Writer.
type Reader struct {
	*Decoder
	Header  Header
	stream  io.Reader
	sum     *ChecksumReader
	release func()
}

// NewReader reads and validates the header from r.
func NewReader(r io.Reader) (*Reader, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	stream, release, err := decompressReader(r, h.Compression)
	if err != nil {
		return nil, err
	}
	sum := NewChecksumReader(stream)
	return &Reader{
		Decoder: NewDecoder(sum),
		Header:  h,
		stream:  stream,
		sum:     sum,
		release: release,
	}, nil
}

// Release returns pooled decompression state. It is safe to call more than
// once and is called by Close.
func (r *Reader) Release() {
	if r.release != nil {
		r.release()
		r.release = nil
	}
}

// Close verifies the trailer checksum and that no data follows it.
func (r *Reader) Close() error {
	defer r.Release()
	if err := r.Err(); err != nil {
		return err
	}
	var trailer [4]byte
	if _, err := io.ReadFull(r.stream, trailer[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: missing checksum", ErrCorruptFormat)
		}
		return err
	}
	if err := r.sum.Verify(binary.LittleEndian.Uint32(trailer[:])); err != nil {
		return err
	}
	var extra [1]byte
	if n, _ := r.stream.Read(extra[:]); n > 0 {
		return fmt.Errorf("%w: trailing data after checksum", ErrCorruptFormat)
	}
	return nil
}

// SaveToFile atomically replaces filename with the bytes written by writeFunc.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0o644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = ""
	return nil
}

// LoadFromFile maps filename into memory and passes a reader over it to
// readFunc. The mapping is released when readFunc returns, so readFunc must
// copy whatever it keeps.
func LoadFromFile(filename string, readFunc func(io.Reader) error) error {
	m, err := mmap.Open(filename)
	if err != nil {
		return err
	}
	defer m.Close()

	_ = m.Advise(mmap.AccessSequential)
	return readFunc(m.Reader())
}
