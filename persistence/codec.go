package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const float32Chunk = 1024

// Encoder writes little-endian primitives. The first write error is kept and
// all later writes become no-ops; check Err once at the end.
type Encoder struct {
	w       io.Writer
	scratch [8]byte
	buf     []byte
	err     error
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first write error.
func (e *Encoder) Err() error { return e.err }

func (e *Encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *Encoder) Uint8(v uint8) {
	e.scratch[0] = v
	e.write(e.scratch[:1])
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.Uint8(1)
	} else {
		e.Uint8(0)
	}
}

func (e *Encoder) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(e.scratch[:2], v)
	e.write(e.scratch[:2])
}

func (e *Encoder) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(e.scratch[:4], v)
	e.write(e.scratch[:4])
}

func (e *Encoder) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(e.scratch[:8], v)
	e.write(e.scratch[:8])
}

func (e *Encoder) Int64(v int64) { e.Uint64(uint64(v)) }

func (e *Encoder) Float64(v float64) { e.Uint64(math.Float64bits(v)) }

// Float32s writes the raw values of vec without a length prefix.
func (e *Encoder) Float32s(vec []float32) {
	if e.buf == nil {
		e.buf = make([]byte, 4*float32Chunk)
	}
	for len(vec) > 0 && e.err == nil {
		n := min(len(vec), float32Chunk)
		for i, f := range vec[:n] {
			binary.LittleEndian.PutUint32(e.buf[4*i:], math.Float32bits(f))
		}
		e.write(e.buf[:4*n])
		vec = vec[n:]
	}
}

// Uint32s writes a uint32 count followed by the values.
func (e *Encoder) Uint32s(vals []uint32) {
	e.Uint32(uint32(len(vals)))
	for _, v := range vals {
		e.Uint32(v)
	}
}

// Bytes writes a uint32 length followed by b.
func (e *Encoder) Bytes(b []byte) {
	e.Uint32(uint32(len(b)))
	e.write(b)
}

// Decoder reads little-endian primitives. It never reads past the requested
// bytes, so a trailer following the decoded data stays unread. The first
// error is kept; truncation is reported as ErrCorruptFormat.
type Decoder struct {
	r       io.Reader
	scratch [8]byte
	buf     []byte
	err     error
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Err returns the first read or validation error.
func (d *Decoder) Err() error { return d.err }

// Failf records a corruption error unless an error is already pending.
func (d *Decoder) Failf(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", ErrCorruptFormat, fmt.Sprintf(format, args...))
	}
}

func (d *Decoder) fail(err error) {
	if d.err != nil {
		return
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		d.err = fmt.Errorf("%w: truncated data", ErrCorruptFormat)
		return
	}
	d.err = err
}

func (d *Decoder) read(b []byte) bool {
	if d.err != nil {
		return false
	}
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.fail(err)
		return false
	}
	return true
}

func (d *Decoder) Uint8() uint8 {
	if !d.read(d.scratch[:1]) {
		return 0
	}
	return d.scratch[0]
}

func (d *Decoder) Bool() bool {
	switch v := d.Uint8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		d.Failf("invalid bool %d", v)
		return false
	}
}

func (d *Decoder) Uint16() uint16 {
	if !d.read(d.scratch[:2]) {
		return 0
	}
	return binary.LittleEndian.Uint16(d.scratch[:2])
}

func (d *Decoder) Uint32() uint32 {
	if !d.read(d.scratch[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(d.scratch[:4])
}

func (d *Decoder) Uint64() uint64 {
	if !d.read(d.scratch[:8]) {
		return 0
	}
	return binary.LittleEndian.Uint64(d.scratch[:8])
}

func (d *Decoder) Int64() int64 { return int64(d.Uint64()) }

func (d *Decoder) Float64() float64 { return math.Float64frombits(d.Uint64()) }

// Float32sInto fills dst with raw values.
func (d *Decoder) Float32sInto(dst []float32) {
	if d.buf == nil {
		d.buf = make([]byte, 4*float32Chunk)
	}
	for len(dst) > 0 {
		n := min(len(dst), float32Chunk)
		if !d.read(d.buf[:4*n]) {
			return
		}
		for i := range dst[:n] {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(d.buf[4*i:]))
		}
		dst = dst[n:]
	}
}

// Uint32s reads a count-prefixed slice, rejecting counts above limit.
func (d *Decoder) Uint32s(limit int) []uint32 {
	n := d.Uint32()
	if d.err != nil {
		return nil
	}
	if uint64(n) > uint64(limit) {
		d.Failf("list length %d exceeds %d", n, limit)
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = d.Uint32()
	}
	if d.err != nil {
		return nil
	}
	return out
}

// Bytes reads a length-prefixed byte string of at most limit bytes. Memory
// grows with the bytes actually present, not with the declared length.
func (d *Decoder) Bytes(limit int) []byte {
	n := d.Uint32()
	if d.err != nil {
		return nil
	}
	if uint64(n) > uint64(limit) {
		d.Failf("byte string length %d exceeds %d", n, limit)
		return nil
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, d.r, int64(n)); err != nil {
		d.fail(err)
		return nil
	}
	return buf.Bytes()
}
