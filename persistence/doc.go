// Package persistence implements the binary index file format.
//
// A file is a fixed 40-byte Header followed by a body stream. The body is
// optionally compressed (LZ4 or Zstd) and ends with a CRC32 (IEEE) of the
// uncompressed body bytes that precede it:
//
//	+--------+-----------------------------------------------+
//	| Header | body ... | crc32(body) |   (body compressed)  |
//	+--------+-----------------------------------------------+
//
// All integers and floats are little endian. The package knows nothing about
// index layouts; it provides the framing (Writer, Reader), a sticky-error
// Encoder and Decoder, atomic file replacement and mmap-backed loading.
//
// Any malformed input (bad magic, unknown version, truncation, checksum
// mismatch, undecodable compressed data) is reported as ErrCorruptFormat.
package persistence
