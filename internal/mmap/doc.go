// Package mmap provides read-only memory-mapped file access.
//
// Index files are mapped instead of read so that loading a large index does
// not first copy the whole file through a buffered reader.
//
//	m, err := mmap.Open("index.annie")
//	if err != nil { ... }
//	defer m.Close()
//
//	m.Advise(mmap.AccessSequential)
//	r := m.Reader()
//
// On Unix platforms the file is mapped with mmap(2) and access hints are
// passed through madvise(2). Elsewhere the file is read into memory and
// hints are ignored.
package mmap
