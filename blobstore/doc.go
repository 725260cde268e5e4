// Package blobstore provides the storage abstraction index snapshots are saved to.
//
// A snapshot is written once through a WritableBlob and becomes visible
// only when the blob is closed. Aborting a write leaves any previous blob of
// the same name untouched.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic rename on commit, mmap reads
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with streaming multipart uploads and range reads
//   - minio.Store: MinIO and other S3-compatible services
//
// Implementations must be safe for concurrent use.
package blobstore
