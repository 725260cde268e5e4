// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.NewFromDefaultConfig(ctx, "my-bucket", "indexes/")
//	if err != nil { ... }
//
//	err = idx.SaveTo(ctx, store, "products.annie")
//
// # Features
//
//   - Streaming multipart uploads; a blob becomes visible on Close
//   - Range reads for partial fetches
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
