// Package annie provides an embeddable k-nearest-neighbour search engine for Go.
//
// An Index stores (id, vector) entries of a fixed dimension and answers
// top-k queries under a configurable distance metric. Two index kinds are
// available: an exhaustive flat scan, which is exact, and an HNSW graph,
// which is approximate and much faster on large collections.
//
// # Quick Start
//
//	idx, err := annie.New(128, annie.Cosine())
//	if err != nil { ... }
//
//	err = idx.Add([]int64{1, 2}, [][]float32{v1, v2})
//	results, err := idx.Search(query, 10)
//	fmt.Println(results.IDs(), results.Distances())
//
// Graph index:
//
//	idx, err := annie.New(128, annie.Euclidean(), annie.WithHNSW(func(o *hnsw.Options) {
//	    o.M = 32
//	    o.EFSearch = 100
//	}))
//
// # Filtering
//
// SearchFilter only returns entries whose id passes the predicate. The
// predicate is evaluated at most once per candidate. Rejecting everything
// is not an error:
//
//	results, err := idx.SearchFilter(query, 10, annie.AllowIDs(4, 8, 15))
//
// On a graph index a restrictive filter widens the search beam up to a
// bound; SearchWithReport tells whether that bound was hit.
//
// # Persistence
//
// Save and Load write a checksummed binary file, optionally LZ4 or Zstd
// compressed. SaveTo and LoadFrom target any blobstore.BlobStore (local
// disk, S3, MinIO). A loaded index answers every query exactly like the
// saved one.
//
//	err = idx.Save(ctx, "products.annie")
//	idx, err = annie.Load(ctx, "products.annie")
//
// # Concurrency
//
// An Index is safe for concurrent use. Searches run in parallel with each
// other; Add and Remove are exclusive.
package annie
