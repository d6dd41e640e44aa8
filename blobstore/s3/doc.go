// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("rocketsim/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	sim, err := rocketsim.New(scn, rocketsim.WithJournal(store, journal.WithCompression(journal.CompressionZstd)))
//
// # Features
//
//   - Multipart uploads for large journals
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
