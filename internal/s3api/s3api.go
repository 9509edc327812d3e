// Package s3api defines the interface over the AWS SDK S3 client used by the
// artifact store. The interface is narrowed to the operations the store
// actually performs so tests can mock it without pulling in the full client.
package s3api

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API defines the S3 operations used by the artifact store.
type S3API interface {
	// ListObjectsV2 lists objects under a prefix, one page at a time
	ListObjectsV2(
		ctx context.Context,
		params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)

	// DeleteObjects deletes up to 1000 objects in a single batch
	DeleteObjects(
		ctx context.Context,
		params *s3.DeleteObjectsInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)

	// CopyObject performs a server-side copy within S3
	CopyObject(
		ctx context.Context,
		params *s3.CopyObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.CopyObjectOutput, error)
}
