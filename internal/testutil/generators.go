package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ReleaseSpec describes a commit prefix to generate objects for.
type ReleaseSpec struct {
	// Commit is the commit identifier
	Commit string

	// Objects is the number of objects to generate under the commit
	Objects int

	// Deployed is the LastModified stamped on the newest object; earlier
	// objects step back one minute each
	Deployed time.Time

	// Size is the per-object size in bytes
	Size int64
}

// GenerateListing produces the flat object listing of an artifact root for
// the given releases, in commit order. Keys follow the
// <root>/<commit>/object-NNNN.bin layout.
func GenerateListing(root string, specs []ReleaseSpec) []types.Object {
	var objects []types.Object
	for _, spec := range specs {
		for i := 0; i < spec.Objects; i++ {
			modified := spec.Deployed.Add(-time.Duration(spec.Objects-1-i) * time.Minute)
			objects = append(objects, types.Object{
				Key:          aws.String(fmt.Sprintf("%s%s/object-%04d.bin", root, spec.Commit, i)),
				Size:         aws.Int64(spec.Size),
				LastModified: aws.Time(modified),
				ETag:         aws.String(fmt.Sprintf("\"etag-%s-%04d\"", spec.Commit, i)),
			})
		}
	}
	return objects
}

// PagedListObjects returns a ListObjectsV2Func that serves the given objects
// in pages of pageSize, honoring continuation tokens and prefix filtering.
// This mirrors real S3 pagination so aggregation across page boundaries is
// exercised.
func PagedListObjects(objects []types.Object, pageSize int) func(*s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	return func(params *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		prefix := aws.ToString(params.Prefix)

		var matched []types.Object
		for _, obj := range objects {
			if prefix == "" || strings.HasPrefix(aws.ToString(obj.Key), prefix) {
				matched = append(matched, obj)
			}
		}

		start := 0
		if token := params.ContinuationToken; token != nil {
			if _, err := fmt.Sscanf(aws.ToString(token), "page-%d", &start); err != nil {
				return nil, fmt.Errorf("bad continuation token %q", aws.ToString(token))
			}
		}

		end := start + pageSize
		if end >= len(matched) {
			return &s3.ListObjectsV2Output{
				Contents:    matched[start:],
				IsTruncated: aws.Bool(false),
			}, nil
		}

		return &s3.ListObjectsV2Output{
			Contents:              matched[start:end],
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String(fmt.Sprintf("page-%d", end)),
		}, nil
	}
}
