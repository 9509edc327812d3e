package store

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	rberrors "github.com/input-output-hk/pipeline-rollback/errors"
)

// Release describes one deployed commit aggregated from its S3 objects.
type Release struct {
	// Commit is the commit identifier (the key segment under the root prefix)
	Commit string

	// LastModified is the newest LastModified across the release's objects
	LastModified time.Time

	// Objects is the number of objects in the release
	Objects int

	// Bytes is the total size of the release in bytes
	Bytes int64
}

// History enumerates every deployed commit under the artifact root.
// It pages through the full listing, aggregates objects per commit and
// returns releases sorted by LastModified descending. Ties are broken by
// commit id so the order is deterministic.
func (s *Store) History(ctx context.Context) ([]Release, error) {
	agg := make(map[string]*Release)

	err := s.walkPrefix(ctx, s.root, func(obj types.Object) {
		commit := s.commitFor(aws.ToString(obj.Key))
		if commit == "" || commit == LatestSegment {
			return
		}
		r, ok := agg[commit]
		if !ok {
			r = &Release{Commit: commit}
			agg[commit] = r
		}
		r.Objects++
		r.Bytes += aws.ToInt64(obj.Size)
		if m := aws.ToTime(obj.LastModified); m.After(r.LastModified) {
			r.LastModified = m
		}
	})
	if err != nil {
		return nil, rberrors.NewError("history", err).WithBucket(s.bucket).WithKey(s.root)
	}

	releases := make([]Release, 0, len(agg))
	for _, r := range agg {
		releases = append(releases, *r)
	}
	sort.Slice(releases, func(i, j int) bool {
		if !releases[i].LastModified.Equal(releases[j].LastModified) {
			return releases[i].LastModified.After(releases[j].LastModified)
		}
		return releases[i].Commit < releases[j].Commit
	})

	s.logDebug(ctx, "aggregated release history",
		"bucket", s.bucket,
		"prefix", s.root,
		"releases", len(releases))

	return releases, nil
}

// Release aggregates the artifacts of a single commit.
// Returns ErrReleaseNotFound when no objects exist under the commit prefix.
func (s *Store) Release(ctx context.Context, commit string) (*Release, error) {
	if err := validateCommit(commit); err != nil {
		return nil, rberrors.NewError("release", err).WithBucket(s.bucket)
	}

	prefix := s.releasePrefix(commit)
	release, err := s.aggregatePrefix(ctx, prefix)
	if err != nil {
		return nil, rberrors.NewError("release", err).WithBucket(s.bucket).WithKey(prefix)
	}
	if release.Objects == 0 {
		return nil, rberrors.NewError("release", rberrors.ErrReleaseNotFound).
			WithBucket(s.bucket).
			WithKey(prefix)
	}

	release.Commit = commit
	return release, nil
}

// Latest aggregates the objects currently under the latest pointer.
// Returns ErrLatestMissing when the latest prefix holds no objects, which
// is the state of a store that has never deployed.
func (s *Store) Latest(ctx context.Context) (*Release, error) {
	prefix := s.latestPrefix()
	release, err := s.aggregatePrefix(ctx, prefix)
	if err != nil {
		return nil, rberrors.NewError("latest", err).WithBucket(s.bucket).WithKey(prefix)
	}
	if release.Objects == 0 {
		return nil, rberrors.NewError("latest", rberrors.ErrLatestMissing).
			WithBucket(s.bucket).
			WithKey(prefix)
	}

	release.Commit = LatestSegment
	return release, nil
}

// aggregatePrefix folds every object under prefix into a single Release.
func (s *Store) aggregatePrefix(ctx context.Context, prefix string) (*Release, error) {
	release := &Release{}
	err := s.walkPrefix(ctx, prefix, func(obj types.Object) {
		release.Objects++
		release.Bytes += aws.ToInt64(obj.Size)
		if m := aws.ToTime(obj.LastModified); m.After(release.LastModified) {
			release.LastModified = m
		}
	})
	if err != nil {
		return nil, err
	}
	return release, nil
}

// listKeys returns every object key under prefix, in listing order.
func (s *Store) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.walkPrefix(ctx, prefix, func(obj types.Object) {
		keys = append(keys, aws.ToString(obj.Key))
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// walkPrefix pages through the full listing under prefix, invoking fn for
// every object. Pagination uses continuation tokens with the maximum page
// size; the loop is the only recovery mechanism the store has.
func (s *Store) walkPrefix(ctx context.Context, prefix string, fn func(types.Object)) error {
	var continuationToken *string

	for {
		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(s.bucket),
			Prefix:  aws.String(prefix),
			MaxKeys: aws.Int32(1000),
		}
		if continuationToken != nil {
			input.ContinuationToken = continuationToken
		}

		result, err := s.api.ListObjectsV2(ctx, input)
		if err != nil {
			return err
		}

		for _, obj := range result.Contents {
			fn(obj)
		}

		if !aws.ToBool(result.IsTruncated) {
			return nil
		}
		continuationToken = result.NextContinuationToken
	}
}

// validateCommit rejects commit identifiers that cannot name a release.
func validateCommit(commit string) error {
	if commit == "" {
		return rberrors.ErrInvalidInput
	}
	if commit == LatestSegment {
		return rberrors.ErrInvalidInput
	}
	return nil
}
