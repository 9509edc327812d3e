package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	rberrors "github.com/input-output-hk/pipeline-rollback/errors"
)

// maxKeysPerDelete is the S3 limit for a single DeleteObjects request.
const maxKeysPerDelete = 1000

// CopyPair is one server-side copy in a repoint plan.
type CopyPair struct {
	// Source is the release object key to copy from
	Source string

	// Dest is the corresponding key under the latest prefix
	Dest string
}

// RepointPlan describes the mutations a repoint would perform.
type RepointPlan struct {
	// Commit is the release the latest pointer will be moved to
	Commit string

	// Delete lists the keys currently under latest/ that will be removed
	Delete []string

	// Copy lists the release objects that will be copied under latest/
	Copy []CopyPair
}

// RepointResult reports what a completed repoint did.
type RepointResult struct {
	// Commit is the release the latest pointer now mirrors
	Commit string

	// Deleted is the number of stale latest objects removed
	Deleted int

	// Copied is the number of release objects copied under latest/
	Copied int

	// Duration is the wall time of the whole operation
	Duration time.Duration
}

// Plan computes the delete and copy sets for repointing latest/ at commit
// without performing any mutation. Returns ErrReleaseNotFound when the
// commit has no artifacts.
func (s *Store) Plan(ctx context.Context, commit string) (*RepointPlan, error) {
	if err := validateCommit(commit); err != nil {
		return nil, rberrors.NewError("plan", err).WithBucket(s.bucket)
	}

	releasePrefix := s.releasePrefix(commit)
	releaseKeys, err := s.listKeys(ctx, releasePrefix)
	if err != nil {
		return nil, rberrors.NewError("plan", err).WithBucket(s.bucket).WithKey(releasePrefix)
	}
	if len(releaseKeys) == 0 {
		return nil, rberrors.NewError("plan", rberrors.ErrReleaseNotFound).
			WithBucket(s.bucket).
			WithKey(releasePrefix)
	}

	latestPrefix := s.latestPrefix()
	latestKeys, err := s.listKeys(ctx, latestPrefix)
	if err != nil {
		return nil, rberrors.NewError("plan", err).WithBucket(s.bucket).WithKey(latestPrefix)
	}

	plan := &RepointPlan{
		Commit: commit,
		Delete: latestKeys,
		Copy:   make([]CopyPair, 0, len(releaseKeys)),
	}
	for _, key := range releaseKeys {
		plan.Copy = append(plan.Copy, CopyPair{
			Source: key,
			Dest:   latestPrefix + strings.TrimPrefix(key, releasePrefix),
		})
	}

	return plan, nil
}

// Repoint moves the latest pointer to the given commit: every object under
// latest/ is deleted, then every object of the release is copied server-side
// under latest/.
//
// The two phases are not atomic. A failure after the delete phase leaves
// latest/ partially populated; each phase is logged and re-running the same
// repoint converges to the desired state.
func (s *Store) Repoint(ctx context.Context, commit string) (*RepointResult, error) {
	startTime := time.Now()

	plan, err := s.Plan(ctx, commit)
	if err != nil {
		return nil, err
	}

	s.logInfo(ctx, "repointing latest",
		"bucket", s.bucket,
		"commit", commit,
		"stale_objects", len(plan.Delete),
		"release_objects", len(plan.Copy))

	deleted, err := s.deleteKeys(ctx, plan.Delete)
	if err != nil {
		return nil, rberrors.NewError("repoint", err).
			WithBucket(s.bucket).
			WithKey(s.latestPrefix()).
			WithMessage("failed to clear latest prefix")
	}

	for _, pair := range plan.Copy {
		input := &s3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			Key:        aws.String(pair.Dest),
			CopySource: aws.String(s.bucket + "/" + pair.Source),
		}
		if _, err := s.api.CopyObject(ctx, input); err != nil {
			return nil, rberrors.NewError("repoint", err).
				WithBucket(s.bucket).
				WithKey(pair.Dest).
				WithMessage("failed to copy " + pair.Source)
		}
		s.logDebug(ctx, "copied release object", "source", pair.Source, "dest", pair.Dest)
	}

	result := &RepointResult{
		Commit:   commit,
		Deleted:  deleted,
		Copied:   len(plan.Copy),
		Duration: time.Since(startTime),
	}

	s.logInfo(ctx, "latest repointed",
		"bucket", s.bucket,
		"commit", commit,
		"deleted", result.Deleted,
		"copied", result.Copied,
		"duration", result.Duration)

	return result, nil
}

// deleteKeys batch-deletes the given keys, chunked at the S3 limit.
// Returns the number of keys submitted for deletion.
func (s *Store) deleteKeys(ctx context.Context, keys []string) (int, error) {
	deleted := 0

	for len(keys) > 0 {
		chunk := keys
		if len(chunk) > maxKeysPerDelete {
			chunk = chunk[:maxKeysPerDelete]
		}
		keys = keys[len(chunk):]

		identifiers := make([]types.ObjectIdentifier, 0, len(chunk))
		for _, key := range chunk {
			identifiers = append(identifiers, types.ObjectIdentifier{
				Key: aws.String(key),
			})
		}

		input := &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: identifiers,
				Quiet:   aws.Bool(true),
			},
		}

		result, err := s.api.DeleteObjects(ctx, input)
		if err != nil {
			return deleted, err
		}
		if len(result.Errors) > 0 {
			first := result.Errors[0]
			return deleted, fmt.Errorf("delete %s failed: %s: %s",
				aws.ToString(first.Key), aws.ToString(first.Code), aws.ToString(first.Message))
		}

		deleted += len(chunk)
	}

	return deleted, nil
}
