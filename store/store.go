// Package store implements the S3-backed deployment artifact store.
//
// Artifacts for each deployed commit live under <objectKey>/<commit>/ in the
// deploy bucket, and the currently deployed set is mirrored under
// <objectKey>/latest/. The store enumerates the commit history from object
// listings and can repoint latest/ at any previously deployed commit.
package store

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	rberrors "github.com/input-output-hk/pipeline-rollback/errors"
	"github.com/input-output-hk/pipeline-rollback/internal/s3api"
)

// LatestSegment is the reserved key segment holding the currently deployed
// artifact set. It never appears in the commit history.
const LatestSegment = "latest"

// Store provides access to the deployment artifact layout of a single
// deploy bucket. It is safe for concurrent use: configuration is immutable
// after creation and the underlying SDK client is thread-safe.
type Store struct {
	// api is the underlying AWS SDK S3 client
	api s3api.S3API

	// bucket is the deploy bucket resolved from the pipeline
	bucket string

	// root is the artifact root prefix, normalized with a trailing slash
	root string

	// logger receives operational logging; nil disables logging
	logger *slog.Logger
}

// New creates a Store for the given deploy bucket and artifact root key.
// It loads AWS credentials using the default credential chain and applies
// the specified configuration options.
//
// Example:
//
//	st, err := store.New(ctx, "deploy-bucket", "myapp",
//	    store.WithRegion("us-west-2"),
//	    store.WithMaxRetries(3),
//	)
func New(ctx context.Context, bucket, objectKey string, opts ...Option) (*Store, error) {
	if bucket == "" {
		return nil, rberrors.NewError("new", rberrors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}
	if objectKey == "" {
		return nil, rberrors.NewError("new", rberrors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("object key cannot be empty")
	}

	cfg := applyOptions(opts)

	var awsCfg aws.Config
	var err error
	if cfg.customAWSConfig != nil {
		awsCfg = *cfg.customAWSConfig
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, rberrors.NewError("new", err).WithBucket(bucket)
		}
	}

	if cfg.region != "" {
		awsCfg.Region = cfg.region
	}
	if cfg.maxRetries > 0 {
		awsCfg.RetryMaxAttempts = cfg.maxRetries
	}
	if cfg.retryer != nil {
		retryer := cfg.retryer
		awsCfg.Retryer = func() aws.Retryer { return retryer }
	}

	var s3Opts []func(*s3.Options)
	if cfg.forcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if cfg.endpoint != "" {
		endpoint := cfg.endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if cfg.timeout > 0 {
		httpClient := &http.Client{Timeout: cfg.timeout}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return &Store{
		api:    s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: bucket,
		root:   normalizePrefix(objectKey),
		logger: cfg.logger,
	}, nil
}

// NewWithClient creates a Store with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(api s3api.S3API, bucket, objectKey string, opts ...Option) *Store {
	cfg := applyOptions(opts)
	return &Store{
		api:    api,
		bucket: bucket,
		root:   normalizePrefix(objectKey),
		logger: cfg.logger,
	}
}

// Bucket returns the deploy bucket the store operates on.
func (s *Store) Bucket() string {
	return s.bucket
}

// Root returns the normalized artifact root prefix.
func (s *Store) Root() string {
	return s.root
}

// releasePrefix returns the full object prefix for a commit's artifacts.
func (s *Store) releasePrefix(commit string) string {
	return s.root + commit + "/"
}

// latestPrefix returns the full object prefix of the latest pointer.
func (s *Store) latestPrefix() string {
	return s.root + LatestSegment + "/"
}

// commitFor extracts the commit segment from a full object key, or "" when
// the key does not sit under a commit prefix.
func (s *Store) commitFor(key string) string {
	rel, ok := strings.CutPrefix(key, s.root)
	if !ok {
		return ""
	}
	commit, _, found := strings.Cut(rel, "/")
	if !found {
		// Stray object directly under the root, not a release.
		return ""
	}
	return commit
}

// normalizePrefix ensures a single trailing slash and no leading slash.
func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func (s *Store) logDebug(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.DebugContext(ctx, msg, args...)
	}
}

func (s *Store) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}
