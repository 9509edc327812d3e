// Package pipeline resolves the S3 deploy target of an AWS CodePipeline
// pipeline. The resolver fetches the pipeline declaration, scans its stages
// for an S3 deploy action and returns the bucket and object key that action
// deploys to. Resolved targets are cached so repeated operations against the
// same pipeline do not re-fetch its definition.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
	"github.com/aws/smithy-go"

	rberrors "github.com/input-output-hk/pipeline-rollback/errors"
	"github.com/input-output-hk/pipeline-rollback/internal/memcache"
	"github.com/input-output-hk/pipeline-rollback/internal/pipelineapi"
)

// Configuration keys of the CodePipeline S3 deploy action.
const (
	configBucketName = "BucketName"
	configObjectKey  = "ObjectKey"

	// s3Provider is the deploy action provider this resolver understands
	s3Provider = "S3"
)

// AWS error codes mapped to sentinel errors.
const (
	pipelineNotFoundException = "PipelineNotFoundException"
	accessDeniedException     = "AccessDeniedException"
)

// defaultCacheTTL bounds how long a resolved target is reused before the
// pipeline definition is consulted again.
const defaultCacheTTL = 5 * time.Minute

// Target is the S3 destination a pipeline deploys artifacts to.
type Target struct {
	// Bucket is the deploy bucket from the action's BucketName configuration
	Bucket string

	// ObjectKey is the artifact root prefix from the ObjectKey configuration
	ObjectKey string
}

// Resolver resolves pipelines to their S3 deploy targets.
// It is safe for concurrent use.
type Resolver struct {
	// api is the underlying AWS SDK CodePipeline client
	api pipelineapi.PipelineAPI

	// cache memoizes resolved targets by pipeline name
	cache *memcache.Cache

	// logger receives operational logging; nil disables logging
	logger *slog.Logger
}

// New creates a Resolver using the default AWS credential chain.
func New(ctx context.Context, opts ...Option) (*Resolver, error) {
	cfg := applyOptions(opts)

	var awsCfg aws.Config
	var err error
	if cfg.customAWSConfig != nil {
		awsCfg = *cfg.customAWSConfig
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, rberrors.NewError("new", err)
		}
	}

	if cfg.region != "" {
		awsCfg.Region = cfg.region
	}
	if cfg.retryer != nil {
		retryer := cfg.retryer
		awsCfg.Retryer = func() aws.Retryer { return retryer }
	}

	var cpOpts []func(*codepipeline.Options)
	if cfg.endpoint != "" {
		endpoint := cfg.endpoint
		cpOpts = append(cpOpts, func(o *codepipeline.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return &Resolver{
		api:    codepipeline.NewFromConfig(awsCfg, cpOpts...),
		cache:  memcache.New(cfg.cacheTTL, 0),
		logger: cfg.logger,
	}, nil
}

// NewWithClient creates a Resolver with a custom PipelineAPI implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(api pipelineapi.PipelineAPI, opts ...Option) *Resolver {
	cfg := applyOptions(opts)
	return &Resolver{
		api:    api,
		cache:  memcache.New(cfg.cacheTTL, 0),
		logger: cfg.logger,
	}
}

// Resolve returns the S3 deploy target of the named pipeline.
//
// Errors:
//   - ErrInvalidInput: if pipelineName is empty
//   - ErrPipelineNotFound: if no pipeline with that name exists
//   - ErrNoDeployTarget: if the pipeline has no S3 deploy action with
//     BucketName and ObjectKey configuration
//   - ErrAccessDenied: if the credentials cannot read the pipeline
func (r *Resolver) Resolve(ctx context.Context, pipelineName string) (*Target, error) {
	if pipelineName == "" {
		return nil, rberrors.NewError("resolve", rberrors.ErrInvalidInput).
			WithMessage("pipeline name cannot be empty")
	}

	if cached, ok := r.cache.Get(pipelineName); ok {
		target := cached.(Target)
		r.logDebug(ctx, "deploy target served from cache",
			"pipeline", pipelineName,
			"bucket", target.Bucket)
		return &target, nil
	}

	output, err := r.api.GetPipeline(ctx, &codepipeline.GetPipelineInput{
		Name: aws.String(pipelineName),
	})
	if err != nil {
		return nil, rberrors.NewError("resolve", r.mapAWSError(err)).WithPipeline(pipelineName)
	}
	if output.Pipeline == nil {
		return nil, rberrors.NewError("resolve", rberrors.ErrPipelineNotFound).
			WithPipeline(pipelineName)
	}

	target, ok := findDeployTarget(output.Pipeline.Stages)
	if !ok {
		return nil, rberrors.NewError("resolve", rberrors.ErrNoDeployTarget).
			WithPipeline(pipelineName)
	}

	r.cache.Set(pipelineName, target, 0)

	r.logInfo(ctx, "resolved deploy target",
		"pipeline", pipelineName,
		"bucket", target.Bucket,
		"object_key", target.ObjectKey)

	return &target, nil
}

// Invalidate drops the cached target for a pipeline, forcing the next
// Resolve to fetch the definition again.
func (r *Resolver) Invalidate(pipelineName string) {
	r.cache.Delete(pipelineName)
}

// findDeployTarget scans stages for an S3 deploy action carrying bucket and
// object key configuration. The first match wins, in stage then action order.
func findDeployTarget(stages []types.StageDeclaration) (Target, bool) {
	for _, stage := range stages {
		for _, action := range stage.Actions {
			typeID := action.ActionTypeId
			if typeID == nil || typeID.Category != types.ActionCategoryDeploy {
				continue
			}
			if aws.ToString(typeID.Provider) != s3Provider {
				continue
			}

			bucket := action.Configuration[configBucketName]
			objectKey := action.Configuration[configObjectKey]
			if bucket == "" || objectKey == "" {
				continue
			}
			return Target{Bucket: bucket, ObjectKey: objectKey}, true
		}
	}
	return Target{}, false
}

// mapAWSError converts CodePipeline API errors to sentinel errors.
func (r *Resolver) mapAWSError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case pipelineNotFoundException:
			return rberrors.ErrPipelineNotFound
		case accessDeniedException:
			return rberrors.ErrAccessDenied
		}
	}

	var notFound *types.PipelineNotFoundException
	if errors.As(err, &notFound) {
		return rberrors.ErrPipelineNotFound
	}

	return err
}

func (r *Resolver) logDebug(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.DebugContext(ctx, msg, args...)
	}
}

func (r *Resolver) logInfo(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.InfoContext(ctx, msg, args...)
	}
}
