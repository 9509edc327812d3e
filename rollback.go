package rollback

import (
	"context"
	"log/slog"

	"github.com/input-output-hk/pipeline-rollback/pipeline"
	"github.com/input-output-hk/pipeline-rollback/store"
)

// TargetResolver resolves a pipeline name to its S3 deploy target.
// *pipeline.Resolver is the production implementation.
type TargetResolver interface {
	Resolve(ctx context.Context, pipelineName string) (*pipeline.Target, error)
}

// ArtifactStore is the subset of store operations the tool drives.
// *store.Store is the production implementation.
type ArtifactStore interface {
	History(ctx context.Context) ([]store.Release, error)
	Latest(ctx context.Context) (*store.Release, error)
	Plan(ctx context.Context, commit string) (*store.RepointPlan, error)
	Repoint(ctx context.Context, commit string) (*store.RepointResult, error)
}

// StoreOpener builds an ArtifactStore for a resolved deploy target.
type StoreOpener func(ctx context.Context, target *pipeline.Target) (ArtifactStore, error)

// Tool ties the deploy-target resolver and the artifact store together and
// exposes the operator-facing operations. It is safe for concurrent use.
type Tool struct {
	resolver TargetResolver
	open     StoreOpener
	logger   *slog.Logger
}

// New creates a Tool backed by real AWS clients, configured through the
// default credential chain plus the given options.
func New(ctx context.Context, opts ...Option) (*Tool, error) {
	cfg := applyOptions(opts)

	resolver, err := pipeline.New(ctx, cfg.pipelineOptions()...)
	if err != nil {
		return nil, err
	}

	storeOpts := cfg.storeOptions()
	open := func(ctx context.Context, target *pipeline.Target) (ArtifactStore, error) {
		return store.New(ctx, target.Bucket, target.ObjectKey, storeOpts...)
	}

	return &Tool{
		resolver: resolver,
		open:     open,
		logger:   cfg.logger,
	}, nil
}

// NewWithComponents creates a Tool from explicit resolver and store opener
// implementations. This is primarily used for testing.
func NewWithComponents(resolver TargetResolver, open StoreOpener, opts ...Option) *Tool {
	cfg := applyOptions(opts)
	return &Tool{
		resolver: resolver,
		open:     open,
		logger:   cfg.logger,
	}
}

// History returns the deployed commit history of the pipeline's artifact
// store, newest first.
func (t *Tool) History(ctx context.Context, pipelineName string) ([]store.Release, error) {
	st, err := t.openStore(ctx, pipelineName)
	if err != nil {
		return nil, err
	}
	return st.History(ctx)
}

// Latest returns the aggregate state of the latest pointer.
func (t *Tool) Latest(ctx context.Context, pipelineName string) (*store.Release, error) {
	st, err := t.openStore(ctx, pipelineName)
	if err != nil {
		return nil, err
	}
	return st.Latest(ctx)
}

// PlanRollback computes the mutations a rollback to commit would perform,
// without touching the store.
func (t *Tool) PlanRollback(ctx context.Context, pipelineName, commit string) (*store.RepointPlan, error) {
	st, err := t.openStore(ctx, pipelineName)
	if err != nil {
		return nil, err
	}
	return st.Plan(ctx, commit)
}

// Rollback repoints the latest pointer of the pipeline's artifact store at
// the given commit.
func (t *Tool) Rollback(ctx context.Context, pipelineName, commit string) (*store.RepointResult, error) {
	st, err := t.openStore(ctx, pipelineName)
	if err != nil {
		return nil, err
	}

	if t.logger != nil {
		t.logger.InfoContext(ctx, "rolling back",
			"pipeline", pipelineName,
			"commit", commit)
	}

	return st.Repoint(ctx, commit)
}

// openStore resolves the pipeline's deploy target and opens its store.
func (t *Tool) openStore(ctx context.Context, pipelineName string) (ArtifactStore, error) {
	target, err := t.resolver.Resolve(ctx, pipelineName)
	if err != nil {
		return nil, err
	}
	return t.open(ctx, target)
}
