package rollback

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/pipeline-rollback/pipeline"
	"github.com/input-output-hk/pipeline-rollback/store"
)

// toolConfig holds configuration shared by the resolver and store clients.
type toolConfig struct {
	region   string
	timeout  time.Duration
	retryer  aws.Retryer
	cacheTTL time.Duration
	logger   *slog.Logger
}

// Option is a functional option for configuring the Tool.
type Option func(*toolConfig)

// WithRegion sets the AWS region for both CodePipeline and S3 operations.
func WithRegion(region string) Option {
	return func(c *toolConfig) {
		c.region = region
	}
}

// WithTimeout sets the per-call timeout for S3 operations.
func WithTimeout(timeout time.Duration) Option {
	return func(c *toolConfig) {
		c.timeout = timeout
	}
}

// WithRetryer installs a custom aws.Retryer on both AWS clients.
func WithRetryer(retryer aws.Retryer) Option {
	return func(c *toolConfig) {
		c.retryer = retryer
	}
}

// WithTargetCacheTTL sets how long resolved deploy targets are cached.
func WithTargetCacheTTL(ttl time.Duration) Option {
	return func(c *toolConfig) {
		c.cacheTTL = ttl
	}
}

// WithLogger configures the tool and its components with a structured
// logger. If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *toolConfig) {
		c.logger = logger
	}
}

// pipelineOptions translates the tool configuration for the resolver.
func (c *toolConfig) pipelineOptions() []pipeline.Option {
	var opts []pipeline.Option
	if c.region != "" {
		opts = append(opts, pipeline.WithRegion(c.region))
	}
	if c.retryer != nil {
		opts = append(opts, pipeline.WithRetryer(c.retryer))
	}
	if c.cacheTTL > 0 {
		opts = append(opts, pipeline.WithCacheTTL(c.cacheTTL))
	}
	if c.logger != nil {
		opts = append(opts, pipeline.WithLogger(c.logger))
	}
	return opts
}

// storeOptions translates the tool configuration for the artifact store.
func (c *toolConfig) storeOptions() []store.Option {
	var opts []store.Option
	if c.region != "" {
		opts = append(opts, store.WithRegion(c.region))
	}
	if c.timeout > 0 {
		opts = append(opts, store.WithTimeout(c.timeout))
	}
	if c.retryer != nil {
		opts = append(opts, store.WithRetryer(c.retryer))
	}
	if c.logger != nil {
		opts = append(opts, store.WithLogger(c.logger))
	}
	return opts
}

// applyOptions builds a toolConfig from the given options.
func applyOptions(opts []Option) *toolConfig {
	cfg := &toolConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
