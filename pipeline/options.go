package pipeline

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// resolverConfig holds configuration applied by Options.
type resolverConfig struct {
	region          string
	endpoint        string
	cacheTTL        time.Duration
	customAWSConfig *aws.Config
	retryer         aws.Retryer
	logger          *slog.Logger
}

// Option is a functional option for configuring the Resolver.
type Option func(*resolverConfig)

// WithRegion sets the AWS region for CodePipeline operations.
func WithRegion(region string) Option {
	return func(c *resolverConfig) {
		c.region = region
	}
}

// WithEndpoint sets a custom CodePipeline endpoint URL, useful for
// local testing with LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(c *resolverConfig) {
		c.endpoint = endpoint
	}
}

// WithCacheTTL sets how long resolved targets are reused before the
// pipeline definition is fetched again. Default is 5 minutes.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *resolverConfig) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithAWSConfig allows providing a custom AWS configuration,
// overriding the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) Option {
	return func(c *resolverConfig) {
		c.customAWSConfig = config
	}
}

// WithRetryer installs a custom aws.Retryer for CodePipeline operations.
func WithRetryer(retryer aws.Retryer) Option {
	return func(c *resolverConfig) {
		c.retryer = retryer
	}
}

// WithLogger configures the resolver with a structured logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *resolverConfig) {
		c.logger = logger
	}
}

// applyOptions builds a resolverConfig from the given options.
func applyOptions(opts []Option) *resolverConfig {
	cfg := &resolverConfig{
		cacheTTL: defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
