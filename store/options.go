package store

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// storeConfig holds configuration applied by Options.
type storeConfig struct {
	region          string
	maxRetries      int
	timeout         time.Duration
	endpoint        string
	forcePathStyle  bool
	customAWSConfig *aws.Config
	retryer         aws.Retryer
	logger          *slog.Logger
}

// Option is a functional option for configuring the Store.
type Option func(*storeConfig)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) Option {
	return func(c *storeConfig) {
		c.region = region
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed
// operations. Ignored when a custom retryer is installed.
func WithMaxRetries(maxRetries int) Option {
	return func(c *storeConfig) {
		c.maxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 operations.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) Option {
	return func(c *storeConfig) {
		c.timeout = timeout
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(c *storeConfig) {
		c.endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// Required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) Option {
	return func(c *storeConfig) {
		c.forcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) Option {
	return func(c *storeConfig) {
		c.customAWSConfig = config
	}
}

// WithRetryer installs a custom aws.Retryer for S3 operations, replacing
// the SDK's standard retry behavior.
func WithRetryer(retryer aws.Retryer) Option {
	return func(c *storeConfig) {
		c.retryer = retryer
	}
}

// WithLogger configures the store with a structured logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *storeConfig) {
		c.logger = logger
	}
}

// applyOptions builds a storeConfig from the given options.
func applyOptions(opts []Option) *storeConfig {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
