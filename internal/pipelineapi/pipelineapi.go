// Package pipelineapi defines the interface over the AWS SDK CodePipeline
// client used by the deploy-target resolver.
package pipelineapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
)

// PipelineAPI defines the CodePipeline operations used by the resolver.
// It mirrors the AWS SDK v2 method signatures so the real client satisfies
// it directly and tests can substitute a mock.
type PipelineAPI interface {
	// GetPipeline returns the declaration of a named pipeline
	GetPipeline(
		ctx context.Context,
		params *codepipeline.GetPipelineInput,
		optFns ...func(*codepipeline.Options),
	) (*codepipeline.GetPipelineOutput, error)
}
