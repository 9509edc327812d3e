package testutil

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
)

// PipelineBuilder provides a fluent interface for building GetPipelineOutput
// values for resolver tests.
type PipelineBuilder struct {
	name   string
	stages []types.StageDeclaration
}

// NewPipelineBuilder creates a builder for a pipeline with the given name.
func NewPipelineBuilder(name string) *PipelineBuilder {
	return &PipelineBuilder{name: name}
}

// WithSourceStage appends a source stage with a CodeCommit action, which the
// resolver must skip over.
func (b *PipelineBuilder) WithSourceStage() *PipelineBuilder {
	b.stages = append(b.stages, types.StageDeclaration{
		Name: aws.String("Source"),
		Actions: []types.ActionDeclaration{
			{
				Name: aws.String("Source"),
				ActionTypeId: &types.ActionTypeId{
					Category: types.ActionCategorySource,
					Owner:    types.ActionOwnerAws,
					Provider: aws.String("CodeCommit"),
					Version:  aws.String("1"),
				},
				Configuration: map[string]string{
					"RepositoryName": "app",
					"BranchName":     "main",
				},
			},
		},
	})
	return b
}

// WithS3DeployStage appends a deploy stage with an S3 deploy action carrying
// the given bucket and object key configuration.
func (b *PipelineBuilder) WithS3DeployStage(bucket, objectKey string) *PipelineBuilder {
	b.stages = append(b.stages, types.StageDeclaration{
		Name: aws.String("Deploy"),
		Actions: []types.ActionDeclaration{
			{
				Name: aws.String("Deploy"),
				ActionTypeId: &types.ActionTypeId{
					Category: types.ActionCategoryDeploy,
					Owner:    types.ActionOwnerAws,
					Provider: aws.String("S3"),
					Version:  aws.String("1"),
				},
				Configuration: map[string]string{
					"BucketName": bucket,
					"ObjectKey":  objectKey,
					"Extract":    "true",
				},
			},
		},
	})
	return b
}

// WithDeployStage appends a deploy stage with an arbitrary provider and
// configuration, for exercising non-S3 deploy actions.
func (b *PipelineBuilder) WithDeployStage(provider string, configuration map[string]string) *PipelineBuilder {
	b.stages = append(b.stages, types.StageDeclaration{
		Name: aws.String("Deploy"),
		Actions: []types.ActionDeclaration{
			{
				Name: aws.String("Deploy"),
				ActionTypeId: &types.ActionTypeId{
					Category: types.ActionCategoryDeploy,
					Owner:    types.ActionOwnerAws,
					Provider: aws.String(provider),
					Version:  aws.String("1"),
				},
				Configuration: configuration,
			},
		},
	})
	return b
}

// Build returns the assembled GetPipelineOutput.
func (b *PipelineBuilder) Build() *codepipeline.GetPipelineOutput {
	return &codepipeline.GetPipelineOutput{
		Pipeline: &types.PipelineDeclaration{
			Name:   aws.String(b.name),
			Stages: b.stages,
		},
	}
}
