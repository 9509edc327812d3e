// Package rollback manages the "latest deployed commit" pointer of an
// S3-backed deployment artifact store fed by an AWS CodePipeline pipeline.
//
// The deploy bucket and artifact root key are discovered from the pipeline's
// S3 deploy action, the commit history is aggregated from paginated object
// listings, and the latest/ prefix can be repointed at any previously
// deployed commit via batch delete followed by server-side copy.
//
// Basic usage:
//
//	tool, err := rollback.New(ctx, rollback.WithRegion("us-west-2"))
//	if err != nil {
//	    return err
//	}
//
//	releases, err := tool.History(ctx, "my-pipeline")
//	if err != nil {
//	    return err
//	}
//
//	result, err := tool.Rollback(ctx, "my-pipeline", releases[1].Commit)
package rollback
