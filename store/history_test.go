package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rberrors "github.com/input-output-hk/pipeline-rollback/errors"
	"github.com/input-output-hk/pipeline-rollback/internal/testutil"
)

var historyBase = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// TestStore_History_Aggregation tests commit aggregation across listing pages.
func TestStore_History_Aggregation(t *testing.T) {
	tests := []struct {
		name     string
		specs    []testutil.ReleaseSpec
		pageSize int
		want     []Release
	}{
		{
			name: "single page, two commits",
			specs: []testutil.ReleaseSpec{
				{Commit: "aaa111", Objects: 2, Deployed: historyBase, Size: 100},
				{Commit: "bbb222", Objects: 3, Deployed: historyBase.Add(time.Hour), Size: 50},
			},
			pageSize: 1000,
			want: []Release{
				{Commit: "bbb222", LastModified: historyBase.Add(time.Hour), Objects: 3, Bytes: 150},
				{Commit: "aaa111", LastModified: historyBase, Objects: 2, Bytes: 200},
			},
		},
		{
			name: "commit straddles a page boundary",
			specs: []testutil.ReleaseSpec{
				{Commit: "aaa111", Objects: 3, Deployed: historyBase, Size: 10},
				{Commit: "bbb222", Objects: 4, Deployed: historyBase.Add(time.Hour), Size: 10},
				{Commit: "ccc333", Objects: 3, Deployed: historyBase.Add(2 * time.Hour), Size: 10},
			},
			pageSize: 4,
			want: []Release{
				{Commit: "ccc333", LastModified: historyBase.Add(2 * time.Hour), Objects: 3, Bytes: 30},
				{Commit: "bbb222", LastModified: historyBase.Add(time.Hour), Objects: 4, Bytes: 40},
				{Commit: "aaa111", LastModified: historyBase, Objects: 3, Bytes: 30},
			},
		},
		{
			name: "latest prefix excluded from history",
			specs: []testutil.ReleaseSpec{
				{Commit: "aaa111", Objects: 2, Deployed: historyBase, Size: 10},
				{Commit: "latest", Objects: 2, Deployed: historyBase.Add(time.Hour), Size: 10},
			},
			pageSize: 1000,
			want: []Release{
				{Commit: "aaa111", LastModified: historyBase, Objects: 2, Bytes: 20},
			},
		},
		{
			name: "timestamp tie broken by commit id",
			specs: []testutil.ReleaseSpec{
				{Commit: "zzz999", Objects: 1, Deployed: historyBase, Size: 10},
				{Commit: "aaa111", Objects: 1, Deployed: historyBase, Size: 10},
			},
			pageSize: 1000,
			want: []Release{
				{Commit: "aaa111", LastModified: historyBase, Objects: 1, Bytes: 10},
				{Commit: "zzz999", LastModified: historyBase, Objects: 1, Bytes: 10},
			},
		},
		{
			name:     "empty store",
			specs:    nil,
			pageSize: 1000,
			want:     []Release{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := testutil.GenerateListing("myapp/", tt.specs)
			paged := testutil.PagedListObjects(listing, tt.pageSize)
			mockClient := &testutil.MockS3Client{
				ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
					assert.Equal(t, "deploy-bucket", aws.ToString(params.Bucket))
					return paged(params)
				},
			}

			st := NewWithClient(mockClient, "deploy-bucket", "myapp")
			releases, err := st.History(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, releases)
		})
	}
}

// TestStore_History_PaginationRequests verifies continuation tokens are fed
// back until the listing is exhausted.
func TestStore_History_PaginationRequests(t *testing.T) {
	listing := testutil.GenerateListing("myapp/", []testutil.ReleaseSpec{
		{Commit: "aaa111", Objects: 10, Deployed: historyBase, Size: 1},
	})
	paged := testutil.PagedListObjects(listing, 3)

	var tokens []string
	mockClient := &testutil.MockS3Client{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			tokens = append(tokens, aws.ToString(params.ContinuationToken))
			return paged(params)
		},
	}

	st := NewWithClient(mockClient, "deploy-bucket", "myapp")
	releases, err := st.History(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, 10, releases[0].Objects)

	// 10 objects at page size 3 means 4 requests; the first carries no token.
	require.Len(t, tokens, 4)
	assert.Equal(t, "", tokens[0])
	assert.Equal(t, []string{"page-3", "page-6", "page-9"}, tokens[1:])
}

// TestStore_History_ListError tests that listing failures are wrapped.
func TestStore_History_ListError(t *testing.T) {
	mockClient := &testutil.MockS3Client{
		ListObjectsV2Func: func(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, errors.New("connection reset")
		},
	}

	st := NewWithClient(mockClient, "deploy-bucket", "myapp")
	releases, err := st.History(context.Background())
	require.Error(t, err)
	assert.Nil(t, releases)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "history")
}

// TestStore_Release tests single-commit aggregation.
func TestStore_Release(t *testing.T) {
	tests := []struct {
		name        string
		commit      string
		specs       []testutil.ReleaseSpec
		wantErr     error
		wantObjects int
	}{
		{
			name:   "existing release",
			commit: "aaa111",
			specs: []testutil.ReleaseSpec{
				{Commit: "aaa111", Objects: 3, Deployed: historyBase, Size: 10},
			},
			wantObjects: 3,
		},
		{
			name:    "unknown commit",
			commit:  "nope",
			specs:   nil,
			wantErr: rberrors.ErrReleaseNotFound,
		},
		{
			name:    "empty commit rejected",
			commit:  "",
			wantErr: rberrors.ErrInvalidInput,
		},
		{
			name:    "latest is not a release",
			commit:  "latest",
			wantErr: rberrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := testutil.GenerateListing("myapp/", tt.specs)
			paged := testutil.PagedListObjects(listing, 1000)
			mockClient := &testutil.MockS3Client{
				ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
					return paged(params)
				},
			}

			st := NewWithClient(mockClient, "deploy-bucket", "myapp")
			release, err := st.Release(context.Background(), tt.commit)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, release)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.commit, release.Commit)
			assert.Equal(t, tt.wantObjects, release.Objects)
		})
	}
}

// TestStore_Latest tests aggregation of the latest pointer.
func TestStore_Latest(t *testing.T) {
	t.Run("populated latest", func(t *testing.T) {
		listing := testutil.GenerateListing("myapp/", []testutil.ReleaseSpec{
			{Commit: "latest", Objects: 2, Deployed: historyBase, Size: 25},
		})
		paged := testutil.PagedListObjects(listing, 1000)
		mockClient := &testutil.MockS3Client{
			ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
				assert.Equal(t, "myapp/latest/", aws.ToString(params.Prefix))
				return paged(params)
			},
		}

		st := NewWithClient(mockClient, "deploy-bucket", "myapp")
		latest, err := st.Latest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, latest.Objects)
		assert.Equal(t, int64(50), latest.Bytes)
	})

	t.Run("empty latest", func(t *testing.T) {
		mockClient := &testutil.MockS3Client{}

		st := NewWithClient(mockClient, "deploy-bucket", "myapp")
		latest, err := st.Latest(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, rberrors.ErrLatestMissing)
		assert.Nil(t, latest)
	})
}
