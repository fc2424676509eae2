package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const exportPrefix = "exports/"

// DeleteStale removes exports uploaded before cutoff. Their links stopped
// working long ago so nobody can reach them anymore
func (e *Exporter) DeleteStale(ctx context.Context, cutoff time.Time) (int, error) {
	var stale []types.ObjectIdentifier

	p := s3.NewListObjectsV2Paginator(e.s3.C, &s3.ListObjectsV2Input{
		Bucket: e.s3.Bucket,
		Prefix: aws.String(exportPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to list exports, %w", err)
		}

		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(cutoff) {
				stale = append(stale, types.ObjectIdentifier{Key: obj.Key})
			}
		}
	}

	// S3 deletes at most 1000 keys per request
	deleted := 0
	for start := 0; start < len(stale); start += 1000 {
		end := min(start+1000, len(stale))

		_, err := e.s3.C.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: e.s3.Bucket,
			Delete: &types.Delete{
				Objects: stale[start:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete stale exports, %w", err)
		}

		deleted += end - start
	}

	return deleted, nil
}

// ExportCleanup drops exports older than keep every t until ctx is done
func ExportCleanup(ctx context.Context, t, keep time.Duration, e *Exporter) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Export cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			n, err := e.DeleteStale(ctx, time.Now().Add(-keep))
			if err != nil {
				zap.L().Error("Failed to clean up exports", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Export cleanup finished", zap.Int("deleted", n))
			}
		}
	}()
}
