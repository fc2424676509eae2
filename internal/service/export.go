package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	a "leetgym/api/aws"
	"leetgym/api/internal/model"
	"leetgym/api/pkg/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const exportLinkTTL = 15 * time.Minute

// LogExport is the document users download to keep a copy of their history
type LogExport struct {
	ExportedAt time.Time           `json:"exportedAt"`
	Count      int                 `json:"count"`
	Items      []model.PracticeLog `json:"items"`
}

func NewLogExport(logs []model.PracticeLog, now time.Time) *LogExport {
	if logs == nil {
		logs = []model.PracticeLog{}
	}

	return &LogExport{
		ExportedAt: now.UTC(),
		Count:      len(logs),
		Items:      logs,
	}
}

// Exporter stores exports in the bucket and hands out short lived links
type Exporter struct {
	s3       *a.S3Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
}

func NewExporter(c *a.S3Client) *Exporter {
	return &Exporter{
		s3:       c,
		uploader: manager.NewUploader(c.C),
		presign:  s3.NewPresignClient(c.C),
	}
}

// Upload writes the export under exports/<userID>/ and returns a presigned
// download URL together with the moment it stops working
func (e *Exporter) Upload(ctx context.Context, userID string, export *LogExport) (string, time.Time, error) {
	body, err := json.Marshal(export)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to encode export, %w", err)
	}

	id, err := util.NewID()
	if err != nil {
		return "", time.Time{}, err
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, id)

	_, err = e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      e.s3.Bucket,
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to upload export, %w", err)
	}

	req, err := e.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: e.s3.Bucket,
		Key:    aws.String(key),
	}, s3.WithPresignExpires(exportLinkTTL))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign export, %w", err)
	}

	return req.URL, time.Now().Add(exportLinkTTL).UTC(), nil
}
