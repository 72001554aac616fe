package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/younsl/ebsconvert/internal/models"
)

// S3API is the subset of the S3 client used for report archiving
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ReportArchiver stores JSON run reports in an S3 bucket
type ReportArchiver struct {
	client S3API
	bucket string
	prefix string
}

// NewReportArchiver creates a ReportArchiver from a loaded AWS config
func NewReportArchiver(cfg aws.Config, bucket, prefix string) *ReportArchiver {
	return NewReportArchiverWithAPI(s3.NewFromConfig(cfg), bucket, prefix)
}

// NewReportArchiverWithAPI creates a ReportArchiver around an existing client
func NewReportArchiverWithAPI(api S3API, bucket, prefix string) *ReportArchiver {
	return &ReportArchiver{client: api, bucket: bucket, prefix: prefix}
}

// ReportKey returns the object key a report is stored under:
// <prefix>/<YYYY-MM-DD>/<run id>.json
func (a *ReportArchiver) ReportKey(report models.RunReport) string {
	return path.Join(a.prefix, report.StartedAt.UTC().Format("2006-01-02"), report.RunID+".json")
}

// Archive uploads the report and returns its s3:// location
func (a *ReportArchiver) Archive(ctx context.Context, report models.RunReport) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding run report %s: %w", report.RunID, err)
	}

	key := a.ReportKey(report)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading run report to s3://%s/%s: %w", a.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}
