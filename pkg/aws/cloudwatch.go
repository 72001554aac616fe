package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/younsl/ebsconvert/internal/models"
)

const (
	metricVolumesScanned       = "VolumesScanned"
	metricConversionCandidates = "ConversionCandidates"
	metricConversionsSucceeded = "ConversionsSucceeded"
	metricConversionsFailed    = "ConversionsFailed"
	metricConversionsTimedOut  = "ConversionsTimedOut"
	metricRunDuration          = "RunDurationSeconds"
)

// CloudWatchAPI is the subset of the CloudWatch client used for run metrics
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics publishes one data point per run metric under a namespace
type CloudWatchMetrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewCloudWatchMetrics creates a CloudWatchMetrics from a loaded AWS config
func NewCloudWatchMetrics(cfg aws.Config, namespace string) *CloudWatchMetrics {
	return NewCloudWatchMetricsWithAPI(cloudwatch.NewFromConfig(cfg), namespace)
}

// NewCloudWatchMetricsWithAPI creates a CloudWatchMetrics around an existing client
func NewCloudWatchMetricsWithAPI(api CloudWatchAPI, namespace string) *CloudWatchMetrics {
	return &CloudWatchMetrics{client: api, namespace: namespace}
}

// Record pushes the counts of a finished run
func (m *CloudWatchMetrics) Record(ctx context.Context, report models.RunReport) error {
	dimensions := []cwtypes.Dimension{
		{Name: aws.String("Region"), Value: aws.String(report.Region)},
		{Name: aws.String("TargetVolumeType"), Value: aws.String(report.TargetVolumeType)},
	}
	timestamp := report.FinishedAt

	datum := func(name string, value float64, unit cwtypes.StandardUnit) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Dimensions: dimensions,
			Timestamp:  aws.Time(timestamp),
			Value:      aws.Float64(value),
			Unit:       unit,
		}
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			datum(metricVolumesScanned, float64(report.ScannedCount), cwtypes.StandardUnitCount),
			datum(metricConversionCandidates, float64(len(report.Candidates)), cwtypes.StandardUnitCount),
			datum(metricConversionsSucceeded, float64(report.Succeeded()), cwtypes.StandardUnitCount),
			datum(metricConversionsFailed, float64(report.Failed()), cwtypes.StandardUnitCount),
			datum(metricConversionsTimedOut, float64(report.TimedOut()), cwtypes.StandardUnitCount),
			datum(metricRunDuration, report.FinishedAt.Sub(report.StartedAt).Seconds(), cwtypes.StandardUnitSeconds),
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("error putting metric data to %s: %w", m.namespace, err)
	}
	return nil
}
