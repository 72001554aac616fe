package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"

	"github.com/younsl/ebsconvert/internal/version"
	"github.com/younsl/ebsconvert/pkg/utils"
)

// imdsTimeout bounds the instance metadata lookup used when no region is configured
const imdsTimeout = 2 * time.Second

// LoadConfig loads the shared AWS configuration. An empty region falls back to
// the SDK's own resolution (AWS_REGION, profile), then instance metadata, then
// the default region.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithEC2IMDSClientEnableState(imds.ClientEnabled),
		config.WithAppID(version.AppID()),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("error loading AWS config: %w", err)
	}

	if cfg.Region == "" {
		cfg.Region = regionFromIMDS(ctx, imds.NewFromConfig(cfg))
	}
	return cfg, nil
}

type regionGetter interface {
	GetRegion(ctx context.Context, params *imds.GetRegionInput, optFns ...func(*imds.Options)) (*imds.GetRegionOutput, error)
}

func regionFromIMDS(ctx context.Context, client regionGetter) string {
	ctx, cancel := context.WithTimeout(ctx, imdsTimeout)
	defer cancel()

	out, err := client.GetRegion(ctx, &imds.GetRegionInput{})
	if err != nil || out.Region == "" {
		return utils.GetDefaultRegion()
	}
	return out.Region
}
