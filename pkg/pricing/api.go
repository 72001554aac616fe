package pricing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// The AWS Pricing API is only available in us-east-1 and ap-south-1
const pricingRegion = "us-east-1"

// ProductsAPI is the subset of the Pricing client used to look up EBS prices
type ProductsAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// Estimator looks up EBS storage prices and caches them per type and region.
// A nil client makes every lookup use the fallback table.
type Estimator struct {
	client ProductsAPI

	mu    sync.RWMutex
	cache map[string]float64
}

// NewEstimator creates an Estimator that queries the Pricing API with the credentials in cfg
func NewEstimator(cfg aws.Config) *Estimator {
	pricingCfg := cfg.Copy()
	pricingCfg.Region = pricingRegion
	return NewEstimatorWithAPI(pricing.NewFromConfig(pricingCfg))
}

// NewEstimatorWithAPI creates an Estimator around an existing client, which may be nil
func NewEstimatorWithAPI(api ProductsAPI) *Estimator {
	return &Estimator{
		client: api,
		cache:  make(map[string]float64),
	}
}

// getPricingProducts returns the raw price list documents matching filters
func (e *Estimator) getPricingProducts(ctx context.Context, serviceCode string, filters []types.Filter) ([]string, error) {
	if e.client == nil {
		return nil, fmt.Errorf("AWS pricing client not initialized")
	}

	input := &pricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(100),
	}

	resp, err := e.client.GetProducts(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error calling AWS Pricing API: %w", err)
	}
	if len(resp.PriceList) == 0 {
		return nil, fmt.Errorf("no pricing found for %s", serviceCode)
	}
	return resp.PriceList, nil
}
