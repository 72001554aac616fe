package pricing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"

	"github.com/younsl/ebsconvert/internal/models"
	"github.com/younsl/ebsconvert/pkg/utils"
)

const apiTimeout = 5 * time.Second

// GetEBSVolumePrice returns the price per GB-month for a volume type in a region
// together with where the price came from
func (e *Estimator) GetEBSVolumePrice(ctx context.Context, volumeType, region string) (float64, PricingSource) {
	cacheKey := fmt.Sprintf("ebs:%s:%s", volumeType, region)

	e.mu.RLock()
	if price, found := e.cache[cacheKey]; found {
		e.mu.RUnlock()
		updatePricingAPIStats(region, "cache")
		return price, PricingSourceCache
	}
	e.mu.RUnlock()

	price, err := e.getEBSPriceFromAPI(ctx, volumeType, region)
	if err == nil {
		updatePricingAPIStats(region, "success")
		e.mu.Lock()
		e.cache[cacheKey] = price
		e.mu.Unlock()
		return price, PricingSourceAPI
	}
	updatePricingAPIStats(region, "failure")

	if price, ok := defaultEBSPrice(volumeType, region); ok {
		return price, PricingSourceDefault
	}
	return 0, PricingSourceNA
}

// EstimateMonthlySavings returns the monthly cost difference of moving every
// candidate to targetType. The reported source is the least reliable source
// used for any price.
func (e *Estimator) EstimateMonthlySavings(ctx context.Context, candidates []models.VolumeCandidate, targetType, region string) (float64, string) {
	var total float64
	source := PricingSourceAPI
	for _, candidate := range candidates {
		current, currentSource := e.GetEBSVolumePrice(ctx, candidate.VolumeType, region)
		target, targetSource := e.GetEBSVolumePrice(ctx, targetType, region)
		source = weakerSource(source, weakerSource(currentSource, targetSource))
		if currentSource == PricingSourceNA || targetSource == PricingSourceNA {
			continue
		}
		total += (current - target) * float64(candidate.Size)
	}
	if len(candidates) == 0 {
		return 0, string(PricingSourceNA)
	}
	return total, string(source)
}

func weakerSource(a, b PricingSource) PricingSource {
	rank := map[PricingSource]int{
		PricingSourceAPI:     0,
		PricingSourceCache:   0,
		PricingSourceDefault: 1,
		PricingSourceNA:      2,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// defaultEBSPrice looks the price up in the fallback table, using us-east-1
// when the region is unknown
func defaultEBSPrice(volumeType, region string) (float64, bool) {
	regionPrices, found := DefaultEBSPrices[region]
	if !found {
		regionPrices = DefaultEBSPrices["us-east-1"]
	}
	price, found := regionPrices[volumeType]
	return price, found
}

// getEBSPriceFromAPI retrieves EBS volume pricing from the AWS Pricing API
func (e *Estimator) getEBSPriceFromAPI(ctx context.Context, volumeType, region string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	filters := []types.Filter{
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("volumeType"),
			Value: aws.String(mapVolumeTypeToAPIValue(volumeType)),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("location"),
			Value: aws.String(utils.GetRegionDescriptiveName(region)),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("productFamily"),
			Value: aws.String("Storage"),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("regionCode"),
			Value: aws.String(region),
		},
	}

	products, err := e.getPricingProducts(ctx, "AmazonEC2", filters)
	if err != nil {
		return 0, err
	}

	// Several volume types share an API filter value, so match volumeApiName exactly
	for _, product := range products {
		data, err := utils.ParseJSON(product)
		if err != nil {
			continue
		}
		attributes, err := utils.GetNestedMap(data, "product", "attributes")
		if err != nil {
			continue
		}
		if name, _ := attributes["volumeApiName"].(string); name == volumeType {
			return extractEBSPrice(data)
		}
	}

	return 0, fmt.Errorf("no exact match found for EBS volume type %s in region %s", volumeType, region)
}

// mapVolumeTypeToAPIValue maps EBS volume types to their API filter values
func mapVolumeTypeToAPIValue(volumeType string) string {
	switch volumeType {
	case "gp2", "gp3":
		return "General Purpose"
	case "io1", "io2":
		return "Provisioned IOPS"
	case "st1":
		return "Throughput Optimized HDD"
	case "sc1":
		return "Cold HDD"
	case "standard":
		return "Magnetic"
	default:
		return "General Purpose"
	}
}

// extractEBSPrice extracts the price per GB-month from a price list document
func extractEBSPrice(priceData map[string]interface{}) (float64, error) {
	onDemand, err := utils.GetNestedMap(priceData, "terms", "OnDemand")
	if err != nil {
		return 0, fmt.Errorf("OnDemand terms not found: %w", err)
	}

	skuOffer, err := utils.GetFirstMapValue(onDemand)
	if err != nil {
		return 0, fmt.Errorf("no SKU offer found")
	}
	skuOfferMap, ok := skuOffer.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("SKU offer is not a map")
	}

	priceDimensions, err := utils.GetNestedMap(skuOfferMap, "priceDimensions")
	if err != nil {
		return 0, err
	}
	dimension, err := utils.GetFirstMapValue(priceDimensions)
	if err != nil {
		return 0, fmt.Errorf("no price dimension found")
	}
	dimensionMap, ok := dimension.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("price dimension is not a map")
	}

	// Check that this is a per GB-month price
	unit, _ := dimensionMap["unit"].(string)
	if unit != "GB-Mo" && unit != "GB-month" {
		return 0, fmt.Errorf("unexpected pricing unit: %s", unit)
	}

	pricePerUnit, err := utils.GetNestedMap(dimensionMap, "pricePerUnit")
	if err != nil {
		return 0, err
	}
	usd, ok := pricePerUnit["USD"].(string)
	if !ok {
		return 0, fmt.Errorf("USD price not found or invalid")
	}

	price, err := strconv.ParseFloat(usd, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing price: %w", err)
	}
	return price, nil
}
