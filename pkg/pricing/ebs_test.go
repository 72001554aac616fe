package pricing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	qt "github.com/frankban/quicktest"

	"github.com/younsl/ebsconvert/internal/models"
)

type productsFunc func(*pricing.GetProductsInput) (*pricing.GetProductsOutput, error)

func (f productsFunc) GetProducts(_ context.Context, in *pricing.GetProductsInput, _ ...func(*pricing.Options)) (*pricing.GetProductsOutput, error) {
	return f(in)
}

const gp3PriceList = `{
  "product": {"attributes": {"volumeApiName": "gp3", "location": "US East (N. Virginia)"}},
  "terms": {"OnDemand": {"SKU.TERM": {"priceDimensions": {"SKU.TERM.DIM": {
    "unit": "GB-Mo", "pricePerUnit": {"USD": "0.0800000000"}}}}}}
}`

const gp2PriceList = `{
  "product": {"attributes": {"volumeApiName": "gp2"}},
  "terms": {"OnDemand": {"SKU.TERM": {"priceDimensions": {"SKU.TERM.DIM": {
    "unit": "GB-Mo", "pricePerUnit": {"USD": "0.1000000000"}}}}}}
}`

func TestGetEBSVolumePriceFromAPIThenCache(t *testing.T) {
	c := qt.New(t)
	calls := 0
	estimator := NewEstimatorWithAPI(productsFunc(func(in *pricing.GetProductsInput) (*pricing.GetProductsOutput, error) {
		calls++
		c.Assert(aws.ToString(in.ServiceCode), qt.Equals, "AmazonEC2")
		return &pricing.GetProductsOutput{PriceList: []string{gp2PriceList, gp3PriceList}}, nil
	}))

	price, source := estimator.GetEBSVolumePrice(context.Background(), "gp3", "us-east-1")
	c.Assert(price, qt.Equals, 0.08)
	c.Assert(source, qt.Equals, PricingSourceAPI)

	price, source = estimator.GetEBSVolumePrice(context.Background(), "gp3", "us-east-1")
	c.Assert(price, qt.Equals, 0.08)
	c.Assert(source, qt.Equals, PricingSourceCache)
	c.Assert(calls, qt.Equals, 1)
}

func TestGetEBSVolumePriceFallsBackToDefaults(t *testing.T) {
	c := qt.New(t)
	estimator := NewEstimatorWithAPI(productsFunc(func(*pricing.GetProductsInput) (*pricing.GetProductsOutput, error) {
		return nil, errors.New("access denied")
	}))

	price, source := estimator.GetEBSVolumePrice(context.Background(), "gp2", "ap-northeast-2")
	c.Assert(price, qt.Equals, 0.114)
	c.Assert(source, qt.Equals, PricingSourceDefault)

	price, source = estimator.GetEBSVolumePrice(context.Background(), "gp2", "mars-north-1")
	c.Assert(price, qt.Equals, 0.10)
	c.Assert(source, qt.Equals, PricingSourceDefault)

	_, source = estimator.GetEBSVolumePrice(context.Background(), "io9", "us-east-1")
	c.Assert(source, qt.Equals, PricingSourceNA)
}

func TestEstimateMonthlySavings(t *testing.T) {
	c := qt.New(t)
	estimator := NewEstimatorWithAPI(nil)

	savings, source := estimator.EstimateMonthlySavings(context.Background(), []models.VolumeCandidate{
		{VolumeID: "vol-1", VolumeType: "gp2", Size: 100},
		{VolumeID: "vol-2", VolumeType: "gp2", Size: 50},
	}, "gp3", "us-east-1")
	c.Assert(math.Abs(savings-3.0) < 1e-9, qt.IsTrue)
	c.Assert(source, qt.Equals, "Default")

	savings, source = estimator.EstimateMonthlySavings(context.Background(), nil, "gp3", "us-east-1")
	c.Assert(savings, qt.Equals, 0.0)
	c.Assert(source, qt.Equals, "N/A")
}

func TestExtractEBSPriceRejectsUnexpectedUnit(t *testing.T) {
	c := qt.New(t)
	_, err := extractEBSPrice(map[string]interface{}{
		"terms": map[string]interface{}{"OnDemand": map[string]interface{}{"a": map[string]interface{}{
			"priceDimensions": map[string]interface{}{"b": map[string]interface{}{
				"unit":         "Hrs",
				"pricePerUnit": map[string]interface{}{"USD": "1.0"},
			}},
		}}},
	})
	c.Assert(err, qt.ErrorMatches, "unexpected pricing unit: Hrs")
}
