package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestAssetMonthlyDepreciation(t *testing.T) {
	asset := &Asset{
		Name:              "Tractor",
		Type:              AssetTypeVehicle,
		PurchasePrice:     decimal.NewFromInt(100000),
		DepreciationYears: intPtr(5),
	}

	// 100,000 over 5 years -> 1,666.67 per month
	assert.Equal(t, "1666.67", RoundMinor(asset.MonthlyDepreciation()).StringFixed(2))
}

func TestAssetMonthlyDepreciation_Land(t *testing.T) {
	land := &Asset{
		Name:          "North field",
		Type:          AssetTypeLand,
		PurchasePrice: decimal.NewFromInt(250000),
	}

	assert.True(t, land.MonthlyDepreciation().IsZero())
	assert.False(t, land.Depreciable())
}

func TestAssetNetBookValue(t *testing.T) {
	asset := &Asset{
		PurchasePrice:           decimal.NewFromInt(100000),
		AccumulatedDepreciation: decimal.NewFromInt(40000),
	}

	assert.True(t, asset.NetBookValue().Equal(decimal.NewFromInt(60000)))
}

func TestAssetDisplayNetBookValue_FlooredAtZero(t *testing.T) {
	// Rounding drift can push raw NBV slightly negative; the display
	// value floors it, the raw value does not.
	asset := &Asset{
		PurchasePrice:           decimal.NewFromInt(100000),
		AccumulatedDepreciation: decimal.RequireFromString("100000.01"),
	}

	assert.True(t, asset.NetBookValue().IsNegative())
	assert.True(t, asset.DisplayNetBookValue().IsZero())
}

func TestAssetValidate(t *testing.T) {
	asset := &Asset{
		Name:          "Plow",
		Type:          AssetTypeImplement,
		PurchasePrice: decimal.NewFromInt(15000),
	}
	assert.NoError(t, asset.Validate())

	asset.PurchasePrice = decimal.NewFromInt(-1)
	assert.ErrorIs(t, asset.Validate(), ErrNonPositiveAmount)

	asset.PurchasePrice = decimal.NewFromInt(15000)
	asset.Type = "boat"
	assert.Error(t, asset.Validate())
}

func TestMonthName_RotatingTable(t *testing.T) {
	// A fiscal year starting in August
	assert.Equal(t, "August", MonthName(8, 0))
	assert.Equal(t, "December", MonthName(8, 4))
	assert.Equal(t, "January", MonthName(8, 5))
	assert.Equal(t, "July", MonthName(8, 11))
	// Wraps past a full year
	assert.Equal(t, "August", MonthName(8, 12))
}
