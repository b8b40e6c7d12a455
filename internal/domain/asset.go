package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType classifies assets; the type decides the default
// depreciation period. Land never depreciates.
type AssetType string

const (
	AssetTypeVehicle   AssetType = "vehicle"
	AssetTypeImplement AssetType = "implement"
	AssetTypeBuilding  AssetType = "building"
	AssetTypeLand      AssetType = "land"
)

// Asset is a purchased or lease-originated piece of equipment, building
// or land. Sold assets are immutable.
type Asset struct {
	ID                      uuid.UUID
	Name                    string
	Type                    AssetType
	PurchasePrice           decimal.Decimal
	PurchaseDate            time.Time
	DepreciationYears       *int // nil means non-depreciable (land)
	AccumulatedDepreciation decimal.Decimal
	FromLeaseID             *uuid.UUID // non-owning back-reference to the originating lease
	SoldDate                *time.Time
	SoldPrice               *decimal.Decimal
}

// Validate ensures the asset adheres to domain rules.
func (a *Asset) Validate() error {
	if a.Name == "" {
		return errors.New("asset name cannot be empty")
	}
	switch a.Type {
	case AssetTypeVehicle, AssetTypeImplement, AssetTypeBuilding, AssetTypeLand:
	default:
		return errors.New("unknown asset type")
	}
	if a.PurchasePrice.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}
	if a.DepreciationYears != nil && *a.DepreciationYears <= 0 {
		return ErrInvalidDuration
	}
	if a.AccumulatedDepreciation.IsNegative() {
		return errors.New("accumulated depreciation cannot be negative")
	}
	return nil
}

// IsSold reports whether the asset has been disposed of.
func (a *Asset) IsSold() bool {
	return a.SoldDate != nil
}

// Depreciable reports whether the asset still carries a depreciation
// schedule.
func (a *Asset) Depreciable() bool {
	return a.DepreciationYears != nil
}

// MonthlyDepreciation is the straight-line monthly charge:
// purchase_price / (depreciation_years * 12). Zero for non-depreciable
// assets.
func (a *Asset) MonthlyDepreciation() decimal.Decimal {
	if a.DepreciationYears == nil {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(*a.DepreciationYears) * 12)
	return a.PurchasePrice.Div(months)
}

// NetBookValue is purchase price minus accumulated depreciation. The raw
// value can go negative from rounding drift and is used as-is for
// capital gain/loss computation; flooring at zero is a display concern.
func (a *Asset) NetBookValue() decimal.Decimal {
	return a.PurchasePrice.Sub(a.AccumulatedDepreciation)
}

// DisplayNetBookValue is NetBookValue floored at zero.
func (a *Asset) DisplayNetBookValue() decimal.Decimal {
	nbv := a.NetBookValue()
	if nbv.IsNegative() {
		return decimal.Zero
	}
	return nbv
}
