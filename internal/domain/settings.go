package domain

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Settings keys persisted in the key/value settings table.
const (
	SettingSaveName          = "save_name"
	SettingInitialCapital    = "initial_capital"
	SettingTotalShares       = "total_shares"
	SettingInvestorShares    = "investor_shares"
	SettingFarmShares        = "farm_shares"
	SettingInitialSharePrice = "initial_share_price"
	SettingBuybackMultiplier = "buyback_multiplier"
	SettingAccumulatedLosses = "accumulated_losses"
	SettingTaxRate           = "tax_rate"
	SettingDepYearsVehicle   = "dep_years_vehicle"
	SettingDepYearsImplement = "dep_years_implement"
	SettingDepYearsBuilding  = "dep_years_building"
	SettingStartMonth        = "start_month"
	SettingSetupComplete     = "setup_complete"
)

// Settings is an immutable snapshot of the configuration table,
// constructed once per command. Computations read from the snapshot
// instead of reaching into mutable global state.
type Settings struct {
	SaveName          string
	InitialCapital    decimal.Decimal
	TotalShares       int64
	InvestorShares    int64
	FarmShares        int64
	InitialSharePrice decimal.Decimal
	BuybackMultiplier decimal.Decimal
	AccumulatedLosses decimal.Decimal
	TaxRate           decimal.Decimal // percent, e.g. 25
	DepYearsVehicle   int
	DepYearsImplement int
	DepYearsBuilding  int
	StartMonth        int // 1-12
	SetupComplete     bool
}

// ParseSettings builds a Settings snapshot from the raw key/value rows.
// Missing keys fall back to zero values; malformed numeric values are
// reported as errors rather than silently defaulted.
func ParseSettings(raw map[string]string) (Settings, error) {
	s := Settings{
		SaveName:   raw[SettingSaveName],
		StartMonth: 1,
	}

	var err error
	if s.InitialCapital, err = parseDecimal(raw, SettingInitialCapital); err != nil {
		return s, err
	}
	if s.InitialSharePrice, err = parseDecimal(raw, SettingInitialSharePrice); err != nil {
		return s, err
	}
	if s.BuybackMultiplier, err = parseDecimal(raw, SettingBuybackMultiplier); err != nil {
		return s, err
	}
	if s.AccumulatedLosses, err = parseDecimal(raw, SettingAccumulatedLosses); err != nil {
		return s, err
	}
	if s.TaxRate, err = parseDecimal(raw, SettingTaxRate); err != nil {
		return s, err
	}
	if s.TotalShares, err = parseInt64(raw, SettingTotalShares); err != nil {
		return s, err
	}
	if s.InvestorShares, err = parseInt64(raw, SettingInvestorShares); err != nil {
		return s, err
	}
	if s.FarmShares, err = parseInt64(raw, SettingFarmShares); err != nil {
		return s, err
	}

	ints := []struct {
		key string
		dst *int
	}{
		{SettingDepYearsVehicle, &s.DepYearsVehicle},
		{SettingDepYearsImplement, &s.DepYearsImplement},
		{SettingDepYearsBuilding, &s.DepYearsBuilding},
		{SettingStartMonth, &s.StartMonth},
	}
	for _, f := range ints {
		v, ok := raw[f.key]
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("setting %s: %w", f.key, err)
		}
		*f.dst = n
	}

	s.SetupComplete = raw[SettingSetupComplete] == "1"
	return s, nil
}

// DepreciationYearsFor returns the configured default depreciation
// period for an asset type. Land is non-depreciable and returns nil.
func (s Settings) DepreciationYearsFor(t AssetType) *int {
	var years int
	switch t {
	case AssetTypeVehicle:
		years = s.DepYearsVehicle
	case AssetTypeImplement:
		years = s.DepYearsImplement
	case AssetTypeBuilding:
		years = s.DepYearsBuilding
	default:
		return nil
	}
	if years <= 0 {
		return nil
	}
	return &years
}

// InvestorRatio is the fraction of outstanding shares held by outside
// investors, used to size the suggested dividend.
func (s Settings) InvestorRatio() decimal.Decimal {
	if s.TotalShares <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.InvestorShares).Div(decimal.NewFromInt(s.TotalShares))
}

func parseDecimal(raw map[string]string, key string) (decimal.Decimal, error) {
	v, ok := raw[key]
	if !ok || v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("setting %s: %w", key, err)
	}
	return d, nil
}

func parseInt64(raw map[string]string, key string) (int64, error) {
	v, ok := raw[key]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", key, err)
	}
	return n, nil
}
