package verify

import (
	"RWA-Chain/internal/asset"
)

// ValueRange 描述某一资产类别的合理估值区间（含端点）。
type ValueRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// DefaultValueRanges 返回各类别的默认估值区间。
func DefaultValueRanges() map[asset.Type]ValueRange {
	return map[asset.Type]ValueRange{
		asset.TypeRealEstate: {Min: 10_000, Max: 1_000_000_000},
		asset.TypeVehicle:    {Min: 1_000, Max: 2_000_000},
		asset.TypeArtwork:    {Min: 500, Max: 100_000_000},
		asset.TypeEquipment:  {Min: 100, Max: 5_000_000},
		asset.TypeCommodity:  {Min: 50, Max: 10_000_000},
	}
}

// ValueAgent 判断估值是否落在类别的合理区间内。
// 区间命中得 1.0，低于下限 0.4，高于上限 0.6，类别未知 0.5。
type ValueAgent struct {
	ranges map[asset.Type]ValueRange
}

// NewValueAgent 创建估值合理性代理。ranges 为空时使用默认区间表。
func NewValueAgent(ranges map[asset.Type]ValueRange) ValueAgent {
	if len(ranges) == 0 {
		ranges = DefaultValueRanges()
	}
	return ValueAgent{ranges: ranges}
}

// Name 实现 Agent 接口。
func (ValueAgent) Name() string { return "value_assessment" }

// Assess 实现 Agent 接口。
func (a ValueAgent) Assess(record asset.Record) Result {
	r, ok := a.ranges[record.AssetType]
	if !ok {
		return Result{Score: 0.5, Notes: "Unknown asset type"}
	}
	value := record.EstimatedValue
	switch {
	case value >= r.Min && value <= r.Max:
		return Result{Score: 1.0, Notes: "Value within typical range"}
	case value < r.Min:
		return Result{Score: 0.4, Notes: "Value below expected"}
	default:
		return Result{Score: 0.6, Notes: "Value above expected"}
	}
}
