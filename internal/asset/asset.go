package asset

import (
	"strings"
)

// Type 表示资产的类别枚举。
type Type string

const (
	TypeRealEstate Type = "real_estate"
	TypeVehicle    Type = "vehicle"
	TypeArtwork    Type = "artwork"
	TypeEquipment  Type = "equipment"
	TypeCommodity  Type = "commodity"
	TypeUnknown    Type = "unknown"
)

// KnownTypes 按固定顺序列出所有可识别的资产类别。
var KnownTypes = []Type{
	TypeRealEstate,
	TypeVehicle,
	TypeArtwork,
	TypeEquipment,
	TypeCommodity,
}

// ParseType 将任意字符串归一化为资产类别，无法识别时返回 TypeUnknown。
func ParseType(raw string) Type {
	normalized := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range KnownTypes {
		if normalized == t {
			return t
		}
	}
	return TypeUnknown
}

// Known 判断类别是否为可识别类别。
func (t Type) Known() bool {
	return t != "" && t != TypeUnknown && ParseType(string(t)) != TypeUnknown
}

// Record 是一次核验流程的输入：从自由文本中抽取出的结构化资产描述。
// 在单次核验过程中视为不可变值对象。
type Record struct {
	ID             string  `json:"id,omitempty"`
	WalletAddress  string  `json:"wallet_address,omitempty"`
	AssetType      Type    `json:"asset_type"`
	EstimatedValue float64 `json:"estimated_value"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
}

// Normalize 在构造边界上兜底：负值归零、空类别归为 unknown、裁剪空白。
func (r Record) Normalize() Record {
	r.AssetType = ParseType(string(r.AssetType))
	if r.EstimatedValue < 0 {
		r.EstimatedValue = 0
	}
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
	return r
}
