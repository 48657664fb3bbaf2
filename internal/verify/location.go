package verify

import (
	"strings"

	"RWA-Chain/internal/asset"
)

// locationPlaceholders 列出被视为无效占位的所在地取值。
var locationPlaceholders = map[string]struct{}{
	"unknown": {},
	"n/a":     {},
	"na":      {},
	"none":    {},
	"tbd":     {},
}

// LocationQualityAgent 判断所在地是否只是占位符或过短，
// 无效得 0.3，有效得 1.0。
type LocationQualityAgent struct{}

// NewLocationQualityAgent 创建所在地质量代理。
func NewLocationQualityAgent() LocationQualityAgent {
	return LocationQualityAgent{}
}

// Name 实现 Agent 接口。
func (LocationQualityAgent) Name() string { return "location_quality" }

// Assess 实现 Agent 接口。
func (LocationQualityAgent) Assess(record asset.Record) Result {
	location := strings.ToLower(strings.TrimSpace(record.Location))
	if _, placeholder := locationPlaceholders[location]; placeholder || len(location) < 3 {
		return Result{Score: 0.3, Notes: "Location is vague or missing."}
	}
	return Result{Score: 1.0, Notes: "Location looks specific."}
}
