package verify

import (
	"strings"

	"RWA-Chain/internal/asset"
)

// CompletenessAgent 检查记录四要素是否齐备：描述长度、资产类别、
// 所在地与估值。得分为各项加分之和，封顶 1.0。
type CompletenessAgent struct{}

// NewCompletenessAgent 创建完整性评分代理。
func NewCompletenessAgent() CompletenessAgent {
	return CompletenessAgent{}
}

// Name 实现 Agent 接口。
func (CompletenessAgent) Name() string { return "basic_info" }

// Assess 实现 Agent 接口。
func (CompletenessAgent) Assess(record asset.Record) Result {
	score := 0.0
	var notes []string

	if len(record.Description) > 20 {
		score += 0.3
	} else {
		notes = append(notes, "Description is missing or too short.")
	}
	if record.AssetType.Known() {
		score += 0.3
	} else {
		notes = append(notes, "Asset type is missing or unknown.")
	}
	if strings.TrimSpace(record.Location) != "" {
		score += 0.2
	} else {
		notes = append(notes, "Location is missing.")
	}
	if record.EstimatedValue > 0 {
		score += 0.2
	} else {
		notes = append(notes, "Estimated value is missing or zero.")
	}

	if score >= 0.8 {
		return Result{Score: round2(min(score, 1.0)), Notes: "All basic info present."}
	}
	return Result{Score: round2(min(score, 1.0)), Notes: strings.Join(notes, "; ")}
}
