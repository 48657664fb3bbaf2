package verify

import (
	"regexp"
	"strings"

	"RWA-Chain/internal/asset"
)

// 描述与估值矛盾的判定常量。
const (
	consistencyHighValue = 1_000_000
	consistencyLowValue  = 10_000
)

var (
	agedWordPattern   = regexp.MustCompile(`\b(old|aged|worn|damaged)\b`)
	luxuryWordPattern = regexp.MustCompile(`\b(luxury|luxurious|premium|exclusive)\b`)
)

// ConsistencyAgent 交叉检查描述措辞与申报估值：陈旧措辞配高估值、
// 奢华措辞配低估值都被视为可疑，得 0.5，其余情况 1.0。
type ConsistencyAgent struct{}

// NewConsistencyAgent 创建一致性检查代理。
func NewConsistencyAgent() ConsistencyAgent {
	return ConsistencyAgent{}
}

// Name 实现 Agent 接口。
func (ConsistencyAgent) Name() string { return "consistency" }

// Assess 实现 Agent 接口。
func (ConsistencyAgent) Assess(record asset.Record) Result {
	description := strings.ToLower(record.Description)

	if agedWordPattern.MatchString(description) && record.EstimatedValue > consistencyHighValue {
		return Result{Score: 0.5, Notes: "High value declared for an asset described as aged or damaged."}
	}
	if luxuryWordPattern.MatchString(description) && record.EstimatedValue > 0 && record.EstimatedValue < consistencyLowValue {
		return Result{Score: 0.5, Notes: "Low value declared for an asset described as luxury."}
	}
	return Result{Score: 1.0, Notes: "Value and description appear consistent."}
}
