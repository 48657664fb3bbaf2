package verify

import (
	"encoding/json"
	"fmt"
	"math"

	"RWA-Chain/internal/asset"
)

// Status 表示一次核验的最终裁定。
type Status string

const (
	StatusVerified       Status = "verified"
	StatusRequiresReview Status = "requires_review"
	StatusRejected       Status = "rejected"
)

// Result 是单个评分代理的输出：[0,1] 区间的分数与一段人类可读说明。
// 每次调用都会新建，一经返回不再修改。
type Result struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes"`
}

// Agent 定义了评分代理的统一接口。实现必须是无状态的纯函数：
// 相同输入多次调用产出完全一致的结果，且不产生任何副作用。
type Agent interface {
	Name() string
	Assess(record asset.Record) Result
}

// Thresholds 控制平均分到裁定状态的映射，是可调参数而非硬编码。
type Thresholds struct {
	Verified float64 `yaml:"verified" json:"verified"`
	Review   float64 `yaml:"review" json:"review"`
}

// DefaultThresholds 返回默认的裁定阈值。
func DefaultThresholds() Thresholds {
	return Thresholds{Verified: 0.7, Review: 0.5}
}

// StatusFor 将平均分映射为裁定状态。映射是纯函数：
// score >= Verified => verified；score >= Review => requires_review；否则 rejected。
func (t Thresholds) StatusFor(score float64) Status {
	switch {
	case score >= t.Verified:
		return StatusVerified
	case score >= t.Review:
		return StatusRequiresReview
	default:
		return StatusRejected
	}
}

// AgentScore 记录单个代理在结果明细中的得分。
type AgentScore struct {
	Name  string
	Score float64
}

// Breakdown 按注册顺序保存每个代理的得分。
type Breakdown []AgentScore

// Get 返回指定代理的得分。
func (b Breakdown) Get(name string) (float64, bool) {
	for _, entry := range b {
		if entry.Name == name {
			return entry.Score, true
		}
	}
	return 0, false
}

// MarshalJSON 以对象形式输出明细，键的出现顺序与注册顺序一致。
func (b Breakdown) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, entry := range b {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, []byte(fmt.Sprintf("%g", entry.Score))...)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON 从对象形式恢复明细。对象键的顺序无法还原，仅用于读取得分。
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entries := make(Breakdown, 0, len(raw))
	for name, score := range raw {
		entries = append(entries, AgentScore{Name: name, Score: score})
	}
	*b = entries
	return nil
}

// Report 汇总所有评分代理的输出，是核验流程对外的唯一结果对象。
type Report struct {
	OverallScore    float64   `json:"overall_score"`
	Status          Status    `json:"status"`
	Breakdown       Breakdown `json:"breakdown"`
	Explanations    []string  `json:"agent_notes"`
	Recommendations []string  `json:"recommendations"`
	NextSteps       []string  `json:"next_steps"`
	Issues          []string  `json:"issues,omitempty"`
}

// round2 四舍五入到两位小数，所有对外得分都经过该处理。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
