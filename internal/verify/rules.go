package verify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"RWA-Chain/internal/asset"
)

// Rules 汇总评分流水线的全部可调参数：裁定阈值、估值区间表、
// 辖区关键词表与细节关键词表。所有字段都有编译期默认值，
// 运维可通过 YAML 文件覆盖其中任意一部分。
type Rules struct {
	Thresholds     Thresholds                  `yaml:"thresholds"`
	ValueRanges    map[asset.Type]ValueRange   `yaml:"value_ranges"`
	Jurisdictions  []JurisdictionRule          `yaml:"jurisdictions"`
	DetailKeywords map[asset.Type][]string     `yaml:"detail_keywords"`
	Supplementary  bool                        `yaml:"supplementary"`
}

// DefaultRules 返回全部默认参数。
func DefaultRules() Rules {
	return Rules{
		Thresholds:     DefaultThresholds(),
		ValueRanges:    DefaultValueRanges(),
		Jurisdictions:  DefaultJurisdictions(),
		DetailKeywords: DefaultDetailKeywords(),
	}
}

// LoadRules 从 YAML 文件加载规则，未出现的字段保持默认值。
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if strings.TrimSpace(path) == "" {
		return rules, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("读取规则文件失败: %w", err)
	}

	var overrides Rules
	if err := yaml.Unmarshal(content, &overrides); err != nil {
		return rules, fmt.Errorf("解析规则文件失败: %w", err)
	}

	if overrides.Thresholds.Verified > 0 && overrides.Thresholds.Review > 0 {
		rules.Thresholds = overrides.Thresholds
	}
	if len(overrides.ValueRanges) > 0 {
		rules.ValueRanges = overrides.ValueRanges
	}
	if len(overrides.Jurisdictions) > 0 {
		rules.Jurisdictions = overrides.Jurisdictions
	}
	if len(overrides.DetailKeywords) > 0 {
		rules.DetailKeywords = overrides.DetailKeywords
	}
	rules.Supplementary = overrides.Supplementary
	return rules, nil
}

// BuildAgents 依据规则构造代理流水线。Supplementary 打开时追加
// 一致性与所在地质量两个补充代理。
func (r Rules) BuildAgents() []Agent {
	agents := []Agent{
		NewCompletenessAgent(),
		NewValueAgent(r.ValueRanges),
		NewJurisdictionAgent(r.Jurisdictions),
		NewDetailAgent(r.DetailKeywords),
	}
	if r.Supplementary {
		agents = append(agents,
			NewConsistencyAgent(),
			NewLocationQualityAgent(),
		)
	}
	return agents
}

// NewCoordinatorFromRules 是按规则落地一个 Coordinator 的快捷方式。
func NewCoordinatorFromRules(r Rules) *Coordinator {
	return NewCoordinator(r.BuildAgents(), WithThresholds(r.Thresholds))
}
