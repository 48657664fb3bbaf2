package verify

import (
	"fmt"
	"log/slog"

	"RWA-Chain/internal/asset"
	"RWA-Chain/pkg/logger"
)

// agentFailureScore 是评分代理执行异常时代入的中性分。
// 既定策略：捕获单个代理的异常并以中性分继续，核验流程绝不中断。
const agentFailureScore = 0.5

// defaultRemediations 按代理名给出分数不足时的整改建议。
var defaultRemediations = map[string]string{
	"basic_info":       "Provide a more complete asset description.",
	"value_assessment": "Provide a formal valuation or appraisal document.",
	"jurisdiction":     "Clarify the asset's location or city.",
	"asset_specific":   "Include more asset-specific details like documents, specs, or characteristics.",
	"consistency":      "Reconcile the declared value with the description.",
	"location_quality": "Provide a specific city or address for the asset.",
}

// nextStepsByStatus 按裁定状态给出固定的后续动作列表。
var nextStepsByStatus = map[Status][]string{
	StatusVerified:       {"Proceed to tokenization", "Create token on blockchain", "Generate smart contract"},
	StatusRequiresReview: {"Add more details", "Request manual review"},
	StatusRejected:       {"Asset rejected", "Revise asset information"},
}

// recommendationFloor 低于该分数的代理会触发整改建议。
const recommendationFloor = 0.8

// Coordinator 持有一组按注册顺序排列的评分代理，并把它们的输出
// 汇总成一次核验裁定。实例本身不含可变状态，可被并发使用。
type Coordinator struct {
	agents     []Agent
	thresholds Thresholds
}

// Option 定义可选的 Coordinator 配置。
type Option func(*Coordinator)

// WithThresholds 覆盖默认的裁定阈值。
func WithThresholds(t Thresholds) Option {
	return func(c *Coordinator) {
		if t.Verified > 0 && t.Review > 0 && t.Verified >= t.Review {
			c.thresholds = t
		}
	}
}

// DefaultAgents 返回默认的代理流水线，顺序固定。
func DefaultAgents() []Agent {
	return []Agent{
		NewCompletenessAgent(),
		NewValueAgent(nil),
		NewJurisdictionAgent(nil),
		NewDetailAgent(nil),
	}
}

// NewCoordinator 以显式注入的代理列表构造 Coordinator。
// agents 为空时使用默认流水线；不存在任何进程级共享注册表。
func NewCoordinator(agents []Agent, opts ...Option) *Coordinator {
	if len(agents) == 0 {
		agents = DefaultAgents()
	}
	c := &Coordinator{
		agents:     agents,
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Thresholds 返回当前生效的裁定阈值。
func (c *Coordinator) Thresholds() Thresholds {
	return c.thresholds
}

// Verify 依次调用所有注册代理，取平均分并映射为裁定状态。
// 纯同步计算，除 CPU 时间外没有任何副作用。
func (c *Coordinator) Verify(record asset.Record) Report {
	record = record.Normalize()

	report := Report{
		Breakdown:    make(Breakdown, 0, len(c.agents)),
		Explanations: make([]string, 0, len(c.agents)),
	}

	var sum float64
	for _, ag := range c.agents {
		result, issue := c.assess(ag, record)
		if issue != "" {
			report.Issues = append(report.Issues, issue)
		}
		report.Breakdown = append(report.Breakdown, AgentScore{Name: ag.Name(), Score: result.Score})
		report.Explanations = append(report.Explanations, fmt.Sprintf("%s: %s", ag.Name(), result.Notes))
		sum += result.Score

		if result.Score < recommendationFloor {
			if remediation, ok := defaultRemediations[ag.Name()]; ok {
				report.Recommendations = append(report.Recommendations, remediation)
			}
		}
	}

	report.OverallScore = round2(sum / float64(len(c.agents)))
	report.Status = c.thresholds.StatusFor(report.OverallScore)
	report.NextSteps = append([]string(nil), nextStepsByStatus[report.Status]...)
	return report
}

// assess 执行单个代理并兜住异常：失败的代理代入中性分继续，
// 说明中记录失败原因，绝不让单点故障打翻整次核验。
func (c *Coordinator) assess(ag Agent, record asset.Record) (result Result, issue string) {
	defer func() {
		if r := recover(); r != nil {
			issue = fmt.Sprintf("Agent %s failed: %v", ag.Name(), r)
			result = Result{Score: agentFailureScore, Notes: issue}
			logger.L().Warn("评分代理执行异常，已代入中性分",
				slog.String("agent", ag.Name()),
				slog.Any("panic", r),
			)
		}
	}()
	return ag.Assess(record), ""
}
