package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"RWA-Chain/internal/asset"
	"RWA-Chain/internal/llm"
	"RWA-Chain/pkg/logger"
)

// defaultLLMTimeout 是外部抽取调用的默认超时时间。
// 调用是一次性的 best-effort：超时或失败直接走规则降级，不做重试。
const defaultLLMTimeout = 20 * time.Second

// LLMExtractor 通过外部大模型服务抽取字段，失败时降级到规则抽取。
type LLMExtractor struct {
	client   llm.Client
	fallback PatternExtractor
	timeout  time.Duration
}

// LLMOption 定义可选的 LLMExtractor 配置。
type LLMOption func(*LLMExtractor)

// WithTimeout 设置外部调用的超时时间。
func WithTimeout(timeout time.Duration) LLMOption {
	return func(e *LLMExtractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// NewLLMExtractor 创建大模型抽取器。
func NewLLMExtractor(client llm.Client, opts ...LLMOption) *LLMExtractor {
	e := &LLMExtractor{
		client:   client,
		fallback: NewPatternExtractor(),
		timeout:  defaultLLMTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Extract 实现 Extractor 接口。外部服务不可用、超时或返回非法内容时
// 回落到规则抽取；该边界上绝不向调用方抛出错误。
func (e *LLMExtractor) Extract(ctx context.Context, raw string) Extraction {
	if e.client == nil {
		return e.fallback.Extract(ctx, raw)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	extraction, err := e.client.Extract(callCtx, llm.Request{Input: raw})
	if err != nil {
		logger.L().Warn("外部抽取失败，降级到规则抽取",
			slog.Any("error", err),
		)
		return e.fallback.Extract(ctx, raw)
	}

	record := asset.Record{
		AssetType:      asset.ParseType(extraction.AssetType),
		EstimatedValue: extraction.EstimatedValue,
		Location:       strings.TrimSpace(extraction.Location),
		Description:    cleanDescription(extraction.Description),
	}
	if record.Description == "" {
		record.Description = cleanDescription(raw)
	}
	// 外部服务分不出类别时沿用规则表的类别猜测。
	if !record.AssetType.Known() {
		record.AssetType = guessAssetType(record.Description)
	}

	f := fields{
		typeKnown:     record.AssetType.Known(),
		valueFound:    record.EstimatedValue > 0,
		locationFound: record.Location != "" && !strings.EqualFold(record.Location, "unknown"),
		nonNegative:   !containsNegativeWord(record.Description),
	}

	confidence := f.confidence()
	return Extraction{
		Record:            record.Normalize(),
		Confidence:        confidence,
		FollowUpQuestions: followUpQuestions(record, f, confidence),
	}
}
