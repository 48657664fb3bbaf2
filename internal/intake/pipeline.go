package intake

import (
	"context"
	"log/slog"
	"strings"

	xerrors "RWA-Chain/internal/errors"
	"RWA-Chain/internal/extract"
	"RWA-Chain/internal/observability/metrics"
	storage "RWA-Chain/internal/storage/mysql"
	"RWA-Chain/internal/verify"
	"RWA-Chain/pkg/logger"
)

// Executor 定义了处理器所需的处理能力。
type Executor interface {
	Execute(ctx context.Context, job *Job) (*Outcome, error)
}

// Pipeline 串联字段抽取、资产落库与多代理核验，是入库任务的默认执行器。
type Pipeline struct {
	extractor   extract.Extractor
	coordinator *verify.Coordinator
	assets      storage.AssetRepository
}

// NewPipeline 构造入库处理管道。
func NewPipeline(extractor extract.Extractor, coordinator *verify.Coordinator, assets storage.AssetRepository) *Pipeline {
	return &Pipeline{extractor: extractor, coordinator: coordinator, assets: assets}
}

// Execute 实现 Executor 接口。资产 ID 沿用任务 ID，重复执行时落库步骤幂等。
func (p *Pipeline) Execute(ctx context.Context, job *Job) (*Outcome, error) {
	if p.extractor == nil || p.coordinator == nil || p.assets == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "入库管道未初始化")
	}

	extraction := p.extractor.Extract(ctx, job.RawText)
	record := extraction.Record
	record.ID = job.ID
	record.WalletAddress = job.WalletAddress

	if err := p.assets.Create(ctx, storage.StoredAsset{Asset: record}); err != nil {
		// 重试场景下资产可能已经存在，继续核验即可。
		if xerrors.CodeOf(err) != xerrors.CodeConflict {
			return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "资产落库失败")
		}
	}

	report := p.coordinator.Verify(record)
	if err := p.assets.UpdateVerification(ctx, record.ID, report); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "核验报告落库失败")
	}
	metrics.ObserveVerification(string(report.Status))

	logger.L().Info("资产核验完成",
		slog.String("asset_id", record.ID),
		slog.String("asset_type", string(record.AssetType)),
		slog.Float64("overall_score", report.OverallScore),
		slog.String("status", string(report.Status)),
	)

	return &Outcome{
		AssetID:            record.ID,
		AssetType:          string(record.AssetType),
		Confidence:         extraction.Confidence,
		VerificationStatus: string(report.Status),
		OverallScore:       report.OverallScore,
		Notes:              strings.Join(extraction.FollowUpQuestions, " "),
	}, nil
}

var _ Executor = (*Pipeline)(nil)
