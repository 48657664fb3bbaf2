package intake

import (
	stdErrors "errors"

	xerrors "RWA-Chain/internal/errors"
)

// Status 表示入库任务在生命周期中的状态。
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome 保存一次入库任务的处理结果。
type Outcome struct {
	AssetID            string  `json:"asset_id"`
	AssetType          string  `json:"asset_type"`
	Confidence         float64 `json:"confidence"`
	VerificationStatus string  `json:"verification_status"`
	OverallScore       float64 `json:"overall_score"`
	Notes              string  `json:"notes,omitempty"`
}

// Job 描述了排队处理的资产提交。
type Job struct {
	ID            string   `json:"id"`
	RawText       string   `json:"raw_text"`
	WalletAddress string   `json:"wallet_address"`
	Status        Status   `json:"status"`
	Attempts      int      `json:"attempts"`
	MaxRetries    int      `json:"max_retries"`
	LastError     string   `json:"last_error,omitempty"`
	ErrorCode     string   `json:"error_code,omitempty"`
	Result        *Outcome `json:"result,omitempty"`
	CreatedAt     int64    `json:"created_at"`
	UpdatedAt     int64    `json:"updated_at"`
}

var (
	// ErrJobNotFound 表示指定的任务不存在。
	ErrJobNotFound = xerrors.New(CodeJobNotFound, "intake job not found")
	// ErrJobConflict 表示任务在当前状态下无法进行所请求的操作。
	ErrJobConflict = xerrors.New(CodeJobConflict, "intake job conflict", xerrors.WithSeverity(xerrors.SeverityWarning))
	// ErrJobCompleted 表示任务已经成功完成。
	ErrJobCompleted = xerrors.New(CodeJobCompleted, "intake job already completed", xerrors.WithSeverity(xerrors.SeverityInfo))
	// ErrJobExhausted 表示任务的重试次数已经耗尽。
	ErrJobExhausted = xerrors.New(CodeJobExhausted, "intake job retries exhausted", xerrors.WithSeverity(xerrors.SeverityCritical))
)

const (
	CodeJobNotFound   xerrors.Code = "INTAKE_JOB_NOT_FOUND"
	CodeJobConflict   xerrors.Code = "INTAKE_JOB_CONFLICT"
	CodeJobCompleted  xerrors.Code = "INTAKE_JOB_COMPLETED"
	CodeJobExhausted  xerrors.Code = "INTAKE_JOB_RETRIES_EXHAUSTED"
	CodeJobValidation xerrors.Code = "INTAKE_JOB_VALIDATION_FAILED"
	CodeJobPublish    xerrors.Code = "INTAKE_JOB_PUBLISH_FAILED"
	CodeJobProcessing xerrors.Code = "INTAKE_JOB_PROCESSING_FAILED"
)

func init() {
	xerrors.Register(CodeJobNotFound, xerrors.Attributes{
		Message:   "intake job not found",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeJobConflict, xerrors.Attributes{
		Message:   "intake job conflict",
		Severity:  xerrors.SeverityWarning,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeJobCompleted, xerrors.Attributes{
		Message:   "intake job already completed",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeJobExhausted, xerrors.Attributes{
		Message:   "intake job retries exhausted",
		Severity:  xerrors.SeverityCritical,
		Retryable: false,
		Alert:     true,
	})
	xerrors.Register(CodeJobValidation, xerrors.Attributes{
		Message:   "intake job validation failed",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeJobPublish, xerrors.Attributes{
		Message:   "failed to publish intake job",
		Severity:  xerrors.SeverityCritical,
		Retryable: true,
		Alert:     true,
	})
	xerrors.Register(CodeJobProcessing, xerrors.Attributes{
		Message:   "intake job execution failed",
		Severity:  xerrors.SeverityWarning,
		Retryable: true,
		Alert:     true,
	})
}

// IsJobError 判断错误是否为统一入库任务错误。
func IsJobError(err error, target xerrors.Code) bool {
	if err == nil {
		return false
	}
	if stdErrors.Is(err, ErrJobNotFound) {
		return target == CodeJobNotFound
	}
	if stdErrors.Is(err, ErrJobConflict) {
		return target == CodeJobConflict
	}
	if stdErrors.Is(err, ErrJobCompleted) {
		return target == CodeJobCompleted
	}
	if stdErrors.Is(err, ErrJobExhausted) {
		return target == CodeJobExhausted
	}
	return false
}

// IsValidStatus 检查给定的任务状态是否为支持的枚举值。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusRunning, StatusSucceeded, StatusFailed:
		return true
	default:
		return false
	}
}

func cloneJob(job *Job) *Job {
	clone := *job
	if job.Result != nil {
		resultCopy := *job.Result
		clone.Result = &resultCopy
	}
	return &clone
}
