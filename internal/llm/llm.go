package llm

import "context"

// Request 描述一次发送给外部抽取服务的资产文本。
type Request struct {
	Input string
}

// Extraction 是外部服务返回的结构化抽取结果，
// 与对外 JSON 契约一一对应。
type Extraction struct {
	AssetType      string  `json:"asset_type"`
	EstimatedValue float64 `json:"estimated_value"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
}

// Client 定义了调用外部抽取服务的统一接口。
// 实现应当把超时与网络故障以 error 形式暴露，由调用方决定降级。
type Client interface {
	Extract(ctx context.Context, req Request) (*Extraction, error)
}
