package extract

import (
	"context"
	"math"
	"strings"

	"RWA-Chain/internal/asset"
)

// maxFollowUpQuestions 是一次抽取最多返回的追问数量。
const maxFollowUpQuestions = 3

// lowConfidenceFloor 低于该置信度时追加"补充细节"类追问。
const lowConfidenceFloor = 0.7

// Extraction 是字段抽取的完整产出：结构化记录、置信度与追问列表。
type Extraction struct {
	Record            asset.Record `json:"record"`
	Confidence        float64      `json:"confidence"`
	FollowUpQuestions []string     `json:"follow_up_questions"`
}

// Extractor 将自由文本转换为结构化资产记录。实现绝不向外抛出异常：
// 彻底失败时返回默认记录（unknown 类别、零估值、原文描述）。
type Extractor interface {
	Extract(ctx context.Context, raw string) Extraction
}

// fields 记录各字段是否成功抽取，用于置信度与追问计算。
type fields struct {
	typeKnown     bool
	valueFound    bool
	locationFound bool
	nonNegative   bool
}

// confidence 按成功字段数计算置信度，每个字段 0.25。
func (f fields) confidence() float64 {
	score := 0.0
	if f.typeKnown {
		score += 0.25
	}
	if f.valueFound {
		score += 0.25
	}
	if f.locationFound {
		score += 0.25
	}
	if f.nonNegative {
		score += 0.25
	}
	return math.Round(math.Min(score, 1.0)*100) / 100
}

// typeQuestions 是各类别补充细节的固定追问。
var typeQuestions = map[asset.Type]string{
	asset.TypeRealEstate: "Please provide size (sqft), bedrooms, year built.",
	asset.TypeVehicle:    "Please provide year, model, mileage of the vehicle.",
	asset.TypeArtwork:    "Please provide artist name, dimensions, and medium.",
}

// followUpQuestions 按固定优先级生成追问列表，封顶 maxFollowUpQuestions 条。
// 对相同输入输出完全确定。
func followUpQuestions(record asset.Record, f fields, confidence float64) []string {
	var questions []string
	if !record.AssetType.Known() {
		questions = append(questions, "What type of asset are you looking to tokenize?")
	}
	if !f.valueFound {
		questions = append(questions, "What is the estimated value of your asset?")
	}
	if !f.locationFound {
		questions = append(questions, "Where is the asset located?")
	}
	if confidence < lowConfidenceFloor {
		questions = append(questions, "Could you provide more details about your asset?")
	}
	if question, ok := typeQuestions[record.AssetType]; ok {
		questions = append(questions, question)
	}
	if len(questions) > maxFollowUpQuestions {
		questions = questions[:maxFollowUpQuestions]
	}
	return questions
}

// cleanDescription 折叠空白并裁剪到 500 个字符。
func cleanDescription(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) > 500 {
		return string(runes[:500])
	}
	return collapsed
}

// fallbackRecord 是彻底失败时的兜底记录。
func fallbackRecord(raw string) asset.Record {
	return asset.Record{
		AssetType:      asset.TypeUnknown,
		EstimatedValue: 0,
		Location:       "unknown",
		Description:    cleanDescription(raw),
	}
}
