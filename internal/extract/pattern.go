package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"RWA-Chain/internal/asset"
)

// typeKeywordSet 将一组触发关键词映射到资产类别，按切片顺序匹配。
type typeKeywordSet struct {
	assetType asset.Type
	keywords  []string
}

// typeKeywordSets 是类别猜测的关键词表，第一个命中的类别生效。
var typeKeywordSets = []typeKeywordSet{
	{asset.TypeRealEstate, []string{
		"house", "apartment", "property", "building", "land", "condo",
		"flat", "villa", "sqft", "bedroom", "bathroom", "deed",
	}},
	{asset.TypeVehicle, []string{
		"car", "truck", "motorcycle", "boat", "plane", "vehicle",
		"mileage", "sedan", "suv", "bike", "engine",
	}},
	{asset.TypeArtwork, []string{
		"painting", "sculpture", "artwork", "canvas", "oil painting",
		"artist", "frame",
	}},
	{asset.TypeEquipment, []string{
		"machinery", "equipment", "tool", "device", "machine",
		"serial number", "operating hours", "manufacturer", "warranty",
	}},
	{asset.TypeCommodity, []string{
		"gold", "silver", "oil", "wheat", "commodity", "metal", "oz",
		"purity", "grade",
	}},
}

// valuePattern 描述一个估值正则及其数值倍率。
type valuePattern struct {
	re    *regexp.Regexp
	scale float64
}

// valuePatterns 按优先级排列的估值正则。印度数词 crore（1e7）与
// lakh（1e5）优先于裸数字模式，否则 "worth 2 crore" 会被截成 2。
var valuePatterns = []valuePattern{
	{regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(?:crore|crores|cr)\b`), 1e7},
	{regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(?:lakh|lakhs|lac|lacs)\b`), 1e5},
	{regexp.MustCompile(`\$\s*([0-9,]+(?:\.[0-9]{1,2})?)`), 1},
	{regexp.MustCompile(`([0-9,]+(?:\.[0-9]{1,2})?)\s*dollars?`), 1},
	{regexp.MustCompile(`inr[\s₹]*([0-9,]+(?:\.[0-9]{1,2})?)`), 1},
	{regexp.MustCompile(`₹\s*([0-9,]+(?:\.[0-9]{1,2})?)`), 1},
	{regexp.MustCompile(`worth\s+([0-9,]+(?:\.[0-9]{1,2})?)`), 1},
	{regexp.MustCompile(`valued\s+at\s+([0-9,]+(?:\.[0-9]{1,2})?)`), 1},
}

// locationPatterns 从 in / located in / at 之后截取首字母大写的地名片段。
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`located in ([A-Z][a-z]+(?:[,]? [A-Z][a-z]+)*)`),
	regexp.MustCompile(`\bin ([A-Z][a-z]+(?:[,]? [A-Z][a-z]+)*)`),
	regexp.MustCompile(`\bat ([A-Z][a-z]+(?:[,]? [A-Z][a-z]+)*)`),
}

// negativeWords 命中任意一个即认为文本情绪为负面。
var negativeWords = []string{
	"scam", "fake", "fraud", "stolen", "counterfeit", "worthless", "junk",
}

// PatternExtractor 纯靠正则与关键词表完成字段抽取，不依赖任何外部服务。
type PatternExtractor struct{}

// NewPatternExtractor 创建规则抽取器。
func NewPatternExtractor() PatternExtractor {
	return PatternExtractor{}
}

// Extract 实现 Extractor 接口。纯计算，永不失败。
func (PatternExtractor) Extract(_ context.Context, raw string) Extraction {
	record := asset.Record{
		AssetType:   guessAssetType(raw),
		Description: cleanDescription(raw),
	}

	var f fields
	f.typeKnown = record.AssetType.Known()

	if value, ok := extractValue(raw); ok {
		record.EstimatedValue = value
		f.valueFound = true
	}
	if location, ok := extractLocation(raw); ok {
		record.Location = location
		f.locationFound = true
	}
	f.nonNegative = !containsNegativeWord(raw)

	confidence := f.confidence()
	return Extraction{
		Record:            record.Normalize(),
		Confidence:        confidence,
		FollowUpQuestions: followUpQuestions(record, f, confidence),
	}
}

// guessAssetType 按关键词表猜测资产类别。
func guessAssetType(text string) asset.Type {
	lowered := strings.ToLower(text)
	for _, set := range typeKeywordSets {
		for _, keyword := range set.keywords {
			if strings.Contains(lowered, keyword) {
				return set.assetType
			}
		}
	}
	return asset.TypeUnknown
}

// extractValue 按优先级尝试所有估值正则，返回第一个可解析的数值。
func extractValue(text string) (float64, bool) {
	lowered := strings.ToLower(text)
	for _, pattern := range valuePatterns {
		match := pattern.re.FindStringSubmatch(lowered)
		if match == nil {
			continue
		}
		numeric := strings.ReplaceAll(match[1], ",", "")
		value, err := strconv.ParseFloat(numeric, 64)
		if err != nil {
			continue
		}
		return value * pattern.scale, true
	}
	return 0, false
}

// extractLocation 在原始文本（保留大小写）中寻找介词后的地名。
func extractLocation(text string) (string, bool) {
	for _, pattern := range locationPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return match[1], true
		}
	}
	return "", false
}

func containsNegativeWord(text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range negativeWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
