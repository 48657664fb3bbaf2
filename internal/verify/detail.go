package verify

import (
	"fmt"
	"strings"

	"RWA-Chain/internal/asset"
)

// detailIncrement 是每命中一个类别关键词的加分步长（粗粒度）。
const detailIncrement = 0.1

// DefaultDetailKeywords 返回各类别的细节关键词表。描述中每出现一个
// 关键词加 detailIncrement，基准分 0.5，封顶 1.0。
func DefaultDetailKeywords() map[asset.Type][]string {
	return map[asset.Type][]string{
		asset.TypeRealEstate: {
			"flat", "apartment", "bedroom", "bathroom", "sqft", "sq ft",
			"deed", "title", "floor", "balcony", "villa", "plot",
		},
		asset.TypeVehicle: {
			"engine", "model", "mileage", "year", "vin", "transmission",
			"sedan", "suv", "odometer",
		},
		asset.TypeArtwork: {
			"artist", "canvas", "painting", "sculpture", "signed", "framed",
			"medium",
		},
		asset.TypeEquipment: {
			"serial", "manufacturer", "warranty", "model", "calibration",
			"operating hours",
		},
		asset.TypeCommodity: {
			"weight", "grade", "purity", "karat", "carat", "ounce", "oz",
			"hallmark",
		},
	}
}

// DetailAgent 统计描述中出现的类别专属关键词数量，衡量细节密度。
type DetailAgent struct {
	keywords map[asset.Type][]string
}

// NewDetailAgent 创建细节密度代理。keywords 为空时使用默认关键词表。
func NewDetailAgent(keywords map[asset.Type][]string) DetailAgent {
	if len(keywords) == 0 {
		keywords = DefaultDetailKeywords()
	}
	return DetailAgent{keywords: keywords}
}

// Name 实现 Agent 接口。
func (DetailAgent) Name() string { return "asset_specific" }

// Assess 实现 Agent 接口。
func (a DetailAgent) Assess(record asset.Record) Result {
	words, ok := a.keywords[record.AssetType]
	if !ok {
		return Result{Score: 0.5, Notes: "Unknown asset type"}
	}

	description := strings.ToLower(record.Description)
	score := 0.5
	hits := 0
	for _, word := range words {
		if strings.Contains(description, word) {
			score += detailIncrement
			hits++
		}
	}

	notes := "No asset-specific keywords found."
	if hits > 0 {
		notes = fmt.Sprintf("Found %d asset-specific keywords.", hits)
	}
	return Result{Score: round2(min(score, 1.0)), Notes: notes}
}
