package verify

import (
	"fmt"
	"strings"

	"RWA-Chain/internal/asset"
)

// JurisdictionRule 将司法辖区代码映射到一组地名关键词。
type JurisdictionRule struct {
	Code     string   `yaml:"code" json:"code"`
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultJurisdictions 返回默认的辖区关键词表。表是一个有序切片，
// 匹配时按固定顺序遍历，第一个命中的辖区生效。
func DefaultJurisdictions() []JurisdictionRule {
	return []JurisdictionRule{
		{
			Code: "IN",
			Name: "India",
			Keywords: []string{
				"INDIA", "MUMBAI", "DELHI", "NEW DELHI", "BANGALORE", "BENGALURU",
				"PUNE", "HYDERABAD", "CHENNAI", "KOLKATA", "AHMEDABAD", "JAIPUR",
				// 各邦
				"ANDHRA PRADESH", "ARUNACHAL PRADESH", "ASSAM", "BIHAR",
				"CHHATTISGARH", "GOA", "GUJARAT", "HARYANA", "HIMACHAL PRADESH",
				"JHARKHAND", "KARNATAKA", "KERALA", "MADHYA PRADESH",
				"MAHARASHTRA", "MANIPUR", "MEGHALAYA", "MIZORAM", "NAGALAND",
				"ODISHA", "PUNJAB", "RAJASTHAN", "SIKKIM", "TAMIL NADU",
				"TELANGANA", "TRIPURA", "UTTAR PRADESH", "UTTARAKHAND",
				"WEST BENGAL",
				// 联邦属地
				"ANDAMAN", "NICOBAR", "CHANDIGARH", "DADRA", "NAGAR HAVELI",
				"DAMAN", "DIU", "JAMMU", "KASHMIR", "LADAKH", "LAKSHADWEEP",
				"PUDUCHERRY",
			},
		},
		{
			Code: "US",
			Name: "United States",
			Keywords: []string{
				"USA", "UNITED STATES", "NEW YORK", "CALIFORNIA", "TEXAS",
				"CHICAGO", "SAN FRANCISCO", "LOS ANGELES", "BOSTON", "SEATTLE",
			},
		},
		{
			Code: "UK",
			Name: "United Kingdom",
			Keywords: []string{
				"UNITED KINGDOM", "LONDON", "ENGLAND", "SCOTLAND", "WALES",
				"MANCHESTER", "EDINBURGH",
			},
		},
		{
			Code:     "CA",
			Name:     "Canada",
			Keywords: []string{"CANADA", "TORONTO", "VANCOUVER", "MONTREAL", "ONTARIO"},
		},
		{
			Code: "EU",
			Name: "Europe",
			Keywords: []string{
				"GERMANY", "FRANCE", "ITALY", "SPAIN", "NETHERLANDS", "EUROPE",
				"BERLIN", "PARIS", "MADRID", "AMSTERDAM", "MILAN",
			},
		},
		{
			Code:     "SG",
			Name:     "Singapore",
			Keywords: []string{"SINGAPORE"},
		},
	}
}

// JurisdictionAgent 将所在地文本与辖区关键词表匹配。
// 命中得 0.9 并在说明中点名辖区，未命中得 0.5。
type JurisdictionAgent struct {
	rules []JurisdictionRule
}

// NewJurisdictionAgent 创建辖区识别代理。rules 为空时使用默认表。
func NewJurisdictionAgent(rules []JurisdictionRule) JurisdictionAgent {
	if len(rules) == 0 {
		rules = DefaultJurisdictions()
	}
	return JurisdictionAgent{rules: rules}
}

// Name 实现 Agent 接口。
func (JurisdictionAgent) Name() string { return "jurisdiction" }

// Assess 实现 Agent 接口。
func (a JurisdictionAgent) Assess(record asset.Record) Result {
	location := strings.ToUpper(record.Location)
	for _, rule := range a.rules {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(location, keyword) {
				name := rule.Name
				if name == "" {
					name = rule.Code
				}
				return Result{
					Score: 0.9,
					Notes: fmt.Sprintf("Jurisdiction recognized as %s", name),
				}
			}
		}
	}
	return Result{Score: 0.5, Notes: "Jurisdiction not recognized"}
}
