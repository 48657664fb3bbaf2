package verify

import (
	"strings"
	"testing"

	"RWA-Chain/internal/asset"
)

func TestCompletenessAgentEmptyRecord(t *testing.T) {
	ag := NewCompletenessAgent()
	result := ag.Assess(asset.Record{
		AssetType:      asset.TypeUnknown,
		EstimatedValue: 0,
		Location:       "",
		Description:    "",
	})
	if result.Score != 0.0 {
		t.Fatalf("expected score 0.0, got %v", result.Score)
	}
	if !strings.Contains(result.Notes, "Description is missing") {
		t.Fatalf("unexpected notes: %q", result.Notes)
	}
}

func TestCompletenessAgentFullRecord(t *testing.T) {
	ag := NewCompletenessAgent()
	result := ag.Assess(asset.Record{
		AssetType:      asset.TypeRealEstate,
		EstimatedValue: 200000,
		Location:       "Pune, India",
		Description:    "3 bedroom apartment, 1200 sqft, deed available",
	})
	if result.Score != 1.0 {
		t.Fatalf("expected score 1.0, got %v", result.Score)
	}
	if result.Notes != "All basic info present." {
		t.Fatalf("unexpected notes: %q", result.Notes)
	}
}

func TestCompletenessAgentPartialRecordListsDeficiencies(t *testing.T) {
	ag := NewCompletenessAgent()
	result := ag.Assess(asset.Record{
		AssetType:      asset.TypeVehicle,
		EstimatedValue: 0,
		Location:       "",
		Description:    "a well maintained sedan car",
	})
	// 0.3 描述 + 0.3 类别
	if result.Score != 0.6 {
		t.Fatalf("expected score 0.6, got %v", result.Score)
	}
	if !strings.Contains(result.Notes, "Location is missing.") ||
		!strings.Contains(result.Notes, "Estimated value is missing or zero.") {
		t.Fatalf("unexpected notes: %q", result.Notes)
	}
}

func TestValueAgentWithinRange(t *testing.T) {
	ag := NewValueAgent(nil)
	cases := []struct {
		assetType asset.Type
		value     float64
	}{
		{asset.TypeRealEstate, 10_000},
		{asset.TypeRealEstate, 200_000},
		{asset.TypeRealEstate, 1_000_000_000},
		{asset.TypeVehicle, 1_000},
		{asset.TypeArtwork, 500},
		{asset.TypeEquipment, 5_000_000},
		{asset.TypeCommodity, 50},
	}
	for _, tc := range cases {
		result := ag.Assess(asset.Record{AssetType: tc.assetType, EstimatedValue: tc.value})
		if result.Score != 1.0 {
			t.Fatalf("%s value %v: expected 1.0, got %v", tc.assetType, tc.value, result.Score)
		}
	}
}

func TestValueAgentBelowRange(t *testing.T) {
	ag := NewValueAgent(nil)
	result := ag.Assess(asset.Record{AssetType: asset.TypeVehicle, EstimatedValue: 500})
	if result.Score != 0.4 {
		t.Fatalf("expected 0.4, got %v", result.Score)
	}
	if result.Notes != "Value below expected" {
		t.Fatalf("unexpected notes: %q", result.Notes)
	}
}

func TestValueAgentAboveRange(t *testing.T) {
	ag := NewValueAgent(nil)
	result := ag.Assess(asset.Record{AssetType: asset.TypeVehicle, EstimatedValue: 3_000_000})
	if result.Score != 0.6 {
		t.Fatalf("expected 0.6, got %v", result.Score)
	}
}

func TestValueAgentUnknownType(t *testing.T) {
	ag := NewValueAgent(nil)
	result := ag.Assess(asset.Record{AssetType: asset.TypeUnknown, EstimatedValue: 12345})
	if result.Score != 0.5 || result.Notes != "Unknown asset type" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestJurisdictionAgentRecognizesIndia(t *testing.T) {
	ag := NewJurisdictionAgent(nil)
	result := ag.Assess(asset.Record{Location: "Mumbai, India"})
	if result.Score != 0.9 {
		t.Fatalf("expected 0.9, got %v", result.Score)
	}
	if !strings.Contains(result.Notes, "India") {
		t.Fatalf("expected note to mention India, got %q", result.Notes)
	}
}

func TestJurisdictionAgentIndianStates(t *testing.T) {
	ag := NewJurisdictionAgent(nil)
	for _, location := range []string{"Etawah, Uttar Pradesh", "Kochi, Kerala", "Nagpur, Maharashtra"} {
		result := ag.Assess(asset.Record{Location: location})
		if result.Score != 0.9 {
			t.Fatalf("%q: expected 0.9, got %v", location, result.Score)
		}
	}
}

func TestJurisdictionAgentUnrecognized(t *testing.T) {
	ag := NewJurisdictionAgent(nil)
	result := ag.Assess(asset.Record{Location: "Narnia"})
	if result.Score != 0.5 || result.Notes != "Jurisdiction not recognized" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDetailAgentCountsKeywords(t *testing.T) {
	ag := NewDetailAgent(nil)
	result := ag.Assess(asset.Record{
		AssetType:   asset.TypeRealEstate,
		Description: "3 bedroom apartment, 1200 sqft, deed available",
	})
	// apartment + bedroom + sqft + deed = 4 次命中
	if result.Score != 0.9 {
		t.Fatalf("expected 0.9, got %v", result.Score)
	}
	if !strings.Contains(result.Notes, "4 asset-specific keywords") {
		t.Fatalf("unexpected notes: %q", result.Notes)
	}
}

func TestDetailAgentNoHits(t *testing.T) {
	ag := NewDetailAgent(nil)
	result := ag.Assess(asset.Record{AssetType: asset.TypeArtwork, Description: "something valuable"})
	if result.Score != 0.5 || result.Notes != "No asset-specific keywords found." {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDetailAgentUnknownType(t *testing.T) {
	ag := NewDetailAgent(nil)
	result := ag.Assess(asset.Record{AssetType: asset.TypeUnknown, Description: "bedroom sqft deed"})
	if result.Score != 0.5 || result.Notes != "Unknown asset type" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestConsistencyAgentFlagsAgedHighValue(t *testing.T) {
	ag := NewConsistencyAgent()
	result := ag.Assess(asset.Record{
		AssetType:      asset.TypeVehicle,
		EstimatedValue: 1_500_000,
		Description:    "an old damaged truck",
	})
	if result.Score != 0.5 {
		t.Fatalf("expected 0.5, got %v", result.Score)
	}
}

func TestConsistencyAgentFlagsLuxuryLowValue(t *testing.T) {
	ag := NewConsistencyAgent()
	result := ag.Assess(asset.Record{
		AssetType:      asset.TypeRealEstate,
		EstimatedValue: 5_000,
		Description:    "a luxury penthouse",
	})
	if result.Score != 0.5 {
		t.Fatalf("expected 0.5, got %v", result.Score)
	}
}

func TestConsistencyAgentWordBoundaries(t *testing.T) {
	ag := NewConsistencyAgent()
	// "gold" 不应被当作 "old" 命中。
	result := ag.Assess(asset.Record{
		AssetType:      asset.TypeCommodity,
		EstimatedValue: 2_000_000,
		Description:    "gold bullion household reserve",
	})
	if result.Score != 1.0 {
		t.Fatalf("expected 1.0, got %v (notes: %q)", result.Score, result.Notes)
	}
}

func TestLocationQualityAgent(t *testing.T) {
	ag := NewLocationQualityAgent()
	for _, location := range []string{"", "unknown", "n/a", "na", "tbd", "xy"} {
		result := ag.Assess(asset.Record{Location: location})
		if result.Score != 0.3 {
			t.Fatalf("%q: expected 0.3, got %v", location, result.Score)
		}
	}
	result := ag.Assess(asset.Record{Location: "Bandra, Mumbai, India"})
	if result.Score != 1.0 {
		t.Fatalf("expected 1.0, got %v", result.Score)
	}
}

func TestAgentsAreDeterministic(t *testing.T) {
	record := asset.Record{
		AssetType:      asset.TypeRealEstate,
		EstimatedValue: 200000,
		Location:       "Pune, India",
		Description:    "3 bedroom apartment, 1200 sqft, deed available",
	}
	for _, ag := range DefaultAgents() {
		first := ag.Assess(record)
		second := ag.Assess(record)
		if first != second {
			t.Fatalf("agent %s is not deterministic: %+v vs %+v", ag.Name(), first, second)
		}
	}
}
