package verify

import (
	"os"
	"path/filepath"
	"testing"

	"RWA-Chain/internal/asset"
)

func TestLoadRulesEmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules.Thresholds != DefaultThresholds() {
		t.Fatalf("unexpected thresholds: %+v", rules.Thresholds)
	}
	if len(rules.Jurisdictions) == 0 || rules.Jurisdictions[0].Code != "IN" {
		t.Fatalf("unexpected jurisdiction table: %+v", rules.Jurisdictions)
	}
}

func TestLoadRulesOverrides(t *testing.T) {
	content := `
thresholds:
  verified: 0.8
  review: 0.6
value_ranges:
  vehicle:
    min: 2000
    max: 500000
supplementary: true
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	if rules.Thresholds.Verified != 0.8 || rules.Thresholds.Review != 0.6 {
		t.Fatalf("thresholds not overridden: %+v", rules.Thresholds)
	}
	if r := rules.ValueRanges[asset.TypeVehicle]; r.Min != 2000 || r.Max != 500000 {
		t.Fatalf("value range not overridden: %+v", r)
	}
	// 未覆盖的字段保持默认。
	if len(rules.Jurisdictions) == 0 {
		t.Fatalf("jurisdictions should keep defaults")
	}

	agents := rules.BuildAgents()
	if len(agents) != 6 {
		t.Fatalf("expected 6 agents with supplementary pipeline, got %d", len(agents))
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
