package verify

import (
	"encoding/json"
	"strings"
	"testing"

	"RWA-Chain/internal/asset"
)

// fixedAgent 以固定分数响应，用于覆盖聚合逻辑。
type fixedAgent struct {
	name  string
	score float64
}

func (a fixedAgent) Name() string { return a.name }

func (a fixedAgent) Assess(asset.Record) Result {
	return Result{Score: a.score, Notes: "fixed"}
}

// panicAgent 总是崩溃，用于覆盖代理故障策略。
type panicAgent struct{}

func (panicAgent) Name() string { return "broken" }

func (panicAgent) Assess(asset.Record) Result {
	panic("boom")
}

func TestCoordinatorAveragesAndRounds(t *testing.T) {
	c := NewCoordinator([]Agent{
		fixedAgent{name: "a", score: 0.5},
		fixedAgent{name: "b", score: 0.6},
		fixedAgent{name: "c", score: 0.9},
	})
	report := c.Verify(asset.Record{})
	// (0.5+0.6+0.9)/3 = 0.666... → 0.67
	if report.OverallScore != 0.67 {
		t.Fatalf("expected 0.67, got %v", report.OverallScore)
	}
	if report.Status != StatusRequiresReview {
		t.Fatalf("expected requires_review, got %s", report.Status)
	}
}

func TestCoordinatorStatusBoundaries(t *testing.T) {
	cases := []struct {
		score  float64
		status Status
	}{
		{0.7, StatusVerified},
		{0.71, StatusVerified},
		{0.69, StatusRequiresReview},
		{0.5, StatusRequiresReview},
		{0.49, StatusRejected},
		{0.0, StatusRejected},
	}
	for _, tc := range cases {
		c := NewCoordinator([]Agent{fixedAgent{name: "only", score: tc.score}})
		report := c.Verify(asset.Record{})
		if report.Status != tc.status {
			t.Fatalf("score %v: expected %s, got %s", tc.score, tc.status, report.Status)
		}
	}
}

func TestCoordinatorOrderOnlyAffectsBreakdown(t *testing.T) {
	forward := NewCoordinator([]Agent{
		fixedAgent{name: "a", score: 0.4},
		fixedAgent{name: "b", score: 0.8},
	})
	reversed := NewCoordinator([]Agent{
		fixedAgent{name: "b", score: 0.8},
		fixedAgent{name: "a", score: 0.4},
	})

	first := forward.Verify(asset.Record{})
	second := reversed.Verify(asset.Record{})

	if first.OverallScore != second.OverallScore {
		t.Fatalf("overall score changed with registration order: %v vs %v",
			first.OverallScore, second.OverallScore)
	}
	if first.Breakdown[0].Name != "a" || second.Breakdown[0].Name != "b" {
		t.Fatalf("breakdown should follow registration order: %+v vs %+v",
			first.Breakdown, second.Breakdown)
	}
}

func TestCoordinatorBreakdownMatchesRegistry(t *testing.T) {
	agents := DefaultAgents()
	c := NewCoordinator(agents)
	report := c.Verify(asset.Record{AssetType: asset.TypeVehicle, Description: "engine model year"})
	if len(report.Breakdown) != len(agents) {
		t.Fatalf("expected %d breakdown entries, got %d", len(agents), len(report.Breakdown))
	}
	for i, ag := range agents {
		if report.Breakdown[i].Name != ag.Name() {
			t.Fatalf("entry %d: expected %s, got %s", i, ag.Name(), report.Breakdown[i].Name)
		}
	}
}

func TestCoordinatorSubstitutesNeutralScoreOnPanic(t *testing.T) {
	c := NewCoordinator([]Agent{
		fixedAgent{name: "ok", score: 1.0},
		panicAgent{},
	})
	report := c.Verify(asset.Record{})
	if score, ok := report.Breakdown.Get("broken"); !ok || score != agentFailureScore {
		t.Fatalf("expected neutral score for broken agent, got %v (present=%v)", score, ok)
	}
	if report.OverallScore != 0.75 {
		t.Fatalf("expected 0.75, got %v", report.OverallScore)
	}
	if len(report.Issues) != 1 || !strings.Contains(report.Issues[0], "broken") {
		t.Fatalf("expected failure issue, got %+v", report.Issues)
	}
}

func TestCoordinatorRecommendations(t *testing.T) {
	c := NewCoordinator(DefaultAgents())
	report := c.Verify(asset.Record{
		AssetType:      asset.TypeUnknown,
		EstimatedValue: 0,
		Location:       "",
		Description:    "",
	})
	want := []string{
		"Provide a more complete asset description.",
		"Provide a formal valuation or appraisal document.",
		"Clarify the asset's location or city.",
		"Include more asset-specific details like documents, specs, or characteristics.",
	}
	if len(report.Recommendations) != len(want) {
		t.Fatalf("expected %d recommendations, got %+v", len(want), report.Recommendations)
	}
	for i, reco := range want {
		if report.Recommendations[i] != reco {
			t.Fatalf("recommendation %d: expected %q, got %q", i, reco, report.Recommendations[i])
		}
	}
}

func TestCoordinatorCustomThresholds(t *testing.T) {
	c := NewCoordinator(
		[]Agent{fixedAgent{name: "only", score: 0.65}},
		WithThresholds(Thresholds{Verified: 0.6, Review: 0.4}),
	)
	report := c.Verify(asset.Record{})
	if report.Status != StatusVerified {
		t.Fatalf("expected verified under custom thresholds, got %s", report.Status)
	}
}

func TestCoordinatorEndToEndScenario(t *testing.T) {
	c := NewCoordinator(DefaultAgents())
	report := c.Verify(asset.Record{
		AssetType:      asset.TypeRealEstate,
		EstimatedValue: 200000,
		Location:       "Pune, India",
		Description:    "3 bedroom apartment, 1200 sqft, deed available",
	})

	if score, _ := report.Breakdown.Get("basic_info"); score != 1.0 {
		t.Fatalf("basic_info: expected 1.0, got %v", score)
	}
	if score, _ := report.Breakdown.Get("value_assessment"); score != 1.0 {
		t.Fatalf("value_assessment: expected 1.0, got %v", score)
	}
	if score, _ := report.Breakdown.Get("jurisdiction"); score != 0.9 {
		t.Fatalf("jurisdiction: expected 0.9, got %v", score)
	}
	if score, _ := report.Breakdown.Get("asset_specific"); score < 0.8 {
		t.Fatalf("asset_specific: expected >= 0.8, got %v", score)
	}
	if report.OverallScore < 0.8 {
		t.Fatalf("expected overall >= 0.8, got %v", report.OverallScore)
	}
	if report.Status != StatusVerified {
		t.Fatalf("expected verified, got %s", report.Status)
	}
	if len(report.NextSteps) == 0 || report.NextSteps[0] != "Proceed to tokenization" {
		t.Fatalf("unexpected next steps: %+v", report.NextSteps)
	}
}

func TestBreakdownJSONKeepsRegistrationOrder(t *testing.T) {
	b := Breakdown{
		{Name: "basic_info", Score: 1},
		{Name: "value_assessment", Score: 0.4},
		{Name: "jurisdiction", Score: 0.9},
	}
	encoded, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal breakdown: %v", err)
	}
	want := `{"basic_info":1,"value_assessment":0.4,"jurisdiction":0.9}`
	if string(encoded) != want {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	var decoded Breakdown
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal breakdown: %v", err)
	}
	if score, ok := decoded.Get("jurisdiction"); !ok || score != 0.9 {
		t.Fatalf("unexpected decoded breakdown: %+v", decoded)
	}
}
