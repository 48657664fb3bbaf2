package rwachain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSubmitReturnsJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/intake" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var submission IntakeSubmission
		if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if submission.RawText != "apartment in Pune worth 85 lakh" {
			t.Fatalf("unexpected raw text: %q", submission.RawText)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(Job{ID: "job-1", Status: "pending"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	job, err := client.Submit(context.Background(), IntakeSubmission{
		RawText:       "apartment in Pune worth 85 lakh",
		WalletAddress: "0xabc",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.ID != "job-1" || job.Status != "pending" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestGetJobNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "任务不存在",
			"code":  "INTAKE_JOB_NOT_FOUND",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.GetJob(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Code != "INTAKE_JOB_NOT_FOUND" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestWaitForJobPollsUntilTerminal(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		job := Job{ID: "job-1", Status: "running", MaxRetries: 3}
		if calls >= 3 {
			job.Status = "succeeded"
			job.Result = &JobOutcome{AssetID: "job-1", VerificationStatus: "verified"}
		}
		_ = json.NewEncoder(w).Encode(job)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewClient(srv.URL, nil)
	job, err := client.WaitForJob(ctx, "job-1", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("wait for job: %v", err)
	}
	if job.Status != "succeeded" || job.Result == nil {
		t.Fatalf("unexpected job: %+v", job)
	}
	if calls < 3 {
		t.Fatalf("expected at least 3 polls, got %d", calls)
	}
}

func TestTokenizeConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(TokenReceipt{
			Success: false,
			Status:  "failed",
			Error:   "Asset must be verified before tokenization",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Tokenize(context.Background(), "asset-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
}

func TestVerifyAndStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/assets/asset-1/verify":
			if r.Method != http.MethodPost {
				t.Fatalf("unexpected method: %s", r.Method)
			}
			_ = json.NewEncoder(w).Encode(VerificationReport{
				OverallScore: 0.85,
				Status:       "verified",
				Breakdown:    []AgentScore{{Agent: "completeness", Score: 1}},
			})
		case "/api/v1/stats":
			_ = json.NewEncoder(w).Encode(Stats{
				Assets: AssetStats{TotalAssets: 2, VerifiedAssets: 1},
				Jobs:   JobStats{Total: 2, Succeeded: 2},
			})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	report, err := client.Verify(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Status != "verified" || len(report.Breakdown) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	stats, err := client.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Assets.TotalAssets != 2 || stats.Jobs.Succeeded != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestWalletAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/wallets/0xabc/assets" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Asset{
			{Asset: AssetRecord{ID: "asset-1", AssetType: "real_estate"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	list, err := client.WalletAssets(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("wallet assets: %v", err)
	}
	if len(list) != 1 || list[0].Asset.ID != "asset-1" {
		t.Fatalf("unexpected list: %+v", list)
	}
}
