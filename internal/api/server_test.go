package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"RWA-Chain/internal/asset"
	"RWA-Chain/internal/intake"
	storage "RWA-Chain/internal/storage/mysql"
	"RWA-Chain/internal/token"
	"RWA-Chain/internal/verify"
)

func newTestServer(t *testing.T) (*Server, storage.AssetRepository) {
	t.Helper()
	assets, err := storage.NewMemoryAssetRepository(t.TempDir())
	if err != nil {
		t.Fatalf("create asset repo: %v", err)
	}
	svc := intake.NewService(intake.NewMemoryStore(), intake.NewMemoryQueue(16), 3)
	minter := token.NewMinter(
		token.WithClock(func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }),
		token.WithSalt(func() string { return "fixed-salt" }),
	)
	return NewServer(":0", svc, assets, verify.NewCoordinator(verify.DefaultAgents()), minter), assets
}

func seedAsset(t *testing.T, assets storage.AssetRepository, id string, report *verify.Report) {
	t.Helper()
	stored := storage.StoredAsset{
		Asset: asset.Record{
			ID:             id,
			WalletAddress:  "0xabc",
			AssetType:      asset.TypeRealEstate,
			EstimatedValue: 8500000,
			Location:       "Pune, Maharashtra",
			Description:    "3BHK residential apartment with modular kitchen and reserved parking",
		},
		Report:    report,
		CreatedAt: 1700000000,
	}
	if err := assets.Create(context.Background(), stored); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHandleSubmitAndDetail(t *testing.T) {
	server, _ := newTestServer(t)

	payload := `{"raw_text":"apartment in Pune worth 85 lakh","wallet_address":"0xabc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected submit status: %d body=%s", rec.Code, rec.Body.String())
	}
	var job intake.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID == "" || job.Status != intake.StatusPending {
		t.Fatalf("unexpected job: %+v", job)
	}

	detailReq := httptest.NewRequest(http.MethodGet, "/api/v1/intake/"+job.ID, nil)
	detailRec := httptest.NewRecorder()
	server.Routes().ServeHTTP(detailRec, detailReq)
	if detailRec.Code != http.StatusOK {
		t.Fatalf("unexpected detail status: %d", detailRec.Code)
	}

	missingReq := httptest.NewRequest(http.MethodGet, "/api/v1/intake/missing", nil)
	missingRec := httptest.NewRecorder()
	server.Routes().ServeHTTP(missingRec, missingReq)
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing job, got %d", missingRec.Code)
	}
}

func TestHandleSubmitValidation(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake", strings.NewReader(`{"raw_text":"  "}`))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty text, got %d", rec.Code)
	}

	badReq := httptest.NewRequest(http.MethodPost, "/api/v1/intake", strings.NewReader("not json"))
	badRec := httptest.NewRecorder()
	server.Routes().ServeHTTP(badRec, badReq)
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", badRec.Code)
	}
}

func TestHandleVerify(t *testing.T) {
	server, assets := newTestServer(t)
	seedAsset(t, assets, "asset-1", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets/asset-1/verify", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	var report verify.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Status != verify.StatusVerified {
		t.Fatalf("expected verified asset, got %q (score %v)", report.Status, report.OverallScore)
	}

	stored, err := assets.Get(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if stored.Report == nil || stored.Report.Status != verify.StatusVerified {
		t.Fatalf("report not persisted: %+v", stored.Report)
	}
}

func TestHandleTokenize(t *testing.T) {
	server, assets := newTestServer(t)
	seedAsset(t, assets, "asset-1", &verify.Report{OverallScore: 0.85, Status: verify.StatusVerified})
	seedAsset(t, assets, "asset-2", &verify.Report{OverallScore: 0.6, Status: verify.StatusRequiresReview})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets/asset-1/tokenize", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	var receipt token.Receipt
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if !receipt.Success || !strings.HasPrefix(receipt.TokenID, "RWA_") {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	txReq := httptest.NewRequest(http.MethodGet, "/api/v1/assets/asset-1/transactions", nil)
	txRec := httptest.NewRecorder()
	server.Routes().ServeHTTP(txRec, txReq)
	if txRec.Code != http.StatusOK {
		t.Fatalf("unexpected transactions status: %d", txRec.Code)
	}
	var txs []storage.Transaction
	if err := json.Unmarshal(txRec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Kind != storage.TransactionKindMint {
		t.Fatalf("unexpected transactions: %+v", txs)
	}

	reviewReq := httptest.NewRequest(http.MethodPost, "/api/v1/assets/asset-2/tokenize", nil)
	reviewRec := httptest.NewRecorder()
	server.Routes().ServeHTTP(reviewRec, reviewReq)
	if reviewRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for unverified asset, got %d", reviewRec.Code)
	}
	var failed token.Receipt
	if err := json.Unmarshal(reviewRec.Body.Bytes(), &failed); err != nil {
		t.Fatalf("decode failure receipt: %v", err)
	}
	if failed.Success || failed.TokenID != "" {
		t.Fatalf("failure receipt must not carry a token id: %+v", failed)
	}
}

func TestHandleWalletAssets(t *testing.T) {
	server, assets := newTestServer(t)
	seedAsset(t, assets, "asset-1", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/0xabc/assets", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var list []storage.StoredAsset
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Asset.ID != "asset-1" {
		t.Fatalf("unexpected list: %+v", list)
	}

	emptyReq := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/0xnope/assets", nil)
	emptyRec := httptest.NewRecorder()
	server.Routes().ServeHTTP(emptyRec, emptyReq)
	if emptyRec.Code != http.StatusOK {
		t.Fatalf("unexpected status for empty wallet: %d", emptyRec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	server, assets := newTestServer(t)
	seedAsset(t, assets, "asset-1", &verify.Report{OverallScore: 0.85, Status: verify.StatusVerified})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body struct {
		Assets storage.Stats   `json:"assets"`
		Jobs   intake.JobStats `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if body.Assets.TotalAssets != 1 || body.Assets.VerifiedAssets != 1 {
		t.Fatalf("unexpected asset stats: %+v", body.Assets)
	}
}

func TestMethodGuards(t *testing.T) {
	server, assets := newTestServer(t)
	seedAsset(t, assets, "asset-1", nil)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/health"},
		{http.MethodDelete, "/api/v1/intake"},
		{http.MethodPost, "/api/v1/intake/some-id"},
		{http.MethodGet, "/api/v1/assets/asset-1/verify"},
		{http.MethodGet, "/api/v1/assets/asset-1/tokenize"},
		{http.MethodPost, "/api/v1/wallets/0xabc/assets"},
		{http.MethodPost, "/api/v1/stats"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		server.Routes().ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, rec.Code)
		}
	}
}
