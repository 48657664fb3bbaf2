package api

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	xerrors "RWA-Chain/internal/errors"
	"RWA-Chain/internal/intake"
	"RWA-Chain/internal/observability/metrics"
	storage "RWA-Chain/internal/storage/mysql"
	"RWA-Chain/internal/token"
	"RWA-Chain/internal/verify"
)

// Server 负责暴露 REST 接口，供外部提交与查询资产。
type Server struct {
	addr        string
	intake      *intake.Service
	assets      storage.AssetRepository
	coordinator *verify.Coordinator
	minter      *token.Minter
}

// NewServer 构造 API 服务实例。
func NewServer(addr string, svc *intake.Service, assets storage.AssetRepository, coordinator *verify.Coordinator, minter *token.Minter) *Server {
	return &Server{
		addr:        addr,
		intake:      svc,
		assets:      assets,
		coordinator: coordinator,
		minter:      minter,
	}
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, s.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Routes 返回已装配的路由表。
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", instrument("health", s.handleHealth))
	mux.HandleFunc("/api/v1/intake", instrument("intake", s.handleIntake))
	mux.HandleFunc("/api/v1/intake/", instrument("intake_detail", s.handleIntakeDetail))
	mux.HandleFunc("/api/v1/assets/", instrument("assets", s.handleAssets))
	mux.HandleFunc("/api/v1/wallets/", instrument("wallets", s.handleWalletAssets))
	mux.HandleFunc("/api/v1/stats", instrument("stats", s.handleStats))
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmit(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "仅支持 GET/POST", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.intake == nil {
		http.Error(w, "入库服务未初始化", http.StatusServiceUnavailable)
		return
	}
	var req intake.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "请求体解析失败", http.StatusBadRequest)
		return
	}
	job, err := s.intake.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.intake == nil {
		http.Error(w, "入库服务未初始化", http.StatusServiceUnavailable)
		return
	}
	var opts []intake.ListOption
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			opts = append(opts, intake.WithLimit(parsed))
		}
	}
	if wallet := r.URL.Query().Get("wallet"); wallet != "" {
		opts = append(opts, intake.WithWallet(wallet))
	}
	if status := r.URL.Query().Get("status"); status != "" {
		opts = append(opts, intake.WithStatuses(intake.Status(status)))
	}
	jobs, err := s.intake.List(r.Context(), opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleIntakeDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
		return
	}
	if s.intake == nil {
		http.Error(w, "入库服务未初始化", http.StatusServiceUnavailable)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/intake/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "任务 ID 不合法", http.StatusBadRequest)
		return
	}
	job, err := s.intake.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleAssets 分发 /api/v1/assets/{id} 及其子资源。
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		http.Error(w, "资产存储未初始化", http.StatusServiceUnavailable)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/assets/")
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
			return
		}
		s.handleAssetDetail(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "verify":
		if r.Method != http.MethodPost {
			http.Error(w, "仅支持 POST", http.StatusMethodNotAllowed)
			return
		}
		s.handleVerify(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "tokenize":
		if r.Method != http.MethodPost {
			http.Error(w, "仅支持 POST", http.StatusMethodNotAllowed)
			return
		}
		s.handleTokenize(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "transactions":
		if r.Method != http.MethodGet {
			http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
			return
		}
		s.handleTransactions(w, r, parts[0])
	default:
		http.Error(w, "资源不存在", http.StatusNotFound)
	}
}

func (s *Server) handleAssetDetail(w http.ResponseWriter, r *http.Request, id string) {
	stored, err := s.assets.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request, id string) {
	if s.coordinator == nil {
		http.Error(w, "核验服务未初始化", http.StatusServiceUnavailable)
		return
	}
	stored, err := s.assets.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	report := s.coordinator.Verify(stored.Asset)
	if err := s.assets.UpdateVerification(r.Context(), id, report); err != nil {
		writeError(w, err)
		return
	}
	metrics.ObserveVerification(string(report.Status))
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request, id string) {
	if s.minter == nil {
		http.Error(w, "铸造服务未初始化", http.StatusServiceUnavailable)
		return
	}
	stored, err := s.assets.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	var report verify.Report
	if stored.Report != nil {
		report = *stored.Report
	}
	receipt, err := s.minter.Mint(stored.Asset, report)
	metrics.ObserveMint(err == nil && receipt != nil && receipt.Success)
	if err != nil {
		if xerrors.CodeOf(err) == xerrors.CodePreconditionViolation {
			writeJSON(w, http.StatusConflict, receipt)
			return
		}
		writeError(w, err)
		return
	}
	if err := s.assets.UpdateToken(r.Context(), id, *receipt); err != nil {
		writeError(w, err)
		return
	}
	tx := storage.Transaction{
		ID:        uuid.NewString(),
		AssetID:   id,
		Kind:      storage.TransactionKindMint,
		Hash:      receipt.TransactionHash,
		CreatedAt: receipt.CreatedAt.Unix(),
	}
	if err := s.assets.SaveTransaction(r.Context(), tx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request, id string) {
	txs, err := s.assets.ListTransactions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleWalletAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
		return
	}
	if s.assets == nil {
		http.Error(w, "资产存储未初始化", http.StatusServiceUnavailable)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/wallets/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "assets" {
		http.Error(w, "资源不存在", http.StatusNotFound)
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	list, err := s.assets.ListByWallet(r.Context(), parts[0], limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持 GET", http.StatusMethodNotAllowed)
		return
	}
	if s.assets == nil || s.intake == nil {
		http.Error(w, "服务未初始化", http.StatusServiceUnavailable)
		return
	}
	assetStats, err := s.assets.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	jobStats, err := s.intake.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assets": assetStats,
		"jobs":   jobStats,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError 将统一错误码映射为 HTTP 状态码。
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := xerrors.CodeOf(err)
	switch code {
	case xerrors.CodeNotFound, intake.CodeJobNotFound:
		status = http.StatusNotFound
	case xerrors.CodeInvalidArgument, intake.CodeJobValidation:
		status = http.StatusBadRequest
	case xerrors.CodeConflict, intake.CodeJobConflict, xerrors.CodePreconditionViolation:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  string(code),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument 为处理器补充请求指标。
func instrument(name string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(recorder, r)
		metrics.ObserveHTTPRequest(name, r.Method, recorder.status, time.Since(start))
	}
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, "服务已关闭", http.StatusServiceUnavailable)
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
