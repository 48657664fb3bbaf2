package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"RWA-Chain/internal/api"
	"RWA-Chain/internal/config"
	"RWA-Chain/internal/extract"
	"RWA-Chain/internal/intake"
	"RWA-Chain/internal/llm/openai"
	"RWA-Chain/internal/observability/metrics"
	storage "RWA-Chain/internal/storage/mysql"
	"RWA-Chain/internal/token"
	"RWA-Chain/internal/verify"
	"RWA-Chain/pkg/logger"
)

// main 是 RWA-Chain 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("rwachaind 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("RWACHAIN_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "rwachain.json")
	}

	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
		Audit: logger.AuditConfig{
			Enabled: cfg.Logging.AuditPath != "",
			Path:    cfg.Logging.AuditPath,
		},
	}); err != nil {
		return err
	}
	defer logger.Sync()

	dataDir := cfg.Runtime.DataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// 资产仓库与入库任务存储共用同一个驱动配置。
	var assetRepo storage.AssetRepository
	var jobStore intake.Store
	switch cfg.Storage.Driver {
	case "", "memory":
		repo, err := storage.NewMemoryAssetRepository(dataDir)
		if err != nil {
			return err
		}
		assetRepo = repo
		jobStore = intake.NewMemoryStore()
	case "mysql":
		repo, err := storage.NewSQLAssetRepository(cfg.Storage.DSN)
		if err != nil {
			return err
		}
		assetRepo = repo
		store, err := intake.NewMySQLStore(cfg.Storage.DSN)
		if err != nil {
			return err
		}
		jobStore = store
	default:
		return fmt.Errorf("未知的存储驱动: %s", cfg.Storage.Driver)
	}
	defer func() {
		_ = assetRepo.Close()
		_ = jobStore.Close()
	}()

	var queue intake.Queue
	switch cfg.Intake.QueueDriver {
	case "", "memory":
		queue = intake.NewMemoryQueue(cfg.Intake.QueueSize)
	case "redis":
		q, err := intake.NewRedisQueue(intake.RedisQueueConfig{
			Address:  cfg.Intake.Redis.Addr,
			Password: cfg.Intake.Redis.Password,
			DB:       cfg.Intake.Redis.DB,
			Queue:    cfg.Intake.Redis.Queue,
		})
		if err != nil {
			return err
		}
		queue = q
	case "rabbitmq":
		q, err := intake.NewRabbitMQQueue(intake.RabbitMQConfig{
			URL:   cfg.Intake.RabbitMQ.URL,
			Queue: cfg.Intake.RabbitMQ.Queue,
		})
		if err != nil {
			return err
		}
		queue = q
	default:
		return fmt.Errorf("未知的队列驱动: %s", cfg.Intake.QueueDriver)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.L().Warn("关闭入库队列失败", "error", err)
		}
	}()

	extractor, err := createExtractor(cfg)
	if err != nil {
		return err
	}

	coordinator, err := createCoordinator(cfg)
	if err != nil {
		return err
	}

	minter := token.NewMinter()

	service := intake.NewService(jobStore, queue, cfg.Intake.MaxRetries)
	pipeline := intake.NewPipeline(extractor, coordinator, assetRepo)
	processor := intake.NewProcessor(pipeline, jobStore, queue, queue,
		intake.WithWorkerCount(cfg.Intake.Workers),
		intake.WithProcessorLogger(logger.Named("intake")),
	)

	processorCtx, processorCancel := context.WithCancel(ctx)
	defer processorCancel()

	go func() {
		if err := processor.Start(processorCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.L().Error("入库处理器异常退出", "error", err)
		}
	}()

	go func() {
		if err := metrics.StartServer(ctx, cfg.Server.MetricsAddress); err != nil && !errors.Is(err, context.Canceled) {
			logger.L().Error("指标服务异常退出", "error", err)
		}
	}()

	server := api.NewServer(cfg.Server.Address, service, assetRepo, coordinator, minter)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func createExtractor(cfg *config.Config) (extract.Extractor, error) {
	switch cfg.LLM.Provider {
	case "", "pattern":
		return extract.NewPatternExtractor(), nil
	case "openai":
		apiKey := strings.TrimSpace(cfg.LLM.OpenAI.APIKey)
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("RWACHAIN_OPENAI_API_KEY"))
		}
		if apiKey == "" {
			return nil, errors.New("OpenAI provider 需要配置 api_key")
		}
		client, err := openai.NewClient(openai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
			Model:   cfg.LLM.OpenAI.Model,
			Timeout: time.Duration(cfg.LLM.OpenAI.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return extract.NewLLMExtractor(client,
			extract.WithTimeout(time.Duration(cfg.LLM.OpenAI.TimeoutSeconds)*time.Second),
		), nil
	default:
		return nil, fmt.Errorf("未知的抽取 provider: %s", cfg.LLM.Provider)
	}
}

func createCoordinator(cfg *config.Config) (*verify.Coordinator, error) {
	if cfg.Verify.RulesFile == "" {
		return verify.NewCoordinator(verify.DefaultAgents()), nil
	}
	rules, err := verify.LoadRules(cfg.Verify.RulesFile)
	if err != nil {
		return nil, err
	}
	return verify.NewCoordinatorFromRules(rules), nil
}
