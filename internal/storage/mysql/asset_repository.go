package mysql

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"RWA-Chain/internal/asset"
	xerrors "RWA-Chain/internal/errors"
	"RWA-Chain/internal/token"
	"RWA-Chain/internal/verify"
)

// StoredAsset 是资产及其核验、通证化产物的落库结构。
type StoredAsset struct {
	Asset     asset.Record   `json:"asset"`
	Report    *verify.Report `json:"report,omitempty"`
	Token     *token.Receipt `json:"token,omitempty"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
}

// Transaction 是通证操作的流水记录。
type Transaction struct {
	ID        string `json:"id"`
	AssetID   string `json:"asset_id"`
	Kind      string `json:"kind"`
	Hash      string `json:"hash"`
	CreatedAt int64  `json:"created_at"`
}

// TransactionKindMint 表示一次铸造流水。
const TransactionKindMint = "mint"

// Stats 是资产库的聚合统计。
type Stats struct {
	TotalAssets     int64            `json:"total_assets"`
	VerifiedAssets  int64            `json:"verified_assets"`
	TokenizedAssets int64            `json:"tokenized_assets"`
	TotalValue      float64          `json:"total_value"`
	ByType          map[string]int64 `json:"by_type"`
}

// ErrAssetNotFound 表示目标资产不存在。
var ErrAssetNotFound = xerrors.New(xerrors.CodeNotFound, "资产不存在")

// AssetRepository 抽象资产数据的持久化接口。
type AssetRepository interface {
	Create(ctx context.Context, stored StoredAsset) error
	Get(ctx context.Context, id string) (*StoredAsset, error)
	ListByWallet(ctx context.Context, wallet string, limit int) ([]StoredAsset, error)
	UpdateVerification(ctx context.Context, id string, report verify.Report) error
	UpdateToken(ctx context.Context, id string, receipt token.Receipt) error
	SaveTransaction(ctx context.Context, tx Transaction) error
	ListTransactions(ctx context.Context, assetID string) ([]Transaction, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// MemoryAssetRepository 使用本地 JSON 文件模拟 MySQL 的效果，方便迭代开发。
// 资产以快照追加写入，重放时同一 ID 的最后一条胜出。
type MemoryAssetRepository struct {
	mu        sync.RWMutex
	assetFile string
	txFile    string
	assets    map[string]StoredAsset
	txs       []Transaction
}

// NewMemoryAssetRepository 创建一个文件持久化的内存资产仓库。
func NewMemoryAssetRepository(dataDir string) (*MemoryAssetRepository, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	repo := &MemoryAssetRepository{
		assetFile: filepath.Join(dataDir, "assets.log"),
		txFile:    filepath.Join(dataDir, "transactions.log"),
		assets:    make(map[string]StoredAsset),
	}
	if err := repo.loadFromDisk(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Create 写入一条新资产，ID 冲突时返回 CONFLICT。
func (m *MemoryAssetRepository) Create(_ context.Context, stored StoredAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stored.Asset.ID == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "资产 ID 不能为空")
	}
	if _, ok := m.assets[stored.Asset.ID]; ok {
		return xerrors.New(xerrors.CodeConflict, "资产已存在",
			xerrors.WithMetadata("asset_id", stored.Asset.ID))
	}
	if stored.CreatedAt == 0 {
		stored.CreatedAt = time.Now().Unix()
	}
	if stored.UpdatedAt == 0 {
		stored.UpdatedAt = stored.CreatedAt
	}
	if err := appendJSONLine(m.assetFile, stored); err != nil {
		return err
	}
	m.assets[stored.Asset.ID] = stored
	return nil
}

// Get 按 ID 查询资产。
func (m *MemoryAssetRepository) Get(_ context.Context, id string) (*StoredAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.assets[id]
	if !ok {
		return nil, ErrAssetNotFound
	}
	clone := stored
	return &clone, nil
}

// ListByWallet 返回某钱包的资产，按创建时间倒序排列。
func (m *MemoryAssetRepository) ListByWallet(_ context.Context, wallet string, limit int) ([]StoredAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []StoredAsset
	for _, stored := range m.assets {
		if stored.Asset.WalletAddress == wallet {
			results = append(results, stored)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].CreatedAt == results[j].CreatedAt {
			return results[i].Asset.ID > results[j].Asset.ID
		}
		return results[i].CreatedAt > results[j].CreatedAt
	})
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// UpdateVerification 覆盖资产的核验报告。
func (m *MemoryAssetRepository) UpdateVerification(_ context.Context, id string, report verify.Report) error {
	return m.update(id, func(stored *StoredAsset) {
		stored.Report = &report
	})
}

// UpdateToken 覆盖资产的通证化回执。
func (m *MemoryAssetRepository) UpdateToken(_ context.Context, id string, receipt token.Receipt) error {
	return m.update(id, func(stored *StoredAsset) {
		stored.Token = &receipt
	})
}

func (m *MemoryAssetRepository) update(id string, mutate func(*StoredAsset)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.assets[id]
	if !ok {
		return ErrAssetNotFound
	}
	mutate(&stored)
	stored.UpdatedAt = time.Now().Unix()
	if err := appendJSONLine(m.assetFile, stored); err != nil {
		return err
	}
	m.assets[id] = stored
	return nil
}

// SaveTransaction 追加一条通证流水。
func (m *MemoryAssetRepository) SaveTransaction(_ context.Context, tx Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().Unix()
	}
	if err := appendJSONLine(m.txFile, tx); err != nil {
		return err
	}
	m.txs = append(m.txs, tx)
	return nil
}

// ListTransactions 返回某资产的全部流水，按时间正序。
func (m *MemoryAssetRepository) ListTransactions(_ context.Context, assetID string) ([]Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []Transaction
	for _, tx := range m.txs {
		if tx.AssetID == assetID {
			results = append(results, tx)
		}
	}
	return results, nil
}

// Stats 汇总当前资产库的聚合统计。
func (m *MemoryAssetRepository) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{ByType: make(map[string]int64)}
	for _, stored := range m.assets {
		stats.TotalAssets++
		stats.TotalValue += stored.Asset.EstimatedValue
		stats.ByType[string(stored.Asset.AssetType)]++
		if stored.Report != nil && stored.Report.Status == verify.StatusVerified {
			stats.VerifiedAssets++
		}
		if stored.Token != nil && stored.Token.Success {
			stats.TokenizedAssets++
		}
	}
	return stats, nil
}

// Close 实现 AssetRepository 接口，内存仓库无需释放资源。
func (m *MemoryAssetRepository) Close() error { return nil }

func (m *MemoryAssetRepository) loadFromDisk() error {
	if err := replayJSONLines(m.assetFile, func(line []byte) {
		var stored StoredAsset
		if err := json.Unmarshal(line, &stored); err != nil || stored.Asset.ID == "" {
			return
		}
		m.assets[stored.Asset.ID] = stored
	}); err != nil {
		return err
	}
	return replayJSONLines(m.txFile, func(line []byte) {
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil || tx.AssetID == "" {
			return
		}
		m.txs = append(m.txs, tx)
	})
}

func appendJSONLine(path string, value any) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("打开数据文件失败: %w", err)
	}
	defer file.Close()

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化数据失败: %w", err)
	}
	if _, err := file.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("写入数据文件失败: %w", err)
	}
	return nil
}

func replayJSONLines(path string, apply func(line []byte)) error {
	file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("读取数据文件失败: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		apply(scanner.Bytes())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("解析数据文件失败: %w", err)
	}
	return nil
}
