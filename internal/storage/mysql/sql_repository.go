package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"RWA-Chain/internal/asset"
	"RWA-Chain/internal/token"
	"RWA-Chain/internal/verify"

	_ "github.com/go-sql-driver/mysql"
)

// SQLAssetRepository 使用真实的 MySQL 数据库存储资产信息。
type SQLAssetRepository struct {
	db *sql.DB
}

// NewSQLAssetRepository 创建连接池并初始化数据表。
func NewSQLAssetRepository(dsn string) (*SQLAssetRepository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("MySQL DSN 不能为空")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法连接到 MySQL: %w", err)
	}

	repo := &SQLAssetRepository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (s *SQLAssetRepository) initSchema() error {
	const assetSchema = `CREATE TABLE IF NOT EXISTS assets (
        id VARCHAR(64) NOT NULL PRIMARY KEY,
        wallet_address VARCHAR(255) NOT NULL DEFAULT '',
        asset_type VARCHAR(32) NOT NULL DEFAULT 'unknown',
        estimated_value DOUBLE NOT NULL DEFAULT 0,
        location VARCHAR(255) NOT NULL DEFAULT '',
        description TEXT NOT NULL,
        report JSON NULL,
        token JSON NULL,
        created_at BIGINT NOT NULL,
        updated_at BIGINT NOT NULL,
        INDEX idx_wallet (wallet_address),
        INDEX idx_created_at (created_at)
)`
	const txSchema = `CREATE TABLE IF NOT EXISTS transactions (
        id VARCHAR(64) NOT NULL PRIMARY KEY,
        asset_id VARCHAR(64) NOT NULL,
        kind VARCHAR(32) NOT NULL,
        hash VARCHAR(66) NOT NULL DEFAULT '',
        created_at BIGINT NOT NULL,
        INDEX idx_asset_id (asset_id)
)`

	if _, err := s.db.Exec(assetSchema); err != nil {
		return fmt.Errorf("初始化 assets 表失败: %w", err)
	}
	if _, err := s.db.Exec(txSchema); err != nil {
		return fmt.Errorf("初始化 transactions 表失败: %w", err)
	}
	return nil
}

// Create 将资产写入 MySQL。
func (s *SQLAssetRepository) Create(ctx context.Context, stored StoredAsset) error {
	if stored.CreatedAt == 0 {
		stored.CreatedAt = time.Now().Unix()
	}
	if stored.UpdatedAt == 0 {
		stored.UpdatedAt = stored.CreatedAt
	}
	reportJSON, tokenJSON, err := encodeAttachments(stored.Report, stored.Token)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO assets
        (id, wallet_address, asset_type, estimated_value, location, description, report, token, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, stmt,
		stored.Asset.ID,
		stored.Asset.WalletAddress,
		string(stored.Asset.AssetType),
		stored.Asset.EstimatedValue,
		stored.Asset.Location,
		stored.Asset.Description,
		reportJSON,
		tokenJSON,
		stored.CreatedAt,
		stored.UpdatedAt,
	); err != nil {
		return fmt.Errorf("写入 MySQL 失败: %w", err)
	}
	return nil
}

// Get 按 ID 查询资产。
func (s *SQLAssetRepository) Get(ctx context.Context, id string) (*StoredAsset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, wallet_address, asset_type, estimated_value, location, description, report, token, created_at, updated_at
        FROM assets WHERE id = ?`, id)
	stored, err := scanStoredAsset(row)
	if err == sql.ErrNoRows {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询资产失败: %w", err)
	}
	return stored, nil
}

// ListByWallet 返回某钱包的资产，按创建时间倒序排列。
func (s *SQLAssetRepository) ListByWallet(ctx context.Context, wallet string, limit int) ([]StoredAsset, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, wallet_address, asset_type, estimated_value, location, description, report, token, created_at, updated_at
        FROM assets WHERE wallet_address = ? ORDER BY created_at DESC, id DESC LIMIT ?`, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("查询钱包资产失败: %w", err)
	}
	defer rows.Close()

	var results []StoredAsset
	for rows.Next() {
		stored, err := scanStoredAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("解析资产记录失败: %w", err)
		}
		results = append(results, *stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历资产记录失败: %w", err)
	}
	return results, nil
}

// UpdateVerification 覆盖资产的核验报告。
func (s *SQLAssetRepository) UpdateVerification(ctx context.Context, id string, report verify.Report) error {
	encoded, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("序列化核验报告失败: %w", err)
	}
	return s.updateColumn(ctx, id, "report", string(encoded))
}

// UpdateToken 覆盖资产的通证化回执。
func (s *SQLAssetRepository) UpdateToken(ctx context.Context, id string, receipt token.Receipt) error {
	encoded, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("序列化通证回执失败: %w", err)
	}
	return s.updateColumn(ctx, id, "token", string(encoded))
}

func (s *SQLAssetRepository) updateColumn(ctx context.Context, id, column, value string) error {
	stmt := fmt.Sprintf(`UPDATE assets SET %s = ?, updated_at = ? WHERE id = ?`, column)
	result, err := s.db.ExecContext(ctx, stmt, value, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("更新资产失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("读取更新结果失败: %w", err)
	}
	if affected == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// SaveTransaction 追加一条通证流水。
func (s *SQLAssetRepository) SaveTransaction(ctx context.Context, tx Transaction) error {
	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().Unix()
	}
	const stmt = `INSERT INTO transactions (id, asset_id, kind, hash, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, stmt, tx.ID, tx.AssetID, tx.Kind, tx.Hash, tx.CreatedAt); err != nil {
		return fmt.Errorf("写入流水失败: %w", err)
	}
	return nil
}

// ListTransactions 返回某资产的全部流水，按时间正序。
func (s *SQLAssetRepository) ListTransactions(ctx context.Context, assetID string) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, asset_id, kind, hash, created_at
        FROM transactions WHERE asset_id = ? ORDER BY created_at ASC, id ASC`, assetID)
	if err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	defer rows.Close()

	var results []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.AssetID, &tx.Kind, &tx.Hash, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("解析流水失败: %w", err)
		}
		results = append(results, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历流水失败: %w", err)
	}
	return results, nil
}

// Stats 汇总当前资产库的聚合统计。
func (s *SQLAssetRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByType: make(map[string]int64)}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(estimated_value), 0),
        COALESCE(SUM(JSON_EXTRACT(report, '$.status') = '"verified"'), 0),
        COALESCE(SUM(JSON_EXTRACT(token, '$.success') = true), 0)
        FROM assets`)
	if err := row.Scan(&stats.TotalAssets, &stats.TotalValue, &stats.VerifiedAssets, &stats.TokenizedAssets); err != nil {
		return nil, fmt.Errorf("统计资产失败: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT asset_type, COUNT(*) FROM assets GROUP BY asset_type`)
	if err != nil {
		return nil, fmt.Errorf("统计资产类别失败: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var assetType string
		var count int64
		if err := rows.Scan(&assetType, &count); err != nil {
			return nil, fmt.Errorf("解析类别统计失败: %w", err)
		}
		stats.ByType[assetType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历类别统计失败: %w", err)
	}
	return stats, nil
}

// Close 关闭底层数据库连接。
func (s *SQLAssetRepository) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStoredAsset(row rowScanner) (*StoredAsset, error) {
	var stored StoredAsset
	var assetType string
	var reportJSON, tokenJSON sql.NullString
	if err := row.Scan(
		&stored.Asset.ID,
		&stored.Asset.WalletAddress,
		&assetType,
		&stored.Asset.EstimatedValue,
		&stored.Asset.Location,
		&stored.Asset.Description,
		&reportJSON,
		&tokenJSON,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	); err != nil {
		return nil, err
	}
	stored.Asset.AssetType = asset.ParseType(assetType)

	if reportJSON.Valid && reportJSON.String != "" {
		var report verify.Report
		if err := json.Unmarshal([]byte(reportJSON.String), &report); err != nil {
			return nil, fmt.Errorf("解析核验报告失败: %w", err)
		}
		stored.Report = &report
	}
	if tokenJSON.Valid && tokenJSON.String != "" {
		var receipt token.Receipt
		if err := json.Unmarshal([]byte(tokenJSON.String), &receipt); err != nil {
			return nil, fmt.Errorf("解析通证回执失败: %w", err)
		}
		stored.Token = &receipt
	}
	return &stored, nil
}

func encodeAttachments(report *verify.Report, receipt *token.Receipt) (reportJSON, tokenJSON sql.NullString, err error) {
	if report != nil {
		encoded, marshalErr := json.Marshal(report)
		if marshalErr != nil {
			return reportJSON, tokenJSON, fmt.Errorf("序列化核验报告失败: %w", marshalErr)
		}
		reportJSON = sql.NullString{String: string(encoded), Valid: true}
	}
	if receipt != nil {
		encoded, marshalErr := json.Marshal(receipt)
		if marshalErr != nil {
			return reportJSON, tokenJSON, fmt.Errorf("序列化通证回执失败: %w", marshalErr)
		}
		tokenJSON = sql.NullString{String: string(encoded), Valid: true}
	}
	return reportJSON, tokenJSON, nil
}
