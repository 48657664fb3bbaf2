package token

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"RWA-Chain/internal/asset"
	xerrors "RWA-Chain/internal/errors"
	"RWA-Chain/internal/verify"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

const (
	// Standard 是铸造产物声明的通证标准。
	Standard = "RWA-721"
	// Network 是铸造产物声明的目标网络。
	Network = "RWA-TestNet"

	// StatusMinted 表示铸造成功。
	StatusMinted = "minted"
	// StatusFailed 表示铸造被拒绝或失败。
	StatusFailed = "failed"
)

// Attribute 是元数据中的单个展示属性。
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Properties 描述通证的固定属性。
type Properties struct {
	Category     string `json:"category"`
	Subcategory  string `json:"subcategory"`
	Fractional   bool   `json:"fractional"`
	Transferable bool   `json:"transferable"`
}

// Metadata 是 ERC-721 风格的通证元数据文档。
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL string      `json:"external_url"`
	Attributes  []Attribute `json:"attributes"`
	Properties  Properties  `json:"properties"`
}

// Receipt 是一次铸造尝试的完整结果。失败时 Success 为 false 且
// Error 给出原因，绝不携带通证标识。
type Receipt struct {
	Success         bool      `json:"success"`
	TokenID         string    `json:"token_id,omitempty"`
	ContractAddress string    `json:"contract_address,omitempty"`
	TransactionHash string    `json:"transaction_hash,omitempty"`
	Metadata        *Metadata `json:"metadata,omitempty"`
	Network         string    `json:"network,omitempty"`
	Standard        string    `json:"standard,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
}

// Minter 为通过核验的资产生成模拟链上标识。时钟与盐值可注入，
// 便于测试固定输出。
type Minter struct {
	now  func() time.Time
	salt func() string
}

// Option 定义可选的 Minter 配置。
type Option func(*Minter)

// WithClock 注入时钟来源。
func WithClock(now func() time.Time) Option {
	return func(m *Minter) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSalt 注入合约地址盐值来源。
func WithSalt(salt func() string) Option {
	return func(m *Minter) {
		if salt != nil {
			m.salt = salt
		}
	}
}

// NewMinter 创建铸造器，默认使用系统时钟与随机 UUID 盐值。
func NewMinter(opts ...Option) *Minter {
	m := &Minter{
		now:  time.Now,
		salt: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Mint 为已核验的资产铸造模拟通证。核验状态不是 verified 时返回
// 失败回执与 PRECONDITION_VIOLATION 错误。
func (m *Minter) Mint(record asset.Record, report verify.Report) (*Receipt, error) {
	if report.Status != verify.StatusVerified {
		return &Receipt{
				Success: false,
				Error:   "Asset must be verified before tokenization",
				Status:  StatusFailed,
			}, xerrors.New(xerrors.CodePreconditionViolation, "",
				xerrors.WithMetadata("asset_id", record.ID),
				xerrors.WithMetadata("status", string(report.Status)),
			)
	}

	now := m.now().UTC()
	address := m.contractAddress(record)

	return &Receipt{
		Success:         true,
		TokenID:         m.tokenID(record, now),
		ContractAddress: address,
		TransactionHash: transactionHash(address, now),
		Metadata:        buildMetadata(record, report, now),
		Network:         Network,
		Standard:        Standard,
		CreatedAt:       now,
		Status:          StatusMinted,
	}, nil
}

// tokenID 取 keccak256(assetID_type_unixtime) 前 16 位十六进制并大写。
func (m *Minter) tokenID(record asset.Record, now time.Time) string {
	id := record.ID
	if id == "" {
		id = m.salt()
	}
	base := fmt.Sprintf("%s_%s_%d", id, record.AssetType, now.Unix())
	sum := crypto.Keccak256([]byte(base))
	return "RWA_" + strings.ToUpper(hex.EncodeToString(sum)[:16])
}

// contractAddress 按以太坊惯例取哈希后 20 字节作为地址。
func (m *Minter) contractAddress(record asset.Record) string {
	content := fmt.Sprintf("contract_%s_%s", record.AssetType, m.salt())
	sum := crypto.Keccak256([]byte(content))
	return common.BytesToAddress(sum[12:]).Hex()
}

func transactionHash(address string, now time.Time) string {
	content := fmt.Sprintf("tx_%s_%d", address, now.Unix())
	return common.BytesToHash(crypto.Keccak256([]byte(content))).Hex()
}

func buildMetadata(record asset.Record, report verify.Report, now time.Time) *Metadata {
	assetType := string(record.AssetType)
	description := record.Description
	if description == "" {
		description = "Real World Asset Token"
	}
	assetID := record.ID
	if assetID == "" {
		assetID = "unknown"
	}

	return &Metadata{
		Name:        "RWA Token - " + titleCase(assetType),
		Description: description,
		Image:       fmt.Sprintf("https://via.placeholder.com/400x400.png?text=%s", assetType),
		ExternalURL: fmt.Sprintf("https://rwa-marketplace.com/asset/%s", assetID),
		Attributes: []Attribute{
			{TraitType: "Asset Type", Value: titleCase(assetType)},
			{TraitType: "Estimated Value", Value: formatMoney(record.EstimatedValue)},
			{TraitType: "Location", Value: record.Location},
			{TraitType: "Verification Status", Value: titleCase(string(report.Status))},
			{TraitType: "Verification Score", Value: fmt.Sprintf("%.1f%%", report.OverallScore*100)},
			{TraitType: "Token Standard", Value: Standard},
			{TraitType: "Network", Value: Network},
			{TraitType: "Tokenization Date", Value: now.Format("2006-01-02")},
		},
		Properties: Properties{
			Category:     "Real World Asset",
			Subcategory:  assetType,
			Fractional:   false,
			Transferable: true,
		},
	}
}

// titleCase 将每段字母序列的首字母大写，如 real_estate -> Real_Estate。
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// formatMoney 输出带千分位的美元金额，如 $5,000,000.00。
func formatMoney(value float64) string {
	plain := fmt.Sprintf("%.2f", value)
	dot := strings.IndexByte(plain, '.')
	whole, frac := plain[:dot], plain[dot:]

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return "$" + b.String() + frac
}
