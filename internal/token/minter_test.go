package token

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"RWA-Chain/internal/asset"
	xerrors "RWA-Chain/internal/errors"
	"RWA-Chain/internal/verify"
)

var (
	tokenIDPattern  = regexp.MustCompile(`^RWA_[0-9A-F]{16}$`)
	addressPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	txHashPattern   = regexp.MustCompile(`^0x[0-9a-f]{64}$`)
	fixedMintMoment = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
)

func fixedMinter() *Minter {
	return NewMinter(
		WithClock(func() time.Time { return fixedMintMoment }),
		WithSalt(func() string { return "11111111-2222-3333-4444-555555555555" }),
	)
}

func verifiedRecord() asset.Record {
	return asset.Record{
		ID:             "asset-42",
		WalletAddress:  "0xabc",
		AssetType:      asset.TypeRealEstate,
		EstimatedValue: 5000000,
		Location:       "Pune, Maharashtra",
		Description:    "3BHK apartment with parking",
	}
}

func verifiedReport() verify.Report {
	return verify.Report{OverallScore: 0.85, Status: verify.StatusVerified}
}

func TestMintVerifiedAsset(t *testing.T) {
	receipt, err := fixedMinter().Mint(verifiedRecord(), verifiedReport())
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if !receipt.Success {
		t.Fatal("expected success")
	}
	if receipt.Status != StatusMinted {
		t.Errorf("status = %q, want %q", receipt.Status, StatusMinted)
	}
	if !tokenIDPattern.MatchString(receipt.TokenID) {
		t.Errorf("token id %q does not match %v", receipt.TokenID, tokenIDPattern)
	}
	if !addressPattern.MatchString(receipt.ContractAddress) {
		t.Errorf("contract address %q does not match %v", receipt.ContractAddress, addressPattern)
	}
	if !txHashPattern.MatchString(receipt.TransactionHash) {
		t.Errorf("transaction hash %q does not match %v", receipt.TransactionHash, txHashPattern)
	}
	if receipt.Network != Network || receipt.Standard != Standard {
		t.Errorf("network/standard = %q/%q", receipt.Network, receipt.Standard)
	}
	if !receipt.CreatedAt.Equal(fixedMintMoment) {
		t.Errorf("created at = %v, want %v", receipt.CreatedAt, fixedMintMoment)
	}
}

func TestMintDeterministicWithFixedClockAndSalt(t *testing.T) {
	first, err := fixedMinter().Mint(verifiedRecord(), verifiedReport())
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	second, err := fixedMinter().Mint(verifiedRecord(), verifiedReport())
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if first.TokenID != second.TokenID {
		t.Errorf("token id not deterministic: %q vs %q", first.TokenID, second.TokenID)
	}
	if first.ContractAddress != second.ContractAddress {
		t.Errorf("contract address not deterministic: %q vs %q", first.ContractAddress, second.ContractAddress)
	}
	if first.TransactionHash != second.TransactionHash {
		t.Errorf("transaction hash not deterministic: %q vs %q", first.TransactionHash, second.TransactionHash)
	}
}

func TestMintRejectsUnverifiedAsset(t *testing.T) {
	for _, status := range []verify.Status{verify.StatusRequiresReview, verify.StatusRejected} {
		receipt, err := fixedMinter().Mint(verifiedRecord(), verify.Report{OverallScore: 0.6, Status: status})
		if err == nil {
			t.Fatalf("status %q: expected error", status)
		}
		if !errors.Is(err, xerrors.New(xerrors.CodePreconditionViolation, "")) {
			t.Errorf("status %q: error code = %v, want PRECONDITION_VIOLATION", status, xerrors.CodeOf(err))
		}
		if receipt == nil || receipt.Success {
			t.Fatalf("status %q: expected failure receipt", status)
		}
		if receipt.TokenID != "" {
			t.Errorf("status %q: failure receipt carries token id %q", status, receipt.TokenID)
		}
		if receipt.Error != "Asset must be verified before tokenization" {
			t.Errorf("status %q: error message = %q", status, receipt.Error)
		}
		if receipt.Status != StatusFailed {
			t.Errorf("status %q: receipt status = %q", status, receipt.Status)
		}
	}
}

func TestMintMetadata(t *testing.T) {
	receipt, err := fixedMinter().Mint(verifiedRecord(), verifiedReport())
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	md := receipt.Metadata
	if md == nil {
		t.Fatal("expected metadata")
	}
	if md.Name != "RWA Token - Real_Estate" {
		t.Errorf("name = %q", md.Name)
	}
	if md.ExternalURL != "https://rwa-marketplace.com/asset/asset-42" {
		t.Errorf("external url = %q", md.ExternalURL)
	}
	wantAttrs := map[string]string{
		"Asset Type":          "Real_Estate",
		"Estimated Value":     "$5,000,000.00",
		"Location":            "Pune, Maharashtra",
		"Verification Status": "Verified",
		"Verification Score":  "85.0%",
		"Token Standard":      "RWA-721",
		"Network":             "RWA-TestNet",
		"Tokenization Date":   "2025-03-14",
	}
	got := make(map[string]string, len(md.Attributes))
	for _, attr := range md.Attributes {
		got[attr.TraitType] = attr.Value
	}
	for trait, want := range wantAttrs {
		if got[trait] != want {
			t.Errorf("attribute %q = %q, want %q", trait, got[trait], want)
		}
	}
	if md.Properties.Subcategory != "real_estate" || !md.Properties.Transferable || md.Properties.Fractional {
		t.Errorf("properties = %+v", md.Properties)
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"real_estate": "Real_Estate",
		"vehicle":     "Vehicle",
		"unknown":     "Unknown",
		"":            "",
	}
	for in, want := range cases {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:          "$0.00",
		999:        "$999.00",
		25000:      "$25,000.00",
		5000000:    "$5,000,000.00",
		1234567.89: "$1,234,567.89",
	}
	for in, want := range cases {
		if got := formatMoney(in); got != want {
			t.Errorf("formatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}
