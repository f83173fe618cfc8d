package reportapi

import (
	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/mongodb"
	"github.com/pakana/projector/tokens/stellar"
)

// BalanceDelta type alias
type BalanceDelta = stellar.BalanceDelta

// Summary type alias
type Summary = feed.Summary

// AuditDelta type alias
type AuditDelta = mongodb.MgoBalanceDelta

// AuditSummary type alias
type AuditSummary = mongodb.MgoLedgerSummary

// where a ledger or transaction was read from
const (
	SourceStore   = "store"
	SourceHorizon = "horizon"
)

// ServerInfo server info
type ServerInfo struct {
	Identifier      string `json:"identifier"`
	Version         string `json:"version"`
	LatestLedger    uint32 `json:"latest_ledger"`
	ProjectedLedger uint32 `json:"projected_ledger"`
	RemoteLedger    uint32 `json:"remote_ledger,omitempty"`
	Hydration       bool   `json:"hydration"`
	Audit           bool   `json:"audit"`
}

// TrustlineInfo trustline info
type TrustlineInfo struct {
	Asset         string `json:"asset"`
	Code          string `json:"code"`
	Issuer        string `json:"issuer,omitempty"`
	IssuerAddress string `json:"issuer_address,omitempty"`
	Balance       int64  `json:"balance"`
	BalanceText   string `json:"balance_text"`
	Limit         int64  `json:"limit"`
	LimitText     string `json:"limit_text"`
}

// AccountInfo account info
type AccountInfo struct {
	ID           string           `json:"id"`
	Address      string           `json:"address"`
	Balance      int64            `json:"balance"`
	BalanceXLM   string           `json:"balance_xlm"`
	SeqNum       int64            `json:"seq_num"`
	LastModified int64            `json:"last_modified"`
	Tracked      bool             `json:"tracked"`
	Trustlines   []*TrustlineInfo `json:"trustlines"`
}

// BalanceInfo native balance info
type BalanceInfo struct {
	ID           string `json:"id"`
	Balance      int64  `json:"balance"`
	BalanceXLM   string `json:"balance_xlm"`
	LastModified int64  `json:"last_modified"`
}

// LedgerInfo ledger info
type LedgerInfo struct {
	Sequence        uint32        `json:"sequence"`
	Hash            string        `json:"hash,omitempty"`
	ClosedAt        string        `json:"closed_at"`
	TotalTxCount    int           `json:"total_tx_count"`
	FilteredTxCount int           `json:"filtered_tx_count"`
	TxHashes        []string      `json:"tx_hashes"`
	Projection      *Summary      `json:"projection,omitempty"`
	Audit           *AuditSummary `json:"audit,omitempty"`
	Source          string        `json:"source"`
}

// TransactionInfo transaction info. Index is -1 when read from horizon.
type TransactionInfo struct {
	Ledger          uint32          `json:"ledger"`
	Index           int             `json:"index"`
	Hash            string          `json:"hash"`
	EnvelopeXDR     string          `json:"envelope_xdr"`
	Version         string          `json:"version,omitempty"`
	SourceAccount   string          `json:"source_account,omitempty"`
	SequenceNumber  int64           `json:"sequence_number,omitempty"`
	MemoHash        string          `json:"memo_hash,omitempty"`
	ValidationError string          `json:"validation_error,omitempty"`
	Failed          bool            `json:"failed,omitempty"`
	Source          string          `json:"source"`
	Deltas          []*BalanceDelta `json:"deltas"`
}
