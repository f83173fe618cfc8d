package reportapi

import (
	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/projection"
	"github.com/pakana/projector/tokens/stellar"
)

// ConvertAccount convert projected account to account info
func ConvertAccount(acct *projection.Account, tracked bool) *AccountInfo {
	address, _ := stellar.Address(acct.ID)
	info := &AccountInfo{
		ID:           acct.ID,
		Address:      address,
		Balance:      acct.Balance,
		BalanceXLM:   stellar.FormatAmount(acct.Balance),
		SeqNum:       acct.SeqNum,
		LastModified: acct.LastModified,
		Tracked:      tracked,
		Trustlines:   ConvertTrustlines(acct.Trustlines),
	}
	return info
}

// ConvertTrustlines convert projected trustlines
func ConvertTrustlines(trustlines []projection.Trustline) []*TrustlineInfo {
	result := make([]*TrustlineInfo, len(trustlines))
	for i := range trustlines {
		tl := &trustlines[i]
		info := &TrustlineInfo{
			Asset:       tl.Asset(),
			Code:        tl.Code,
			Issuer:      tl.Issuer,
			Balance:     tl.Balance,
			BalanceText: stellar.FormatAmount(tl.Balance),
			Limit:       tl.Limit,
			LimitText:   stellar.FormatAmount(tl.Limit),
		}
		if tl.Issuer != "" {
			info.IssuerAddress, _ = stellar.Address(tl.Issuer)
		}
		result[i] = info
	}
	return result
}

// ConvertLedger convert feed ledger to ledger info
func ConvertLedger(l *feed.Ledger, summary *feed.Summary) *LedgerInfo {
	info := &LedgerInfo{
		Sequence:        l.Sequence,
		Hash:            l.Hash,
		ClosedAt:        l.ClosedAt,
		TotalTxCount:    l.TotalTxCount,
		FilteredTxCount: l.FilteredTxCount,
		TxHashes:        make([]string, len(l.Transactions)),
		Projection:      summary,
		Source:          SourceStore,
	}
	for i, t := range l.Transactions {
		info.TxHashes[i] = t.Hash
	}
	return info
}

// ConvertTransaction decode and evaluate a feed transaction
func ConvertTransaction(t *feed.Transaction, validator stellar.Validator) *TransactionInfo {
	info := &TransactionInfo{
		Ledger:      t.Ledger,
		Index:       t.Index,
		Hash:        t.Hash,
		EnvelopeXDR: t.EnvelopeXDR,
		Source:      SourceStore,
		Deltas:      []*BalanceDelta{},
	}
	env, err := stellar.DecodeEnvelope(t.EnvelopeXDR)
	if err != nil {
		info.ValidationError = err.Error()
		return info
	}
	info.Version = stellar.Version(env)
	info.SourceAccount = stellar.SourceAccount(env)
	info.SequenceNumber = stellar.SequenceNumber(env)
	info.MemoHash, _ = stellar.MemoHash(env)
	if err = validator.Validate(env); err != nil {
		info.ValidationError = err.Error()
		return info
	}
	deltas := stellar.CalculateDeltas(env)
	for i := range deltas {
		info.Deltas = append(info.Deltas, &deltas[i])
	}
	return info
}
