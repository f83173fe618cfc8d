package stellar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stellar/go/xdr"
)

// delta reasons
const (
	ReasonTxFee                    = "tx_fee"
	ReasonFeeBump                  = "fee_bump"
	ReasonCreateAccount            = "create_account"
	ReasonPayment                  = "payment"
	ReasonPathPaymentStrictSend    = "path_payment_strict_send"
	ReasonPathPaymentStrictReceive = "path_payment_strict_receive"
	ReasonAccountMerge             = "account_merge"
	ReasonRemoveTrustline          = "remove_trustline"
	ReasonSetTrustlineLimitPrefix  = "set_trustline_limit:"
)

// DeltaKind tells the applier how a delta is to be handled.
type DeltaKind int

// delta kinds
const (
	// KindAmount is a monetary change added into a balance.
	KindAmount DeltaKind = iota
	// KindTrustline creates, updates or removes a trustline. Never summed.
	KindTrustline
	// KindUnresolved records an event whose amount needs execution
	// results. Never applied.
	KindUnresolved
)

func (k DeltaKind) String() string {
	switch k {
	case KindAmount:
		return "amount"
	case KindTrustline:
		return "trustline"
	case KindUnresolved:
		return "unresolved"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// BalanceDelta is one signed change to an account, in stroops of Asset.
type BalanceDelta struct {
	AccountID string `json:"account_id"`
	Delta     int64  `json:"delta"`
	Asset     string `json:"asset"`
	Reason    string `json:"reason"`
}

// Kind classifies d.
func (d *BalanceDelta) Kind() DeltaKind {
	switch {
	case strings.HasPrefix(d.Asset, TrustlinePrefix):
		return KindTrustline
	case d.Asset == MergeInAsset, d.Asset == MergeOutAsset, d.Delta == 0:
		return KindUnresolved
	default:
		return KindAmount
	}
}

// TrustlineLimit returns the limit carried by a set_trustline_limit reason.
func (d *BalanceDelta) TrustlineLimit() (int64, bool, error) {
	if !strings.HasPrefix(d.Reason, ReasonSetTrustlineLimitPrefix) {
		return 0, false, nil
	}
	limit, err := strconv.ParseInt(strings.TrimPrefix(d.Reason, ReasonSetTrustlineLimitPrefix), 10, 64)
	if err != nil {
		return 0, true, err
	}
	return limit, true, nil
}

func (d *BalanceDelta) String() string {
	return fmt.Sprintf("%v %+d %v (%v)", d.AccountID, d.Delta, d.Asset, d.Reason)
}

func trustlineReason(limit xdr.Int64) string {
	if limit == 0 {
		return ReasonRemoveTrustline
	}
	return ReasonSetTrustlineLimitPrefix + strconv.FormatInt(int64(limit), 10)
}

// CalculateDeltas maps a transaction to its balance deltas. The fee delta
// is always first, followed by each operation's deltas in order. The
// result for operations whose effect needs execution results is either a
// zero-amount marker or nothing; see UnsupportedOperations.
// env must have passed validation.
func CalculateDeltas(env *xdr.TransactionEnvelope) []BalanceDelta {
	var (
		feeSource string
		fee       int64
		reason    string
		source    string
	)
	switch env.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		source = KeyHex(env.V0.Tx.SourceAccountEd25519)
		feeSource, fee, reason = source, int64(env.V0.Tx.Fee), ReasonTxFee
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		source = MuxedAccountHex(env.V1.Tx.SourceAccount)
		feeSource, fee, reason = source, int64(env.V1.Tx.Fee), ReasonTxFee
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		feeSource, fee, reason = MuxedAccountHex(env.FeeBump.Tx.FeeSource), int64(env.FeeBump.Tx.Fee), ReasonFeeBump
		source = SourceAccount(env)
	default:
		return nil
	}

	ops := Operations(env)
	deltas := make([]BalanceDelta, 0, 1+2*len(ops))
	deltas = append(deltas, BalanceDelta{AccountID: feeSource, Delta: -fee, Asset: NativeAsset, Reason: reason})
	for i := range ops {
		opSource := source
		if ops[i].SourceAccount != nil {
			opSource = MuxedAccountHex(*ops[i].SourceAccount)
		}
		deltas = appendOperationDeltas(deltas, ops[i].Body, opSource)
	}
	return deltas
}

func appendOperationDeltas(deltas []BalanceDelta, body xdr.OperationBody, source string) []BalanceDelta {
	switch body.Type {
	case xdr.OperationTypeCreateAccount:
		op := body.MustCreateAccountOp()
		amount := int64(op.StartingBalance)
		deltas = append(deltas,
			BalanceDelta{AccountID: source, Delta: -amount, Asset: NativeAsset, Reason: ReasonCreateAccount},
			BalanceDelta{AccountID: AccountIDHex(op.Destination), Delta: amount, Asset: NativeAsset, Reason: ReasonCreateAccount},
		)

	case xdr.OperationTypePayment:
		op := body.MustPaymentOp()
		amount, asset := int64(op.Amount), AssetString(op.Asset)
		deltas = append(deltas,
			BalanceDelta{AccountID: source, Delta: -amount, Asset: asset, Reason: ReasonPayment},
			BalanceDelta{AccountID: MuxedAccountHex(op.Destination), Delta: amount, Asset: asset, Reason: ReasonPayment},
		)

	case xdr.OperationTypePathPaymentStrictSend:
		// the received amount depends on path execution
		op := body.MustPathPaymentStrictSendOp()
		deltas = append(deltas, BalanceDelta{
			AccountID: source, Delta: -int64(op.SendAmount), Asset: AssetString(op.SendAsset), Reason: ReasonPathPaymentStrictSend,
		})

	case xdr.OperationTypePathPaymentStrictReceive:
		// the sent amount depends on path execution
		op := body.MustPathPaymentStrictReceiveOp()
		deltas = append(deltas, BalanceDelta{
			AccountID: MuxedAccountHex(op.Destination), Delta: int64(op.DestAmount), Asset: AssetString(op.DestAsset), Reason: ReasonPathPaymentStrictReceive,
		})

	case xdr.OperationTypeAccountMerge:
		dest := body.MustDestination()
		deltas = append(deltas,
			BalanceDelta{AccountID: source, Delta: 0, Asset: MergeOutAsset, Reason: ReasonAccountMerge},
			BalanceDelta{AccountID: MuxedAccountHex(dest), Delta: 0, Asset: MergeInAsset, Reason: ReasonAccountMerge},
		)

	case xdr.OperationTypeChangeTrust:
		op := body.MustChangeTrustOp()
		deltas = append(deltas, BalanceDelta{
			AccountID: source, Delta: 0, Asset: TrustlineAsset(op.Line), Reason: trustlineReason(op.Limit),
		})

	case xdr.OperationTypeAllowTrust,
		xdr.OperationTypeSetOptions,
		xdr.OperationTypeManageData,
		xdr.OperationTypeBumpSequence,
		xdr.OperationTypeSetTrustLineFlags,
		xdr.OperationTypeBeginSponsoringFutureReserves,
		xdr.OperationTypeEndSponsoringFutureReserves,
		xdr.OperationTypeRevokeSponsorship,
		xdr.OperationTypeExtendFootprintTtl,
		xdr.OperationTypeRestoreFootprint:
		// no balance effect

	case xdr.OperationTypeManageSellOffer,
		xdr.OperationTypeManageBuyOffer,
		xdr.OperationTypeCreatePassiveSellOffer,
		xdr.OperationTypeCreateClaimableBalance,
		xdr.OperationTypeClaimClaimableBalance,
		xdr.OperationTypeLiquidityPoolDeposit,
		xdr.OperationTypeLiquidityPoolWithdraw,
		xdr.OperationTypeClawback,
		xdr.OperationTypeClawbackClaimableBalance,
		xdr.OperationTypeInvokeHostFunction,
		xdr.OperationTypeInflation:
		// needs execution results, reported by UnsupportedOperations

	default:
		panic(fmt.Sprintf("stellar: unhandled operation type %v", body.Type))
	}
	return deltas
}

// UnsupportedOperations lists the operations of env whose balance effect
// is not computed by CalculateDeltas.
func UnsupportedOperations(env *xdr.TransactionEnvelope) []xdr.OperationType {
	var out []xdr.OperationType
	for _, op := range Operations(env) {
		if !isSupportedOperation(op.Body.Type) {
			out = append(out, op.Body.Type)
		}
	}
	return out
}

func isSupportedOperation(t xdr.OperationType) bool {
	switch t {
	case xdr.OperationTypeManageSellOffer,
		xdr.OperationTypeManageBuyOffer,
		xdr.OperationTypeCreatePassiveSellOffer,
		xdr.OperationTypeCreateClaimableBalance,
		xdr.OperationTypeClaimClaimableBalance,
		xdr.OperationTypeLiquidityPoolDeposit,
		xdr.OperationTypeLiquidityPoolWithdraw,
		xdr.OperationTypeClawback,
		xdr.OperationTypeClawbackClaimableBalance,
		xdr.OperationTypeInvokeHostFunction,
		xdr.OperationTypeInflation:
		return false
	}
	return true
}
