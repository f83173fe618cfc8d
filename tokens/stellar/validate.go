package stellar

import (
	"github.com/stellar/go/xdr"
)

// MaxMemoTextLength is the longest text memo in bytes.
const MaxMemoTextLength = 28

// Validator performs structural checks on envelopes. Signatures are only
// checked for presence, never verified.
type Validator struct {
	// AllowFeeBump validates fee-bump envelopes (outer fee and signatures
	// plus the inner transaction) instead of rejecting them as unsupported.
	AllowFeeBump bool
}

var defaultValidator Validator

// Validate checks env with the default validator, which rejects fee-bump
// envelopes.
func Validate(env *xdr.TransactionEnvelope) error {
	return defaultValidator.Validate(env)
}

// Validate dispatches on the envelope variant. The returned error is a
// *ValidationError.
func (v Validator) Validate(env *xdr.TransactionEnvelope) error {
	switch env.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		if env.V0 == nil {
			return newValidationError(CodeOther, "empty v0 envelope")
		}
		tx := &env.V0.Tx
		return validateTx(uint32(tx.Fee), int64(tx.SeqNum), tx.Operations, tx.Memo, len(env.V0.Signatures))
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		if env.V1 == nil {
			return newValidationError(CodeOther, "empty v1 envelope")
		}
		return validateV1(env.V1)
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		if !v.AllowFeeBump {
			return newValidationError(CodeOther, "fee bump transactions not supported")
		}
		return validateFeeBump(env)
	default:
		return newValidationError(CodeOther, "unknown envelope type %v", env.Type)
	}
}

func validateV1(env *xdr.TransactionV1Envelope) error {
	tx := &env.Tx
	return validateTx(uint32(tx.Fee), int64(tx.SeqNum), tx.Operations, tx.Memo, len(env.Signatures))
}

func validateFeeBump(env *xdr.TransactionEnvelope) error {
	if env.FeeBump == nil {
		return newValidationError(CodeOther, "empty fee bump envelope")
	}
	if env.FeeBump.Tx.Fee <= 0 {
		return newValidationError(CodeMissingFee, "fee bump fee %d", env.FeeBump.Tx.Fee)
	}
	if len(env.FeeBump.Signatures) == 0 {
		return newValidationError(CodeSignatureVerificationFailed, "fee bump envelope has no signatures")
	}
	inner := innerV1(env)
	if inner == nil {
		return newValidationError(CodeOther, "fee bump inner transaction type %v", env.FeeBump.Tx.InnerTx.Type)
	}
	return validateV1(inner)
}

func validateTx(fee uint32, seq int64, ops []xdr.Operation, memo xdr.Memo, sigs int) error {
	if fee == 0 {
		return newValidationError(CodeMissingFee, "fee is zero")
	}
	if seq <= 0 {
		return newValidationError(CodeMissingSequenceNumber, "sequence number %d", seq)
	}
	for i := range ops {
		if !knownOperation(ops[i].Body.Type) {
			return newValidationError(CodeInvalidOperation, "operation %d has unknown type %d", i, int32(ops[i].Body.Type))
		}
		if !operationAssetsValid(ops[i].Body) {
			return newValidationError(CodeInvalidOperation, "operation %d has an invalid asset code", i)
		}
	}
	if memo.Type == xdr.MemoTypeMemoText && memo.Text != nil && len(*memo.Text) > MaxMemoTextLength {
		return newValidationError(CodeMemoTooLarge, "text memo is %d bytes", len(*memo.Text))
	}
	if sigs == 0 {
		return newValidationError(CodeSignatureVerificationFailed, "no signatures")
	}
	return nil
}

func knownOperation(t xdr.OperationType) bool {
	switch t {
	case xdr.OperationTypeCreateAccount,
		xdr.OperationTypePayment,
		xdr.OperationTypePathPaymentStrictReceive,
		xdr.OperationTypeManageSellOffer,
		xdr.OperationTypeCreatePassiveSellOffer,
		xdr.OperationTypeSetOptions,
		xdr.OperationTypeChangeTrust,
		xdr.OperationTypeAllowTrust,
		xdr.OperationTypeAccountMerge,
		xdr.OperationTypeInflation,
		xdr.OperationTypeManageData,
		xdr.OperationTypeBumpSequence,
		xdr.OperationTypeManageBuyOffer,
		xdr.OperationTypePathPaymentStrictSend,
		xdr.OperationTypeCreateClaimableBalance,
		xdr.OperationTypeClaimClaimableBalance,
		xdr.OperationTypeBeginSponsoringFutureReserves,
		xdr.OperationTypeEndSponsoringFutureReserves,
		xdr.OperationTypeRevokeSponsorship,
		xdr.OperationTypeClawback,
		xdr.OperationTypeClawbackClaimableBalance,
		xdr.OperationTypeSetTrustLineFlags,
		xdr.OperationTypeLiquidityPoolDeposit,
		xdr.OperationTypeLiquidityPoolWithdraw,
		xdr.OperationTypeInvokeHostFunction,
		xdr.OperationTypeExtendFootprintTtl,
		xdr.OperationTypeRestoreFootprint:
		return true
	default:
		return false
	}
}

// operationAssetsValid checks the assets that end up in balance deltas.
func operationAssetsValid(body xdr.OperationBody) bool {
	switch body.Type {
	case xdr.OperationTypePayment:
		op, ok := body.GetPaymentOp()
		return ok && validAsset(op.Asset)
	case xdr.OperationTypePathPaymentStrictSend:
		op, ok := body.GetPathPaymentStrictSendOp()
		return ok && validAsset(op.SendAsset) && validAsset(op.DestAsset)
	case xdr.OperationTypePathPaymentStrictReceive:
		op, ok := body.GetPathPaymentStrictReceiveOp()
		return ok && validAsset(op.SendAsset) && validAsset(op.DestAsset)
	case xdr.OperationTypeChangeTrust:
		op, ok := body.GetChangeTrustOp()
		return ok && validChangeTrustAsset(op.Line)
	default:
		return true
	}
}
