package stellar

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/stellar/go/xdr"
)

// envelope versions
const (
	VersionV0      = "v0"
	VersionV1      = "v1"
	VersionFeeBump = "fee_bump"
)

// DecodeEnvelope decodes a base64 XDR transaction envelope. The whole input
// must be consumed.
func DecodeEnvelope(b64 string) (*xdr.TransactionEnvelope, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, &DecodeError{Stage: StageBase64, Err: err}
	}
	var env xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Stage: StageXDR, Err: err}
	}
	return &env, nil
}

// EncodeEnvelope is the inverse of DecodeEnvelope.
func EncodeEnvelope(env *xdr.TransactionEnvelope) (string, error) {
	return xdr.MarshalBase64(env)
}

// Version names the envelope variant.
func Version(env *xdr.TransactionEnvelope) string {
	switch env.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		return VersionV0
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		return VersionV1
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		return VersionFeeBump
	default:
		return env.Type.String()
	}
}

// innerV1 returns the wrapped transaction of a fee-bump envelope.
func innerV1(env *xdr.TransactionEnvelope) *xdr.TransactionV1Envelope {
	if env.FeeBump == nil || env.FeeBump.Tx.InnerTx.Type != xdr.EnvelopeTypeEnvelopeTypeTx {
		return nil
	}
	return env.FeeBump.Tx.InnerTx.V1
}

// SourceAccount returns the hex id of the transaction source. For a
// fee-bump envelope this is the inner transaction's source.
func SourceAccount(env *xdr.TransactionEnvelope) string {
	switch env.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		if env.V0 != nil {
			return KeyHex(env.V0.Tx.SourceAccountEd25519)
		}
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		if env.V1 != nil {
			return MuxedAccountHex(env.V1.Tx.SourceAccount)
		}
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		if inner := innerV1(env); inner != nil {
			return MuxedAccountHex(inner.Tx.SourceAccount)
		}
	}
	return ""
}

// FeeSource returns the hex id of the account paying the fee.
func FeeSource(env *xdr.TransactionEnvelope) string {
	if env.Type == xdr.EnvelopeTypeEnvelopeTypeTxFeeBump && env.FeeBump != nil {
		return MuxedAccountHex(env.FeeBump.Tx.FeeSource)
	}
	return SourceAccount(env)
}

// SequenceNumber returns the sequence number of the (inner) transaction.
func SequenceNumber(env *xdr.TransactionEnvelope) int64 {
	switch env.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		if env.V0 != nil {
			return int64(env.V0.Tx.SeqNum)
		}
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		if env.V1 != nil {
			return int64(env.V1.Tx.SeqNum)
		}
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		if inner := innerV1(env); inner != nil {
			return int64(inner.Tx.SeqNum)
		}
	}
	return 0
}

func envelopeMemo(env *xdr.TransactionEnvelope) (xdr.Memo, bool) {
	switch env.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		if env.V0 != nil {
			return env.V0.Tx.Memo, true
		}
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		if env.V1 != nil {
			return env.V1.Tx.Memo, true
		}
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		if inner := innerV1(env); inner != nil {
			return inner.Tx.Memo, true
		}
	}
	return xdr.Memo{}, false
}

// MemoHash returns the hex of a hash or return memo.
func MemoHash(env *xdr.TransactionEnvelope) (string, bool) {
	memo, ok := envelopeMemo(env)
	if !ok {
		return "", false
	}
	switch memo.Type {
	case xdr.MemoTypeMemoHash:
		if memo.Hash != nil {
			return hex.EncodeToString(memo.Hash[:]), true
		}
	case xdr.MemoTypeMemoReturn:
		if memo.RetHash != nil {
			return hex.EncodeToString(memo.RetHash[:]), true
		}
	}
	return "", false
}

// Operations returns the operations the envelope executes.
func Operations(env *xdr.TransactionEnvelope) []xdr.Operation {
	switch env.Type {
	case xdr.EnvelopeTypeEnvelopeTypeTxV0:
		if env.V0 != nil {
			return env.V0.Tx.Operations
		}
	case xdr.EnvelopeTypeEnvelopeTypeTx:
		if env.V1 != nil {
			return env.V1.Tx.Operations
		}
	case xdr.EnvelopeTypeEnvelopeTypeTxFeeBump:
		if inner := innerV1(env); inner != nil {
			return inner.Tx.Operations
		}
	}
	return nil
}
