package stellar

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) xdr.Uint256 {
	var k xdr.Uint256
	for i := range k {
		k[i] = b
	}
	return k
}

func hexOf(b byte) string {
	return strings.Repeat(fmt.Sprintf("%02x", b), 32)
}

func muxed(b byte) xdr.MuxedAccount {
	k := key(b)
	return xdr.MuxedAccount{Type: xdr.CryptoKeyTypeKeyTypeEd25519, Ed25519: &k}
}

func accountID(b byte) xdr.AccountId {
	k := key(b)
	return xdr.AccountId{Type: xdr.PublicKeyTypePublicKeyTypeEd25519, Ed25519: &k}
}

func signatures() []xdr.DecoratedSignature {
	return []xdr.DecoratedSignature{{Hint: xdr.SignatureHint{1, 2, 3, 4}, Signature: xdr.Signature{0x01, 0x02}}}
}

func nativeAsset() xdr.Asset {
	return xdr.Asset{Type: xdr.AssetTypeAssetTypeNative}
}

func usdAsset() xdr.Asset {
	return xdr.Asset{
		Type:      xdr.AssetTypeAssetTypeCreditAlphanum4,
		AlphaNum4: &xdr.AlphaNum4{AssetCode: xdr.AssetCode4{'U', 'S', 'D', 0}, Issuer: accountID(0x11)},
	}
}

func v1Envelope(fee uint32, seq int64, ops ...xdr.Operation) *xdr.TransactionEnvelope {
	return &xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTx,
		V1: &xdr.TransactionV1Envelope{
			Tx: xdr.Transaction{
				SourceAccount: muxed(0xaa),
				Fee:           xdr.Uint32(fee),
				SeqNum:        xdr.SequenceNumber(seq),
				Operations:    ops,
			},
			Signatures: signatures(),
		},
	}
}

func v0Envelope(fee uint32, seq int64, ops ...xdr.Operation) *xdr.TransactionEnvelope {
	return &xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTxV0,
		V0: &xdr.TransactionV0Envelope{
			Tx: xdr.TransactionV0{
				SourceAccountEd25519: key(0xaa),
				Fee:                  xdr.Uint32(fee),
				SeqNum:               xdr.SequenceNumber(seq),
				Operations:           ops,
			},
			Signatures: signatures(),
		},
	}
}

func feeBumpEnvelope(fee int64, inner *xdr.TransactionEnvelope) *xdr.TransactionEnvelope {
	return &xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTxFeeBump,
		FeeBump: &xdr.FeeBumpTransactionEnvelope{
			Tx: xdr.FeeBumpTransaction{
				FeeSource: muxed(0xcc),
				Fee:       xdr.Int64(fee),
				InnerTx:   xdr.FeeBumpTransactionInnerTx{Type: xdr.EnvelopeTypeEnvelopeTypeTx, V1: inner.V1},
			},
			Signatures: signatures(),
		},
	}
}

func paymentOp(dest byte, amount int64, asset xdr.Asset) xdr.Operation {
	return xdr.Operation{Body: xdr.OperationBody{
		Type:      xdr.OperationTypePayment,
		PaymentOp: &xdr.PaymentOp{Destination: muxed(dest), Asset: asset, Amount: xdr.Int64(amount)},
	}}
}

func createAccountOp(dest byte, amount int64) xdr.Operation {
	return xdr.Operation{Body: xdr.OperationBody{
		Type:            xdr.OperationTypeCreateAccount,
		CreateAccountOp: &xdr.CreateAccountOp{Destination: accountID(dest), StartingBalance: xdr.Int64(amount)},
	}}
}

func changeTrustOp(limit int64) xdr.Operation {
	usd := usdAsset()
	return xdr.Operation{Body: xdr.OperationBody{
		Type: xdr.OperationTypeChangeTrust,
		ChangeTrustOp: &xdr.ChangeTrustOp{
			Line:  xdr.ChangeTrustAsset{Type: usd.Type, AlphaNum4: usd.AlphaNum4},
			Limit: xdr.Int64(limit),
		},
	}}
}

func accountMergeOp(dest byte) xdr.Operation {
	d := muxed(dest)
	return xdr.Operation{Body: xdr.OperationBody{Type: xdr.OperationTypeAccountMerge, Destination: &d}}
}

func TestPaymentDeltas(t *testing.T) {
	env := v1Envelope(100, 1, paymentOp(0xbb, 500, nativeAsset()))
	require.NoError(t, Validate(env))

	assert.Equal(t, []BalanceDelta{
		{AccountID: hexOf(0xaa), Delta: -100, Asset: NativeAsset, Reason: ReasonTxFee},
		{AccountID: hexOf(0xaa), Delta: -500, Asset: NativeAsset, Reason: ReasonPayment},
		{AccountID: hexOf(0xbb), Delta: 500, Asset: NativeAsset, Reason: ReasonPayment},
	}, CalculateDeltas(env))
}

func TestCreateAccountSumsToZero(t *testing.T) {
	for _, amount := range []int64{1, 10000000, 1 << 40} {
		deltas := CalculateDeltas(v1Envelope(100, 1, createAccountOp(0xbb, amount)))
		require.Len(t, deltas, 3)
		ops := deltas[1:]
		assert.Equal(t, int64(0), ops[0].Delta+ops[1].Delta)
		assert.Equal(t, hexOf(0xaa), ops[0].AccountID)
		assert.Equal(t, hexOf(0xbb), ops[1].AccountID)
		assert.Equal(t, ReasonCreateAccount, ops[0].Reason)
		assert.Equal(t, ReasonCreateAccount, ops[1].Reason)
	}
}

func TestChangeTrustReasons(t *testing.T) {
	issuer := hexOf(0x11)
	for _, tc := range []struct {
		limit  int64
		reason string
	}{
		{0, ReasonRemoveTrustline},
		{1, "set_trustline_limit:1"},
		{922337203685, "set_trustline_limit:922337203685"},
	} {
		deltas := CalculateDeltas(v1Envelope(100, 1, changeTrustOp(tc.limit)))
		require.Len(t, deltas, 2)
		d := deltas[1]
		assert.Equal(t, tc.reason, d.Reason)
		assert.Equal(t, "trustline:USD:"+issuer, d.Asset)
		assert.Zero(t, d.Delta)
		assert.Equal(t, KindTrustline, d.Kind())
	}
}

func TestPoolShareTrustline(t *testing.T) {
	op := xdr.Operation{Body: xdr.OperationBody{
		Type: xdr.OperationTypeChangeTrust,
		ChangeTrustOp: &xdr.ChangeTrustOp{
			Line:  xdr.ChangeTrustAsset{Type: xdr.AssetTypeAssetTypePoolShare, LiquidityPool: &xdr.LiquidityPoolParameters{}},
			Limit: 5,
		},
	}}
	deltas := CalculateDeltas(v1Envelope(100, 1, op))
	assert.Equal(t, "trustline:pool_share", deltas[1].Asset)
}

func TestAccountMergeMarkers(t *testing.T) {
	deltas := CalculateDeltas(v1Envelope(100, 1, accountMergeOp(0xbb)))
	require.Len(t, deltas, 3)
	assert.Equal(t, BalanceDelta{AccountID: hexOf(0xaa), Asset: MergeOutAsset, Reason: ReasonAccountMerge}, deltas[1])
	assert.Equal(t, BalanceDelta{AccountID: hexOf(0xbb), Asset: MergeInAsset, Reason: ReasonAccountMerge}, deltas[2])
	assert.Equal(t, KindUnresolved, deltas[1].Kind())
	assert.Equal(t, KindUnresolved, deltas[2].Kind())
	assert.Equal(t, KindAmount, deltas[0].Kind())
}

func TestPathPayments(t *testing.T) {
	send := xdr.Operation{Body: xdr.OperationBody{
		Type: xdr.OperationTypePathPaymentStrictSend,
		PathPaymentStrictSendOp: &xdr.PathPaymentStrictSendOp{
			SendAsset: usdAsset(), SendAmount: 70, Destination: muxed(0xbb), DestAsset: nativeAsset(), DestMin: 1,
		},
	}}
	receive := xdr.Operation{Body: xdr.OperationBody{
		Type: xdr.OperationTypePathPaymentStrictReceive,
		PathPaymentStrictReceiveOp: &xdr.PathPaymentStrictReceiveOp{
			SendAsset: nativeAsset(), SendMax: 1000, Destination: muxed(0xbb), DestAsset: usdAsset(), DestAmount: 30,
		},
	}}
	deltas := CalculateDeltas(v1Envelope(100, 1, send, receive))
	usd := "USD:" + hexOf(0x11)
	assert.Equal(t, []BalanceDelta{
		{AccountID: hexOf(0xaa), Delta: -100, Asset: NativeAsset, Reason: ReasonTxFee},
		{AccountID: hexOf(0xaa), Delta: -70, Asset: usd, Reason: ReasonPathPaymentStrictSend},
		{AccountID: hexOf(0xbb), Delta: 30, Asset: usd, Reason: ReasonPathPaymentStrictReceive},
	}, deltas)
}

func TestOperationSourceOverride(t *testing.T) {
	op := paymentOp(0xbb, 5, nativeAsset())
	src := xdr.MuxedAccount{
		Type:     xdr.CryptoKeyTypeKeyTypeMuxedEd25519,
		Med25519: &xdr.MuxedAccountMed25519{Id: 42, Ed25519: key(0xdd)},
	}
	op.SourceAccount = &src
	deltas := CalculateDeltas(v1Envelope(100, 1, op))
	assert.Equal(t, hexOf(0xaa), deltas[0].AccountID)
	assert.Equal(t, hexOf(0xdd), deltas[1].AccountID)
}

func TestNoEffectAndUnsupportedOperations(t *testing.T) {
	bump := xdr.Operation{Body: xdr.OperationBody{Type: xdr.OperationTypeBumpSequence, BumpSequenceOp: &xdr.BumpSequenceOp{BumpTo: 9}}}
	offer := xdr.Operation{Body: xdr.OperationBody{
		Type: xdr.OperationTypeManageSellOffer,
		ManageSellOfferOp: &xdr.ManageSellOfferOp{
			Selling: nativeAsset(), Buying: usdAsset(), Amount: 10, Price: xdr.Price{N: 1, D: 1},
		},
	}}
	inflation := xdr.Operation{Body: xdr.OperationBody{Type: xdr.OperationTypeInflation}}
	env := v1Envelope(100, 1, bump, offer, inflation)

	require.NoError(t, Validate(env))
	deltas := CalculateDeltas(env)
	require.Len(t, deltas, 1)
	assert.Equal(t, ReasonTxFee, deltas[0].Reason)
	assert.Equal(t, []xdr.OperationType{xdr.OperationTypeManageSellOffer, xdr.OperationTypeInflation}, UnsupportedOperations(env))
}

func TestV0Envelope(t *testing.T) {
	env := v0Envelope(200, 3, paymentOp(0xbb, 1, usdAsset()))
	require.NoError(t, Validate(env))
	deltas := CalculateDeltas(env)
	require.Len(t, deltas, 3)
	assert.Equal(t, BalanceDelta{AccountID: hexOf(0xaa), Delta: -200, Asset: NativeAsset, Reason: ReasonTxFee}, deltas[0])
	assert.Equal(t, "USD:"+hexOf(0x11), deltas[2].Asset)
	assert.Equal(t, hexOf(0xaa), SourceAccount(env))
	assert.Equal(t, int64(3), SequenceNumber(env))
	assert.Equal(t, VersionV0, Version(env))
}

func TestValidateFailures(t *testing.T) {
	long := strings.Repeat("m", MaxMemoTextLength+1)
	exact := strings.Repeat("m", MaxMemoTextLength)

	unknownOp := xdr.Operation{Body: xdr.OperationBody{Type: xdr.OperationType(99)}}

	noSig := v1Envelope(100, 1, paymentOp(0xbb, 1, nativeAsset()))
	noSig.V1.Signatures = nil

	longMemo := v1Envelope(100, 1)
	longMemo.V1.Tx.Memo = xdr.Memo{Type: xdr.MemoTypeMemoText, Text: &long}

	exactMemo := v0Envelope(100, 1)
	exactMemo.V0.Tx.Memo = xdr.Memo{Type: xdr.MemoTypeMemoText, Text: &exact}

	for _, tc := range []struct {
		name string
		env  *xdr.TransactionEnvelope
		want error
	}{
		{"zero fee v1", v1Envelope(0, 1), ErrMissingFee},
		{"zero fee v0", v0Envelope(0, 1), ErrMissingFee},
		{"zero seq", v1Envelope(100, 0), ErrMissingSequenceNumber},
		{"negative seq", v0Envelope(100, -5), ErrMissingSequenceNumber},
		{"unknown op", v1Envelope(100, 1, unknownOp), ErrInvalidOperation},
		{"long memo", longMemo, ErrMemoTooLarge},
		{"no signature", noSig, ErrSignatureVerificationFailed},
		{"fee bump", feeBumpEnvelope(400, v1Envelope(100, 1)), ErrUnsupported},
		{"unknown envelope", &xdr.TransactionEnvelope{Type: xdr.EnvelopeType(77)}, ErrUnsupported},
		{"exact memo", exactMemo, nil},
	} {
		err := Validate(tc.env)
		if tc.want == nil {
			assert.NoError(t, err, tc.name)
			continue
		}
		assert.True(t, errors.Is(err, tc.want), "%v: got %v", tc.name, err)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), tc.name)
	}
}

func TestFeeBump(t *testing.T) {
	inner := v1Envelope(100, 7, paymentOp(0xbb, 500, nativeAsset()))
	env := feeBumpEnvelope(400, inner)

	v := Validator{AllowFeeBump: true}
	require.NoError(t, v.Validate(env))

	deltas := CalculateDeltas(env)
	assert.Equal(t, []BalanceDelta{
		{AccountID: hexOf(0xcc), Delta: -400, Asset: NativeAsset, Reason: ReasonFeeBump},
		{AccountID: hexOf(0xaa), Delta: -500, Asset: NativeAsset, Reason: ReasonPayment},
		{AccountID: hexOf(0xbb), Delta: 500, Asset: NativeAsset, Reason: ReasonPayment},
	}, deltas)
	assert.Equal(t, hexOf(0xaa), SourceAccount(env))
	assert.Equal(t, hexOf(0xcc), FeeSource(env))
	assert.Equal(t, int64(7), SequenceNumber(env))

	badInner := feeBumpEnvelope(400, v1Envelope(0, 7))
	assert.True(t, errors.Is(v.Validate(badInner), ErrMissingFee))

	noOuterFee := feeBumpEnvelope(0, inner)
	assert.True(t, errors.Is(v.Validate(noOuterFee), ErrMissingFee))

	noOuterSig := feeBumpEnvelope(400, inner)
	noOuterSig.FeeBump.Signatures = nil
	assert.True(t, errors.Is(v.Validate(noOuterSig), ErrSignatureVerificationFailed))
}

func TestDecodeEnvelope(t *testing.T) {
	env := v1Envelope(100, 1, paymentOp(0xbb, 500, nativeAsset()), changeTrustOp(1000))
	hash := xdr.Hash(key(0x42))
	env.V1.Tx.Memo = xdr.Memo{Type: xdr.MemoTypeMemoHash, Hash: &hash}

	b64, err := EncodeEnvelope(env)
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(b64)
	require.NoError(t, err)
	assert.Equal(t, CalculateDeltas(env), CalculateDeltas(decoded))
	memo, ok := MemoHash(decoded)
	assert.True(t, ok)
	assert.Equal(t, hexOf(0x42), memo)

	_, err = DecodeEnvelope("NotBase64%%")
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, StageBase64, derr.Stage)

	raw, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	trailing := base64.StdEncoding.EncodeToString(append(raw, 0, 0, 0, 0))
	_, err = DecodeEnvelope(trailing)
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, StageXDR, derr.Stage)

	truncated := base64.StdEncoding.EncodeToString(raw[:len(raw)-8])
	_, err = DecodeEnvelope(truncated)
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, StageXDR, derr.Stage)
}

func TestMemoHashAbsent(t *testing.T) {
	_, ok := MemoHash(v1Envelope(100, 1))
	assert.False(t, ok)
}

func TestAssetCanonicalization(t *testing.T) {
	issuer := hexOf(0x11)
	assert.Equal(t, "native", AssetString(nativeAsset()))
	assert.Equal(t, "USD:"+issuer, AssetString(usdAsset()))

	long := xdr.Asset{
		Type:       xdr.AssetTypeAssetTypeCreditAlphanum12,
		AlphaNum12: &xdr.AlphaNum12{Issuer: accountID(0x11)},
	}
	copy(long.AlphaNum12.AssetCode[:], "LONGCODE")
	assert.Equal(t, "LONGCODE:"+issuer, AssetString(long))

	for _, s := range []string{"native", "USD:" + issuer, "LONGCODE:" + issuer, "pool_share"} {
		a, err := ParseAsset(s)
		require.NoError(t, err)
		assert.Equal(t, s, a.String())
	}
	a, _ := ParseAsset("native")
	assert.True(t, a.IsNative())

	for _, s := range []string{"", ":x", "USD:", "A:B:C", "USD:" + issuer[:63] + "z"} {
		_, err := ParseAsset(s)
		assert.True(t, errors.Is(err, ErrInvalidAsset), s)
	}
}

func TestAccountIDs(t *testing.T) {
	id := hexOf(0xaa)
	addr, err := Address(id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "G"))

	back, err := ParseAccountID(addr)
	require.NoError(t, err)
	assert.Equal(t, id, back)

	back, err = ParseAccountID(strings.ToUpper(id))
	require.NoError(t, err)
	assert.Equal(t, id, back)

	for _, bad := range []string{"", "abc", strings.Repeat("z", 64), "GBADADDRESS"} {
		_, err := ParseAccountID(bad)
		assert.True(t, errors.Is(err, ErrInvalidAccountID), bad)
	}
}

func TestDeltaTrustlineLimit(t *testing.T) {
	d := BalanceDelta{Reason: "set_trustline_limit:250"}
	limit, ok, err := d.TrustlineLimit()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(250), limit)

	d.Reason = ReasonRemoveTrustline
	_, ok, _ = d.TrustlineLimit()
	assert.False(t, ok)

	d.Reason = "set_trustline_limit:x"
	_, ok, err = d.TrustlineLimit()
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestAmounts(t *testing.T) {
	assert.Equal(t, "500.0000000", FormatAmount(5000000000))
	assert.Equal(t, "-0.0000600", FormatAmount(-600))

	for _, tc := range []struct {
		in   string
		want int64
	}{
		{"100.0000000", 1000000000},
		{"100.5", 1005000000},
		{"0.0000001", 1},
		{"-2", -20000000},
		{"0", 0},
	} {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	for _, bad := range []string{"0.00000001", "abc", ""} {
		_, err := ParseAmount(bad)
		assert.True(t, errors.Is(err, ErrInvalidAmount), bad)
	}
}

func TestAssetRoundTripOddCodes(t *testing.T) {
	issuer := hexOf(0x01)
	for _, code := range [][]byte{
		{'A', ':', 'B', 0},
		{0, 0, 0, 0},
		{'U', 'S', 'D', 0},
		{'x', ':', 0, 0},
	} {
		a := xdr.Asset{
			Type:      xdr.AssetTypeAssetTypeCreditAlphanum4,
			AlphaNum4: &xdr.AlphaNum4{Issuer: accountID(0x01)},
		}
		copy(a.AlphaNum4.AssetCode[:], code)
		canonical := AssetString(a)
		parsed, err := ParseAsset(canonical)
		require.NoError(t, err, canonical)
		assert.Equal(t, issuer, parsed.Issuer, canonical)
		assert.Equal(t, canonical, parsed.String())
	}
}

func TestValidateRejectsBadAssetCodes(t *testing.T) {
	colon := xdr.Asset{
		Type:      xdr.AssetTypeAssetTypeCreditAlphanum4,
		AlphaNum4: &xdr.AlphaNum4{AssetCode: xdr.AssetCode4{'A', ':', 'B', 0}, Issuer: accountID(0x11)},
	}
	empty := xdr.Asset{
		Type:      xdr.AssetTypeAssetTypeCreditAlphanum4,
		AlphaNum4: &xdr.AlphaNum4{Issuer: accountID(0x11)},
	}
	inner := xdr.Asset{
		Type:      xdr.AssetTypeAssetTypeCreditAlphanum4,
		AlphaNum4: &xdr.AlphaNum4{AssetCode: xdr.AssetCode4{'U', 0, 'D', 0}, Issuer: accountID(0x11)},
	}
	emptyLine := xdr.Operation{Body: xdr.OperationBody{
		Type: xdr.OperationTypeChangeTrust,
		ChangeTrustOp: &xdr.ChangeTrustOp{
			Line:  xdr.ChangeTrustAsset{Type: empty.Type, AlphaNum4: empty.AlphaNum4},
			Limit: 10,
		},
	}}
	for name, op := range map[string]xdr.Operation{
		"colon":      paymentOp(0xbb, 5, colon),
		"empty":      paymentOp(0xbb, 5, empty),
		"inner nul":  paymentOp(0xbb, 5, inner),
		"trust line": emptyLine,
	} {
		err := Validate(v1Envelope(100, 1, op))
		assert.True(t, errors.Is(err, ErrInvalidOperation), name)
	}
	assert.NoError(t, Validate(v1Envelope(100, 1, paymentOp(0xbb, 5, usdAsset()), changeTrustOp(10))))
}
