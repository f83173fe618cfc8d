package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/tokens/stellar"
	"github.com/stellar/go/xdr"
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

func paymentEnvelope(fee uint32, seq int64, amount int64) *xdr.TransactionEnvelope {
	return &xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTx,
		V1: &xdr.TransactionV1Envelope{
			Tx: xdr.Transaction{
				SourceAccount: muxed(0xaa),
				Fee:           xdr.Uint32(fee),
				SeqNum:        xdr.SequenceNumber(seq),
				Operations: []xdr.Operation{{Body: xdr.OperationBody{
					Type: xdr.OperationTypePayment,
					PaymentOp: &xdr.PaymentOp{
						Destination: muxed(0xbb),
						Asset:       xdr.Asset{Type: xdr.AssetTypeAssetTypeNative},
						Amount:      xdr.Int64(amount),
					},
				}}},
			},
			Signatures: []xdr.DecoratedSignature{{Hint: xdr.SignatureHint{1, 2, 3, 4}, Signature: xdr.Signature{1}}},
		},
	}
}

func feeBump(fee int64, inner *xdr.TransactionEnvelope) *xdr.TransactionEnvelope {
	return &xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeEnvelopeTypeTxFeeBump,
		FeeBump: &xdr.FeeBumpTransactionEnvelope{
			Tx: xdr.FeeBumpTransaction{
				FeeSource: muxed(0xcc),
				Fee:       xdr.Int64(fee),
				InnerTx:   xdr.FeeBumpTransactionInnerTx{Type: xdr.EnvelopeTypeEnvelopeTypeTx, V1: inner.V1},
			},
			Signatures: inner.V1.Signatures,
		},
	}
}

func encode(t *testing.T, env *xdr.TransactionEnvelope) string {
	s, err := stellar.EncodeEnvelope(env)
	require.NoError(t, err)
	return s
}

func writeLedger(t *testing.T, store kvdb.Store, seq uint32, envelopes ...string) {
	l := &feed.Ledger{Sequence: seq, ClosedAt: "2024-01-02T03:04:05Z", TotalTxCount: len(envelopes)}
	for idx, e := range envelopes {
		l.Transactions = append(l.Transactions, &feed.Transaction{
			Ledger:      seq,
			Index:       idx,
			Hash:        fmt.Sprintf("tx%d-%d", seq, idx),
			EnvelopeXDR: e,
		})
	}
	require.NoError(t, store.Update(func(tx kvdb.Tx) error {
		return feed.WriteLedger(tx, l)
	}))
}

type fakeSource struct {
	mu      sync.Mutex
	latest  uint32
	ledgers map[uint32]*stellar.HorizonLedger
	txs     map[uint32][]stellar.HorizonTransaction
	// ledgers whose transactions are not served yet
	lagging map[uint32]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		ledgers: make(map[uint32]*stellar.HorizonLedger),
		txs:     make(map[uint32][]stellar.HorizonTransaction),
		lagging: make(map[uint32]bool),
	}
}

func (s *fakeSource) add(seq uint32, txs ...stellar.HorizonTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successful := 0
	for _, t := range txs {
		if t.Successful {
			successful++
		}
	}
	s.ledgers[seq] = &stellar.HorizonLedger{
		Sequence:                   seq,
		Hash:                       fmt.Sprintf("hash%d", seq),
		ClosedAt:                   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		SuccessfulTransactionCount: successful,
		FailedTransactionCount:     len(txs) - successful,
	}
	s.txs[seq] = txs
	if seq > s.latest {
		s.latest = seq
	}
}

func (s *fakeSource) setLagging(seq uint32, lagging bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lagging[seq] = lagging
}

func (s *fakeSource) LatestLedger(ctx context.Context) (*stellar.HorizonLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.ledgers[s.latest]; ok {
		return l, nil
	}
	return nil, stellar.ErrLedgerNotFound
}

func (s *fakeSource) GetLedger(ctx context.Context, seq uint32) (*stellar.HorizonLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.ledgers[seq]; ok {
		return l, nil
	}
	return nil, stellar.ErrLedgerNotFound
}

func (s *fakeSource) LedgerTransactions(ctx context.Context, seq uint32) ([]stellar.HorizonTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[seq]; !ok || s.lagging[seq] {
		return nil, stellar.ErrLedgerNotFound
	}
	return s.txs[seq], nil
}

type fakeAlerter struct {
	mu       sync.Mutex
	subjects []string
}

func (a *fakeAlerter) Send(subject, content string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subjects = append(a.subjects, subject)
	return nil
}

func (a *fakeAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subjects)
}
