package reportapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	rpcjson "github.com/gorilla/rpc/v2/json2"
	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/log"
	"github.com/pakana/projector/mongodb"
	"github.com/pakana/projector/params"
	"github.com/pakana/projector/projection"
	"github.com/pakana/projector/tokens/stellar"
)

// api errors
var (
	ErrNotInitialized     = newRPCError(-32099, "report api is not initialized")
	ErrInvalidAccount     = newRPCError(-32098, "invalid account id")
	ErrAccountBlocked     = newRPCError(-32097, "account is blocked")
	ErrAccountNotFound    = newRPCError(-32096, "account not found")
	ErrLedgerNotFound     = newRPCError(-32095, "ledger not found")
	ErrTransactionMissing = newRPCError(-32094, "transaction not found")
	ErrAuditDisabled      = newRPCError(-32093, "audit database is not enabled")
)

// Fetcher reads current network state, usually from horizon.
type Fetcher interface {
	AccountDetail(ctx context.Context, accountID string) (*stellar.HorizonAccount, error)
	GetLedger(ctx context.Context, seq uint32) (*stellar.HorizonLedger, error)
	LedgerTransactions(ctx context.Context, seq uint32) ([]stellar.HorizonTransaction, error)
	GetTransaction(ctx context.Context, hash string) (*stellar.HorizonTransaction, error)
}

var (
	store          kvdb.Store
	fetcher        Fetcher
	validator      stellar.Validator
	hydrateTimeout = 30 * time.Second

	remoteLatest func() uint32
)

// Init set the store read by the api. fetcher is used to hydrate unknown
// accounts and to read ledgers and transactions missing from the feed. It
// may be nil to disable both.
func Init(s kvdb.Store, f Fetcher, v stellar.Validator) {
	store = s
	fetcher = f
	validator = v
}

// SetRemoteLatestGetter set the source of the remote latest ledger shown in server info
func SetRemoteLatestGetter(f func() uint32) {
	remoteLatest = f
}

func newRPCError(ec rpcjson.ErrorCode, message string) error {
	return &rpcjson.Error{
		Code:    ec,
		Message: message,
	}
}

func newRPCInternalError(err error) error {
	return newRPCError(-32000, "rpcError: "+err.Error())
}

func view(f func(r kvdb.Reader) error) error {
	if store == nil {
		return ErrNotInitialized
	}
	return store.View(f)
}

// ResolveAccount convert hex or G... account to hex id and check block list
func ResolveAccount(account string) (string, error) {
	id, err := stellar.ParseAccountID(account)
	if err != nil {
		return "", ErrInvalidAccount
	}
	if IsBlocked(id) {
		return "", ErrAccountBlocked
	}
	return id, nil
}

// GetServerInfo api
func GetServerInfo() (*ServerInfo, error) {
	log.Debug("[api] receive GetServerInfo")
	info := &ServerInfo{
		Identifier: params.GetIdentifier(),
		Version:    params.VersionWithMeta,
		Hydration:  fetcher != nil,
		Audit:      mongodb.HasClient(),
	}
	if remoteLatest != nil {
		info.RemoteLedger = remoteLatest()
	}
	err := view(func(r kvdb.Reader) (err error) {
		if info.LatestLedger, _, err = feed.LatestLedger(r); err != nil {
			return err
		}
		info.ProjectedLedger, err = feed.Cursor(r)
		return err
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return info, nil
}

func loadAccount(id string) (acct *projection.Account, tracked bool, err error) {
	err = view(func(r kvdb.Reader) error {
		if acct, err = projection.LoadAccount(r, id); err != nil {
			return err
		}
		tracked, err = feed.IsTracked(r, id)
		return err
	})
	return acct, tracked, err
}

// getAccount loads a projected account, hydrating it on a miss
func getAccount(account string) (*projection.Account, bool, error) {
	id, err := ResolveAccount(account)
	if err != nil {
		return nil, false, err
	}
	acct, tracked, err := loadAccount(id)
	if errors.Is(err, projection.ErrAccountNotFound) && fetcher != nil {
		if err = hydrate(id); err != nil {
			return nil, false, err
		}
		acct, tracked, err = loadAccount(id)
	}
	if err != nil {
		return nil, false, wrapError(err)
	}
	return acct, tracked, nil
}

func hydrate(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()
	detail, err := fetcher.AccountDetail(ctx, id)
	if errors.Is(err, stellar.ErrAccountNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		log.Warn("[api] hydrate account failed", "account", id, "err", err)
		return newRPCInternalError(err)
	}
	err = store.Update(func(tx kvdb.Tx) error {
		if err := projection.Hydrate(tx, id, detail); err != nil {
			return err
		}
		return feed.SetTracked(tx, id)
	})
	if err != nil {
		log.Warn("[api] store hydrated account failed", "account", id, "err", err)
		return newRPCInternalError(err)
	}
	log.Info("[api] hydrate account success", "account", id, "balances", len(detail.Balances))
	return nil
}

// GetAccount api
func GetAccount(account string) (*AccountInfo, error) {
	log.Debug("[api] receive GetAccount", "account", account)
	acct, tracked, err := getAccount(account)
	if err != nil {
		return nil, err
	}
	return ConvertAccount(acct, tracked), nil
}

// GetBalance api
func GetBalance(account string) (*BalanceInfo, error) {
	log.Debug("[api] receive GetBalance", "account", account)
	acct, _, err := getAccount(account)
	if err != nil {
		return nil, err
	}
	return &BalanceInfo{
		ID:           acct.ID,
		Balance:      acct.Balance,
		BalanceXLM:   stellar.FormatAmount(acct.Balance),
		LastModified: acct.LastModified,
	}, nil
}

// GetTrustlines api
func GetTrustlines(account string) ([]*TrustlineInfo, error) {
	log.Debug("[api] receive GetTrustlines", "account", account)
	acct, _, err := getAccount(account)
	if err != nil {
		return nil, err
	}
	return ConvertTrustlines(acct.Trustlines), nil
}

// GetAccountDeltas api, read from the audit database
func GetAccountDeltas(account string, offset, limit int) ([]*AuditDelta, error) {
	log.Debug("[api] receive GetAccountDeltas", "account", account, "offset", offset, "limit", limit)
	id, err := ResolveAccount(account)
	if err != nil {
		return nil, err
	}
	if !mongodb.HasClient() {
		return nil, ErrAuditDisabled
	}
	return mongodb.FindAccountDeltas(id, offset, limit)
}

// GetLatestLedger api
func GetLatestLedger() (*LedgerInfo, error) {
	log.Debug("[api] receive GetLatestLedger")
	var (
		latest uint32
		ok     bool
	)
	err := view(func(r kvdb.Reader) (err error) {
		latest, ok, err = feed.LatestLedger(r)
		return err
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if !ok {
		return nil, ErrLedgerNotFound
	}
	return GetLedger(latest)
}

// GetLedger api
func GetLedger(seq uint32) (*LedgerInfo, error) {
	log.Debug("[api] receive GetLedger", "ledger", seq)
	var info *LedgerInfo
	err := view(func(r kvdb.Reader) error {
		l, err := feed.ReadLedger(r, seq)
		if err != nil {
			return err
		}
		summary, err := feed.ReadSummary(r, seq)
		if err != nil && !errors.Is(err, feed.ErrLedgerNotFound) {
			return err
		}
		info = ConvertLedger(l, summary)
		return nil
	})
	if errors.Is(err, feed.ErrLedgerNotFound) && fetcher != nil {
		return fetchLedger(seq)
	}
	if err != nil {
		return nil, wrapError(err)
	}
	attachAudit(info)
	return info, nil
}

// fetchLedger reads a ledger missing from the feed from horizon. Nothing
// is written to the store.
func fetchLedger(seq uint32) (*LedgerInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()
	header, err := fetcher.GetLedger(ctx, seq)
	if errors.Is(err, stellar.ErrLedgerNotFound) {
		return nil, ErrLedgerNotFound
	}
	if err != nil {
		log.Warn("[api] fetch ledger failed", "ledger", seq, "err", err)
		return nil, newRPCInternalError(err)
	}
	txs, err := fetcher.LedgerTransactions(ctx, seq)
	if errors.Is(err, stellar.ErrLedgerNotFound) {
		return nil, ErrLedgerNotFound
	}
	if err != nil {
		log.Warn("[api] fetch ledger transactions failed", "ledger", seq, "err", err)
		return nil, newRPCInternalError(err)
	}
	l := feed.FromHorizon(header, txs)
	if !feed.Complete(l, header) {
		return nil, newRPCInternalError(fmt.Errorf("ledger %d has %d successful transactions, got %d",
			seq, header.SuccessfulTransactionCount, len(l.Transactions)))
	}
	info := ConvertLedger(l, nil)
	info.Source = SourceHorizon
	return info, nil
}

// attachAudit adds the audit database summary when one is recorded
func attachAudit(info *LedgerInfo) {
	if !mongodb.HasClient() {
		return
	}
	summary, err := mongodb.FindLedgerSummary(info.Sequence)
	if err == mongodb.ErrItemNotFound {
		return
	}
	if err != nil {
		log.Warn("[api] find audit ledger summary failed", "ledger", info.Sequence, "err", err)
		return
	}
	info.Audit = summary
}

// GetTransaction api
func GetTransaction(hash string) (*TransactionInfo, error) {
	log.Debug("[api] receive GetTransaction", "hash", hash)
	var t *feed.Transaction
	err := view(func(r kvdb.Reader) (err error) {
		t, err = feed.FindTransaction(r, hash)
		return err
	})
	if errors.Is(err, feed.ErrTransactionNotFound) && fetcher != nil {
		return fetchTransaction(hash)
	}
	if err != nil {
		return nil, wrapError(err)
	}
	return ConvertTransaction(t, validator), nil
}

// fetchTransaction reads a transaction missing from the feed from horizon.
// Its index within the ledger is not known. A failed transaction has no
// deltas.
func fetchTransaction(hash string) (*TransactionInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()
	ht, err := fetcher.GetTransaction(ctx, hash)
	if errors.Is(err, stellar.ErrTxNotFound) {
		return nil, ErrTransactionMissing
	}
	if err != nil {
		log.Warn("[api] fetch transaction failed", "hash", hash, "err", err)
		return nil, newRPCInternalError(err)
	}
	info := ConvertTransaction(&feed.Transaction{
		Ledger:      ht.Ledger,
		Index:       -1,
		Hash:        ht.Hash,
		EnvelopeXDR: ht.EnvelopeXdr,
	}, validator)
	info.Source = SourceHorizon
	if !ht.Successful {
		info.Failed = true
		info.Deltas = []*BalanceDelta{}
	}
	return info, nil
}

func wrapError(err error) error {
	var rpcErr *rpcjson.Error
	switch {
	case errors.As(err, &rpcErr):
		return err
	case errors.Is(err, projection.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, feed.ErrLedgerNotFound):
		return ErrLedgerNotFound
	case errors.Is(err, feed.ErrTransactionNotFound):
		return ErrTransactionMissing
	default:
		return newRPCInternalError(err)
	}
}
