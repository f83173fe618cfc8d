package stellar

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pakana/projector/log"
)

const horizonPageLimit = 200

// HorizonLedger is the part of a horizon ledger record the projector uses.
type HorizonLedger struct {
	Sequence                   uint32    `json:"sequence"`
	Hash                       string    `json:"hash"`
	ClosedAt                   time.Time `json:"closed_at"`
	SuccessfulTransactionCount int       `json:"successful_transaction_count"`
	FailedTransactionCount     int       `json:"failed_transaction_count"`
}

// TotalTransactionCount includes failed transactions.
func (l *HorizonLedger) TotalTransactionCount() int {
	return l.SuccessfulTransactionCount + l.FailedTransactionCount
}

// HorizonTransaction is a horizon transaction record.
type HorizonTransaction struct {
	Hash        string `json:"hash"`
	Ledger      uint32 `json:"ledger"`
	EnvelopeXdr string `json:"envelope_xdr"`
	Successful  bool   `json:"successful"`
	PagingToken string `json:"paging_token"`
}

// HorizonBalance is one balance line of an account.
type HorizonBalance struct {
	Balance     string `json:"balance"`
	Limit       string `json:"limit"`
	AssetType   string `json:"asset_type"`
	AssetCode   string `json:"asset_code"`
	AssetIssuer string `json:"asset_issuer"`
}

// HorizonAccount is a horizon account record.
type HorizonAccount struct {
	AccountID string           `json:"account_id"`
	Sequence  string           `json:"sequence"`
	Balances  []HorizonBalance `json:"balances"`
}

type horizonPage struct {
	Embedded struct {
		Records []HorizonTransaction `json:"records"`
	} `json:"_embedded"`
}

type horizonLedgerPage struct {
	Embedded struct {
		Records []HorizonLedger `json:"records"`
	} `json:"_embedded"`
}

type horizonProblem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// HorizonClient talks to one or more horizon endpoints, trying them in order.
type HorizonClient struct {
	endpoints []string
	client    *resty.Client
}

// NewHorizonClient creates a client for the given endpoints.
func NewHorizonClient(endpoints []string, timeout time.Duration, retries int) *HorizonClient {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetHeader("Accept", "application/json")
	cleaned := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		cleaned = append(cleaned, strings.TrimRight(endpoint, "/"))
	}
	return &HorizonClient{endpoints: cleaned, client: client}
}

// get tries each endpoint in turn. A 404 from any endpoint is final and
// reported as notFound.
func (c *HorizonClient) get(ctx context.Context, path string, query map[string]string, result interface{}, notFound error) error {
	var lastErr error
	for _, endpoint := range c.endpoints {
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetResult(result).
			SetError(&horizonProblem{}).
			Get(endpoint + path)
		if err != nil {
			log.Warn("horizon request error", "endpoint", endpoint, "path", path, "err", err)
			lastErr = err
			continue
		}
		if resp.StatusCode() == http.StatusNotFound && notFound != nil {
			return notFound
		}
		if resp.IsError() {
			if problem, ok := resp.Error().(*horizonProblem); ok && problem.Title != "" {
				lastErr = fmt.Errorf("horizon %v: %v (%v)", resp.StatusCode(), problem.Title, problem.Detail)
			} else {
				lastErr = fmt.Errorf("horizon %v: %v", resp.StatusCode(), resp.Status())
			}
			log.Warn("horizon request failed", "endpoint", endpoint, "path", path, "err", lastErr)
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no horizon endpoint configured")
	}
	return lastErr
}

// LatestLedger returns the most recently closed ledger.
func (c *HorizonClient) LatestLedger(ctx context.Context) (*HorizonLedger, error) {
	var page horizonLedgerPage
	query := map[string]string{"order": "desc", "limit": "1"}
	if err := c.get(ctx, "/ledgers", query, &page, nil); err != nil {
		return nil, err
	}
	if len(page.Embedded.Records) == 0 {
		return nil, ErrLedgerNotFound
	}
	return &page.Embedded.Records[0], nil
}

// GetLedger returns the ledger with the given sequence.
func (c *HorizonClient) GetLedger(ctx context.Context, seq uint32) (*HorizonLedger, error) {
	var ledger HorizonLedger
	path := "/ledgers/" + strconv.FormatUint(uint64(seq), 10)
	if err := c.get(ctx, path, nil, &ledger, ErrLedgerNotFound); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// LedgerTransactions returns the successful transactions of a ledger in
// application order, following pagination.
func (c *HorizonClient) LedgerTransactions(ctx context.Context, seq uint32) ([]HorizonTransaction, error) {
	path := "/ledgers/" + strconv.FormatUint(uint64(seq), 10) + "/transactions"
	query := map[string]string{"order": "asc", "limit": strconv.Itoa(horizonPageLimit)}
	var txs []HorizonTransaction
	for {
		var page horizonPage
		if err := c.get(ctx, path, query, &page, ErrLedgerNotFound); err != nil {
			return nil, err
		}
		records := page.Embedded.Records
		txs = append(txs, records...)
		if len(records) < horizonPageLimit {
			return txs, nil
		}
		query["cursor"] = records[len(records)-1].PagingToken
	}
}

// GetTransaction returns a transaction by hash.
func (c *HorizonClient) GetTransaction(ctx context.Context, hash string) (*HorizonTransaction, error) {
	if hash == "" || strings.ContainsAny(hash, "/?#") {
		return nil, ErrTxNotFound
	}
	var tx HorizonTransaction
	if err := c.get(ctx, "/transactions/"+hash, nil, &tx, ErrTxNotFound); err != nil {
		return nil, err
	}
	return &tx, nil
}

// AccountDetail returns the current horizon state of an account. The id
// may be hex or a G... address.
func (c *HorizonClient) AccountDetail(ctx context.Context, accountID string) (*HorizonAccount, error) {
	hexID, err := ParseAccountID(accountID)
	if err != nil {
		return nil, err
	}
	address, err := Address(hexID)
	if err != nil {
		return nil, err
	}
	var account HorizonAccount
	if err := c.get(ctx, "/accounts/"+address, nil, &account, ErrAccountNotFound); err != nil {
		return nil, err
	}
	return &account, nil
}
