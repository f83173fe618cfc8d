package rpcapi

import (
	"net/http"

	"github.com/pakana/projector/internal/reportapi"
	"github.com/pakana/projector/params"
)

// RPCAPI rpc api handler
type RPCAPI struct{}

// RPCNullArgs null args
type RPCNullArgs struct{}

// RPCLedgerArgs ledger args
type RPCLedgerArgs struct {
	Sequence uint32 `json:"sequence"`
}

// RPCQueryHistoryArgs history query args
type RPCQueryHistoryArgs struct {
	Account string `json:"account"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

// GetVersionInfo api
func (s *RPCAPI) GetVersionInfo(r *http.Request, args *RPCNullArgs, result *string) error {
	version := params.VersionWithMeta
	*result = version
	return nil
}

// GetServerInfo api
func (s *RPCAPI) GetServerInfo(r *http.Request, args *RPCNullArgs, result *reportapi.ServerInfo) error {
	res, err := reportapi.GetServerInfo()
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetAccount api
func (s *RPCAPI) GetAccount(r *http.Request, account *string, result *reportapi.AccountInfo) error {
	res, err := reportapi.GetAccount(*account)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetBalance api
func (s *RPCAPI) GetBalance(r *http.Request, account *string, result *reportapi.BalanceInfo) error {
	res, err := reportapi.GetBalance(*account)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetAccountDeltas api
func (s *RPCAPI) GetAccountDeltas(r *http.Request, args *RPCQueryHistoryArgs, result *[]*reportapi.AuditDelta) error {
	res, err := reportapi.GetAccountDeltas(args.Account, args.Offset, args.Limit)
	if err == nil && res != nil {
		*result = res
	}
	return err
}

// GetLatestLedger api
func (s *RPCAPI) GetLatestLedger(r *http.Request, args *RPCNullArgs, result *reportapi.LedgerInfo) error {
	res, err := reportapi.GetLatestLedger()
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetLedger api
func (s *RPCAPI) GetLedger(r *http.Request, args *RPCLedgerArgs, result *reportapi.LedgerInfo) error {
	res, err := reportapi.GetLedger(args.Sequence)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetTransaction api
func (s *RPCAPI) GetTransaction(r *http.Request, hash *string, result *reportapi.TransactionInfo) error {
	res, err := reportapi.GetTransaction(*hash)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}
