package restapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	rpcjson "github.com/gorilla/rpc/v2/json2"
	"github.com/pakana/projector/internal/reportapi"
	"github.com/pakana/projector/log"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func statusOf(err error) int {
	switch err {
	case reportapi.ErrInvalidAccount:
		return http.StatusBadRequest
	case reportapi.ErrAccountBlocked:
		return http.StatusForbidden
	case reportapi.ErrAccountNotFound, reportapi.ErrLedgerNotFound, reportapi.ErrTransactionMissing:
		return http.StatusNotFound
	case reportapi.ErrAuditDisabled:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(w http.ResponseWriter, resp interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		code := 0
		if rpcErr, ok := err.(*rpcjson.Error); ok {
			code = int(rpcErr.Code)
		}
		w.WriteHeader(statusOf(err))
		resp = &errorResponse{Code: code, Message: err.Error()}
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn("write response failed", "err", err)
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(&errorResponse{Message: message})
}

func getIntParam(r *http.Request, name string, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// HealthHandler handler
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	res, err := reportapi.GetServerInfo()
	writeResponse(w, res, err)
}

// AccountHandler handler
func AccountHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := reportapi.GetAccount(vars["id"])
	writeResponse(w, res, err)
}

// BalanceHandler handler
func BalanceHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := reportapi.GetBalance(vars["id"])
	writeResponse(w, res, err)
}

// TrustlinesHandler handler
func TrustlinesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := reportapi.GetTrustlines(vars["id"])
	writeResponse(w, res, err)
}

// AccountDeltasHandler handler
func AccountDeltasHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	offset, ok := getIntParam(r, "offset", 0)
	if !ok {
		writeBadRequest(w, "wrong offset")
		return
	}
	limit, ok := getIntParam(r, "limit", 20)
	if !ok {
		writeBadRequest(w, "wrong limit")
		return
	}
	res, err := reportapi.GetAccountDeltas(vars["id"], offset, limit)
	writeResponse(w, res, err)
}

// LatestLedgerHandler handler
func LatestLedgerHandler(w http.ResponseWriter, r *http.Request) {
	res, err := reportapi.GetLatestLedger()
	writeResponse(w, res, err)
}

// LedgerHandler handler
func LedgerHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	seq, err := strconv.ParseUint(vars["seq"], 10, 32)
	if err != nil {
		writeBadRequest(w, "wrong ledger sequence")
		return
	}
	res, err := reportapi.GetLedger(uint32(seq))
	writeResponse(w, res, err)
}

// TransactionHandler handler
func TransactionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := reportapi.GetTransaction(vars["hash"])
	writeResponse(w, res, err)
}
