package projection

import (
	"github.com/pakana/projector/kvdb"
)

// GlobalAccount is the global holding projected account state.
const GlobalAccount = "Account"

// account node names
const (
	nodeBalance      = "balance"
	nodeSeqNum       = "seq_num"
	nodeLastModified = "last_modified"
	nodeTrustlines   = "trustlines"
	nodeLimit        = "limit"
)

// AccountKey is ^Account(id).
func AccountKey(id string) kvdb.Key {
	return kvdb.NewKey(GlobalAccount, id)
}

// BalanceKey is ^Account(id,"balance"), the native balance in stroops.
func BalanceKey(id string) kvdb.Key {
	return AccountKey(id).Child(nodeBalance)
}

// SeqNumKey is ^Account(id,"seq_num").
func SeqNumKey(id string) kvdb.Key {
	return AccountKey(id).Child(nodeSeqNum)
}

// LastModifiedKey is ^Account(id,"last_modified").
func LastModifiedKey(id string) kvdb.Key {
	return AccountKey(id).Child(nodeLastModified)
}

// TrustlinesKey is ^Account(id,"trustlines").
func TrustlinesKey(id string) kvdb.Key {
	return AccountKey(id).Child(nodeTrustlines)
}

// TrustlineKey is ^Account(id,"trustlines",code,issuer). Tags without an
// issuer live directly under the code.
func TrustlineKey(id, code, issuer string) kvdb.Key {
	if issuer == "" {
		return TrustlinesKey(id).Child(code)
	}
	return TrustlinesKey(id).Child(code, issuer)
}
