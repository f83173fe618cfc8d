package projection

import (
	"fmt"
	"strconv"

	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/tokens/stellar"
)

// Trustline is one projected trustline.
type Trustline struct {
	Code    string `json:"code"`
	Issuer  string `json:"issuer,omitempty"`
	Balance int64  `json:"balance"`
	Limit   int64  `json:"limit"`
}

// Asset returns the canonical asset tag of the trustline.
func (t *Trustline) Asset() string {
	return stellar.Asset{Code: t.Code, Issuer: t.Issuer}.String()
}

// Account is the projected state of one account.
type Account struct {
	ID           string      `json:"id"`
	Balance      int64       `json:"balance"`
	SeqNum       int64       `json:"seq_num"`
	LastModified int64       `json:"last_modified"`
	Trustlines   []Trustline `json:"trustlines"`
}

// LoadAccount reads the projected state of id.
func LoadAccount(r kvdb.Reader, id string) (*Account, error) {
	exists, err := r.HasTree(AccountKey(id))
	if err != nil {
		return nil, storeError(OpGet, AccountKey(id), err)
	}
	if !exists {
		return nil, ErrAccountNotFound
	}

	acct := &Account{ID: id}
	if acct.Balance, err = readInt(r, BalanceKey(id)); err != nil {
		return nil, err
	}
	if acct.SeqNum, err = readInt(r, SeqNumKey(id)); err != nil {
		return nil, err
	}
	if acct.LastModified, err = readInt(r, LastModifiedKey(id)); err != nil {
		return nil, err
	}
	if acct.Trustlines, err = LoadTrustlines(r, id); err != nil {
		return nil, err
	}
	return acct, nil
}

// LoadTrustlines reads all trustlines of id ordered by code then issuer.
func LoadTrustlines(r kvdb.Reader, id string) ([]Trustline, error) {
	codes, err := r.Children(TrustlinesKey(id))
	if err != nil {
		return nil, storeError(OpGet, TrustlinesKey(id), err)
	}
	trustlines := make([]Trustline, 0, len(codes))
	for _, code := range codes {
		codeKey := TrustlineKey(id, code, "")
		subs, err := r.Children(codeKey)
		if err != nil {
			return nil, storeError(OpGet, codeKey, err)
		}
		issuerless := false
		for _, sub := range subs {
			if sub == nodeBalance || sub == nodeLimit {
				issuerless = true
				continue
			}
			tl, err := loadTrustline(r, id, code, sub)
			if err != nil {
				return nil, err
			}
			trustlines = append(trustlines, *tl)
		}
		if issuerless {
			tl, err := loadTrustline(r, id, code, "")
			if err != nil {
				return nil, err
			}
			trustlines = append(trustlines, *tl)
		}
	}
	return trustlines, nil
}

func loadTrustline(r kvdb.Reader, id, code, issuer string) (*Trustline, error) {
	key := TrustlineKey(id, code, issuer)
	tl := &Trustline{Code: code, Issuer: issuer}
	var err error
	if tl.Balance, err = readInt(r, key.Child(nodeBalance)); err != nil {
		return nil, err
	}
	if tl.Limit, err = readInt(r, key.Child(nodeLimit)); err != nil {
		return nil, err
	}
	return tl, nil
}

// Hydrate overwrites the state of id with an account fetched from horizon.
// Balances are converted to stroops and issuers to hex ids.
func Hydrate(tx kvdb.Tx, id string, acct *stellar.HorizonAccount) error {
	type write struct {
		key   kvdb.Key
		value int64
	}
	var writes []write
	for _, bal := range acct.Balances {
		balance, err := stellar.ParseAmount(bal.Balance)
		if err != nil {
			return err
		}
		if bal.AssetType == stellar.NativeAsset {
			writes = append(writes, write{BalanceKey(id), balance})
			continue
		}
		code, issuer := bal.AssetCode, ""
		if code == "" {
			code = stellar.PoolShareAsset
		}
		if bal.AssetIssuer != "" {
			if issuer, err = stellar.ParseAccountID(bal.AssetIssuer); err != nil {
				return err
			}
		}
		limit := int64(0)
		if bal.Limit != "" {
			if limit, err = stellar.ParseAmount(bal.Limit); err != nil {
				return err
			}
		}
		key := TrustlineKey(id, code, issuer)
		writes = append(writes, write{key.Child(nodeBalance), balance}, write{key.Child(nodeLimit), limit})
	}
	seq, err := strconv.ParseInt(acct.Sequence, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid sequence %q: %w", acct.Sequence, err)
	}
	writes = append(writes, write{SeqNumKey(id), seq})

	if err := tx.DeleteTree(TrustlinesKey(id)); err != nil {
		return storeError(OpDelete, TrustlinesKey(id), err)
	}
	for _, w := range writes {
		if err := writeInt(tx, w.key, w.value); err != nil {
			return err
		}
	}
	return nil
}
