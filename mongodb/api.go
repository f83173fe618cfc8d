package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	maxCountOfResults = 1000
)

// AddLedgerSummary add or replace ledger summary
func AddLedgerSummary(ms *MgoLedgerSummary) error {
	if !HasClient() {
		return ErrNotConnected
	}
	opts := options.Replace().SetUpsert(true)
	_, err := collLedgerSummary.ReplaceOne(clientCtx, bson.M{"_id": ms.Key}, ms, opts)
	return mgoError(err)
}

// AddBalanceDeltas add balance deltas, already stored ones are kept
func AddBalanceDeltas(deltas []*MgoBalanceDelta) error {
	if !HasClient() {
		return ErrNotConnected
	}
	if len(deltas) == 0 {
		return nil
	}
	docs := make([]interface{}, len(deltas))
	for i, d := range deltas {
		docs[i] = d
	}
	opts := options.InsertMany().SetOrdered(false)
	_, err := collBalanceDelta.InsertMany(clientCtx, docs, opts)
	err = mgoError(err)
	if err == ErrItemIsDup {
		return nil
	}
	return err
}

// FindLedgerSummary find ledger summary
func FindLedgerSummary(ledger uint32) (*MgoLedgerSummary, error) {
	if !HasClient() {
		return nil, ErrNotConnected
	}
	var result MgoLedgerSummary
	err := collLedgerSummary.FindOne(clientCtx, bson.M{"_id": ledger}).Decode(&result)
	if err != nil {
		return nil, mgoError(err)
	}
	return &result, nil
}

// FindAccountDeltas find deltas of account, newest first
func FindAccountDeltas(account string, offset, limit int) ([]*MgoBalanceDelta, error) {
	if !HasClient() {
		return nil, ErrNotConnected
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "ledger", Value: -1}, {Key: "txindex", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(getLimit(limit)))
	cur, err := collBalanceDelta.Find(clientCtx, bson.M{"account": account}, opts)
	if err != nil {
		return nil, mgoError(err)
	}
	result := make([]*MgoBalanceDelta, 0, 20)
	if err = cur.All(clientCtx, &result); err != nil {
		return nil, mgoError(err)
	}
	return result, nil
}

func getLimit(limit int) int {
	if limit <= 0 || limit > maxCountOfResults {
		return maxCountOfResults
	}
	return limit
}
