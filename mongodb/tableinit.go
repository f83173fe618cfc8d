package mongodb

import (
	"github.com/pakana/projector/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	tbLedgerSummaries string = "LedgerSummaries"
	tbBalanceDeltas   string = "BalanceDeltas"
)

var (
	database *mongo.Database

	collLedgerSummary *mongo.Collection
	collBalanceDelta  *mongo.Collection
)

func initCollections() {
	database = client.Database(databaseName)

	initCollection(tbLedgerSummaries, &collLedgerSummary, "closedat")
	initCollection(tbBalanceDeltas, &collBalanceDelta, "account", "ledger")
}

func initCollection(table string, collection **mongo.Collection, indexKey ...string) {
	*collection = database.Collection(table)
	if len(indexKey) != 0 {
		createOneIndex(*collection, indexKey...)
	}
}

func createOneIndex(coll *mongo.Collection, indexes ...string) {
	keys := make(bson.D, len(indexes))
	for i, index := range indexes {
		keys[i] = bson.E{Key: index, Value: 1}
	}
	model := mongo.IndexModel{Keys: keys}
	_, err := coll.Indexes().CreateOne(clientCtx, model)
	if err != nil {
		log.Error("[mongodb] create indexes failed", "collection", coll.Name(), "indexes", indexes, "err", err)
	}
}
