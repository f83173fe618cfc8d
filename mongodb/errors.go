package mongodb

import (
	"errors"

	rpcjson "github.com/gorilla/rpc/v2/json2"
	"go.mongodb.org/mongo-driver/mongo"
)

func newError(ec rpcjson.ErrorCode, message string) error {
	return &rpcjson.Error{
		Code:    ec,
		Message: message,
	}
}

func mgoError(err error) error {
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrItemNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return ErrItemIsDup
		}
		return newError(-32001, "mgoError: "+err.Error())
	}
	return nil
}

// mongodb special errors
var (
	ErrItemNotFound = newError(-32002, "mgoError: Item not found")
	ErrItemIsDup    = newError(-32003, "mgoError: Item is duplicate")
	ErrNotConnected = newError(-32004, "mgoError: Audit database is not connected")
)
