package mongodb

import (
	"context"
	"time"

	"github.com/pakana/projector/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	clientCtx = context.Background()

	client       *mongo.Client
	databaseName string

	dialTimeout = 10 * time.Second
)

// HasClient has client connected
func HasClient() bool {
	return client != nil
}

// MongoServerInit connect to mongodb and init the audit collections.
// It keeps retrying until the server is reachable or ctx is done.
func MongoServerInit(ctx context.Context, addrs []string, dbname, user, pass string) error {
	clientOpts := options.Client().
		SetHosts(addrs).
		SetConnectTimeout(dialTimeout).
		SetServerSelectionTimeout(dialTimeout)
	if user != "" {
		clientOpts.SetAuth(options.Credential{
			AuthSource: dbname,
			Username:   user,
			Password:   pass,
		})
	}

	log.Info("[mongodb] connect database start.", "addrs", addrs, "dbName", dbname)
	var (
		cli *mongo.Client
		err error
	)
	for {
		cli, err = connect(ctx, clientOpts)
		if err == nil {
			break
		}
		log.Warn("[mongodb] dial error", "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	client = cli
	databaseName = dbname
	initCollections()
	log.Info("[mongodb] connect database finished.", "dbName", dbname)
	return nil
}

func connect(ctx context.Context, clientOpts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err = cli.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(clientCtx)
		return nil, err
	}
	return cli, nil
}

// MongoServerClose disconnect from mongodb
func MongoServerClose() {
	if client == nil {
		return
	}
	if err := client.Disconnect(clientCtx); err != nil {
		log.Warn("[mongodb] disconnect error", "err", err)
	}
	client = nil
}
