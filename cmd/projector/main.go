package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/pakana/projector/cmd/utils"
	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/internal/reportapi"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/log"
	"github.com/pakana/projector/mongodb"
	"github.com/pakana/projector/params"
	rpcserver "github.com/pakana/projector/rpc/server"
	"github.com/pakana/projector/tokens/stellar"
	"github.com/pakana/projector/tools"
	"github.com/pakana/projector/worker"
	"github.com/urfave/cli/v2"
)

var (
	clientIdentifier = "projector"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the stellar balance projector command line interface")
)

func initApp() {
	// Initialize the CLI app and start action
	app.Action = projector
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.DataDirFlag,
		utils.ConfigFileFlag,
		utils.LogFileFlag,
		utils.LogRotationFlag,
		utils.LogMaxAgeFlag,
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func projector(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	utils.InitDataDir(ctx)
	configFile := utils.GetConfigFilePath(ctx)
	config := params.LoadConfig(configFile)
	topCtx := utils.TopContext()

	storeCfg := config.Store
	store, err := kvdb.Open(storeCfg.Backend, storeCfg.Path, storeCfg.Cache, storeCfg.Handles)
	if err != nil {
		log.Fatal("open store failed", "backend", storeCfg.Backend, "path", storeCfg.Path, "err", err)
	}
	log.Info("open store success", "backend", storeCfg.Backend, "path", storeCfg.Path)

	initMongodb(topCtx, config.MongoDB)
	initEmail(config.Email)
	initReportAPI(topCtx, store, config)

	worker.StartWork(topCtx, store, func(s *feed.Summary, _ []*worker.ProjectedTx) {
		rpcserver.PublishSummary(s)
	})
	time.Sleep(100 * time.Millisecond)

	var svr *http.Server
	if config.APIServer != nil {
		svr = rpcserver.StartAPIServer()
	}

	utils.WaitAndCleanup(func() {
		if svr != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := svr.Shutdown(shutdownCtx); err != nil {
				log.Warn("shutdown api server failed", "err", err)
			}
		}
	})

	mongodb.MongoServerClose()
	if err := store.Close(); err != nil {
		log.Warn("close store failed", "err", err)
	}
	return nil
}

func initMongodb(ctx context.Context, dbConfig *params.MongoDBConfig) {
	if dbConfig == nil {
		return
	}
	addrs := dbConfig.DBURLs
	if len(addrs) == 0 {
		addrs = []string{dbConfig.DBURL}
	}
	err := mongodb.MongoServerInit(ctx, addrs, dbConfig.DBName, dbConfig.UserName, dbConfig.Password)
	if err != nil {
		log.Fatal("init mongodb failed", "err", err)
	}
}

func initEmail(emailConfig *params.EmailConfig) {
	if emailConfig == nil {
		return
	}
	mailer := tools.NewMailer(
		emailConfig.Server,
		emailConfig.Port,
		emailConfig.From,
		emailConfig.FromName,
		emailConfig.Password,
		emailConfig.To,
		emailConfig.Cc,
	)
	worker.SetAlerter(mailer)
	log.Info("init alert email success", "server", emailConfig.Server, "to", emailConfig.To)
}

func initReportAPI(ctx context.Context, store kvdb.Store, config *params.ProjectorConfig) {
	var fetcher reportapi.Fetcher
	if api := config.APIServer; api != nil && api.EnableHydration {
		feedCfg := config.Feed
		fetcher = stellar.NewHorizonClient(
			feedCfg.HorizonURLs,
			time.Duration(feedCfg.RequestTimeout)*time.Second,
			feedCfg.RetryCount,
		)
	}
	reportapi.Init(store, fetcher, stellar.Validator{AllowFeeBump: config.Projector.AllowFeeBump})
	reportapi.SetRemoteLatestGetter(worker.GetRemoteLatestLedger)

	if config.BlockListFile == "" {
		return
	}
	blockListFile := params.AbsolutePath(config.BlockListFile)
	if err := reportapi.LoadBlockList(blockListFile); err != nil {
		log.Warn("load block list failed", "file", blockListFile, "err", err)
	}
	worker.StartBlockListJob(ctx, blockListFile, reportapi.LoadBlockList)
}
