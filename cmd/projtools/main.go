package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/pakana/projector/cmd/utils"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/log"
	"github.com/pakana/projector/params"
	"github.com/urfave/cli/v2"
)

var (
	clientIdentifier = "projtools"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the projector tools command line interface")
)

func initApp() {
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		decodeCommand,
		accountCommand,
		ledgerCommand,
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
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

var storeFlags = []cli.Flag{
	utils.ConfigFileFlag,
	utils.StoreBackendFlag,
	utils.StorePathFlag,
}

// openStore opens the store named by --backend/--store, or the one of --config
func openStore(ctx *cli.Context) (kvdb.Store, error) {
	backend := ctx.String(utils.StoreBackendFlag.Name)
	path := ctx.String(utils.StorePathFlag.Name)
	if path == "" {
		configFile := utils.GetConfigFilePath(ctx)
		if configFile == "" {
			return nil, fmt.Errorf("must specify '--%v' or '--%v'", utils.StorePathFlag.Name, utils.ConfigFileFlag.Name)
		}
		storeCfg := params.LoadConfig(configFile).Store
		backend, path = storeCfg.Backend, storeCfg.Path
		return kvdb.Open(backend, path, storeCfg.Cache, storeCfg.Handles)
	}
	if backend == "" || backend == kvdb.EngineLevelDB {
		return kvdb.NewLevelDB(path, 0, 0, true)
	}
	return kvdb.Open(backend, path, 0, 0)
}
