package main

import (
	"fmt"
	"strconv"

	"github.com/pakana/projector/cmd/utils"
	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/kvdb"
	"github.com/pakana/projector/projection"
	"github.com/pakana/projector/tokens/stellar"
	"github.com/urfave/cli/v2"
)

var (
	accountCommand = &cli.Command{
		Action:    account,
		Name:      "account",
		Usage:     "show projected account state",
		ArgsUsage: "<account>",
		Description: `
show the projected balance, sequence number and trustlines of an account.
account can be a hex id or a G... address.
`,
		Flags: storeFlags,
	}

	ledgerCommand = &cli.Command{
		Action:    ledger,
		Name:      "ledger",
		Usage:     "show an ingested ledger and its projection summary",
		ArgsUsage: "[sequence]",
		Description: `
show an ingested ledger, the latest one if no sequence is given.
`,
		Flags: storeFlags,
	}
)

func account(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() != 1 {
		_ = cli.ShowCommandHelp(ctx, "account")
		fmt.Println()
		return fmt.Errorf("invalid arguments: %q", ctx.Args())
	}
	id, err := stellar.ParseAccountID(ctx.Args().First())
	if err != nil {
		return err
	}
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		acct    *projection.Account
		tracked bool
	)
	err = store.View(func(r kvdb.Reader) error {
		if acct, err = projection.LoadAccount(r, id); err != nil {
			return err
		}
		tracked, err = feed.IsTracked(r, id)
		return err
	})
	if err != nil {
		return err
	}
	printAccount(acct, tracked)
	return nil
}

func ledger(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.View(func(r kvdb.Reader) error {
		var seq uint32
		if ctx.NArg() > 0 {
			n, err := strconv.ParseUint(ctx.Args().First(), 10, 32)
			if err != nil {
				return fmt.Errorf("wrong ledger sequence %q", ctx.Args().First())
			}
			seq = uint32(n)
		} else {
			latest, ok, err := feed.LatestLedger(r)
			if err != nil {
				return err
			}
			if !ok {
				return feed.ErrLedgerNotFound
			}
			seq = latest
		}
		l, err := feed.ReadLedger(r, seq)
		if err != nil {
			return err
		}
		summary, err := feed.ReadSummary(r, seq)
		if err == feed.ErrLedgerNotFound {
			summary, err = nil, nil
		}
		if err != nil {
			return err
		}
		printLedger(l, summary)
		return nil
	})
}
