package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pakana/projector/feed"
	"github.com/pakana/projector/projection"
	"github.com/pakana/projector/tokens/stellar"
)

var (
	titleStyle   = color.New(color.FgCyan, color.Bold)
	keyStyle     = color.New(color.FgWhite)
	debitStyle   = color.New(color.FgRed)
	creditStyle  = color.New(color.FgGreen)
	markerStyle  = color.New(color.FgYellow)
	errorStyle   = color.New(color.FgRed, color.Bold)
	successStyle = color.New(color.FgGreen, color.Bold)
)

func printTitle(format string, args ...interface{}) {
	_, _ = titleStyle.Printf(format+"\n", args...)
}

func printField(name string, value interface{}) {
	_, _ = keyStyle.Printf("  %-16s", name+":")
	fmt.Println(value)
}

func deltaStyle(d *stellar.BalanceDelta) *color.Color {
	switch {
	case d.Kind() != stellar.KindAmount:
		return markerStyle
	case d.Delta < 0:
		return debitStyle
	default:
		return creditStyle
	}
}

func printDelta(idx int, d *stellar.BalanceDelta) {
	amount := stellar.FormatAmount(d.Delta)
	if d.Delta > 0 {
		amount = "+" + amount
	}
	_, _ = deltaStyle(d).Printf("  %2d  %-9s %-64s %18s  %-40s %s\n",
		idx, d.Kind(), d.AccountID, amount, d.Asset, d.Reason)
}

func printValidation(err error) {
	if err != nil {
		_, _ = errorStyle.Printf("  ✗ %v\n", err)
		return
	}
	_, _ = successStyle.Println("  ✓ valid")
}

func printAccount(acct *projection.Account, tracked bool) {
	address, _ := stellar.Address(acct.ID)
	printTitle("Account %v", address)
	printField("id", acct.ID)
	printField("balance", stellar.FormatAmount(acct.Balance)+" XLM")
	printField("seq_num", acct.SeqNum)
	printField("last_modified", acct.LastModified)
	printField("tracked", tracked)
	if len(acct.Trustlines) == 0 {
		return
	}
	printTitle("Trustlines")
	for i := range acct.Trustlines {
		tl := &acct.Trustlines[i]
		style := creditStyle
		if tl.Balance == 0 {
			style = markerStyle
		}
		_, _ = style.Printf("  %-60s %18s / %s\n", tl.Asset(), stellar.FormatAmount(tl.Balance), stellar.FormatAmount(tl.Limit))
	}
}

func printLedger(l *feed.Ledger, s *feed.Summary) {
	printTitle("Ledger %v", l.Sequence)
	printField("hash", l.Hash)
	printField("closed_at", l.ClosedAt)
	printField("total_tx", l.TotalTxCount)
	printField("filtered_tx", l.FilteredTxCount)
	if s == nil {
		_, _ = markerStyle.Println("  not projected yet")
	} else {
		printTitle("Projection")
		printField("applied", s.Applied)
		printField("skipped", s.Skipped)
		printField("mutations", s.Mutations)
		printField("unsupported", s.Unsupported)
	}
	if len(l.Transactions) == 0 {
		return
	}
	printTitle("Transactions")
	for _, t := range l.Transactions {
		fmt.Printf("  %3d  %v\n", t.Index, t.Hash)
	}
}
