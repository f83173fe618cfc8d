package main

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/pakana/projector/cmd/utils"
	"github.com/pakana/projector/tokens/stellar"
	"github.com/urfave/cli/v2"
)

var (
	decodeCommand = &cli.Command{
		Action:    decode,
		Name:      "decode",
		Usage:     "decode an envelope and show its balance deltas",
		ArgsUsage: "[envelope-xdr-base64]",
		Description: `
decode a base64 transaction envelope, validate it and print the balance deltas it produces.

Example:

./projtools decode AAAAAgAAAAC...
./projtools decode --file ./envelope.txt --feebump
`,
		Flags: []cli.Flag{
			envelopeFileFlag,
			allowFeeBumpFlag,
		},
	}

	envelopeFileFlag = &cli.StringFlag{
		Name:  "file",
		Usage: "read the envelope from file",
	}
	allowFeeBumpFlag = &cli.BoolFlag{
		Name:  "feebump",
		Usage: "validate fee bump envelopes instead of refusing them",
	}
)

func decode(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	envelope := ctx.Args().First()
	if fileName := ctx.String(envelopeFileFlag.Name); fileName != "" {
		content, err := ioutil.ReadFile(fileName)
		if err != nil {
			return err
		}
		envelope = string(content)
	}
	envelope = strings.TrimSpace(envelope)
	if envelope == "" {
		_ = cli.ShowCommandHelp(ctx, "decode")
		fmt.Println()
		return fmt.Errorf("no envelope specified")
	}

	env, err := stellar.DecodeEnvelope(envelope)
	if err != nil {
		return err
	}

	printTitle("Envelope")
	printField("version", stellar.Version(env))
	printField("source", stellar.SourceAccount(env))
	printField("fee_source", stellar.FeeSource(env))
	printField("sequence", stellar.SequenceNumber(env))
	printField("operations", len(stellar.Operations(env)))
	if memoHash, ok := stellar.MemoHash(env); ok {
		printField("memo_hash", memoHash)
	}

	printTitle("Validation")
	validator := stellar.Validator{AllowFeeBump: ctx.Bool(allowFeeBumpFlag.Name)}
	if err = validator.Validate(env); err != nil {
		printValidation(err)
		return nil
	}
	printValidation(nil)

	deltas := stellar.CalculateDeltas(env)
	printTitle("Deltas (%v)", len(deltas))
	for i := range deltas {
		printDelta(i, &deltas[i])
	}
	if unsupported := stellar.UnsupportedOperations(env); len(unsupported) > 0 {
		printTitle("Operations without computed effects")
		for _, op := range unsupported {
			_, _ = markerStyle.Printf("  %v\n", op)
		}
	}
	return nil
}
