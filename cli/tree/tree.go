/*
Package tree implements the allocation tree tooling: building the tree from
an entitlement list, extracting proofs and verifying exported trees.
*/
package tree

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/lobsterdao/mintreveal/cli/cmdargs"
	"github.com/lobsterdao/mintreveal/pkg/crypto/merkle"
	"github.com/urfave/cli"
)

var inFlag = cli.StringFlag{
	Name:     "in, i",
	Usage:    "Input file",
	Required: true,
}

// NewCommands returns 'tree' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "tree",
		Usage: "Allocation tree tooling",
		Subcommands: []cli.Command{
			{
				Name:      "build",
				Usage:     "Build the tree from the entitlement list and export it with proofs",
				UsageText: "mintreveal tree build -i list.yml -o tree.json",
				Action:    buildTree,
				Flags: []cli.Flag{
					inFlag,
					cli.StringFlag{
						Name:     "out, o",
						Usage:    "Output JSON file",
						Required: true,
					},
				},
			},
			{
				Name:      "proof",
				Usage:     "Print the entitlement and proof of the address from the exported tree",
				UsageText: "mintreveal tree proof -i tree.json -a address",
				Action:    printProof,
				Flags: []cli.Flag{
					inFlag,
					cli.StringFlag{
						Name:     "address, a",
						Usage:    "Recipient address",
						Required: true,
					},
				},
			},
			{
				Name:      "verify",
				Usage:     "Check every proof of the exported tree",
				UsageText: "mintreveal tree verify -i tree.json [--root hash]",
				Action:    verifyTree,
				Flags: []cli.Flag{
					inFlag,
					cli.StringFlag{
						Name:  "root, r",
						Usage: "Expected tree root",
					},
				},
			},
		},
	}}
}

func buildTree(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	list, err := merkle.LoadEntitlements(ctx.String("in"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	t, err := merkle.NewTree(list)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("can't build tree: %w", err), 1)
	}
	if err := merkle.WriteExport(ctx.String("out"), t.Export()); err != nil {
		return cli.NewExitError(fmt.Errorf("can't write export: %w", err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Root: %s\nLeaves: %d\nDepth: %d\n", t.Root().Hex(), t.Len(), t.Depth())
	return nil
}

func printProof(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	s := ctx.String("address")
	if !common.IsHexAddress(s) {
		return cli.NewExitError(fmt.Errorf("invalid address: %s", s), 1)
	}
	e, err := merkle.ReadExport(ctx.String("in"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	leaf, ok := e.Find(common.HexToAddress(s))
	if !ok {
		return cli.NewExitError(fmt.Errorf("no entitlement for %s", s), 1)
	}
	if !merkle.VerifyEntitlement(leaf.Proof, e.Root, leaf.Address, leaf.Count) {
		return cli.NewExitError(errors.New("exported proof doesn't match the root"), 1)
	}
	data, err := json.MarshalIndent(leaf, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(data))
	return nil
}

func verifyTree(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	e, err := merkle.ReadExport(ctx.String("in"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if r := ctx.String("root"); r != "" {
		b, err := hexutil.Decode(r)
		if err != nil || len(b) != common.HashLength {
			return cli.NewExitError(fmt.Errorf("invalid root: %s", r), 1)
		}
		if common.BytesToHash(b) != e.Root {
			return cli.NewExitError(fmt.Errorf("root mismatch: expected %s, exported %s", r, e.Root.Hex()), 1)
		}
	}
	if err := e.Verify(); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "OK: %d leaves under %s\n", len(e.Leaves), e.Root.Hex())
	return nil
}
