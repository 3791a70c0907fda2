/*
Package reveal implements offline attribute assignment lookups for a known
seed, matching what the node reports after the reveal.
*/
package reveal

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/lobsterdao/mintreveal/cli/cmdargs"
	"github.com/lobsterdao/mintreveal/pkg/core/permutation"
	"github.com/urfave/cli"
)

// NewCommands returns 'reveal' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:      "reveal",
		Usage:     "Print attribute ids assigned to the units for the given seed",
		UsageText: "mintreveal reveal --seed value --supply n [--from i] [--to j]",
		Action:    printAssignment,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:     "seed, s",
				Usage:    "Random seed (decimal or 0x-prefixed hex)",
				Required: true,
			},
			cli.Uint64Flag{
				Name:     "supply, n",
				Usage:    "Maximum supply",
				Required: true,
			},
			cli.Uint64Flag{
				Name:  "from",
				Usage: "First unit id",
			},
			cli.Uint64Flag{
				Name:  "to",
				Usage: "Unit id to stop at (exclusive, maximum supply if not set)",
			},
		},
	}}
}

func parseSeed(s string) (*uint256.Int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return uint256.FromHex(s)
	}
	return uint256.FromDecimal(s)
}

func printAssignment(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	seed, err := parseSeed(ctx.String("seed"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid seed: %w", err), 1)
	}
	var (
		n    = ctx.Uint64("supply")
		from = ctx.Uint64("from")
		to   = ctx.Uint64("to")
	)
	if !ctx.IsSet("to") {
		to = n
	}
	ids, err := permutation.Range(seed, n, from, to)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	for i, id := range ids {
		fmt.Fprintf(ctx.App.Writer, "%d: %d\n", from+uint64(i), id)
	}
	return nil
}
