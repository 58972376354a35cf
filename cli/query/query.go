package query

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/nspcc-dev/hypertrie/cli/cmdargs"
	"github.com/nspcc-dev/hypertrie/cli/load"
	"github.com/nspcc-dev/hypertrie/pkg/hypertrie"
	"github.com/nspcc-dev/hypertrie/pkg/hypertrie/join"
	"github.com/urfave/cli"
)

// DefaultLimit is the default number of printed entries.
const DefaultLimit = 100

// NewCommands returns 'query' command.
func NewCommands() []cli.Command {
	queryFlags := append([]cli.Flag{
		cli.StringFlag{
			Name:  "slice, s",
			Usage: "slice key with '*' for wildcards, e.g. '1,*,*'",
		},
		cli.StringFlag{
			Name:  "diagonal",
			Usage: "comma-separated positions sharing the same key part, e.g. '0,2'",
		},
		cli.IntFlag{
			Name:  "limit, l",
			Value: DefaultLimit,
			Usage: "maximum number of printed entries (0 for no limit)",
		},
	}, load.Flags...)
	return []cli.Command{{
		Name:      "query",
		Usage:     "Load tuples from a file and run a slice or diagonal query",
		UsageText: "hypertrie query --file <path> (--slice <key> | --diagonal <positions>) [--limit <n>] [--depth <n>] [--config-file <path>]",
		Action:    query,
		Flags:     queryFlags,
	}}
}

func query(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	var (
		sliceStr = ctx.String("slice")
		diagStr  = ctx.String("diagonal")
	)
	if (len(sliceStr) == 0) == (len(diagStr) == 0) {
		return cli.NewExitError(errors.New("exactly one of --slice and --diagonal must be specified"), 1)
	}
	depth := ctx.Int("depth")
	var (
		sk        hypertrie.SliceKey
		positions []int
		err       error
	)
	if len(sliceStr) != 0 {
		sk, err = cmdargs.ParseSliceKey(sliceStr, depth)
	} else {
		positions, err = cmdargs.ParsePositions(diagStr, depth)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	gctx, cancel := load.NewGraceContext()
	defer cancel()
	env, err := load.Setup(gctx, ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	buf := bytes.NewBuffer(nil)
	// Ignore the errors below because `Write` to buffer doesn't return error.
	tw := tabwriter.NewWriter(buf, 0, 4, 4, '\t', 0)
	limit := ctx.Int("limit")
	if sk != nil {
		dumpSlice(tw, env.Trie.Slice(sk), limit)
	} else {
		var rows int
		err = join.HashJoin(gctx, []join.Operand[bool]{{View: env.Trie.AsView(), Positions: positions}}, func(r join.Row[bool]) error {
			if limit != 0 && rows == limit {
				return join.ErrStop
			}
			rows++
			res := r.Results[0]
			size := 1
			if !res.Scalar {
				size = res.View.Size()
			}
			_, _ = tw.Write([]byte(strconv.FormatUint(r.KeyPart, 10) + "\t" + strconv.Itoa(size) + "\n"))
			return nil
		})
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		_, _ = tw.Write([]byte(fmt.Sprintf("Rows:\t%d\n", rows)))
	}
	_ = tw.Flush()
	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}

func dumpSlice(tw *tabwriter.Writer, res hypertrie.SliceResult[bool], limit int) {
	if res.Scalar {
		_, _ = tw.Write([]byte(fmt.Sprintf("Contains:\t%t\n", res.Value)))
		return
	}
	it := res.View.Iterator()
	for n := 0; (limit == 0 || n < limit) && it.Next(); n++ {
		_, _ = tw.Write([]byte(it.Entry().Key.String() + "\n"))
	}
	_, _ = tw.Write([]byte(fmt.Sprintf("Size:\t%d\n", res.View.Size())))
}
