/*
Package load implements the 'load' command and the loading pipeline shared by
other commands.
*/
package load

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nspcc-dev/hypertrie/cli/cmdargs"
	"github.com/nspcc-dev/hypertrie/cli/input"
	"github.com/nspcc-dev/hypertrie/cli/options"
	"github.com/nspcc-dev/hypertrie/pkg/config"
	"github.com/nspcc-dev/hypertrie/pkg/hypertrie"
	"github.com/nspcc-dev/hypertrie/pkg/hypertrie/bulkload"
	"github.com/nspcc-dev/hypertrie/pkg/services/metrics"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Flags are the flags of the 'load' command reused by commands loading input.
var Flags = append([]cli.Flag{options.ConfigFile, options.Debug}, options.Input...)

// NewCommands returns 'load' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:      "load",
		Usage:     "Load tuples from a file into a hypertrie and print statistics",
		UsageText: "hypertrie load --file <path> [--delimiter <delim>] [--depth <n>] [--config-file <path>] [--debug]",
		Action:    loadFile,
		Flags:     Flags,
	}}
}

// Env is everything a command needs to work with a loaded hypertrie.
type Env struct {
	Config  config.Config
	Log     *zap.Logger
	Context *hypertrie.Context[bool]
	Trie    *hypertrie.Hypertrie[bool]
	Stats   bulkload.Stats
	Took    time.Duration

	services []*metrics.Service
}

// Close releases the hypertrie and stops the services.
func (e *Env) Close() {
	if e.Trie != nil {
		e.Trie.Close()
	}
	for _, s := range e.services {
		s.ShutDown()
	}
	_ = e.Log.Sync()
}

// NewGraceContext returns a context canceled on termination signals.
func NewGraceContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Setup loads the configuration and the input file given by ctx flags into a
// new boolean hypertrie.
func Setup(gctx context.Context, ctx *cli.Context) (*Env, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.Logger)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	env := &Env{Config: cfg, Log: log}

	for _, s := range []*metrics.Service{
		metrics.NewPrometheusService(cfg.Prometheus, log),
		metrics.NewPprofService(cfg.Pprof, log),
	} {
		if err := s.Start(); err != nil {
			env.Close()
			return nil, cli.NewExitError(err, 1)
		}
		env.services = append(env.services, s)
	}

	path := ctx.String("file")
	if len(path) == 0 {
		env.Close()
		return nil, cli.NewExitError(errors.New("no input file specified, use --file"), 1)
	}
	env.Context, err = hypertrie.New[bool](cfg.Hypertrie, log)
	if err == nil {
		env.Trie, err = hypertrie.NewHypertrie(env.Context, ctx.Int("depth"))
	}
	if err != nil {
		env.Close()
		return nil, cli.NewExitError(err, 1)
	}

	start := time.Now()
	env.Stats, err = Load(gctx, env.Trie, cfg.BulkLoad, log, path, ctx.String("delimiter"))
	env.Took = time.Since(start)
	if err != nil {
		env.Close()
		return nil, cli.NewExitError(err, 1)
	}
	return env, nil
}

// Load reads tuples from the file at path and inserts them into trie using a
// bulk loader. The file is read by a separate producer goroutine.
func Load(ctx context.Context, trie *hypertrie.Hypertrie[bool], cfg config.BulkLoad, log *zap.Logger, path string, delim string) (bulkload.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return bulkload.Stats{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	loader, err := bulkload.New(trie, cfg, log, func(bs bulkload.BatchStats) {
		log.Info("batch loaded",
			zap.Int("number", bs.Number),
			zap.Int("inserted", bs.Inserted),
			zap.Int("size", bs.Size))
	})
	if err != nil {
		return bulkload.Stats{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return input.ReadTuples(gctx, f, delim, trie.Depth(), func(key []uint64) error {
			return loader.Add(gctx, hypertrie.Entry[bool]{Key: key, Value: true})
		})
	})
	err = g.Wait()
	stats := loader.Close()
	if err != nil {
		return stats, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return stats, nil
}

func loadFile(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	gctx, cancel := NewGraceContext()
	defer cancel()

	env, err := Setup(gctx, ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	w := ctx.App.Writer
	fmt.Fprintf(w, "Lines:    %d\n", env.Stats.Received)
	fmt.Fprintf(w, "Entries:  %d\n", env.Trie.Size())
	fmt.Fprintf(w, "Nodes:    %d\n", env.Context.NodeCount())
	fmt.Fprintf(w, "Root:     %s\n", env.Trie.Identifier())
	fmt.Fprintf(w, "Took:     %s\n", env.Took)
	positions := make([]int, env.Trie.Depth())
	for i := range positions {
		positions[i] = i
	}
	fmt.Fprintf(w, "Cards:    %v\n", env.Trie.Cards(positions))
	return nil
}
