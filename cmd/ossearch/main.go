// Command ossearch runs the search engine backend. One process runs in
// exactly one mode: a crawler pool, an indexer pool, one of the index
// maintenance jobs, the frontier lock server, or a one-shot sitemap seed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/ossearch/ossearch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// Main dispatches a single mode run.
type Main struct{}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{}
}

// Run parses args, builds the logger, and runs the selected mode until the
// context is done or the mode finishes.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	var exited bool
	parser, err := kong.New(&cli,
		kong.Name("ossearch"),
		kong.Description("Distributed web search engine backend."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
	)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		if exited {
			return nil
		}
		return err
	}
	if exited {
		return nil
	}

	logger, closeLog, err := newLogger(&cli, stdout)
	if err != nil {
		return err
	}
	defer closeLog()

	switch {
	case cli.Scanner != "", cli.Exploit:
		return ossearch.Errorf(ossearch.EINVALID, "mode not supported in this build")
	case cli.Webcrawlermanager:
		return m.runManager(ctx, &cli, logger)
	case cli.Webcrawler:
		return m.runWebcrawler(ctx, &cli, logger)
	case cli.Indexer:
		return m.runIndexer(ctx, &cli, logger)
	case cli.Optimizer:
		return m.runOptimizer(ctx, &cli, logger)
	case cli.Rebooster:
		return m.runRebooster(ctx, &cli, logger)
	case cli.Deltamerge:
		return m.runDeltamerge(ctx, &cli, logger)
	case cli.Seed != "":
		return m.runSeed(ctx, &cli, logger)
	default:
		return ossearch.Errorf(ossearch.EINVALID, "no mode selected, see --help")
	}
}

// newLogger builds the process logger writing to stdout and, when
// configured, the log file.
func newLogger(cli *CLI, stdout io.Writer) (zerolog.Logger, func(), error) {
	writers := []io.Writer{stdout}
	closeFn := func() {}
	if cli.LogFile != "" {
		f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		writers = append(writers, f)
		closeFn = func() { f.Close() }
	}

	level := zerolog.InfoLevel
	lctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
	if cli.Debug {
		level = zerolog.DebugLevel
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		lctx = lctx.Stack()
	}
	return lctx.Logger().Level(level), closeFn, nil
}
