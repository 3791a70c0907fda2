package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lobsterdao/mintreveal/cli/cmdargs"
	"github.com/lobsterdao/mintreveal/cli/options"
	"github.com/lobsterdao/mintreveal/pkg/config"
	"github.com/lobsterdao/mintreveal/pkg/core"
	"github.com/lobsterdao/mintreveal/pkg/core/storage"
	"github.com/lobsterdao/mintreveal/pkg/services/metrics"
	"github.com/lobsterdao/mintreveal/pkg/services/ownership"
	"github.com/lobsterdao/mintreveal/pkg/services/rpcsrv"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// NewCommands returns 'node' and 'db' commands.
func NewCommands() []cli.Command {
	var cfgFlags = []cli.Flag{options.ConfigFile, options.Debug}
	var cfgDumpFlags = append([]cli.Flag{}, cfgFlags...)
	cfgDumpFlags = append(cfgDumpFlags,
		cli.StringFlag{
			Name:  "out, o",
			Usage: "Output file (stdout if not given)",
		},
	)
	return []cli.Command{
		{
			Name:      "node",
			Usage:     "Start the claim engine node",
			UsageText: "mintreveal node [--config-file file] [--debug]",
			Action:    startServer,
			Flags:     cfgFlags,
		},
		{
			Name:  "db",
			Usage: "Database manipulations",
			Subcommands: []cli.Command{
				{
					Name:      "dump",
					Usage:     "Dump the ledger state (starting with the genesis state) to the file",
					UsageText: "mintreveal db dump [-o file] [--config-file file]",
					Action:    dumpDB,
					Flags:     cfgDumpFlags,
				},
			},
		},
	}
}

// newGraceContext returns a context that is canceled on SIGINT or SIGTERM.
func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

// initLedger opens the store and creates the ledger over it using the
// external collaborators available in the node.
func initLedger(cfg config.Config, log *zap.Logger) (*core.Ledger, *ownership.Snapshot, error) {
	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return nil, nil, fmt.Errorf("could not initialize storage: %w", err)
	}
	var ext core.External
	var snapshot *ownership.Snapshot
	if path := cfg.ApplicationConfiguration.Ownership.SnapshotPath; path != "" {
		snapshot, err = ownership.Load(path, log)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		ext.Ownership = snapshot
	} else {
		log.Warn("no ownership snapshot configured, collection claims are disabled")
	}
	ledger, err := core.NewLedger(store, cfg.Ledger, ext, log)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("could not initialize ledger: %w", err)
	}
	return ledger, snapshot, nil
}

func startServer(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}

	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, logLevel, logCloser, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if logCloser != nil {
		defer func() { _ = logCloser() }()
	}

	grace, cancel := context.WithCancel(newGraceContext())
	defer cancel()

	ledger, snapshot, err := initLedger(cfg, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			log.Error("failed to close the ledger", zap.Error(err))
		}
	}()

	prometheus := metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log)
	pprof := metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log)
	for _, srv := range []*metrics.Service{prometheus, pprof} {
		if err := srv.Start(); err != nil {
			return cli.NewExitError(fmt.Errorf("failed to start service: %w", err), 1)
		}
	}

	errChan := make(chan error)
	rpcServer := rpcsrv.New(ledger, cfg.ApplicationConfiguration.RPC, log, errChan)
	rpcServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	var shutdownErr error
Main:
	for {
		select {
		case err := <-errChan:
			shutdownErr = fmt.Errorf("server error: %w", err)
			cancel()
		case sig := <-sigCh:
			log.Info("signal received", zap.Stringer("name", sig))
			cfgnew, err := options.GetConfigFromContext(ctx)
			if err != nil {
				log.Warn("can't reread the config file, signal ignored", zap.Error(err))
				break // Continue working.
			}
			if !ctx.Bool("debug") && cfgnew.ApplicationConfiguration.LogLevel != cfg.ApplicationConfiguration.LogLevel {
				if err := logLevel.UnmarshalText([]byte(cfgnew.ApplicationConfiguration.LogLevel)); err != nil {
					log.Warn("wrong LogLevel in ApplicationConfiguration, ignored", zap.Error(err))
				} else {
					cfg.ApplicationConfiguration.LogLevel = cfgnew.ApplicationConfiguration.LogLevel
					log.Info("LogLevel updated", zap.String("level", logLevel.String()))
				}
			}
			if snapshot != nil {
				if err := snapshot.Reload(); err != nil {
					log.Warn("failed to reload ownership snapshot", zap.Error(err))
				}
			}
		case <-grace.Done():
			signal.Stop(sigCh)
			rpcServer.Shutdown()
			prometheus.ShutDown()
			pprof.ShutDown()
			break Main
		}
	}

	if shutdownErr != nil {
		return cli.NewExitError(shutdownErr, 1)
	}
	return nil
}

func dumpDB(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, _, logCloser, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if logCloser != nil {
		defer func() { _ = logCloser() }()
	}

	ledger, _, err := initLedger(cfg, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = ledger.Close() }()

	dump, err := newDump(ledger)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to dump state: %w", err), 1)
	}
	out := ctx.App.Writer
	if outFile := ctx.String("out"); outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("can't create output file: %w", err), 1)
		}
		defer f.Close()
		out = f
	}
	if err := dump.write(out); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to write dump: %w", err), 1)
	}
	return nil
}
