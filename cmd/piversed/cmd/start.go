package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cometbft/cometbft/abci/server"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"piverse/internal/app"
	"piverse/internal/config"
	"piverse/internal/indexer"
	"piverse/internal/logging"
	httptransport "piverse/internal/transport/http"
)

const dbName = "piverse"

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runNode(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.String("abci_addr", "tcp://127.0.0.1:26658", "ABCI listen address")
	f.String("transport", config.TransportSocket, "ABCI transport (socket|grpc)")
	f.String("db_backend", config.BackendGoLevelDB, "state db backend (goleveldb|memdb)")
	f.String("http_addr", "", "read API listen address; empty disables")
	f.Bool("enable_faucet", false, "accept unsigned bank/mint txs (localnet only)")
	f.String("indexer.dsn", "", "postgres DSN for the event archive; empty disables")
	f.String("log.level", "info", "log level")
	f.String("log.format", config.LogFormatJSON, "log format (json|plain)")
	f.VisitAll(func(fl *pflag.Flag) {
		_ = v.BindPFlag(fl.Name, fl)
	})
	return cmd
}

// eventArchive is the indexer backend runNode wires into the app and the
// read API.
type eventArchive interface {
	indexer.BlockWriter
	httptransport.EventReader
	Close()
}

var openArchive = func(ctx context.Context, dsn string) (eventArchive, error) {
	st, err := indexer.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// runNode blocks until ctx is done or the read API fails.
func runNode(ctx context.Context, cfg config.NodeConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logOut, err := logging.OpenWriter(cfg.Log)
	if err != nil {
		return fmt.Errorf("open log output: %w", err)
	}
	defer logOut.Close()
	logger, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer db.Close()

	a, err := app.New(db, logger, app.Options{EnableFaucet: cfg.EnableFaucet})
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	if cfg.EnableFaucet {
		logger.Warn("faucet enabled: unsigned bank/mint txs are accepted")
	}

	var events httptransport.EventReader
	sinkDone := make(chan struct{})
	if cfg.Indexer.DSN != "" {
		st, err := openArchive(ctx, cfg.Indexer.DSN)
		if err != nil {
			return fmt.Errorf("open indexer: %w", err)
		}
		defer st.Close()
		if err := st.Ping(ctx); err != nil {
			return fmt.Errorf("ping indexer: %w", err)
		}
		sink := indexer.NewSink(st, logger, cfg.Indexer.QueueSize)
		a.SetEventSink(sink)
		events = st
		go func() {
			defer close(sinkDone)
			sink.Run(ctx)
		}()
		logger.Info("indexer enabled", "queue_size", cfg.Indexer.QueueSize)
	} else {
		close(sinkDone)
	}

	srv, err := server.NewServer(cfg.ABCIAddr, cfg.Transport, a)
	if err != nil {
		return fmt.Errorf("start abci server: %w", err)
	}
	if err := srv.Start(); err != nil {
		cancel()
		<-sinkDone
		return fmt.Errorf("abci server start: %w", err)
	}
	logger.Info("abci server listening", "addr", cfg.ABCIAddr, "transport", cfg.Transport, "height", a.Height())

	httpErr := make(chan error, 1)
	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		httpSrv = newHTTPServer(cfg.HTTPAddr, a, events, logOut)
		go func() {
			logger.Info("http read api listening", "addr", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				httpErr <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-httpErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down", "err", runErr)
	if httpSrv != nil {
		shutdownCtx, stopHTTP := context.WithTimeout(context.Background(), 5*time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		stopHTTP()
	}
	if err := srv.Stop(); err != nil {
		logger.Error("stop abci server", "err", err)
	}
	// The sink drains what is queued once ctx is cancelled.
	cancel()
	<-sinkDone
	return runErr
}

func openDB(cfg config.NodeConfig) (dbm.DB, error) {
	if cfg.DBBackend == config.BackendMemDB {
		return dbm.NewMemDB(), nil
	}
	dir := cfg.DataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return dbm.NewDB(dbName, dbm.BackendType(cfg.DBBackend), dir)
}

func newHTTPServer(addr string, a *app.PiverseApp, events httptransport.EventReader, logOut io.Writer) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           httptransport.NewRouter(a, events, logOut),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
