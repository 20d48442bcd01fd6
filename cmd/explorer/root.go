package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lidofinance/blockview/internal/app/server"
	"github.com/lidofinance/blockview/internal/connectors/logger"
	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/env"
	"github.com/lidofinance/blockview/internal/pkg/chain"
	"github.com/lidofinance/blockview/internal/pkg/erc20"
)

const sentryFlushTimeout = 2 * time.Second

type cli struct {
	cfgFile string
	rpcURL  string
	verbose bool

	log          *slog.Logger
	sentryClient *sentry.Client
	chain        *chain.Reader
	tokens       *erc20.Reader
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "explorer",
		Short:         "Query an Ethereum node the way the blockview api does.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.sentryClient != nil {
				c.sentryClient.Flush(sentryFlushTimeout)
			}
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "env file (default is ./.env)")
	root.PersistentFlags().StringVar(&c.rpcURL, "rpc-url", "", "json-rpc endpoint, overrides JSON_RPC_URL")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log rpc failures")

	root.AddCommand(
		c.blocksCommand(),
		c.blockCommand(),
		c.txCommand(),
		c.addressCommand(),
		c.tokenCommand(),
		c.walletCommand(),
		c.searchCommand(),
		c.rpcCommand(),
	)

	return root
}

func (c *cli) init() error {
	cfg, err := env.Read(c.cfgFile)
	if err != nil {
		return fmt.Errorf("read env: %w", err)
	}

	appCfg := cfg.AppConfig
	if c.rpcURL != "" {
		appCfg.JsonRpcURL = c.rpcURL
	}

	c.log = logger.Discard()
	if c.verbose {
		if c.log, c.sentryClient, err = logger.New(&appCfg); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
	}

	metricsStore := metrics.New(prometheus.NewRegistry(), appCfg.MetricsPrefix, appCfg.Name, appCfg.Env)
	services := server.NewServices(&appCfg, metricsStore, c.log)

	c.chain = services.ChainSrv
	c.tokens = services.TokenSrv

	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
