package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/env"
	"github.com/lidofinance/blockview/internal/pkg/chain"
	"github.com/lidofinance/blockview/internal/pkg/erc20"
)

type Services struct {
	ChainSrv *chain.Reader
	TokenSrv *erc20.Reader
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          30,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

func NewServices(cfg *env.AppConfig, metricsStore *metrics.Store, log *slog.Logger) Services {
	rpcClient := chain.NewClient(cfg.JsonRpcURL, NewHTTPClient(cfg.RpcTimeout), metricsStore, log,
		chain.WithMaxAttempts(cfg.RpcMaxAttempts),
		chain.WithRateLimit(cfg.RpcRateLimit),
	)

	chainSrv := chain.NewReader(rpcClient, cfg.LatestBlocksConcurrency)
	decoder := erc20.NewDecoder(cfg.DecodeStrict, log, metricsStore)

	return Services{
		ChainSrv: chainSrv,
		TokenSrv: erc20.NewReader(chainSrv, decoder, log),
	}
}
