package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/pkg/chain"
	"github.com/lidofinance/blockview/internal/pkg/chain/entity"
	"github.com/lidofinance/blockview/internal/pkg/erc20"
	"github.com/lidofinance/blockview/internal/pkg/wallet"
)

type ChainSrv interface {
	BlockNumber(ctx context.Context) (int64, error)
	BlockByNumber(ctx context.Context, tag string, fullTx bool) (*entity.Block, error)
	LatestBlocks(ctx context.Context, count int) ([]entity.Block, error)
	TransactionDetails(ctx context.Context, txHash string) (*entity.TransactionDetails, error)
	AddressInfo(ctx context.Context, address string) (*entity.AddressInfo, error)
}

type TokenSrv interface {
	CommonTokens() []erc20.Token
	TokenInfo(ctx context.Context, address string) (*erc20.Token, error)
	TokenBalance(ctx context.Context, token, wallet string) string
	TokensWithBalances(ctx context.Context, wallet string) []erc20.Token
}

const (
	MaxLatestBlocks = 100

	// Blocks this deep below the head are not expected to reorg and may be cached.
	FinalityDepth = 64
	BlockCacheTTL = 30 * time.Minute
)

var errBadRequest = errors.New("bad request")

type handler struct {
	chain   ChainSrv
	tokens  TokenSrv
	blocks  *expirable.LRU[int64, *entity.Block]
	metrics *metrics.Store
	log     *slog.Logger
}

func New(chainSrv ChainSrv, tokenSrv TokenSrv, blockCacheSize int, metricsStore *metrics.Store, log *slog.Logger) *handler {
	if blockCacheSize < 1 {
		blockCacheSize = 1
	}

	return &handler{
		chain:   chainSrv,
		tokens:  tokenSrv,
		blocks:  expirable.NewLRU[int64, *entity.Block](blockCacheSize, nil, BlockCacheTTL),
		metrics: metricsStore,
		log:     log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Could not write response", slog.String("error", err.Error()))
	}
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, statusOf(err), errorResponse{Error: err.Error()})
}

func (h *handler) notFound(w http.ResponseWriter, what string) {
	h.writeJSON(w, http.StatusNotFound, errorResponse{Error: what + " not found"})
}

// statusOf maps node failures to gateway statuses and bad input to 400.
func statusOf(err error) int {
	var (
		rpcErr       *chain.RpcError
		transportErr *chain.TransportError
		netErr       net.Error
	)

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, wallet.ErrInvalidPrivateKey),
		errors.Is(err, wallet.ErrInvalidMnemonic):
		return http.StatusBadRequest
	case errors.As(err, &rpcErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.Is(err, chain.ErrEmptyResponse):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
