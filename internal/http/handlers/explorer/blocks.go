package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/pkg/chain"
	"github.com/lidofinance/blockview/internal/pkg/chain/entity"
	"github.com/lidofinance/blockview/internal/pkg/hexcodec"
)

type blockNumberResponse struct {
	BlockNumber int64  `json:"blockNumber"`
	Hex         string `json:"hex"`
}

func (h *handler) BlockNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.chain.BlockNumber(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, blockNumberResponse{
		BlockNumber: number,
		Hex:         hexcodec.FromNumber(number),
	})
}

func (h *handler) LatestBlocks(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r.URL.Query().Get("count"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	blocks, err := h.chain.LatestBlocks(r.Context(), count)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, blocks)
}

func parseCount(value string) (int, error) {
	if value == "" {
		return chain.DefaultLatestBlocksCount, nil
	}

	count, err := strconv.Atoi(value)
	if err != nil || count < 1 {
		return 0, fmt.Errorf("%w: count must be a positive integer, got %q", errBadRequest, value)
	}

	return min(count, MaxLatestBlocks), nil
}

// Block serves a block with full transactions. {number} is decimal or 0x hex.
func (h *handler) Block(w http.ResponseWriter, r *http.Request) {
	number, err := parseBlockNumber(strings.TrimSpace(chi.URLParam(r, "number")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	block, err := h.cachedBlock(r.Context(), number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if block == nil {
		h.notFound(w, "block")
		return
	}

	h.writeJSON(w, http.StatusOK, block)
}

func parseBlockNumber(value string) (int64, error) {
	var (
		number int64
		err    error
	)

	if strings.HasPrefix(value, hexcodec.Prefix) {
		number, err = hexcodec.ParseNumber(value)
	} else {
		number, err = strconv.ParseInt(value, 10, 64)
	}
	if err != nil || number < 0 {
		return 0, fmt.Errorf("%w: invalid block number %q", errBadRequest, value)
	}

	return number, nil
}

func (h *handler) cachedBlock(ctx context.Context, number int64) (*entity.Block, error) {
	if block, ok := h.blocks.Get(number); ok {
		h.metrics.BlockCache.With(prometheus.Labels{metrics.Status: metrics.StatusHit}).Inc()
		return block, nil
	}
	h.metrics.BlockCache.With(prometheus.Labels{metrics.Status: metrics.StatusMiss}).Inc()

	block, err := h.chain.BlockByNumber(ctx, hexcodec.FromNumber(number), true)
	if err != nil || block == nil {
		return block, err
	}

	head, err := h.chain.BlockNumber(ctx)
	if err != nil {
		h.log.Warn("Could not check block depth, not caching", slog.Int64("block", number), slog.String("error", err.Error()))
		return block, nil
	}
	if head-number >= FinalityDepth {
		h.blocks.Add(number, block)
	}

	return block, nil
}
