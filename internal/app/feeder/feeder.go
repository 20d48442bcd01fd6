package feeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/klauspost/compress/zstd"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/pkg/chain"
	"github.com/lidofinance/blockview/internal/pkg/chain/entity"
)

type ChainSrv interface {
	BlockByNumber(ctx context.Context, tag string, fullTx bool) (*entity.Block, error)
}

// Publisher is the part of jetstream.JetStream the feeder needs.
type Publisher interface {
	PublishAsync(subject string, payload []byte, opts ...jetstream.PublishOpt) (jetstream.PubAckFuture, error)
}

// Claimer lets several feeder replicas agree on who publishes a block.
// A claim whose publish failed is released so another replica can take it.
type Claimer interface {
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

// BlockSummary is the message published for every new head block.
type BlockSummary struct {
	Hash             string   `json:"hash"`
	Number           int64    `json:"number"`
	ParentHash       string   `json:"parentHash"`
	Timestamp        int64    `json:"timestamp"`
	Miner            string   `json:"miner"`
	GasUsed          string   `json:"gasUsed"`
	GasLimit         string   `json:"gasLimit"`
	BaseFeePerGas    string   `json:"baseFeePerGas,omitempty"`
	TransactionCount int      `json:"transactionCount"`
	Transactions     []string `json:"transactions"`
}

type Feeder struct {
	log          *slog.Logger
	chainSrv     ChainSrv
	js           Publisher
	claims       Claimer
	metricsStore *metrics.Store
	topic        string

	prevHash string
}

func New(log *slog.Logger, chainSrv ChainSrv, js Publisher, claims Claimer, metricsStore *metrics.Store, topic string) *Feeder {
	return &Feeder{
		log:          log,
		chainSrv:     chainSrv,
		js:           js,
		claims:       claims,
		metricsStore: metricsStore,
		topic:        topic,
	}
}

const DefaultInterval = 6 * time.Second

func (w *Feeder) Run(ctx context.Context, g *errgroup.Group, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				w.Tick(ctx)
			}
		}
	})
}

// Tick publishes the head block unless it was already published.
func (w *Feeder) Tick(ctx context.Context) {
	block, err := w.chainSrv.BlockByNumber(ctx, chain.LatestTag, false)
	if err != nil {
		w.fail(fmt.Sprintf("BlockByNumber error: %v", err))
		return
	}
	if block == nil {
		w.fail("BlockByNumber returned no head block")
		return
	}

	if block.Hash == w.prevHash {
		return
	}

	claimed := false
	if w.claims != nil {
		ok, claimErr := w.claims.Claim(ctx, block.Hash)
		if claimErr != nil {
			w.log.Warn("Could not claim block, publishing anyway",
				slog.String("hash", block.Hash),
				slog.String("error", claimErr.Error()),
			)
		} else if !ok {
			w.log.Debug("Block is claimed by another replica", slog.String("hash", block.Hash))
			return
		}
		claimed = ok
	}

	summary := Summarize(block)

	payload, marshalErr := json.Marshal(summary)
	if marshalErr != nil {
		w.release(ctx, claimed, block.Hash)
		w.fail(fmt.Sprintf(`Could not marshal block summary %s`, marshalErr))
		return
	}

	cPayload, compressErr := compress(payload)
	if compressErr != nil {
		w.release(ctx, claimed, block.Hash)
		w.fail(fmt.Sprintf(`Could not compress block summary by zstd: %s`, compressErr))
		return
	}

	payloadSize := slog.String("payloadSize", fmt.Sprintf(`%.6f mb`, float64(len(payload))/(1024*1024)))
	cPayloadSize := slog.String("cPayloadSize", fmt.Sprintf(`%.6f mb`, float64(cPayload.Len())/(1024*1024)))

	if _, publishErr := w.js.PublishAsync(w.topic, cPayload.Bytes(),
		jetstream.WithMsgID(summary.Hash),
		//nolint
		jetstream.WithRetryAttempts(5),
		//nolint
		jetstream.WithRetryWait(250*time.Millisecond),
	); publishErr != nil {
		w.release(ctx, claimed, block.Hash)
		w.fail(fmt.Sprintf("could not publish block %d to JetStream: error: %v", summary.Number, publishErr), payloadSize)
		return
	}

	w.prevHash = block.Hash
	w.log.Info(fmt.Sprintf(`%d, %s`, summary.Number, summary.Hash), payloadSize, cPayloadSize)
	w.metricsStore.PublishedBlocks.With(prometheus.Labels{metrics.Status: metrics.StatusOk}).Inc()
}

func (w *Feeder) release(ctx context.Context, claimed bool, hash string) {
	if !claimed {
		return
	}

	if err := w.claims.Release(ctx, hash); err != nil {
		w.log.Warn("Could not release block claim",
			slog.String("hash", hash),
			slog.String("error", err.Error()),
		)
	}
}

func (w *Feeder) fail(msg string, attrs ...any) {
	w.metricsStore.PublishedBlocks.With(prometheus.Labels{metrics.Status: metrics.StatusFail}).Inc()
	w.log.Error(msg, attrs...)
}

func Summarize(block *entity.Block) BlockSummary {
	hashes := block.Transactions.Hashes
	if block.Transactions.IsFull() {
		hashes = make([]string, 0, len(block.Transactions.Full))
		for i := range block.Transactions.Full {
			hashes = append(hashes, block.Transactions.Full[i].Hash)
		}
	}
	if hashes == nil {
		hashes = []string{}
	}

	return BlockSummary{
		Hash:             block.Hash,
		Number:           block.GetNumber(),
		ParentHash:       block.ParentHash,
		Timestamp:        block.GetTimestamp(),
		Miner:            block.Miner,
		GasUsed:          block.GasUsed,
		GasLimit:         block.GasLimit,
		BaseFeePerGas:    block.BaseFeePerGas,
		TransactionCount: len(hashes),
		Transactions:     hashes,
	}
}

func compress(payload []byte) (*bytes.Buffer, error) {
	cPayload := &bytes.Buffer{}
	zstdWriter, err := zstd.NewWriter(cPayload)
	if err != nil {
		return nil, err
	}

	if _, zstdErr := zstdWriter.Write(payload); zstdErr != nil {
		_ = zstdWriter.Close()
		return nil, zstdErr
	}
	if closeErr := zstdWriter.Close(); closeErr != nil {
		return nil, closeErr
	}

	return cPayload, nil
}
