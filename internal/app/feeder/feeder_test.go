package feeder

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidofinance/blockview/internal/connectors/logger"
	"github.com/lidofinance/blockview/internal/connectors/metrics"
	"github.com/lidofinance/blockview/internal/pkg/chain"
	"github.com/lidofinance/blockview/internal/pkg/chain/entity"
)

type fakeChain struct {
	block *entity.Block
	err   error
}

func (f *fakeChain) BlockByNumber(_ context.Context, tag string, fullTx bool) (*entity.Block, error) {
	if tag != chain.LatestTag || fullTx {
		return nil, errors.New("unexpected arguments")
	}
	return f.block, f.err
}

type published struct {
	subject string
	payload []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) PublishAsync(subject string, payload []byte, _ ...jetstream.PublishOpt) (jetstream.PubAckFuture, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, payload: payload})
	return nil, nil
}

type fakeClaims struct {
	taken map[string]bool
	err   error
}

func (f *fakeClaims) Release(_ context.Context, id string) error {
	delete(f.taken, id)
	return nil
}

func (f *fakeClaims) Claim(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.taken[id] {
		return false, nil
	}
	f.taken[id] = true
	return true, nil
}

func head(number, hash string) *entity.Block {
	return &entity.Block{
		Number:     number,
		Hash:       hash,
		ParentHash: "0xparent",
		Timestamp:  "0x66fe9734",
		GasUsed:    "0x5208",
		Transactions: entity.BlockTransactions{
			Hashes: []string{"0xt1", "0xt2"},
		},
	}
}

func newTestFeeder(c ChainSrv, p Publisher, claims Claimer) (*Feeder, *metrics.Store) {
	metricsStore := metrics.New(prometheus.NewRegistry(), "test", "blockview", "local")
	return New(logger.Discard(), c, p, claims, metricsStore, "blockview.blocks"), metricsStore
}

func counter(m *metrics.Store, status string) float64 {
	return testutil.ToFloat64(m.PublishedBlocks.With(prometheus.Labels{metrics.Status: status}))
}

func decode(t *testing.T, payload []byte) BlockSummary {
	t.Helper()

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()

	raw, err := dec.DecodeAll(payload, nil)
	require.NoError(t, err)

	var summary BlockSummary
	require.NoError(t, json.Unmarshal(raw, &summary))
	return summary
}

func TestFeeder_Tick(t *testing.T) {
	c := &fakeChain{block: head("0x10", "0xaa")}
	p := &fakePublisher{}
	f, m := newTestFeeder(c, p, nil)

	f.Tick(context.Background())
	f.Tick(context.Background())

	require.Len(t, p.msgs, 1, "same head is published once")
	assert.Equal(t, "blockview.blocks", p.msgs[0].subject)
	assert.Equal(t, BlockSummary{
		Hash:             "0xaa",
		Number:           16,
		ParentHash:       "0xparent",
		Timestamp:        1727960884,
		GasUsed:          "0x5208",
		TransactionCount: 2,
		Transactions:     []string{"0xt1", "0xt2"},
	}, decode(t, p.msgs[0].payload))

	c.block = head("0x11", "0xbb")
	f.Tick(context.Background())

	require.Len(t, p.msgs, 2)
	assert.Equal(t, int64(17), decode(t, p.msgs[1].payload).Number)
	assert.Equal(t, float64(2), counter(m, metrics.StatusOk))
	assert.Equal(t, float64(0), counter(m, metrics.StatusFail))
}

func TestFeeder_TickClaims(t *testing.T) {
	claims := &fakeClaims{taken: map[string]bool{"0xaa": true}}
	c := &fakeChain{block: head("0x10", "0xaa")}
	p := &fakePublisher{}
	f, _ := newTestFeeder(c, p, claims)

	f.Tick(context.Background())
	assert.Empty(t, p.msgs, "claimed by another replica")

	c.block = head("0x11", "0xbb")
	f.Tick(context.Background())
	assert.Len(t, p.msgs, 1)

	claims.err = errors.New("redis down")
	c.block = head("0x12", "0xcc")
	f.Tick(context.Background())
	assert.Len(t, p.msgs, 2, "claim errors do not block publishing")
}

func TestFeeder_TickFailedPublishReleasesClaim(t *testing.T) {
	claims := &fakeClaims{taken: map[string]bool{}}
	c := &fakeChain{block: head("0x10", "0xaa")}

	pubA := &fakePublisher{err: errors.New("nats: timeout")}
	replicaA, metricsA := newTestFeeder(c, pubA, claims)
	pubB := &fakePublisher{}
	replicaB, _ := newTestFeeder(c, pubB, claims)

	replicaA.Tick(context.Background())
	assert.Empty(t, pubA.msgs)
	assert.False(t, claims.taken["0xaa"], "claim is released after a failed publish")
	assert.Equal(t, float64(1), counter(metricsA, metrics.StatusFail))

	replicaB.Tick(context.Background())
	require.Len(t, pubB.msgs, 1, "another replica publishes the block")
	assert.True(t, claims.taken["0xaa"])

	pubA.err = nil
	replicaA.Tick(context.Background())
	assert.Empty(t, pubA.msgs, "block is held by the replica that published it")
}

func TestFeeder_TickRetriesAfterFailedPublish(t *testing.T) {
	c := &fakeChain{block: head("0x10", "0xaa")}
	p := &fakePublisher{err: errors.New("nats: timeout")}
	f, m := newTestFeeder(c, p, nil)

	f.Tick(context.Background())
	p.err = nil
	f.Tick(context.Background())

	require.Len(t, p.msgs, 1, "the same head is published on the next tick")
	assert.Equal(t, float64(1), counter(m, metrics.StatusFail))
	assert.Equal(t, float64(1), counter(m, metrics.StatusOk))
}

func TestFeeder_TickFailures(t *testing.T) {
	tests := []struct {
		name      string
		chain     *fakeChain
		publisher *fakePublisher
	}{
		{name: "node error", chain: &fakeChain{err: &chain.TransportError{Method: "eth_getBlockByNumber", StatusCode: 502}}, publisher: &fakePublisher{}},
		{name: "no head", chain: &fakeChain{}, publisher: &fakePublisher{}},
		{name: "publish error", chain: &fakeChain{block: head("0x1", "0x01")}, publisher: &fakePublisher{err: errors.New("nats: timeout")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, m := newTestFeeder(tt.chain, tt.publisher, nil)

			f.Tick(context.Background())

			assert.Empty(t, tt.publisher.msgs)
			assert.Equal(t, float64(1), counter(m, metrics.StatusFail))
			assert.Equal(t, float64(0), counter(m, metrics.StatusOk))
		})
	}
}

func TestSummarize_FullTransactions(t *testing.T) {
	block := &entity.Block{
		Number: "0x1",
		Transactions: entity.BlockTransactions{
			Full: []entity.Transaction{{Hash: "0xt1"}},
		},
	}

	summary := Summarize(block)
	assert.Equal(t, []string{"0xt1"}, summary.Transactions)
	assert.Equal(t, 1, summary.TransactionCount)

	empty := Summarize(&entity.Block{Number: "0x0"})
	assert.Equal(t, []string{}, empty.Transactions)
}
