package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_IsolatedRegistries(t *testing.T) {
	first := New(prometheus.NewRegistry(), "test", "blockview", "local")
	second := New(prometheus.NewRegistry(), "test", "blockview", "local")

	first.RpcRequests.With(prometheus.Labels{Method: "eth_blockNumber", Status: StatusOk}).Inc()

	if got := testutil.ToFloat64(first.RpcRequests.With(prometheus.Labels{Method: "eth_blockNumber", Status: StatusOk})); got != 1 {
		t.Errorf("first store counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(second.RpcRequests.With(prometheus.Labels{Method: "eth_blockNumber", Status: StatusOk})); got != 0 {
		t.Errorf("second store counter = %v, want 0", got)
	}
}
