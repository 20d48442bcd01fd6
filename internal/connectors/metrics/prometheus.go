package metrics

import (
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Store struct {
	Prometheus      *prometheus.Registry
	BuildInfo       prometheus.Counter
	RpcRequests     *prometheus.CounterVec
	SummaryHandlers *prometheus.HistogramVec
	DecodeErrors    *prometheus.CounterVec
	PublishedBlocks *prometheus.CounterVec
	BlockCache      *prometheus.CounterVec
	HttpRequests    *prometheus.CounterVec
}

const Status = `status`
const Method = `method`
const Kind = `kind`
const Route = `route`
const Code = `code`

const StatusOk = `Ok`
const StatusFail = `Fail`
const StatusHit = `Hit`
const StatusMiss = `Miss`

var Commit string

func New(promRegistry *prometheus.Registry, prefix, appName, env string) *Store {
	factory := promauto.With(promRegistry)

	return &Store{
		Prometheus: promRegistry,
		BuildInfo: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_metric_build_info", prefix),
			Help: "Build information",
			ConstLabels: prometheus.Labels{
				"name":    appName,
				"env":     env,
				"commit":  Commit,
				"version": runtime.Version(),
			},
		}),
		RpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_rpc_requests_total", prefix),
			Help: "The total number of json-rpc requests sent to the node",
		}, []string{Method, Status}),
		SummaryHandlers: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_rpc_request_seconds", prefix),
			Help:    "Time spent waiting for the json-rpc node",
			Buckets: prometheus.DefBuckets,
		}, []string{Method}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_decode_errors_total", prefix),
			Help: "The total number of abi/hex values that could not be decoded",
		}, []string{Kind}),
		PublishedBlocks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_blocks_published_total", prefix),
			Help: "The total number of published blocks",
		}, []string{Status}),
		BlockCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_block_cache_total", prefix),
			Help: "Block cache lookups by result",
		}, []string{Status}),
		HttpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_http_requests_total", prefix),
			Help: "The total number of served api requests",
		}, []string{Route, Code}),
	}
}
