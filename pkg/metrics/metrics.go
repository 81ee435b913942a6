package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vidvote"

var (
	httpRequestsTotal *prometheus.CounterVec
	ballotsTotal      *prometheus.CounterVec
	assetCacheTotal   *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register 在默认 Registry 上注册指标，可重复调用
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the vote API.",
		}, []string{"method", "path", "status"})

		ballotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ballots_total",
			Help:      "Ballot mutations by outcome (cast, cancel, switch) and choice.",
		}, []string{"outcome", "choice"})

		assetCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_cache_requests_total",
			Help:      "Asset requests seen by the cache worker, by result (hit, miss, bypass).",
		}, []string{"result"})
	})
}

// IncRequest ...
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncBallot ...
func IncBallot(outcome, choice string) {
	if ballotsTotal == nil {
		return
	}
	ballotsTotal.WithLabelValues(outcome, choice).Inc()
}

// IncAssetCache ...
func IncAssetCache(result string) {
	if assetCacheTotal == nil {
		return
	}
	assetCacheTotal.WithLabelValues(result).Inc()
}
