package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_cache_lookups_total",
		Help: "Query cache lookups, labeled by endpoint and result",
	}, []string{"endpoint", "result"})

	cacheInvalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_cache_invalidations_total",
		Help: "Invalidated tags, labeled by tag type",
	}, []string{"type"})

	cacheRefetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_cache_refetches_total",
		Help: "Background refetches triggered for subscribed queries",
	}, []string{"endpoint"})
)
