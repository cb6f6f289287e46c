package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type uniqueViews struct {
	counter    prometheus.Gauge
	viewsCache map[string]struct{}
	mu         sync.RWMutex
}

const uniqueResultViews = "unique_result_views"

var totalUniqueResultViewsMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: pitchAnalyzer,
		Name:      uniqueResultViews,
		Help:      "number of distinct shared results that were viewed",
	},
)

// UniqueResultViews tracks how many distinct share tokens were opened since
// the viewer started.
var UniqueResultViews = &uniqueViews{
	counter:    totalUniqueResultViewsMetric,
	viewsCache: make(map[string]struct{}),
}

func (v *uniqueViews) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.viewsCache = make(map[string]struct{})
	v.counter.Set(0)
}

func (v *uniqueViews) Record(token string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.viewsCache[token]; exists {
		return
	}

	v.viewsCache[token] = struct{}{}
	v.counter.Inc()
}

func (v *uniqueViews) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.viewsCache)
}
