package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector 는 Store 스냅샷을 Prometheus 게이지로 노출한다.
type Collector struct {
	store *Store
	descs map[string]*prometheus.Desc
}

// NewCollector 는 Store 기반 수집기를 생성한다.
func NewCollector(store *Store) *Collector {
	names := []string{
		"total_calls",
		"total_errors",
		"total_input_tokens",
		"total_output_tokens",
		"total_tokens",
		"total_duration_ms",
		"avg_duration_ms",
	}
	descs := make(map[string]*prometheus.Desc, len(names))
	for _, name := range names {
		descs[name] = prometheus.NewDesc(
			"painpoint_llm_"+name,
			"Cumulative LLM call statistic: "+name,
			nil,
			nil,
		)
	}
	return &Collector{store: store, descs: descs}
}

// Register 는 기본 레지스트리에 수집기를 등록한다.
func (c *Collector) Register() error {
	return prometheus.Register(c)
}

// Describe 는 메트릭 설명을 전달한다.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.descs {
		ch <- desc
	}
}

// Collect 는 현재 스냅샷 값을 전달한다.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.store == nil {
		return
	}
	snapshot := c.store.Snapshot()
	for name, desc := range c.descs {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, snapshot[name])
	}
}
