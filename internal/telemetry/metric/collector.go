// Package metric provides Prometheus metrics for keyforge.
package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// CodecInfo describes the API key codec in use.
type CodecInfo struct {
	FormatVersion int
	KeyLength     int
}

// Collector exports a constant info metric for the active codec.
type Collector struct {
	info CodecInfo
	desc *prometheus.Desc
}

// NewCollector creates a collector for info.
func NewCollector(info CodecInfo) *Collector {
	return &Collector{
		info: info,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "codec", "info"),
			"Information about the API key codec, value is always 1",
			[]string{"format_version", "key_length"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 1,
		strconv.Itoa(c.info.FormatVersion),
		strconv.Itoa(c.info.KeyLength),
	)
}
