// Package metrics exports symvibe registry statistics as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sqlvibe/symvibe/pkg/symvibe"
)

const namespace = "symvibe"

// Collector reads a registry's Stats on every scrape. It holds no state of its
// own, so several collectors over the same registry report the same values.
type Collector struct {
	reg *symvibe.Registry

	symbols          *prometheus.Desc
	chunks           *prometheus.Desc
	slabs            *prometheus.Desc
	bytesUsed        *prometheus.Desc
	bytesReserved    *prometheus.Desc
	lookups          *prometheus.Desc
	inserts          *prometheus.Desc
	batches          *prometheus.Desc
	batchItems       *prometheus.Desc
	lockAcquisitions *prometheus.Desc
	lockContentions  *prometheus.Desc
	lockWait         *prometheus.Desc
}

// NewCollector returns a Collector for reg. constLabels are attached to every
// metric and tell several registries apart.
func NewCollector(reg *symvibe.Registry, constLabels prometheus.Labels) *Collector {
	desc := func(subsystem, name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, labels, constLabels)
	}
	return &Collector{
		reg:              reg,
		symbols:          desc("registry", "symbols", "Number of distinct interned strings."),
		chunks:           desc("arena", "chunks", "Number of arena byte chunks."),
		slabs:            desc("arena", "slabs", "Number of arena record slabs."),
		bytesUsed:        desc("arena", "bytes_used", "String content bytes copied into the arena."),
		bytesReserved:    desc("arena", "bytes_reserved", "Bytes reserved by arena chunks and slabs."),
		lookups:          desc("registry", "lookups_total", "Index probes by result.", "result"),
		inserts:          desc("registry", "inserts_total", "Strings placed in the arena."),
		batches:          desc("registry", "bulk_batches_total", "Bulk intern calls that reached the index."),
		batchItems:       desc("registry", "bulk_items_total", "Distinct strings submitted by bulk intern calls."),
		lockAcquisitions: desc("index", "write_lock_acquisitions_total", "Write lock acquisitions."),
		lockContentions:  desc("index", "write_lock_contentions_total", "Write lock acquisitions that had to wait."),
		lockWait:         desc("index", "write_lock_wait_seconds_total", "Time spent waiting for the write lock."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.symbols
	ch <- c.chunks
	ch <- c.slabs
	ch <- c.bytesUsed
	ch <- c.bytesReserved
	ch <- c.lookups
	ch <- c.inserts
	ch <- c.batches
	ch <- c.batchItems
	ch <- c.lockAcquisitions
	ch <- c.lockContentions
	ch <- c.lockWait
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.reg.Stats()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}

	gauge(c.symbols, float64(st.Symbols))
	gauge(c.chunks, float64(st.Chunks))
	gauge(c.slabs, float64(st.Slabs))
	gauge(c.bytesUsed, float64(st.BytesUsed))
	gauge(c.bytesReserved, float64(st.BytesReserved))
	counter(c.lookups, float64(st.Hits), "hit")
	counter(c.lookups, float64(st.Misses), "miss")
	counter(c.inserts, float64(st.Inserts))
	counter(c.batches, float64(st.Batches))
	counter(c.batchItems, float64(st.BatchItems))
	counter(c.lockAcquisitions, float64(st.LockAcquisitions))
	counter(c.lockContentions, float64(st.LockContentions))
	counter(c.lockWait, float64(st.LockWaitNs)/1e9)
}

// Register adds a Collector for reg to r.
func Register(r prometheus.Registerer, reg *symvibe.Registry, constLabels prometheus.Labels) (*Collector, error) {
	c := NewCollector(reg, constLabels)
	if err := r.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}
