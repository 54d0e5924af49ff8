package colblock

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type writerMetrics struct {
	blocks    prometheus.Counter
	bytes     prometheus.Counter
	rowGroups prometheus.Counter
	overflows prometheus.Counter
}

func newWriterMetrics(reg prometheus.Registerer) (*writerMetrics, error) {
	m := &writerMetrics{
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "colblock",
			Name:      "blocks_created_total",
			Help:      "Total number of blocks created.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "colblock",
			Name:      "block_bytes_total",
			Help:      "Total number of bytes of created blocks.",
		}),
		rowGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "colblock",
			Name:      "row_groups_appended_total",
			Help:      "Total number of row groups appended to blocks.",
		}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "colblock",
			Name:      "block_overflows_total",
			Help:      "Total number of appends which exhausted the block size.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	for _, c := range []*prometheus.Counter{&m.blocks, &m.bytes, &m.rowGroups, &m.overflows} {
		if err := reg.Register(*c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(prometheus.Counter)
			if !ok {
				return nil, err
			}
			*c = existing
		}
	}
	return m, nil
}
