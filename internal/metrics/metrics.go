package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReassignTotal исходы транзакций переназначения слота
	ReassignTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "examreg_reassign_total",
		Help: "Outcomes of slot reassign transactions.",
	}, []string{"outcome"}) // committed, rejected, fatal

	// ReassignOverrides принудительные назначения вопреки предупреждениям
	ReassignOverrides = promauto.NewCounter(prometheus.CounterOpts{
		Name: "examreg_reassign_overrides_total",
		Help: "Reassigns forced past non-empty warning sets.",
	})

	// ReassignRetries повторы транзакции после retryable-ошибок
	ReassignRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "examreg_reassign_retries_total",
		Help: "Transaction retries after serialization or lock failures.",
	})

	// OccupancyDrift расхождения reg_count, исправленные сверкой
	OccupancyDrift = promauto.NewCounter(prometheus.CounterOpts{
		Name: "examreg_occupancy_drift_repaired_total",
		Help: "Occupancy counter drifts repaired by reconciliation.",
	})
)
