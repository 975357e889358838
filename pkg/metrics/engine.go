package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

const (
	namespace = "partnerz"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// EngineMetrics counts relationship engine operations and point movements.
type EngineMetrics struct {
	operations *prometheus.CounterVec
	points     *prometheus.CounterVec
	members    prometheus.Gauge
}

// NewEngineMetrics registers the engine metrics on reg. A nil registerer yields no-op metrics.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engine_operations_total",
		Help:      "Relationship engine operations by outcome and failure reason.",
	}, []string{"operation", "outcome", "reason"})
	points := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_moved_total",
		Help:      "Points credited or spent, by ledger event type.",
	}, []string{"type"})
	members := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "members",
		Help:      "Registered members.",
	})
	reg.MustRegister(operations, points, members)
	return &EngineMetrics{operations: operations, points: points, members: members}
}

// Observe counts one operation; err nil means success.
func (m *EngineMetrics) Observe(operation string, err error) {
	if m == nil || m.operations == nil {
		return
	}
	if err == nil {
		m.operations.WithLabelValues(operation, outcomeSuccess, "").Inc()
		return
	}
	m.operations.WithLabelValues(operation, outcomeFailure, normalizeLabel(pkgerrors.ReasonOf(err))).Inc()
}

// AddPoints records a movement of amount points.
func (m *EngineMetrics) AddPoints(eventType string, amount int64) {
	if m == nil || m.points == nil || amount <= 0 {
		return
	}
	m.points.WithLabelValues(eventType).Add(float64(amount))
}

func (m *EngineMetrics) SetMembers(n int) {
	if m == nil || m.members == nil {
		return
	}
	m.members.Set(float64(n))
}
