package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomePriced     = "priced"
	OutcomeIneligible = "ineligible"
	OutcomeNotFound   = "not_found"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
)

const (
	OperationCalculate = "calculate"
	OperationValidate  = "validate"
	OperationChangeFee = "change_fee"
	OperationCompare   = "compare"
)

// FareMetrics captures fare engine health signals.
type FareMetrics struct {
	calculations       *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec
	ineligible         *prometheus.CounterVec
	malformedRules     *prometheus.CounterVec
	violations         *prometheus.CounterVec
	comparisonExcluded *prometheus.CounterVec
}

var (
	fareMetricsOnce sync.Once
	fareMetrics     *FareMetrics
)

// Fare returns the process-wide fare metrics registered on the default registry.
func Fare() *FareMetrics {
	return FareWithConfig(Config{})
}

// FareWithConfig returns the singleton fare metrics using config labels.
func FareWithConfig(cfg Config) *FareMetrics {
	fareMetricsOnce.Do(func() {
		fareMetrics = NewFareMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return fareMetrics
}

// NewFareMetrics registers a fresh set of fare collectors on registerer.
func NewFareMetrics(registerer prometheus.Registerer, cfg Config) *FareMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "skyfare"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "skyfare_fare_operations_total",
		Help:        "Fare engine operations by outcome.",
		ConstLabels: constLabels,
	}, []string{"operation", "outcome"})
	calculationLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "skyfare_fare_operation_duration_seconds",
		Help:        "Fare engine operation latency including store round-trips.",
		Buckets:     []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		ConstLabels: constLabels,
	}, []string{"operation"})
	ineligible := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "skyfare_fare_ineligible_total",
		Help:        "Calculations rejected by a validation-only rule category.",
		ConstLabels: constLabels,
	}, []string{"category"})
	malformedRules := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "skyfare_fare_rule_malformed_total",
		Help:        "Rules skipped because their stored conditions failed to parse.",
		ConstLabels: constLabels,
	}, []string{"category"})
	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "skyfare_booking_rule_violations_total",
		Help:        "Booking validation violations by rule category.",
		ConstLabels: constLabels,
	}, []string{"category"})
	comparisonExcluded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "skyfare_fare_comparison_excluded_total",
		Help:        "Fare classes left out of a comparison by reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})

	registerer.MustRegister(
		calculations,
		calculationLatency,
		ineligible,
		malformedRules,
		violations,
		comparisonExcluded,
	)

	return &FareMetrics{
		calculations:       calculations,
		calculationLatency: calculationLatency,
		ineligible:         ineligible,
		malformedRules:     malformedRules,
		violations:         violations,
		comparisonExcluded: comparisonExcluded,
	}
}

// ObserveOperation records one engine operation and its latency.
func (m *FareMetrics) ObserveOperation(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(operation, outcome).Inc()
	m.calculationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *FareMetrics) IncIneligible(category string) {
	if m == nil {
		return
	}
	m.ineligible.WithLabelValues(category).Inc()
}

func (m *FareMetrics) IncMalformedRule(category string) {
	if m == nil {
		return
	}
	m.malformedRules.WithLabelValues(category).Inc()
}

func (m *FareMetrics) IncViolation(category string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(category).Inc()
}

func (m *FareMetrics) IncComparisonExcluded(reason string) {
	if m == nil {
		return
	}
	m.comparisonExcluded.WithLabelValues(reason).Inc()
}
