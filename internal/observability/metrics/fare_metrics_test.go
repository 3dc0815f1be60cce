package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveOperation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewFareMetrics(registry, Config{ServiceName: "skyfare", Environment: "test"})

	m.ObserveOperation(OperationCalculate, OutcomePriced, 5*time.Millisecond)
	m.ObserveOperation(OperationCalculate, OutcomePriced, 7*time.Millisecond)
	m.ObserveOperation(OperationCalculate, OutcomeIneligible, time.Millisecond)

	if got := testutil.ToFloat64(m.calculations.WithLabelValues(OperationCalculate, OutcomePriced)); got != 2 {
		t.Fatalf("expected 2 priced calculations, got %v", got)
	}
	if got := testutil.ToFloat64(m.calculations.WithLabelValues(OperationCalculate, OutcomeIneligible)); got != 1 {
		t.Fatalf("expected 1 ineligible calculation, got %v", got)
	}
}

func TestFareMetricsCarryConstLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewFareMetrics(registry, Config{ServiceName: "skyfare", Environment: "test"})
	m.IncMalformedRule("surcharges")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "skyfare_fare_rule_malformed_total" {
			continue
		}
		labels := labelsOf(family.GetMetric()[0])
		if labels["service"] != "skyfare" || labels["env"] != "test" || labels["category"] != "surcharges" {
			t.Fatalf("unexpected labels %v", labels)
		}
		return
	}
	t.Fatalf("malformed rule metric not gathered")
}

func TestNilFareMetricsAreSafe(t *testing.T) {
	var m *FareMetrics
	m.ObserveOperation(OperationCompare, OutcomePriced, time.Second)
	m.IncIneligible("blackout_dates")
	m.IncViolation("advance_purchase")
	m.IncComparisonExcluded(OutcomeIneligible)
}

func labelsOf(metric *dto.Metric) map[string]string {
	labels := map[string]string{}
	for _, pair := range metric.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	return labels
}
