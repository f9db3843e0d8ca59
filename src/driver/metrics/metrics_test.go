package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordRPCIncrementsCounterByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDriverMetrics(reg)

	m.RecordRPC("56", "eth_call", 10*time.Millisecond, true)
	m.RecordRPC("56", "eth_call", 20*time.Millisecond, false)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	counts := counterValuesByLabel(families, "vladiator_driver_rpc_calls_total", "status")
	if counts["success"] != 1 {
		t.Fatalf("success count = %v, want 1", counts["success"])
	}
	if counts["failure"] != 1 {
		t.Fatalf("failure count = %v, want 1", counts["failure"])
	}
}

func TestRecordSignIncrementsCounterByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDriverMetrics(reg)

	m.RecordSign("1", 5*time.Millisecond, true)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	counts := counterValuesByLabel(families, "vladiator_driver_sign_calls_total", "status")
	if counts["success"] != 1 {
		t.Fatalf("success count = %v, want 1", counts["success"])
	}
}

func counterValuesByLabel(families []*dto.MetricFamily, name, labelName string) map[string]float64 {
	out := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == labelName {
					out[l.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	return out
}
