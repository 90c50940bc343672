package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserversIncrementCounters(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "svc"})

	m.ObserveRecord("console", "info")
	m.ObserveRecord("console", "info")
	m.ObserveRecord("cloudwatch", "error")
	m.ObserveSinkError("cloudwatch", "auth")
	m.ObserveRefresh("success")
	m.ObserveRefresh("failure")
	m.ObserveRotation()

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"records console/info", testutil.ToFloat64(m.recordsTotal.WithLabelValues("console", "info")), 2},
		{"records cloudwatch/error", testutil.ToFloat64(m.recordsTotal.WithLabelValues("cloudwatch", "error")), 1},
		{"sink errors cloudwatch/auth", testutil.ToFloat64(m.sinkErrors.WithLabelValues("cloudwatch", "auth")), 1},
		{"refreshes success", testutil.ToFloat64(m.refreshesTotal.WithLabelValues("success")), 1},
		{"refreshes failure", testutil.ToFloat64(m.refreshesTotal.WithLabelValues("failure")), 1},
		{"rotations", testutil.ToFloat64(m.rotationsTotal), 1},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: counter = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestNilMetricsRecordsNothing(t *testing.T) {
	var m *Metrics
	m.ObserveRecord("console", "info")
	m.ObserveSinkError("kafka", "network")
	m.ObserveRefresh("skipped")
	m.ObserveRotation()
}

func TestServerPreparedOnlyWhenEnabled(t *testing.T) {
	if m := NewMetrics(Config{ServiceName: "svc"}); m.Server != nil {
		t.Error("server prepared without EnableServer")
	}
	m := NewMetrics(Config{ServiceName: "svc", EnableServer: true})
	if m.Server == nil {
		t.Fatal("expected prepared scrape server")
	}
	if m.Server.Addr != DefaultMetricsAddress {
		t.Errorf("address = %q, want default %q", m.Server.Addr, DefaultMetricsAddress)
	}
}
