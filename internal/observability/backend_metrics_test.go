package observability

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/geocoder89/todohub/internal/appwrite"
)

func TestClassifyBackendErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unauthorized", err: &appwrite.Error{Code: 401}, want: "unauthorized"},
		{name: "not found wrapped", err: fmt.Errorf("get row: %w", &appwrite.Error{Code: 404}), want: "not_found"},
		{name: "bad request", err: &appwrite.Error{Code: 400}, want: "http_400"},
		{name: "server", err: &appwrite.Error{Code: 503}, want: "server_error"},
		{name: "breaker", err: appwrite.ErrCircuitOpen, want: "circuit_open"},
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "refused", err: errors.New("dial tcp: connection refused"), want: "connection"},
		{name: "other", err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := classifyBackendErr(tt.err); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// counterValue finds one series of a gathered counter by its label values.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestObserveBackendCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProm(reg)

	_ = p.ObserveBackend("account.get", func() error { return nil })
	err := p.ObserveBackend("account.get", func() error { return &appwrite.Error{Code: 401, Message: "nope"} })

	if err == nil || err.Error() != "nope" {
		t.Fatalf("error must pass through unchanged, got %v", err)
	}

	got := counterValue(t, reg, "todohub_backend_errors_total", map[string]string{"op": "account.get", "class": "unauthorized"})
	if got != 1 {
		t.Fatalf("got %v unauthorized errors, want 1", got)
	}
}

func TestRegisterLiveSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProm(reg)

	p.RegisterLiveSessions(func() int { return 3 })

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "todohub_live_sessions" {
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 3 {
				t.Fatalf("got %v live sessions, want 3", v)
			}
			return
		}
	}
	t.Fatalf("todohub_live_sessions not registered")
}
