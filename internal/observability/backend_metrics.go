package observability

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/todohub/internal/appwrite"
)

// ObserveBackend satisfies appwrite.Observer.
func (p *Prom) ObserveBackend(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.BackendErrorsTotal.WithLabelValues(op, classifyBackendErr(err)).Inc()
	}
	p.BackendCallDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifyBackendErr(err error) string {
	var apiErr *appwrite.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401:
			return "unauthorized"
		case apiErr.Code == 404:
			return "not_found"
		case apiErr.Code == 409:
			return "conflict"
		case apiErr.Code == 429:
			return "rate_limited"
		case apiErr.Code >= 500:
			return "server_error"
		case apiErr.Code >= 400:
			return "http_" + strconv.Itoa(apiErr.Code)
		}
	}

	if errors.Is(err, appwrite.ErrCircuitOpen) {
		return "circuit_open"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
