package appwrite

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("The service is temporarily unavailable. Please try again shortly.")

type BreakerConfig struct {
	FailureThreshold int           // consecutive failures to open the circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // trial calls allowed while half-open
}

// Breaker stops calling a backend that keeps failing. It is shared by every
// session's client clone. Only outages count as failures: transport errors,
// timeouts and 5xx. A rejected password is not an outage.
type Breaker struct {
	cfg BreakerConfig
	mu  sync.Mutex
	now func() time.Time

	state string // "closed" | "open" | "half_open"

	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &Breaker{cfg: cfg, state: "closed", now: time.Now}
}

// Do runs fn unless the circuit is open.
func (b *Breaker) Do(fn func() error) error {
	if !b.allow() {
		return ErrCircuitOpen
	}

	err := fn()
	b.after(err)
	return err
}

func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case "open":
		if b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
			b.state = "half_open"
			b.halfOpenInFlight = 1
			return true
		}
		return false
	case "half_open":
		if b.halfOpenInFlight >= b.cfg.HalfOpenMaxCalls {
			return false
		}
		b.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == "half_open" && b.halfOpenInFlight > 0 {
		b.halfOpenInFlight--
	}

	// the caller gave up, says nothing about the backend either way
	if errors.Is(err, context.Canceled) {
		return
	}

	if !isOutage(err) {
		b.consecutiveFailures = 0
		b.state = "closed"
		return
	}

	b.consecutiveFailures++

	// a failed trial reopens at once
	if b.state == "half_open" || b.consecutiveFailures >= b.cfg.FailureThreshold {
		b.state = "open"
		b.openedAt = b.now()
	}
}

func isOutage(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
