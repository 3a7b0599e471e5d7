package handler

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/filter"
	"github.com/turboprint/turboprint/formatter"
)

// Sender forwards a formatted record to a remote destination: a
// syslog relay, a webhook, a message broker. Send must be safe for
// concurrent use.
type Sender interface {
	Send(destination, text string) error
}

// RemoteHandler forwards formatted records to a Sender behind a
// circuit breaker, so a dead destination sheds load fast instead of
// stalling every log call on a timeout.
type RemoteHandler struct {
	base
	destination string
	sender      Sender
	breaker     *gobreaker.CircuitBreaker[struct{}]
}

// RemoteConfig holds configuration for the remote handler.
type RemoteConfig struct {
	// Destination is passed verbatim to the sender.
	Destination string
	// Sender performs the actual delivery. Required.
	Sender Sender
	// FailureThreshold opens the circuit after this many consecutive
	// send failures (default 5).
	FailureThreshold uint32
	// RecoveryTimeout is how long the circuit stays open before a
	// trial send (default 30s).
	RecoveryTimeout time.Duration
	// Formatter overrides the owning logger's formatter when set.
	Formatter formatter.Formatter
	// Filters are the handler's own admission predicates.
	Filters []filter.Filter
}

// NewRemoteHandler creates a remote handler around the sender.
func NewRemoteHandler(cfg RemoteConfig) (*RemoteHandler, error) {
	if cfg.Sender == nil {
		return nil, core.NewConfigurationError("remote handler requires a sender")
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "remote:" + cfg.Destination,
		MaxRequests: 1,
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	})

	return &RemoteHandler{
		base:        base{formatter: cfg.Formatter, filters: cfg.Filters},
		destination: cfg.Destination,
		sender:      cfg.Sender,
		breaker:     breaker,
	}, nil
}

// Handle sends the formatted record through the circuit breaker. An
// open circuit returns gobreaker.ErrOpenState; the owning logger
// reports it like any other delivery failure.
func (h *RemoteHandler) Handle(owner Owner, rec *core.Record) error {
	if !h.admits(rec) {
		return nil
	}

	text, err := h.formatterFor(owner).Format(rec)
	if err != nil {
		return err
	}

	_, err = h.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, h.sender.Send(h.destination, text)
	})
	return err
}

// State exposes the breaker state for health reporting.
func (h *RemoteHandler) State() gobreaker.State {
	return h.breaker.State()
}

// Close is a no-op; the sender's lifecycle belongs to its creator.
func (h *RemoteHandler) Close() error {
	return nil
}
