package handler

import (
	"errors"
	"sync"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboprint/turboprint/core"
	"github.com/turboprint/turboprint/formatter"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingSender) Send(destination, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, destination+": "+text)
	return nil
}

func TestRemoteHandlerRequiresSender(t *testing.T) {
	_, err := NewRemoteHandler(RemoteConfig{Destination: "syslog://localhost"})
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}

func TestRemoteHandlerSends(t *testing.T) {
	sender := &recordingSender{}
	h, err := NewRemoteHandler(RemoteConfig{
		Destination: "syslog://localhost",
		Sender:      sender,
		Formatter:   formatter.NewTextFormatter("{message}"),
	})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(nil, record("payload", core.InfoLevel)))
	assert.Equal(t, []string{"syslog://localhost: payload"}, sender.sent)
}

func TestRemoteHandlerOpensCircuitAfterConsecutiveFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection refused")}
	h, err := NewRemoteHandler(RemoteConfig{
		Destination:      "syslog://localhost",
		Sender:           sender,
		FailureThreshold: 3,
		Formatter:        formatter.NewTextFormatter("{message}"),
	})
	require.NoError(t, err)
	defer h.Close()

	for i := 0; i < 3; i++ {
		assert.Error(t, h.Handle(nil, record("doomed", core.InfoLevel)))
	}
	assert.Equal(t, gobreaker.StateOpen, h.State())

	err = h.Handle(nil, record("shed", core.InfoLevel))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
